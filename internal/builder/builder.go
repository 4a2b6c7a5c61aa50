// Package builder provides the call-node tree that feeds graph construction.
//
// The tree stands in for language-level call interception: the boundary
// layer records, for each deferred invocation, a node carrying task identity
// and argument bindings. Nodes are immutable once handed to graph.Build.
package builder

import (
	"github.com/google/uuid"

	"github.com/skeinworks/skein/internal/ir"
)

// NodeKind distinguishes how a call node contributes to the graph.
type NodeKind int

const (
	// KindTask is a primitive task invocation; it becomes a step.
	KindTask NodeKind = iota
	// KindNested is a higher-order composition; its body is inlined into
	// the enclosing scope and the node contributes no step of its own.
	KindNested
	// KindBoundary marks a subworkflow boundary; its body is built as an
	// isolated child workflow referenced by name from the parent.
	KindBoundary
)

// ArgValue is the value side of a binding: a Literal, a *CallNode, or a
// ParamBinding.
type ArgValue interface {
	argValue()
}

// Literal wraps a raw Go literal argument.
type Literal struct {
	Value any
}

func (Literal) argValue() {}

// ParamBinding is a captured free variable passed explicitly by the
// boundary layer, per the explicit-parameter-registry design. Type may be
// empty, in which case it is inferred from Default.
type ParamBinding struct {
	Name    string
	Type    string
	Default any // nil when the capture carries no default
	HasDef  bool
}

func (ParamBinding) argValue() {}

func (*CallNode) argValue() {}

// FieldOf selects a named field of a record-returning call's output.
type FieldOf struct {
	Node  *CallNode
	Field string
}

func (FieldOf) argValue() {}

// Binding pairs an argument name with its value, preserving call order.
type Binding struct {
	Name  string
	Value ArgValue
}

// ResultType describes a call's declared or inferred result.
type ResultType struct {
	// Tag is the scalar type tag; empty for record results.
	Tag string
	// Fields holds the ordered named fields of a record result.
	Fields []ir.ParamSpec
}

// IsRecord reports whether the result exposes structured attributes.
func (r ResultType) IsRecord() bool {
	return len(r.Fields) > 0
}

// Scalar builds a scalar result descriptor.
func Scalar(tag string) ResultType {
	return ResultType{Tag: tag}
}

// Record builds a named-field record result descriptor.
func Record(fields ...ir.ParamSpec) ResultType {
	return ResultType{Fields: fields}
}

// CallNode is one deferred invocation in the traced tree.
type CallNode struct {
	id       string
	Task     *ir.Task
	Bindings []Binding
	Result   ResultType
	Kind     NodeKind
	// Body is the returned expression of a nested composition or
	// subworkflow boundary; nil for primitive tasks.
	Body *CallNode
}

// Handle returns the node's opaque unique handle. Two textually separate
// invocations always have distinct handles; deduplication happens later,
// by content fingerprint, never by handle.
func (n *CallNode) Handle() string {
	return n.id
}

// Call records a primitive task invocation.
func Call(task *ir.Task, result ResultType, bindings ...Binding) *CallNode {
	return &CallNode{
		id:       uuid.NewString(),
		Task:     task,
		Bindings: bindings,
		Result:   result,
		Kind:     KindTask,
	}
}

// Nested records a higher-order composition whose body is inlined. A nil
// body is tolerated here and rejected by graph.Build.
func Nested(task *ir.Task, body *CallNode, bindings ...Binding) *CallNode {
	n := &CallNode{
		id:       uuid.NewString(),
		Task:     task,
		Bindings: bindings,
		Kind:     KindNested,
		Body:     body,
	}
	if body != nil {
		n.Result = body.Result
	}
	return n
}

// Boundary records a subworkflow boundary around body. A nil body is
// tolerated here and rejected by graph.Build.
func Boundary(task *ir.Task, body *CallNode, bindings ...Binding) *CallNode {
	n := &CallNode{
		id:       uuid.NewString(),
		Task:     task,
		Bindings: bindings,
		Kind:     KindBoundary,
		Body:     body,
	}
	if body != nil {
		n.Result = body.Result
	}
	return n
}

// Bind pairs a name with a nested call.
func Bind(name string, node *CallNode) Binding {
	return Binding{Name: name, Value: node}
}

// BindField pairs a name with a field selection on a nested call.
func BindField(name string, node *CallNode, field string) Binding {
	return Binding{Name: name, Value: FieldOf{Node: node, Field: field}}
}

// Lit pairs a name with a literal value.
func Lit(name string, v any) Binding {
	return Binding{Name: name, Value: Literal{Value: v}}
}

// Param pairs a name with a captured free variable without a default.
func Param(name, paramName, typ string) Binding {
	return Binding{Name: name, Value: ParamBinding{Name: paramName, Type: typ}}
}

// ParamDefault pairs a name with a captured free variable carrying a
// default value.
func ParamDefault(name, paramName, typ string, def any) Binding {
	return Binding{Name: name, Value: ParamBinding{Name: paramName, Type: typ, Default: def, HasDef: true}}
}
