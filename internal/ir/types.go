package ir

import "fmt"

// Type tags for literal values and declared parameter/output types.
// These are the internal names; renderers map them to target syntax.
const (
	TypeInt     = "int"
	TypeDouble  = "double"
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeList    = "list"
	TypeRecord  = "record"
)

// ParamSpec declares one named parameter of a Task's signature.
type ParamSpec struct {
	Name    string
	Type    string
	Default Value // nil when the parameter has no default
}

// Task identifies a callable unit of deferred work.
//
// Name is the stable name as it appears in rendered documents. Target is an
// opaque handle to the underlying callable (a dotted module path), used only
// for identity and for renderer introspection. Many steps may reference one
// Task; it is created once per distinct callable and never mutated.
type Task struct {
	Name   string
	Target string
	Params []ParamSpec
}

// Equal reports whether two tasks are the same callable.
// Naively compares name and target, as the identity contract requires.
func (t *Task) Equal(other *Task) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Name == other.Name && t.Target == other.Target
}

// ID returns the content-addressed identity of the task.
func (t *Task) ID() string {
	return MustFingerprint(DomainTask, Object{
		"name":   String(t.Name),
		"target": String(t.Target),
	})
}

// Param looks up a declared parameter by name.
func (t *Task) Param(name string) (ParamSpec, bool) {
	for _, p := range t.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// Raw is a literal value embedded directly in a step's arguments.
// Immutable; its identity is its canonical serialization plus type tag.
type Raw struct {
	Value Value
}

// TypeTag returns the inferred type tag of the literal.
func (r Raw) TypeTag() string {
	return TypeTagOf(r.Value)
}

// Identity returns the deduplication identity of the literal.
func (r Raw) Identity() string {
	canonical, err := MarshalCanonical(r.Value)
	if err != nil {
		// Null or other non-canonical literals identify by type alone; they
		// cannot collide with canonical values, which never start with "!".
		return fmt.Sprintf("raw:!%s", r.TypeTag())
	}
	return fmt.Sprintf("raw:%s|%s", r.TypeTag(), canonical)
}

// TypeTagOf infers the type tag for a literal value.
func TypeTagOf(v Value) string {
	switch v.(type) {
	case Int:
		return TypeInt
	case Float:
		return TypeDouble
	case String:
		return TypeString
	case Bool:
		return TypeBoolean
	case Array:
		return TypeList
	case Object:
		return TypeRecord
	}
	return "null"
}

// Parameter is a named, typed, optionally-defaulted global input discovered
// during construction. Uniqueness is by name; redefinition with a
// conflicting type or default is a construction error.
type Parameter struct {
	Name    string
	Type    string
	Default Value // nil when no default was captured
}

// Conflicts reports whether a second sighting of the parameter disagrees
// with this one on type or default.
func (p *Parameter) Conflicts(other *Parameter) bool {
	if p.Name != other.Name || p.Type != other.Type {
		return true
	}
	if (p.Default == nil) != (other.Default == nil) {
		return true
	}
	if p.Default == nil {
		return false
	}
	left, errL := MarshalCanonical(p.Default)
	right, errR := MarshalCanonical(other.Default)
	if errL != nil || errR != nil {
		return errL == nil || errR == nil
	}
	return string(left) != string(right)
}
