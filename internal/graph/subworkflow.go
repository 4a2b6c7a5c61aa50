package graph

import (
	"fmt"

	"github.com/skeinworks/skein/internal/builder"
	"github.com/skeinworks/skein/internal/ir"
	"github.com/skeinworks/skein/internal/workflow"
)

// resolveBoundary builds a boundary node's body as an isolated child
// workflow and returns a reference to the single opaque parent step that
// stands in for it.
//
// Explicit bindings become child parameters fed by the parent step's
// arguments; free variables captured inside the body bubble up as
// parameters of both scopes. Bindings the body never reaches are dropped
// from both sides.
func (sc *scope) resolveBoundary(node *builder.CallNode) (ir.Reference, error) {
	if node.Body == nil {
		return nil, constructErrf(ErrCodeEmptyBody, node.Task.Name, "subworkflow boundary has no returned expression")
	}

	// Parent-side arguments first, in call order.
	parentArgs, err := sc.resolveArgs(node.Bindings)
	if err != nil {
		return nil, err
	}

	child := newScope(sc.opts)
	for i, binding := range node.Bindings {
		param := &ir.Parameter{Name: binding.Name, Type: bindingType(binding, parentArgs[i])}
		if lit, ok := binding.Value.(builder.Literal); ok {
			def, convErr := ir.FromGo(lit.Value)
			if convErr == nil {
				param.Default = def
			}
		}
		if err := child.wf.AddParameter(param); err != nil {
			return nil, &ConstructError{
				Code:    ErrCodeParamConflict,
				Message: "boundary binding conflicts with an existing parameter",
				Subject: binding.Name,
				Err:     err,
			}
		}
		ref := ir.ParamRef{Name: binding.Name}
		child.boundParams[binding.Name] = ref
		switch value := binding.Value.(type) {
		case *builder.CallNode:
			child.boundNodes[value] = ref
			child.boundNodeNames[value] = binding.Name
		case builder.FieldOf:
			child.boundNodes[value.Node] = ref
			child.boundNodeNames[value.Node] = binding.Name
		default:
			// Literals and captured parameters rebind by name only.
		}
	}

	bodyRef, err := child.resolveNode(node.Body)
	if err != nil {
		return nil, err
	}
	child.setResult(bodyRef)

	// Drop boundary bindings the body never reached, on both sides.
	kept := parentArgs[:0]
	for i, binding := range node.Bindings {
		if child.usedBindings[binding.Name] {
			kept = append(kept, parentArgs[i])
			continue
		}
		child.wf.DropParameter(binding.Name)
	}
	parentArgs = kept

	// Free variables discovered inside the body bubble up: they become
	// parameters of the parent too, wired through the boundary step.
	for _, param := range child.wf.Parameters() {
		if _, bound := child.boundParams[param.Name]; bound {
			continue
		}
		bubbled := &ir.Parameter{Name: param.Name, Type: param.Type, Default: param.Default}
		if err := sc.wf.AddParameter(bubbled); err != nil {
			return nil, &ConstructError{
				Code:    ErrCodeParamConflict,
				Message: "captured parameter conflicts across a subworkflow boundary",
				Subject: param.Name,
				Err:     err,
			}
		}
		parentArgs = append(parentArgs, workflow.Arg{Name: param.Name, Ref: ir.ParamRef{Name: param.Name}})
	}

	if err := child.wf.Validate(); err != nil {
		return nil, &ConstructError{
			Code:    ErrCodeScopeEscape,
			Message: "reference escaped its subworkflow scope",
			Subject: node.Task.Name,
			Err:     err,
		}
	}

	name, err := sc.registerSubworkflow(node.Task.Name, child.wf)
	if err != nil {
		return nil, err
	}

	// The parent sees a single opaque step whose task name is the
	// subworkflow name.
	boundaryTask := &ir.Task{Name: name, Target: node.Task.Target, Params: node.Task.Params}
	step, err := sc.internStep(boundaryTask, parentArgs, node.Result)
	if err != nil {
		return nil, err
	}
	return ir.StepRef{Step: step.ID, Field: "out"}, nil
}

// registerSubworkflow registers the child under a name that is unique but
// stable across re-construction: the boundary task's name, suffixed with a
// counter when a different body already claimed it.
func (sc *scope) registerSubworkflow(base string, child *workflow.Workflow) (string, error) {
	childFP, err := child.Fingerprint()
	if err != nil {
		return "", constructErrf(ErrCodeUnsupportedArgument, base, "subworkflow fingerprint: %v", err)
	}

	name := base
	for n := 2; ; n++ {
		existingFP, taken := sc.subFingerprints[name]
		if !taken {
			break
		}
		if existingFP == childFP {
			return name, nil
		}
		name = fmt.Sprintf("%s-%d", base, n)
	}

	if err := sc.wf.AddSubworkflow(name, child); err != nil {
		return "", constructErrf(ErrCodeScopeEscape, name, "%v", err)
	}
	sc.subFingerprints[name] = childFP
	return name, nil
}

// bindingType infers the declared type of a child parameter standing in
// for a boundary binding.
func bindingType(binding builder.Binding, arg workflow.Arg) string {
	switch value := binding.Value.(type) {
	case builder.Literal:
		if arg.Raw != nil {
			return arg.Raw.TypeTag()
		}
	case builder.ParamBinding:
		if value.Type != "" {
			return value.Type
		}
	case *builder.CallNode:
		if value.Result.IsRecord() {
			return ir.TypeRecord
		}
		if value.Result.Tag != "" {
			return value.Result.Tag
		}
	case builder.FieldOf:
		for _, f := range value.Node.Result.Fields {
			if f.Name == value.Field {
				return f.Type
			}
		}
	}
	return ir.TypeString
}
