package graph

import (
	"fmt"

	"github.com/skeinworks/skein/internal/builder"
	"github.com/skeinworks/skein/internal/ir"
	"github.com/skeinworks/skein/internal/workflow"
)

// Options control construction behavior.
type Options struct {
	// SimplifyIDs replaces fingerprint-derived step identifiers with short
	// name-n display names. Pure renaming: dedup semantics are untouched.
	SimplifyIDs bool
	// FlattenSubworkflows demotes boundary nodes to nested compositions,
	// inlining their bodies into the enclosing scope.
	FlattenSubworkflows bool
}

// Build walks the call-node tree rooted at the declared result and produces
// a complete workflow. Construction is synchronous and deterministic; a
// failed build returns a *ConstructError and no partial workflow.
func Build(root *builder.CallNode, opts Options) (*workflow.Workflow, error) {
	sc := newScope(opts)

	ref, err := sc.resolveNode(root)
	if err != nil {
		return nil, err
	}
	sc.setResult(ref)

	if err := sc.wf.Validate(); err != nil {
		return nil, &ConstructError{
			Code:    ErrCodeScopeEscape,
			Message: "reference escaped its workflow scope",
			Err:     err,
		}
	}

	if opts.SimplifyIDs {
		simplify(sc.wf)
	}
	return sc.wf, nil
}

// scope is one (sub)workflow construction scope. Each scope owns its
// fingerprint table and parameter set; fingerprints never cross scopes.
type scope struct {
	opts Options
	wf   *workflow.Workflow

	byFingerprint map[string]*workflow.Step
	tasks         map[string]*ir.Task

	// bound maps call nodes and captured parameter names that were cut at
	// a subworkflow boundary to the child-scope references standing in for
	// them. usedBindings records which boundary bindings the body actually
	// reached.
	boundNodes     map[*builder.CallNode]ir.Reference
	boundNodeNames map[*builder.CallNode]string
	boundParams    map[string]ir.Reference
	usedBindings   map[string]bool

	// subFingerprints maps registered subworkflow names to their body
	// fingerprint, for stable unique naming.
	subFingerprints map[string]string
}

func newScope(opts Options) *scope {
	return &scope{
		opts:            opts,
		wf:              workflow.New(),
		byFingerprint:   make(map[string]*workflow.Step),
		tasks:           make(map[string]*ir.Task),
		boundNodes:      make(map[*builder.CallNode]ir.Reference),
		boundNodeNames:  make(map[*builder.CallNode]string),
		boundParams:     make(map[string]ir.Reference),
		usedBindings:    make(map[string]bool),
		subFingerprints: make(map[string]string),
	}
}

func (sc *scope) setResult(ref ir.Reference) {
	sc.wf.Result = ref
	if stepRef, ok := ref.(ir.StepRef); ok {
		if step, ok := sc.wf.Step(stepRef.Step); ok {
			if stepRef.Field == "out" && step.MultiOutput() {
				sc.wf.ResultFields = step.Outputs
			} else if field, ok := step.OutputField(stepRef.Field); ok {
				sc.wf.ResultFields = []workflow.Field{field}
			}
		}
	}
}

// resolveNode turns a call node into a reference to its step's output,
// building the step (and anything it transitively needs) first.
func (sc *scope) resolveNode(node *builder.CallNode) (ir.Reference, error) {
	if ref, ok := sc.boundNodes[node]; ok {
		if name, named := sc.boundNodeNames[node]; named {
			sc.usedBindings[name] = true
		}
		return ref, nil
	}

	switch node.Kind {
	case builder.KindNested:
		// A nested composition contributes no step; only the chain that
		// feeds its returned expression survives.
		if node.Body == nil {
			return nil, constructErrf(ErrCodeEmptyBody, node.Task.Name, "nested composition has no returned expression")
		}
		return sc.resolveNode(node.Body)

	case builder.KindBoundary:
		if sc.opts.FlattenSubworkflows {
			if node.Body == nil {
				return nil, constructErrf(ErrCodeEmptyBody, node.Task.Name, "subworkflow boundary has no returned expression")
			}
			return sc.resolveNode(node.Body)
		}
		return sc.resolveBoundary(node)
	}

	return sc.resolveTaskCall(node)
}

// resolveTaskCall builds (or reuses) the step for a primitive task call.
func (sc *scope) resolveTaskCall(node *builder.CallNode) (ir.Reference, error) {
	task, err := sc.registerTask(node.Task)
	if err != nil {
		return nil, err
	}

	args, err := sc.resolveArgs(node.Bindings)
	if err != nil {
		return nil, err
	}

	step, err := sc.internStep(task, args, node.Result)
	if err != nil {
		return nil, err
	}
	return ir.StepRef{Step: step.ID, Field: "out"}, nil
}

// resolveArgs resolves bindings first-argument-first into Raw or Reference
// arguments.
func (sc *scope) resolveArgs(bindings []builder.Binding) ([]workflow.Arg, error) {
	args := make([]workflow.Arg, 0, len(bindings))
	for _, binding := range bindings {
		arg, err := sc.resolveArg(binding)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func (sc *scope) resolveArg(binding builder.Binding) (workflow.Arg, error) {
	switch value := binding.Value.(type) {
	case builder.Literal:
		converted, err := ir.FromGo(value.Value)
		if err != nil {
			return workflow.Arg{}, &ConstructError{
				Code:    ErrCodeUnsupportedArgument,
				Message: fmt.Sprintf("argument %q is not serializable", binding.Name),
				Subject: fmt.Sprintf("%T", value.Value),
				Err:     err,
			}
		}
		return workflow.Arg{Name: binding.Name, Raw: &ir.Raw{Value: converted}}, nil

	case *builder.CallNode:
		ref, err := sc.resolveNode(value)
		if err != nil {
			return workflow.Arg{}, err
		}
		return workflow.Arg{Name: binding.Name, Ref: ref}, nil

	case builder.FieldOf:
		ref, err := sc.resolveNode(value.Node)
		if err != nil {
			return workflow.Arg{}, err
		}
		stepRef, ok := ref.(ir.StepRef)
		if !ok {
			return workflow.Arg{}, constructErrf(ErrCodeUnsupportedArgument, binding.Name,
				"field %q selected on a non-step value", value.Field)
		}
		step, found := sc.wf.Step(stepRef.Step)
		if found {
			if _, hasField := step.OutputField(value.Field); !hasField {
				return workflow.Arg{}, constructErrf(ErrCodeUnsupportedArgument, binding.Name,
					"step %s declares no output field %q", stepRef.Step, value.Field)
			}
		}
		return workflow.Arg{Name: binding.Name, Ref: ir.StepRef{Step: stepRef.Step, Field: value.Field}}, nil

	case builder.ParamBinding:
		ref, err := sc.resolveParam(value)
		if err != nil {
			return workflow.Arg{}, err
		}
		return workflow.Arg{Name: binding.Name, Ref: ref}, nil
	}

	return workflow.Arg{}, constructErrf(ErrCodeUnsupportedArgument, binding.Name,
		"argument type %T is not a literal, call, or captured parameter", binding.Value)
}

// resolveParam registers a captured free variable on first sighting and
// rejects a conflicting second sighting.
func (sc *scope) resolveParam(pb builder.ParamBinding) (ir.Reference, error) {
	if ref, ok := sc.boundParams[pb.Name]; ok {
		sc.usedBindings[pb.Name] = true
		return ref, nil
	}

	param := &ir.Parameter{Name: pb.Name, Type: pb.Type}
	if pb.HasDef {
		def, err := ir.FromGo(pb.Default)
		if err != nil {
			return nil, &ConstructError{
				Code:    ErrCodeUnsupportedArgument,
				Message: fmt.Sprintf("default for parameter %q is not serializable", pb.Name),
				Subject: fmt.Sprintf("%T", pb.Default),
				Err:     err,
			}
		}
		param.Default = def
		if param.Type == "" {
			param.Type = ir.TypeTagOf(def)
		}
	}

	if err := sc.wf.AddParameter(param); err != nil {
		return nil, &ConstructError{
			Code:    ErrCodeParamConflict,
			Message: "parameter redefined with conflicting type or default",
			Subject: pb.Name,
			Err:     err,
		}
	}
	return ir.ParamRef{Name: pb.Name}, nil
}

// registerTask resolves a task to the scope's canonical instance, creating
// it on first sighting.
func (sc *scope) registerTask(task *ir.Task) (*ir.Task, error) {
	existing, ok := sc.tasks[task.Name]
	if !ok {
		sc.tasks[task.Name] = task
		return task, nil
	}
	if !existing.Equal(task) {
		return nil, constructErrf(ErrCodeTaskConflict, task.Name,
			"two distinct callables claim the same task name")
	}
	return existing, nil
}

// internStep deduplicates by content fingerprint within this scope, or
// creates and registers a new step.
func (sc *scope) internStep(task *ir.Task, args []workflow.Arg, result builder.ResultType) (*workflow.Step, error) {
	names := make([]string, len(args))
	identities := make([]string, len(args))
	for i, arg := range args {
		names[i] = arg.Name
		identity, err := argIdentity(arg)
		if err != nil {
			return nil, constructErrf(ErrCodeUnsupportedArgument, arg.Name, "%v", err)
		}
		identities[i] = identity
	}

	fp, err := ir.StepFingerprint(task, names, identities)
	if err != nil {
		return nil, constructErrf(ErrCodeUnsupportedArgument, task.Name, "%v", err)
	}

	if existing, ok := sc.byFingerprint[fp]; ok {
		return existing, nil
	}

	step := &workflow.Step{
		ID:      task.Name + "-" + fp,
		Task:    task,
		Args:    args,
		Outputs: outputFields(result),
	}
	if err := sc.wf.AddStep(step); err != nil {
		return nil, constructErrf(ErrCodeScopeEscape, step.ID, "%v", err)
	}
	sc.byFingerprint[fp] = step
	return step, nil
}

func argIdentity(arg workflow.Arg) (string, error) {
	if arg.IsRef() {
		return ir.ArgIdentity(arg.Ref)
	}
	if arg.Raw == nil {
		return "", fmt.Errorf("argument %q bound to nothing", arg.Name)
	}
	return ir.ArgIdentity(*arg.Raw)
}

// outputFields derives the declared output field list from a result type.
// Every declared field is kept even when only some are consumed; pruning is
// per argument edge, never per output declaration.
func outputFields(result builder.ResultType) []workflow.Field {
	if result.IsRecord() {
		fields := make([]workflow.Field, len(result.Fields))
		for i, f := range result.Fields {
			fields[i] = workflow.Field{Name: f.Name, Type: f.Type}
		}
		return fields
	}
	tag := result.Tag
	if tag == "" {
		tag = ir.TypeInt
	}
	return []workflow.Field{{Name: "out", Type: tag}}
}
