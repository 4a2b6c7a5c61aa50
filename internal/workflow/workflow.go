// Package workflow holds the canonical DAG container produced by graph
// construction and consumed by renderers. A Workflow is immutable after
// construction completes; it lives for a single construct-to-render pass.
package workflow

import (
	"errors"
	"fmt"

	"github.com/skeinworks/skein/internal/ir"
)

// Field is one declared output field of a step.
type Field struct {
	Name string
	Type string
}

// Arg is one bound argument of a step: exactly one of Raw or Ref is set.
type Arg struct {
	Name string
	Raw  *ir.Raw
	Ref  ir.Reference
}

// IsRef reports whether the argument is a reference.
func (a Arg) IsRef() bool {
	return a.Ref != nil
}

// Step is one concrete invocation of a Task inside a Workflow. The ID is
// the content fingerprint over the task identity and ordered argument
// identities; display names may be simplified without affecting it.
type Step struct {
	ID      string
	Task    *ir.Task
	Args    []Arg // ordered, first-argument-first
	Outputs []Field
}

// Arg looks up a bound argument by name.
func (s *Step) Arg(name string) (Arg, bool) {
	for _, a := range s.Args {
		if a.Name == name {
			return a, true
		}
	}
	return Arg{}, false
}

// OutputField returns the named output field, or false if the step does not
// declare it.
func (s *Step) OutputField(name string) (Field, bool) {
	for _, f := range s.Outputs {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// MultiOutput reports whether the step declares structured named outputs
// rather than the single implicit "out" field.
func (s *Step) MultiOutput() bool {
	return len(s.Outputs) != 1 || s.Outputs[0].Name != "out"
}

// LookupError reports a reference that does not belong to the workflow it
// was resolved against. Construction guarantees well-formedness, so hitting
// this during rendering indicates a programming error.
type LookupError struct {
	Ref ir.Reference
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("reference %s does not resolve in this workflow", e.Ref.Key())
}

// Workflow is the deduplicated DAG of steps plus its external surface:
// parameters, a result, and named subworkflows.
type Workflow struct {
	steps    []*Step
	index    map[string]*Step
	params   []*ir.Parameter
	paramIdx map[string]*ir.Parameter

	// Result is the externally-visible output: a Reference in the usual
	// case, or a Raw when the traced result was a bare literal.
	Result ir.Reference
	// ResultRaw is set instead of Result for literal results.
	ResultRaw *ir.Raw
	// ResultType carries the declared output field types of the result
	// step, keyed by field, for renderers that label outputs.
	ResultFields []Field

	subNames     []string
	subworkflows map[string]*Workflow

	remap map[string]string
}

// New creates an empty workflow.
func New() *Workflow {
	return &Workflow{
		index:        make(map[string]*Step),
		paramIdx:     make(map[string]*ir.Parameter),
		subworkflows: make(map[string]*Workflow),
	}
}

// AddStep appends a step. The caller (the construction engine) is
// responsible for deduplication; adding a duplicate ID is an error.
func (w *Workflow) AddStep(s *Step) error {
	if _, ok := w.index[s.ID]; ok {
		return fmt.Errorf("step %s already present", s.ID)
	}
	w.steps = append(w.steps, s)
	w.index[s.ID] = s
	return nil
}

// Step returns the step with the given identifier.
func (w *Workflow) Step(id string) (*Step, bool) {
	s, ok := w.index[id]
	return s, ok
}

// Steps returns the steps in insertion (first-reachability) order.
func (w *Workflow) Steps() []*Step {
	return w.steps
}

// AddParameter registers a parameter, rejecting conflicting redefinition.
func (w *Workflow) AddParameter(p *ir.Parameter) error {
	if existing, ok := w.paramIdx[p.Name]; ok {
		if existing.Conflicts(p) {
			return fmt.Errorf("parameter %q redefined with conflicting type or default", p.Name)
		}
		return nil
	}
	w.params = append(w.params, p)
	w.paramIdx[p.Name] = p
	return nil
}

// Parameter returns the named parameter.
func (w *Workflow) Parameter(name string) (*ir.Parameter, bool) {
	p, ok := w.paramIdx[name]
	return p, ok
}

// Parameters returns parameters in first-discovery order.
func (w *Workflow) Parameters() []*ir.Parameter {
	return w.params
}

// DropParameter removes a parameter registered while resolving a branch
// that turned out to be unreachable. Used only before the workflow is
// sealed.
func (w *Workflow) DropParameter(name string) {
	if _, ok := w.paramIdx[name]; !ok {
		return
	}
	delete(w.paramIdx, name)
	for i, p := range w.params {
		if p.Name == name {
			w.params = append(w.params[:i], w.params[i+1:]...)
			break
		}
	}
}

// AddSubworkflow registers a named child workflow.
func (w *Workflow) AddSubworkflow(name string, sub *Workflow) error {
	if _, ok := w.subworkflows[name]; ok {
		return fmt.Errorf("subworkflow %q already registered", name)
	}
	w.subNames = append(w.subNames, name)
	w.subworkflows[name] = sub
	return nil
}

// Subworkflow returns the named child workflow.
func (w *Workflow) Subworkflow(name string) (*Workflow, bool) {
	sub, ok := w.subworkflows[name]
	return sub, ok
}

// SubworkflowNames returns child names in registration order.
func (w *Workflow) SubworkflowNames() []string {
	return w.subNames
}

// Resolve returns the target of a reference: a *Step for step references,
// a *ir.Parameter for parameter references. References that do not belong
// to this workflow fail with a LookupError.
func (w *Workflow) Resolve(ref ir.Reference) (any, error) {
	switch r := ref.(type) {
	case ir.StepRef:
		step, ok := w.index[r.Step]
		if !ok {
			return nil, &LookupError{Ref: ref}
		}
		if _, ok := step.OutputField(r.Field); !ok {
			// "out" is the whole-record alias for multi-output steps.
			if r.Field != "out" || !step.MultiOutput() {
				return nil, &LookupError{Ref: ref}
			}
		}
		return step, nil
	case ir.ParamRef:
		param, ok := w.paramIdx[r.Name]
		if !ok {
			return nil, &LookupError{Ref: ref}
		}
		return param, nil
	}
	return nil, &LookupError{Ref: ref}
}

// Validate checks the container invariant: every reference inside any
// step's arguments or the result resolves within this workflow.
func (w *Workflow) Validate() error {
	for _, step := range w.steps {
		for _, arg := range step.Args {
			if !arg.IsRef() {
				continue
			}
			if _, err := w.Resolve(arg.Ref); err != nil {
				return fmt.Errorf("step %s argument %s: %w", step.ID, arg.Name, err)
			}
		}
	}
	if w.Result != nil {
		if _, err := w.Resolve(w.Result); err != nil {
			return fmt.Errorf("result: %w", err)
		}
	}
	return nil
}

// IsLookupError reports whether err is a reference lookup failure.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}
