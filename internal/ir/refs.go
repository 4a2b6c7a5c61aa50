package ir

import "fmt"

// Reference is a symbolic pointer to another step's named output field or to
// a parameter. It never owns its target. Two references are equal iff their
// keys are equal, regardless of how they were constructed.
type Reference interface {
	// Key returns the resolved (step, field) or parameter pair as a string.
	Key() string
	reference() // Sealed
}

// StepRef points at a named output field of a step.
type StepRef struct {
	Step  string // step identifier within the owning workflow
	Field string // output field, "out" unless the result is a record
}

func (StepRef) reference() {}

// Key implements Reference.
func (r StepRef) Key() string {
	return fmt.Sprintf("step:%s/%s", r.Step, r.Field)
}

// ParamRef points at a workflow parameter by name.
type ParamRef struct {
	Name string
}

func (ParamRef) reference() {}

// Key implements Reference.
func (r ParamRef) Key() string {
	return "param:" + r.Name
}

// ArgIdentity returns the deduplication identity of a step argument, which
// is either a Raw or a Reference.
func ArgIdentity(arg any) (string, error) {
	switch v := arg.(type) {
	case Raw:
		return v.Identity(), nil
	case Reference:
		return v.Key(), nil
	}
	return "", fmt.Errorf("argument is neither raw nor reference: %T", arg)
}
