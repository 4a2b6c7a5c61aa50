package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_Deterministic(t *testing.T) {
	obj := Object{"a": Int(1), "b": String("x")}
	first, err := Fingerprint(DomainTask, obj)
	require.NoError(t, err)
	second, err := Fingerprint(DomainTask, obj)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // hex-encoded SHA-256
}

func TestFingerprint_DomainSeparation(t *testing.T) {
	obj := Object{"a": Int(1)}
	taskFP := MustFingerprint(DomainTask, obj)
	stepFP := MustFingerprint(DomainStep, obj)
	assert.NotEqual(t, taskFP, stepFP)
}

func TestFingerprint_NullRejected(t *testing.T) {
	_, err := Fingerprint(DomainStep, Object{"k": Null{}})
	assert.Error(t, err)
}

func TestStepFingerprint_ArgOrderMatters(t *testing.T) {
	task := &Task{Name: "sum", Target: "lib.sum"}

	forward, err := StepFingerprint(task, []string{"left", "right"}, []string{"raw:int|1", "raw:int|2"})
	require.NoError(t, err)
	reversed, err := StepFingerprint(task, []string{"right", "left"}, []string{"raw:int|2", "raw:int|1"})
	require.NoError(t, err)
	assert.NotEqual(t, forward, reversed)
}

func TestStepFingerprint_SameInputsCollide(t *testing.T) {
	task := &Task{Name: "increment", Target: "lib.increment"}

	first, err := StepFingerprint(task, []string{"num"}, []string{"raw:int|3"})
	require.NoError(t, err)
	second, err := StepFingerprint(task, []string{"num"}, []string{"raw:int|3"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStepFingerprint_TaskIdentityMatters(t *testing.T) {
	a := &Task{Name: "increment", Target: "lib.increment"}
	b := &Task{Name: "increment", Target: "other.increment"}

	fpA, err := StepFingerprint(a, []string{"num"}, []string{"raw:int|3"})
	require.NoError(t, err)
	fpB, err := StepFingerprint(b, []string{"num"}, []string{"raw:int|3"})
	require.NoError(t, err)
	assert.NotEqual(t, fpA, fpB)
}

func TestStepFingerprint_MismatchedLengths(t *testing.T) {
	task := &Task{Name: "sum", Target: "lib.sum"}
	_, err := StepFingerprint(task, []string{"left"}, nil)
	assert.Error(t, err)
}
