package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_Equal(t *testing.T) {
	a := &Task{Name: "increment", Target: "lib.increment"}
	b := &Task{Name: "increment", Target: "lib.increment", Params: []ParamSpec{{Name: "num"}}}
	c := &Task{Name: "increment", Target: "other.increment"}

	// Identity is name plus target; the declared signature does not count.
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestTask_IDStable(t *testing.T) {
	a := &Task{Name: "sum", Target: "lib.sum"}
	b := &Task{Name: "sum", Target: "lib.sum"}
	assert.Equal(t, a.ID(), b.ID())

	c := &Task{Name: "sum", Target: "other.sum"}
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestRaw_Identity(t *testing.T) {
	assert.Equal(t, "raw:int|3", Raw{Value: Int(3)}.Identity())
	assert.Equal(t, `raw:string|"x"`, Raw{Value: String("x")}.Identity())
	assert.Equal(t, "raw:double|1.5", Raw{Value: Float(1.5)}.Identity())

	// Same payload, different type: distinct identities.
	assert.NotEqual(t, Raw{Value: Int(1)}.Identity(), Raw{Value: Float(1)}.Identity())
}

func TestRaw_NullIdentity(t *testing.T) {
	// Null has no canonical form; it identifies by type alone and cannot
	// collide with any canonical value.
	id := Raw{Value: Null{}}.Identity()
	assert.Equal(t, "raw:!null", id)
}

func TestTypeTagOf(t *testing.T) {
	assert.Equal(t, TypeInt, TypeTagOf(Int(1)))
	assert.Equal(t, TypeDouble, TypeTagOf(Float(1)))
	assert.Equal(t, TypeString, TypeTagOf(String("")))
	assert.Equal(t, TypeBoolean, TypeTagOf(Bool(false)))
	assert.Equal(t, TypeList, TypeTagOf(Array{}))
	assert.Equal(t, TypeRecord, TypeTagOf(Object{}))
}

func TestParameter_Conflicts(t *testing.T) {
	base := &Parameter{Name: "INPUT", Type: TypeInt, Default: Int(3)}

	same := &Parameter{Name: "INPUT", Type: TypeInt, Default: Int(3)}
	assert.False(t, base.Conflicts(same))

	otherDefault := &Parameter{Name: "INPUT", Type: TypeInt, Default: Int(4)}
	assert.True(t, base.Conflicts(otherDefault))

	otherType := &Parameter{Name: "INPUT", Type: TypeString, Default: Int(3)}
	assert.True(t, base.Conflicts(otherType))

	noDefault := &Parameter{Name: "INPUT", Type: TypeInt}
	assert.True(t, base.Conflicts(noDefault))
}

func TestReferences_Keys(t *testing.T) {
	assert.Equal(t, "step:sum-abc/out", StepRef{Step: "sum-abc", Field: "out"}.Key())
	assert.Equal(t, "param:INPUT", ParamRef{Name: "INPUT"}.Key())
}

func TestArgIdentity(t *testing.T) {
	id, err := ArgIdentity(Raw{Value: Int(3)})
	require.NoError(t, err)
	assert.Equal(t, "raw:int|3", id)

	id, err = ArgIdentity(StepRef{Step: "s", Field: "out"})
	require.NoError(t, err)
	assert.Equal(t, "step:s/out", id)

	_, err = ArgIdentity(42)
	assert.Error(t, err)
}
