package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skeinworks/skein/internal/ir"
)

func TestCall_HandlesAreUnique(t *testing.T) {
	task := &ir.Task{Name: "increment", Target: "lib.increment"}

	// Identical invocations still get distinct handles; merging is the
	// construction engine's job, by fingerprint.
	a := Call(task, Scalar(ir.TypeInt), Lit("num", int64(1)))
	b := Call(task, Scalar(ir.TypeInt), Lit("num", int64(1)))
	assert.NotEqual(t, a.Handle(), b.Handle())
	assert.NotEmpty(t, a.Handle())
}

func TestConstructors_SetKindAndResult(t *testing.T) {
	task := &ir.Task{Name: "wrap", Target: "lib.wrap"}
	inner := Call(&ir.Task{Name: "inc", Target: "lib.inc"}, Scalar(ir.TypeInt))

	call := Call(task, Scalar(ir.TypeString))
	assert.Equal(t, KindTask, call.Kind)
	assert.Equal(t, ir.TypeString, call.Result.Tag)
	assert.Nil(t, call.Body)

	nested := Nested(task, inner)
	assert.Equal(t, KindNested, nested.Kind)
	assert.Same(t, inner, nested.Body)
	// A composition's result is its body's result.
	assert.Equal(t, ir.TypeInt, nested.Result.Tag)

	boundary := Boundary(task, inner)
	assert.Equal(t, KindBoundary, boundary.Kind)
	assert.Same(t, inner, boundary.Body)
}

func TestConstructors_TolerateNilBody(t *testing.T) {
	task := &ir.Task{Name: "wrap", Target: "lib.wrap"}

	// Construction must not crash on a missing body; graph.Build is where
	// the empty composition is rejected.
	nested := Nested(task, nil)
	assert.Nil(t, nested.Body)
	assert.Equal(t, ResultType{}, nested.Result)

	boundary := Boundary(task, nil)
	assert.Nil(t, boundary.Body)
	assert.Equal(t, ResultType{}, boundary.Result)
}

func TestBindings(t *testing.T) {
	node := Call(&ir.Task{Name: "inc", Target: "lib.inc"}, Scalar(ir.TypeInt))

	lit := Lit("num", int64(3))
	assert.Equal(t, Literal{Value: int64(3)}, lit.Value)

	bound := Bind("left", node)
	assert.Same(t, node, bound.Value.(*CallNode))

	field := BindField("left", node, "first")
	sel := field.Value.(FieldOf)
	assert.Same(t, node, sel.Node)
	assert.Equal(t, "first", sel.Field)

	param := Param("num", "INPUT", ir.TypeInt)
	pb := param.Value.(ParamBinding)
	assert.Equal(t, "INPUT", pb.Name)
	assert.False(t, pb.HasDef)

	withDef := ParamDefault("num", "INPUT", ir.TypeInt, int64(3))
	pb = withDef.Value.(ParamBinding)
	require.True(t, pb.HasDef)
	assert.Equal(t, int64(3), pb.Default)
}

func TestResultType(t *testing.T) {
	scalar := Scalar(ir.TypeInt)
	assert.False(t, scalar.IsRecord())

	record := Record(
		ir.ParamSpec{Name: "first", Type: ir.TypeInt},
		ir.ParamSpec{Name: "second", Type: ir.TypeInt},
	)
	assert.True(t, record.IsRecord())
	assert.Len(t, record.Fields, 2)
}
