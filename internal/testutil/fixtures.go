// Package testutil provides shared call-tree fixtures for construction and
// renderer tests. The task set mirrors a small arithmetic library: enough to
// exercise chaining, deduplication, parameters, record outputs, and
// subworkflow boundaries without inventing per-test vocabulary.
package testutil

import (
	"github.com/skeinworks/skein/internal/builder"
	"github.com/skeinworks/skein/internal/ir"
)

// IncrementTask returns the increment(num) task declaration.
func IncrementTask() *ir.Task {
	return &ir.Task{
		Name:   "increment",
		Target: "lib.extra.increment",
		Params: []ir.ParamSpec{{Name: "num", Type: ir.TypeInt}},
	}
}

// DoubleTask returns the double(num) task declaration.
func DoubleTask() *ir.Task {
	return &ir.Task{
		Name:   "double",
		Target: "lib.extra.double",
		Params: []ir.ParamSpec{{Name: "num", Type: ir.TypeInt}},
	}
}

// Mod10Task returns the mod10(num) task declaration.
func Mod10Task() *ir.Task {
	return &ir.Task{
		Name:   "mod10",
		Target: "lib.extra.mod10",
		Params: []ir.ParamSpec{{Name: "num", Type: ir.TypeInt}},
	}
}

// SumTask returns the sum(left, right) task declaration.
func SumTask() *ir.Task {
	return &ir.Task{
		Name:   "sum",
		Target: "lib.extra.sum",
		Params: []ir.ParamSpec{
			{Name: "left", Type: ir.TypeInt},
			{Name: "right", Type: ir.TypeInt},
		},
	}
}

// SplitTask returns the split(num) task declaration, whose result is a
// record with first and second fields.
func SplitTask() *ir.Task {
	return &ir.Task{
		Name:   "split",
		Target: "lib.extra.split",
		Params: []ir.ParamSpec{{Name: "num", Type: ir.TypeInt}},
	}
}

// SplitResult is the record result declared by split.
func SplitResult() builder.ResultType {
	return builder.Record(
		ir.ParamSpec{Name: "first", Type: ir.TypeInt},
		ir.ParamSpec{Name: "second", Type: ir.TypeInt},
	)
}

// QuarterTask returns the quarter(num) task declaration, whose result is a
// record with four fields.
func QuarterTask() *ir.Task {
	return &ir.Task{
		Name:   "quarter",
		Target: "lib.extra.quarter",
		Params: []ir.ParamSpec{{Name: "num", Type: ir.TypeInt}},
	}
}

// QuarterResult is the four-field record result declared by quarter.
func QuarterResult() builder.ResultType {
	return builder.Record(
		ir.ParamSpec{Name: "first", Type: ir.TypeInt},
		ir.ParamSpec{Name: "second", Type: ir.TypeInt},
		ir.ParamSpec{Name: "third", Type: ir.TypeInt},
		ir.ParamSpec{Name: "fourth", Type: ir.TypeInt},
	)
}

// IntResult is the scalar int result shared by the arithmetic tasks.
func IntResult() builder.ResultType {
	return builder.Scalar(ir.TypeInt)
}

// Increment builds an increment call with the given num binding.
func Increment(num builder.Binding) *builder.CallNode {
	return builder.Call(IncrementTask(), IntResult(), num)
}

// Double builds a double call with the given num binding.
func Double(num builder.Binding) *builder.CallNode {
	return builder.Call(DoubleTask(), IntResult(), num)
}

// Mod10 builds a mod10 call with the given num binding.
func Mod10(num builder.Binding) *builder.CallNode {
	return builder.Call(Mod10Task(), IntResult(), num)
}

// Sum builds a sum call over two bindings.
func Sum(left, right builder.Binding) *builder.CallNode {
	return builder.Call(SumTask(), IntResult(), left, right)
}

// Split builds a split call returning a two-field record.
func Split(num builder.Binding) *builder.CallNode {
	return builder.Call(SplitTask(), SplitResult(), num)
}

// Quarter builds a quarter call returning a four-field record.
func Quarter(num builder.Binding) *builder.CallNode {
	return builder.Call(QuarterTask(), QuarterResult(), num)
}

// ChainTree is sum(increment(1), increment(5)): two distinct increment
// steps feeding one sum.
func ChainTree() *builder.CallNode {
	return Sum(
		builder.Bind("left", Increment(builder.Lit("num", int64(1)))),
		builder.Bind("right", Increment(builder.Lit("num", int64(5)))),
	)
}

// DedupTree is sum(increment(3), increment(3)): both branches carry the
// same fingerprint and must collapse to one increment step.
func DedupTree() *builder.CallNode {
	return Sum(
		builder.Bind("left", Increment(builder.Lit("num", int64(3)))),
		builder.Bind("right", Increment(builder.Lit("num", int64(3)))),
	)
}

// ParamTree is increment(num=INPUT_NUM): a single step fed by a captured
// workflow parameter with a default of 3.
func ParamTree() *builder.CallNode {
	return Increment(builder.ParamDefault("num", "INPUT_NUM", ir.TypeInt, int64(3)))
}

// RecordTree is sum(split(5).first, split(5).second): field selections on
// one deduplicated record-producing step.
func RecordTree() *builder.CallNode {
	split := Split(builder.Lit("num", int64(5)))
	return Sum(
		builder.BindField("left", split, "first"),
		builder.BindField("right", split, "second"),
	)
}

// QuarterTree is sum(quarter(8).first, quarter(8).fourth): only two of the
// four declared fields are consumed downstream.
func QuarterTree() *builder.CallNode {
	quarter := Quarter(builder.Lit("num", int64(8)))
	return Sum(
		builder.BindField("left", quarter, "first"),
		builder.BindField("right", quarter, "fourth"),
	)
}

// RotateTask returns the rotate(num) boundary task declaration.
func RotateTask() *ir.Task {
	return &ir.Task{
		Name:   "rotate",
		Target: "lib.rotate",
		Params: []ir.ParamSpec{{Name: "num", Type: ir.TypeInt}},
	}
}

// RotateBoundary wraps mod10(sum(num, CONSTANT)) in a subworkflow boundary
// named rotate, taking num as its explicit binding. The body reaches the
// binding by name, and CONSTANT is a captured free variable that must
// bubble to the parent scope.
func RotateBoundary(num builder.Binding) *builder.CallNode {
	body := Mod10(builder.Bind("num", Sum(
		builder.Param("left", "num", ir.TypeInt),
		builder.ParamDefault("right", "CONSTANT", ir.TypeInt, int64(3)),
	)))
	return builder.Boundary(RotateTask(), body, num)
}
