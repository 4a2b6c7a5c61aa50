package program

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skeinworks/skein/internal/builder"
	"github.com/skeinworks/skein/internal/graph"
	"github.com/skeinworks/skein/internal/ir"
)

func compileString(t *testing.T, src string) (*Program, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return Compile(v)
}

const chainProgram = `
task: increment: {
	target: "lib.extra.increment"
	params: num: {type: "int"}
	result: {type: "int"}
}
task: sum: {
	target: "lib.extra.sum"
	params: {
		left: {type: "int"}
		right: {type: "int"}
	}
	result: {type: "int"}
}
main: {
	task: "sum"
	args: {
		left: {call: {task: "increment", args: {num: 1}}}
		right: {call: {task: "increment", args: {num: 5}}}
	}
}
`

func TestCompile_Chain(t *testing.T) {
	prog, err := compileString(t, chainProgram)
	require.NoError(t, err)

	require.Len(t, prog.Tasks, 2)
	assert.Equal(t, "lib.extra.increment", prog.Tasks["increment"].Target)

	root := prog.Root
	require.NotNil(t, root)
	assert.Equal(t, "sum", root.Task.Name)
	assert.Equal(t, builder.KindTask, root.Kind)
	require.Len(t, root.Bindings, 2)
	assert.Equal(t, "left", root.Bindings[0].Name)

	left, ok := root.Bindings[0].Value.(*builder.CallNode)
	require.True(t, ok)
	assert.Equal(t, "increment", left.Task.Name)
	lit, ok := left.Bindings[0].Value.(builder.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(1), lit.Value)
}

func TestCompile_FeedsGraphConstruction(t *testing.T) {
	prog, err := compileString(t, chainProgram)
	require.NoError(t, err)

	wf, err := graph.Build(prog.Root, graph.Options{SimplifyIDs: true})
	require.NoError(t, err)
	assert.Len(t, wf.Steps(), 3)
}

func TestCompile_ParamArgument(t *testing.T) {
	prog, err := compileString(t, `
task: increment: {
	target: "lib.extra.increment"
	params: num: {type: "int"}
	result: {type: "int"}
}
main: {
	task: "increment"
	args: num: {param: {name: "INPUT_NUM", type: "int", default: 3}}
}
`)
	require.NoError(t, err)

	pb, ok := prog.Root.Bindings[0].Value.(builder.ParamBinding)
	require.True(t, ok)
	assert.Equal(t, "INPUT_NUM", pb.Name)
	assert.Equal(t, "int", pb.Type)
	assert.True(t, pb.HasDef)
	assert.Equal(t, int64(3), pb.Default)
}

func TestCompile_RecordResultAndFieldSelection(t *testing.T) {
	prog, err := compileString(t, `
task: split: {
	target: "lib.extra.split"
	params: num: {type: "int"}
	result: fields: {first: "int", second: "int"}
}
task: increment: {
	target: "lib.extra.increment"
	params: num: {type: "int"}
	result: {type: "int"}
}
main: {
	task: "increment"
	args: num: {call: {task: "split", args: {num: 5}}, field: "first"}
}
`)
	require.NoError(t, err)

	sel, ok := prog.Root.Bindings[0].Value.(builder.FieldOf)
	require.True(t, ok)
	assert.Equal(t, "first", sel.Field)
	assert.True(t, sel.Node.Result.IsRecord())
	assert.Equal(t, ir.TypeInt, sel.Node.Result.Fields[0].Type)
}

func TestCompile_SubworkflowKind(t *testing.T) {
	prog, err := compileString(t, `
task: increment: {
	target: "lib.extra.increment"
	params: num: {type: "int"}
	result: {type: "int"}
}
task: rotate: {
	target: "lib.rotate"
	params: num: {type: "int"}
	result: {type: "int"}
}
main: {
	task: "rotate"
	kind: "subworkflow"
	args: num: 3
	body: {
		task: "increment"
		args: num: {param: {name: "num", type: "int"}}
	}
}
`)
	require.NoError(t, err)
	assert.Equal(t, builder.KindBoundary, prog.Root.Kind)
	require.NotNil(t, prog.Root.Body)
	assert.Equal(t, "increment", prog.Root.Body.Task.Name)
}

func TestCompile_TaskDeclaredResultUsed(t *testing.T) {
	prog, err := compileString(t, `
task: split: {
	target: "lib.extra.split"
	params: num: {type: "int"}
	result: fields: {first: "int", second: "int"}
}
main: {
	task: "split"
	args: num: 5
}
`)
	require.NoError(t, err)
	assert.True(t, prog.Root.Result.IsRecord())
}

func TestCompile_Errors(t *testing.T) {
	cases := map[string]string{
		"missing main": `
task: t: {target: "lib.t"}
`,
		"undeclared task": `
main: {task: "ghost"}
`,
		"missing target": `
task: t: {params: num: {type: "int"}}
main: {task: "t"}
`,
		"unknown kind": `
task: t: {target: "lib.t"}
main: {task: "t", kind: "mystery", body: {task: "t"}}
`,
		"kind without body": `
task: t: {target: "lib.t"}
main: {task: "t", kind: "nested"}
`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := compileString(t, src)
			require.Error(t, err)
			var ce *CompileError
			assert.ErrorAs(t, err, &ce)
		})
	}
}
