package snakemake

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skeinworks/skein/internal/builder"
	"github.com/skeinworks/skein/internal/graph"
	"github.com/skeinworks/skein/internal/ir"
	"github.com/skeinworks/skein/internal/render"
	"github.com/skeinworks/skein/internal/testutil"
)

func renderRoot(t *testing.T, tree *builder.CallNode, overrides render.Config) string {
	t.Helper()
	wf, err := graph.Build(tree, graph.Options{SimplifyIDs: true})
	require.NoError(t, err)

	docs, err := render.RenderRaw(New(), wf, overrides)
	require.NoError(t, err)
	return docs[render.RootKey]
}

func assertGolden(t *testing.T, name, text string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(text))
}

func TestRenderWorkflowRaw_Chain(t *testing.T) {
	assertGolden(t, "chain", renderRoot(t, testutil.ChainTree(), nil))
}

func TestRenderWorkflowRaw_Parameter(t *testing.T) {
	assertGolden(t, "parameter", renderRoot(t, testutil.ParamTree(), nil))
}

func TestRenderWorkflowRaw_StepRefsBecomeRuleInputs(t *testing.T) {
	text := renderRoot(t, testutil.ChainTree(), nil)

	// Display ids use underscores, and cross-rule references address the
	// producing rule's output token in both input and params.
	assert.Contains(t, text, "rule sum_1:")
	assert.Contains(t, text, "left=rules.increment_1.output.output_file")
	assert.Contains(t, text, "right=rules.increment_2.output.output_file")
}

func TestRenderWorkflowRaw_ParamRefsReadConfig(t *testing.T) {
	text := renderRoot(t, testutil.ParamTree(), nil)
	assert.Contains(t, text, `num=config["INPUT_NUM"]`)
	assert.NotContains(t, text, "input:")
}

func TestRenderWorkflowRaw_OutputFileArgument(t *testing.T) {
	task := &ir.Task{
		Name:   "save",
		Target: "lib.io.save",
		Params: []ir.ParamSpec{
			{Name: "num", Type: ir.TypeInt},
			{Name: "output_file", Type: ir.TypeString},
		},
	}
	tree := builder.Call(task, testutil.IntResult(),
		builder.Lit("num", int64(1)),
		builder.Lit("output_file", "result.txt"),
	)
	text := renderRoot(t, tree, nil)
	assert.Contains(t, text, `output_file="result.txt"`)
	assert.NotContains(t, text, "OUTPUT_FILE")
}

func TestRenderWorkflowRaw_SubworkflowsRenderSeparately(t *testing.T) {
	wf, err := graph.Build(testutil.RotateBoundary(builder.Lit("num", int64(3))), graph.Options{SimplifyIDs: true})
	require.NoError(t, err)

	docs, err := render.RenderRaw(New(), wf, nil)
	require.NoError(t, err)

	require.Contains(t, docs, "rotate")
	assert.Contains(t, docs[render.RootKey], "rule rotate_1:")
	assert.Contains(t, docs["rotate"], "rule sum_1:")
	assert.Contains(t, docs["rotate"], "rule mod10_1:")
}

func TestRenderWorkflowRaw_ComplexLiteralGate(t *testing.T) {
	tree := testutil.Increment(builder.Lit("num", []any{int64(1), int64(2)}))
	wf, err := graph.Build(tree, graph.Options{})
	require.NoError(t, err)

	_, err = render.RenderRaw(New(), wf, nil)
	assert.True(t, render.IsTypeError(err))

	docs, err := render.RenderRaw(New(), wf, render.Config{"allow_complex_types": true})
	require.NoError(t, err)
	assert.Contains(t, docs[render.RootKey], "num=[1, 2]")
}

func TestPythonLiteral(t *testing.T) {
	cases := []struct {
		in   ir.Value
		want string
	}{
		{ir.String("x"), `"x"`},
		{ir.Int(-4), "-4"},
		{ir.Float(1.5), "1.5"},
		{ir.Bool(true), "True"},
		{ir.Bool(false), "False"},
		{ir.Null{}, "None"},
	}
	for _, tc := range cases {
		got, err := pythonLiteral(tc.in, false)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	got, err := pythonLiteral(ir.Object{"b": ir.Int(2), "a": ir.Int(1)}, true)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1, "b": 2}`, got)

	_, err = pythonLiteral(ir.Object{"a": ir.Int(1)}, false)
	assert.True(t, render.IsTypeError(err))
}
