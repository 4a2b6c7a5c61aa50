// Package cwl renders workflows as CWL-style documents: a structured
// renderer emitting inputs, outputs, and steps sections per (sub)workflow.
package cwl

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/skeinworks/skein/internal/ir"
	"github.com/skeinworks/skein/internal/render"
	"github.com/skeinworks/skein/internal/workflow"
)

const cwlVersion = "1.2"

// Renderer implements render.StructuredRenderer.
type Renderer struct{}

// New creates the CWL renderer.
func New() *Renderer {
	return &Renderer{}
}

// Name implements render.Renderer.
func (*Renderer) Name() string { return "cwl" }

// DefaultConfig declares the recognized options.
//
//   - allow_complex_types: permit list/record literals as inline defaults
//   - factories_as_params: promote complex literals to workflow inputs
//     instead of rejecting them
//   - sort_steps: emit steps sorted by display id instead of
//     first-reachability order
//   - inline_defaults: embed raw arguments as literal defaults; when false
//     every raw argument becomes a synthetic workflow input
func (*Renderer) DefaultConfig() render.Config {
	return render.Config{
		"allow_complex_types": false,
		"factories_as_params": false,
		"sort_steps":          false,
		"inline_defaults":     true,
	}
}

// RenderWorkflow implements render.StructuredRenderer.
func (r *Renderer) RenderWorkflow(wf *workflow.Workflow, cfg render.Config) (*yaml.Node, error) {
	inputs, promoted, err := renderInputs(wf, cfg)
	if err != nil {
		return nil, err
	}
	outputs, err := renderOutputs(wf)
	if err != nil {
		return nil, err
	}
	steps, err := renderSteps(wf, cfg, promoted)
	if err != nil {
		return nil, err
	}

	return render.Map(
		render.Str("class"), render.Str("Workflow"),
		render.Str("cwlVersion"), render.Str(cwlVersion),
		render.Str("inputs"), inputs,
		render.Str("outputs"), outputs,
		render.Str("steps"), steps,
	), nil
}

// promotedKey identifies a raw argument lifted to a workflow input.
type promotedKey struct {
	stepID string
	arg    string
}

// renderInputs emits one entry per parameter, plus synthetic entries for
// promoted raw arguments. It returns the promotion table for renderSteps.
func renderInputs(wf *workflow.Workflow, cfg render.Config) (*yaml.Node, map[promotedKey]string, error) {
	pairs := make([]*yaml.Node, 0, 2*len(wf.Parameters()))
	for _, param := range wf.Parameters() {
		entry := []*yaml.Node{
			render.Str("label"), render.Str(param.Name),
			render.Str("type"), render.Str(render.TypeName(param.Type)),
		}
		if param.Default != nil {
			entry = append(entry, render.Str("default"), render.ValueNode(param.Default))
		}
		pairs = append(pairs, render.Str(param.Name), render.Map(entry...))
	}

	promoted := make(map[promotedKey]string)
	inlineDefaults := cfg.Bool("inline_defaults")
	factoriesAsParams := cfg.Bool("factories_as_params")

	for _, step := range wf.Steps() {
		for _, arg := range step.Args {
			if arg.IsRef() || arg.Raw == nil {
				continue
			}
			complexType := isComplex(arg.Raw.Value)
			if inlineDefaults && !(factoriesAsParams && complexType) {
				continue
			}
			name := wf.DisplayID(step.ID) + "-" + arg.Name
			promoted[promotedKey{stepID: step.ID, arg: arg.Name}] = name

			node, err := render.RawNode(*arg.Raw, complexType || cfg.Bool("allow_complex_types"))
			if err != nil {
				return nil, nil, err
			}
			pairs = append(pairs,
				render.Str(name),
				render.Map(
					render.Str("label"), render.Str(name),
					render.Str("type"), render.Str(render.TypeName(arg.Raw.TypeTag())),
					render.Str("default"), node,
				))
		}
	}

	return render.Map(pairs...), promoted, nil
}

func renderOutputs(wf *workflow.Workflow) (*yaml.Node, error) {
	if wf.ResultRaw != nil {
		return render.Map(
			render.Str("out"), render.Map(
				render.Str("label"), render.Str("out"),
				render.Str("type"), render.Str(render.TypeName(wf.ResultRaw.TypeTag())),
				render.Str("default"), render.ValueNode(wf.ResultRaw.Value),
			),
		), nil
	}
	if wf.Result == nil {
		return render.Map(), nil
	}

	stepRef, isStep := wf.Result.(ir.StepRef)
	if isStep && len(wf.ResultFields) > 1 {
		// A record result declares one labeled output per field.
		pairs := make([]*yaml.Node, 0, 2*len(wf.ResultFields))
		for _, field := range wf.ResultFields {
			source, err := render.Source(wf, ir.StepRef{Step: stepRef.Step, Field: field.Name})
			if err != nil {
				return nil, err
			}
			pairs = append(pairs,
				render.Str(field.Name),
				render.Map(
					render.Str("label"), render.Str(field.Name),
					render.Str("outputSource"), render.Str(source),
					render.Str("type"), render.Str(render.TypeName(field.Type)),
				))
		}
		return render.Map(pairs...), nil
	}

	source, err := render.Source(wf, wf.Result)
	if err != nil {
		return nil, err
	}
	name := "out"
	typeTag := ir.TypeInt
	if len(wf.ResultFields) == 1 {
		name = wf.ResultFields[0].Name
		typeTag = wf.ResultFields[0].Type
	}
	return render.Map(
		render.Str(name), render.Map(
			render.Str("label"), render.Str(name),
			render.Str("outputSource"), render.Str(source),
			render.Str("type"), render.Str(render.TypeName(typeTag)),
		),
	), nil
}

func renderSteps(wf *workflow.Workflow, cfg render.Config, promoted map[promotedKey]string) (*yaml.Node, error) {
	steps := wf.Steps()
	if cfg.Bool("sort_steps") {
		sorted := make([]*workflow.Step, len(steps))
		copy(sorted, steps)
		sort.Slice(sorted, func(i, j int) bool {
			return wf.DisplayID(sorted[i].ID) < wf.DisplayID(sorted[j].ID)
		})
		steps = sorted
	}

	pairs := make([]*yaml.Node, 0, 2*len(steps))
	for _, step := range steps {
		stepNode, err := renderStep(wf, cfg, step, promoted)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, render.Str(wf.DisplayID(step.ID)), stepNode)
	}
	return render.Map(pairs...), nil
}

func renderStep(wf *workflow.Workflow, cfg render.Config, step *workflow.Step, promoted map[promotedKey]string) (*yaml.Node, error) {
	inPairs := make([]*yaml.Node, 0, 2*len(step.Args))
	for _, arg := range step.Args {
		var entry *yaml.Node
		switch {
		case arg.IsRef():
			source, err := render.Source(wf, arg.Ref)
			if err != nil {
				return nil, err
			}
			entry = render.Map(render.Str("source"), render.Str(source))
		default:
			if input, ok := promoted[promotedKey{stepID: step.ID, arg: arg.Name}]; ok {
				entry = render.Map(render.Str("source"), render.Str(input))
				break
			}
			node, err := render.RawNode(*arg.Raw, cfg.Bool("allow_complex_types"))
			if err != nil {
				return nil, err
			}
			entry = render.Map(render.Str("default"), node)
		}
		inPairs = append(inPairs, render.Str(arg.Name), entry)
	}

	var outNode *yaml.Node
	if step.MultiOutput() {
		// All declared fields render, consumed or not.
		outPairs := make([]*yaml.Node, 0, 2*len(step.Outputs))
		for _, field := range step.Outputs {
			outPairs = append(outPairs,
				render.Str(field.Name),
				render.Map(
					render.Str("label"), render.Str(field.Name),
					render.Str("type"), render.Str(render.TypeName(field.Type)),
				))
		}
		outNode = render.Map(outPairs...)
	} else {
		outNode = render.FlowSeq(render.Str("out"))
	}

	return render.Map(
		render.Str("run"), render.Str(step.Task.Name),
		render.Str("in"), render.Map(inPairs...),
		render.Str("out"), outNode,
	), nil
}

func isComplex(v ir.Value) bool {
	switch v.(type) {
	case ir.Array, ir.Object:
		return true
	}
	return false
}
