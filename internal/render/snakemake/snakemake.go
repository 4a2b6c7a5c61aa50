// Package snakemake renders workflows as Snakemake-style rule files. It is
// the raw-mode implementation of the render protocol: each (sub)workflow
// becomes one pre-formatted text block of rule definitions, with executable
// import-and-call glue rather than declarative structure.
package snakemake

import (
	"fmt"
	"strings"

	"github.com/skeinworks/skein/internal/ir"
	"github.com/skeinworks/skein/internal/render"
	"github.com/skeinworks/skein/internal/workflow"
)

// outputPlaceholder stands in when a step declares no output_file argument.
const outputPlaceholder = `"OUTPUT_FILE"`

// Renderer implements render.RawRenderer.
type Renderer struct{}

// New creates the Snakemake renderer.
func New() *Renderer {
	return &Renderer{}
}

// Name implements render.Renderer.
func (*Renderer) Name() string { return "snakemake" }

// DefaultConfig declares the recognized options.
func (*Renderer) DefaultConfig() render.Config {
	return render.Config{
		"allow_complex_types": false,
	}
}

// RenderWorkflowRaw implements render.RawRenderer.
func (r *Renderer) RenderWorkflowRaw(wf *workflow.Workflow, cfg render.Config) (string, error) {
	var sb strings.Builder
	for i, step := range wf.Steps() {
		if i > 0 {
			sb.WriteString("\n")
		}
		block, err := renderRule(wf, cfg, step)
		if err != nil {
			return "", err
		}
		sb.WriteString(block)
	}
	return sb.String(), nil
}

// renderRule emits one rule block from the four per-step sub-renderers:
// input, params, output, run.
func renderRule(wf *workflow.Workflow, cfg render.Config, step *workflow.Step) (string, error) {
	name := ruleName(wf.DisplayID(step.ID))

	inputs, params, err := renderBindings(wf, cfg, step)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "rule %s:\n", name)
	writeBlock(&sb, "input", inputs)
	writeBlock(&sb, "params", params)
	writeBlock(&sb, "output", []string{"output_file=" + outputToken(step)})
	writeBlock(&sb, "run", runLines(step))
	return sb.String(), nil
}

// renderBindings splits a step's arguments into the input block (cross-rule
// references) and the params block (everything, as the run glue reads all
// bindings through params).
func renderBindings(wf *workflow.Workflow, cfg render.Config, step *workflow.Step) (inputs, params []string, err error) {
	for _, arg := range step.Args {
		switch {
		case arg.IsRef():
			switch ref := arg.Ref.(type) {
			case ir.StepRef:
				line := fmt.Sprintf("%s=rules.%s.output.output_file", arg.Name, ruleName(wf.DisplayID(ref.Step)))
				inputs = append(inputs, line)
				params = append(params, line)
			case ir.ParamRef:
				params = append(params, fmt.Sprintf("%s=config[%q]", arg.Name, ref.Name))
			}
		default:
			literal, convErr := pythonLiteral(arg.Raw.Value, cfg.Bool("allow_complex_types"))
			if convErr != nil {
				return nil, nil, convErr
			}
			params = append(params, fmt.Sprintf("%s=%s", arg.Name, literal))
		}
	}
	return inputs, params, nil
}

// runLines emits the import-and-call statement referencing the task's
// resolved module path.
func runLines(step *workflow.Step) []string {
	target := step.Task.Target
	module := ""
	if idx := strings.LastIndex(target, "."); idx > 0 {
		module = target[:idx]
	}

	call := make([]string, 0, len(step.Args))
	for _, arg := range step.Args {
		call = append(call, fmt.Sprintf("%s=params.%s", arg.Name, arg.Name))
	}
	signature := strings.Join(call, ", ")

	if module == "" {
		return []string{fmt.Sprintf("%s(%s)", step.Task.Name, signature)}
	}
	return []string{
		"import " + module,
		fmt.Sprintf("%s.%s(%s)", module, step.Task.Name, signature),
	}
}

// writeBlock writes one indented block, separating entries with trailing
// commas except the last. Empty blocks are omitted entirely.
func writeBlock(sb *strings.Builder, label string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(sb, "    %s:\n", label)
	separator := ","
	if label == "run" {
		separator = ""
	}
	for i, line := range lines {
		sb.WriteString("        ")
		sb.WriteString(line)
		if separator != "" && i < len(lines)-1 {
			sb.WriteString(separator)
		}
		sb.WriteString("\n")
	}
}

func outputToken(step *workflow.Step) string {
	if arg, ok := step.Arg("output_file"); ok && arg.Raw != nil {
		if literal, err := pythonLiteral(arg.Raw.Value, false); err == nil {
			return literal
		}
	}
	return outputPlaceholder
}

// ruleName converts a display identifier to a valid rule name.
func ruleName(displayID string) string {
	return strings.ReplaceAll(displayID, "-", "_")
}

// pythonLiteral type-converts a raw value to the target syntax.
func pythonLiteral(v ir.Value, allowComplex bool) (string, error) {
	switch val := v.(type) {
	case ir.String:
		return fmt.Sprintf("%q", string(val)), nil
	case ir.Int:
		return fmt.Sprintf("%d", int64(val)), nil
	case ir.Float:
		return fmt.Sprintf("%g", float64(val)), nil
	case ir.Bool:
		if val {
			return "True", nil
		}
		return "False", nil
	case ir.Array:
		if !allowComplex {
			return "", &render.RenderError{
				Code:    render.ErrCodeTypeError,
				Message: "cannot render complex type without allow_complex_types",
				Subject: "list value",
			}
		}
		items := make([]string, len(val))
		for i, elem := range val {
			literal, err := pythonLiteral(elem, allowComplex)
			if err != nil {
				return "", err
			}
			items[i] = literal
		}
		return "[" + strings.Join(items, ", ") + "]", nil
	case ir.Object:
		if !allowComplex {
			return "", &render.RenderError{
				Code:    render.ErrCodeTypeError,
				Message: "cannot render complex type without allow_complex_types",
				Subject: "record value",
			}
		}
		pairs := make([]string, 0, len(val))
		for _, k := range val.SortedKeys() {
			literal, err := pythonLiteral(val[k], allowComplex)
			if err != nil {
				return "", err
			}
			pairs = append(pairs, fmt.Sprintf("%q: %s", k, literal))
		}
		return "{" + strings.Join(pairs, ", ") + "}", nil
	case ir.Null:
		return "None", nil
	}
	return "", &render.RenderError{
		Code:    render.ErrCodeTypeError,
		Message: "cannot render value",
		Subject: fmt.Sprintf("%T", v),
	}
}
