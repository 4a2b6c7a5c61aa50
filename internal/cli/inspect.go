package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/skeinworks/skein/internal/graph"
	"github.com/skeinworks/skein/internal/ir"
	"github.com/skeinworks/skein/internal/workflow"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	SimplifyIDs bool
	Flatten     bool
}

// InspectReport summarizes a constructed workflow for display.
type InspectReport struct {
	Fingerprint  string            `json:"fingerprint"`
	Steps        []InspectStep     `json:"steps"`
	Parameters   []InspectParam    `json:"parameters"`
	Subworkflows []*InspectReport  `json:"subworkflows,omitempty"`
	Name         string            `json:"name,omitempty"`
	Result       string            `json:"result,omitempty"`
	ResultFields map[string]string `json:"result_fields,omitempty"`
}

// InspectStep is one step's display view.
type InspectStep struct {
	ID      string            `json:"id"`
	Task    string            `json:"task"`
	Args    map[string]string `json:"args"`
	Outputs map[string]string `json:"outputs"`
}

// InspectParam is one workflow parameter's display view.
type InspectParam struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default any    `json:"default,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <program>",
		Short: "Construct a workflow and print its structure",
		Long: `Compile a CUE workflow program and print the constructed dataflow graph:
steps with their dependencies, workflow parameters, and subworkflows.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.SimplifyIDs, "simplify-ids", false, "replace fingerprint step ids with readable counters")
	cmd.Flags().BoolVar(&opts.Flatten, "flatten", false, "inline subworkflow boundaries into one flat graph")

	return cmd
}

func runInspect(opts *InspectOptions, programPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	prog, err := LoadProgram(programPath)
	if err != nil {
		_ = formatter.Failure(loadErrorCode(err), err.Error())
		return WrapExitError(ExitCommandError, err.Error(), nil)
	}

	wf, err := graph.Build(prog.Root, graph.Options{
		SimplifyIDs:         opts.SimplifyIDs,
		FlattenSubworkflows: opts.Flatten,
	})
	if err != nil {
		_ = formatter.Failure(ErrCodeConstruct, err.Error())
		return WrapExitError(ExitFailure, err.Error(), nil)
	}

	report, err := buildReport(wf, "")
	if err != nil {
		_ = formatter.Failure(ErrCodeGeneric, err.Error())
		return WrapExitError(ExitFailure, err.Error(), nil)
	}

	if opts.Format == "json" {
		return formatter.Success(report)
	}
	printReport(formatter, report, "")
	return nil
}

func buildReport(wf *workflow.Workflow, name string) (*InspectReport, error) {
	fp, err := wf.Fingerprint()
	if err != nil {
		return nil, err
	}
	report := &InspectReport{Name: name, Fingerprint: fp}

	for _, step := range wf.Steps() {
		view := InspectStep{
			ID:      wf.DisplayID(step.ID),
			Task:    step.Task.Name,
			Args:    make(map[string]string, len(step.Args)),
			Outputs: make(map[string]string, len(step.Outputs)),
		}
		for _, arg := range step.Args {
			if arg.IsRef() {
				view.Args[arg.Name] = wf.DisplayRef(arg.Ref)
			} else {
				view.Args[arg.Name] = arg.Raw.Identity()
			}
		}
		for _, field := range step.Outputs {
			view.Outputs[field.Name] = field.Type
		}
		report.Steps = append(report.Steps, view)
	}

	for _, param := range wf.Parameters() {
		view := InspectParam{Name: param.Name, Type: param.Type}
		if param.Default != nil {
			view.Default = ir.ToGo(param.Default)
		}
		report.Parameters = append(report.Parameters, view)
	}

	if wf.Result != nil {
		report.Result = wf.DisplayRef(wf.Result)
	}

	for _, subName := range wf.SubworkflowNames() {
		sub, _ := wf.Subworkflow(subName)
		subReport, err := buildReport(sub, subName)
		if err != nil {
			return nil, err
		}
		report.Subworkflows = append(report.Subworkflows, subReport)
	}
	return report, nil
}

func printReport(formatter *OutputFormatter, report *InspectReport, indent string) {
	if report.Name != "" {
		fmt.Fprintf(formatter.Writer, "%sSubworkflow %s (%s)\n", indent, report.Name, shortHash(report.Fingerprint))
	} else {
		fmt.Fprintf(formatter.Writer, "%sWorkflow (%s)\n", indent, shortHash(report.Fingerprint))
	}

	fmt.Fprintf(formatter.Writer, "%s  Steps:\n", indent)
	for _, step := range report.Steps {
		fmt.Fprintf(formatter.Writer, "%s    %s [%s]\n", indent, step.ID, step.Task)
		for _, name := range sortedKeys(step.Args) {
			fmt.Fprintf(formatter.Writer, "%s      %s <- %s\n", indent, name, step.Args[name])
		}
	}

	if len(report.Parameters) > 0 {
		fmt.Fprintf(formatter.Writer, "%s  Parameters:\n", indent)
		for _, param := range report.Parameters {
			if param.Default != nil {
				fmt.Fprintf(formatter.Writer, "%s    %s: %s (default %v)\n", indent, param.Name, param.Type, param.Default)
			} else {
				fmt.Fprintf(formatter.Writer, "%s    %s: %s\n", indent, param.Name, param.Type)
			}
		}
	}

	if report.Result != "" {
		fmt.Fprintf(formatter.Writer, "%s  Result: %s\n", indent, report.Result)
	}

	for _, sub := range report.Subworkflows {
		printReport(formatter, sub, indent+"  ")
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func shortHash(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
