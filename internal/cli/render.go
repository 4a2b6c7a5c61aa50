package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skeinworks/skein/internal/graph"
	"github.com/skeinworks/skein/internal/render"
	"github.com/skeinworks/skein/internal/render/cwl"
	"github.com/skeinworks/skein/internal/render/snakemake"
	"github.com/skeinworks/skein/internal/store"
	"github.com/skeinworks/skein/internal/workflow"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Renderer    string
	Output      string
	CachePath   string
	SimplifyIDs bool
	Flatten     bool
	Opts        []string // key=value renderer configuration overrides
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <program>",
		Short: "Render a workflow program to a target format",
		Long: `Compile a CUE workflow program, construct its canonical dataflow graph,
and render the result with the selected renderer.

The program argument is a CUE file or a directory of CUE files. Renderer
options are passed as repeated --opt key=value flags; unrecognized options
are ignored by renderers.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Renderer, "renderer", "r", "cwl", "target renderer (cwl|snakemake)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output path; '%' expands per document, '-' is stdout")
	cmd.Flags().StringVar(&opts.CachePath, "cache", "", "render cache database path")
	cmd.Flags().BoolVar(&opts.SimplifyIDs, "simplify-ids", false, "replace fingerprint step ids with readable counters")
	cmd.Flags().BoolVar(&opts.Flatten, "flatten", false, "inline subworkflow boundaries into one flat graph")
	cmd.Flags().StringArrayVar(&opts.Opts, "opt", nil, "renderer option override (key=value, repeatable)")

	return cmd
}

func runRender(opts *RenderOptions, programPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	overrides, err := parseConfigOverrides(opts.Opts)
	if err != nil {
		return failRender(formatter, ExitCommandError, ErrCodeGeneric, err.Error())
	}

	prog, err := LoadProgram(programPath)
	if err != nil {
		return failRender(formatter, ExitCommandError, loadErrorCode(err), err.Error())
	}
	formatter.VerboseLog("Compiled program with %d task declaration(s)", len(prog.Tasks))

	wf, err := graph.Build(prog.Root, graph.Options{
		SimplifyIDs:         opts.SimplifyIDs,
		FlattenSubworkflows: opts.Flatten,
	})
	if err != nil {
		return failRender(formatter, ExitFailure, ErrCodeConstruct, err.Error())
	}
	formatter.VerboseLog("Constructed workflow: %d step(s), %d parameter(s), %d subworkflow(s)",
		len(wf.Steps()), len(wf.Parameters()), len(wf.SubworkflowNames()))

	registry := newRegistry()
	renderer, err := registry.Lookup(opts.Renderer)
	if err != nil {
		return failRender(formatter, ExitCommandError, ErrCodeGeneric, err.Error())
	}

	docs, cached, err := renderDocuments(cmd.Context(), opts, formatter, renderer, wf, overrides)
	if err != nil {
		return failRender(formatter, ExitFailure, ErrCodeRender, err.Error())
	}
	if cached {
		formatter.VerboseLog("Render cache hit")
	}

	if opts.Format == "json" {
		return formatter.Success(docs)
	}
	if err := render.WriteDocuments(docs, opts.Output, formatter.Writer); err != nil {
		return failRender(formatter, ExitCommandError, ErrCodeWriteFailed, err.Error())
	}
	if opts.Output != "" && opts.Output != "-" {
		formatter.VerboseLog("Wrote %d document(s) to %s", len(docs), opts.Output)
	}
	return nil
}

// newRegistry builds the registry with every built-in renderer.
func newRegistry() *render.Registry {
	registry := render.NewRegistry()
	// Registration of the built-ins cannot fail; the capability check
	// guards externally supplied renderers.
	_ = registry.Register(cwl.New())
	_ = registry.Register(snakemake.New())
	return registry
}

// renderDocuments renders the workflow, consulting the cache when enabled.
func renderDocuments(ctx context.Context, opts *RenderOptions, formatter *OutputFormatter, renderer render.Renderer, wf *workflow.Workflow, overrides render.Config) (map[string]string, bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var cache *store.Store
	var workflowHash, configHash string

	if opts.CachePath != "" {
		var err error
		cache, err = store.Open(opts.CachePath)
		if err != nil {
			return nil, false, fmt.Errorf("opening render cache: %w", err)
		}
		defer cache.Close()

		if workflowHash, err = wf.Fingerprint(); err != nil {
			return nil, false, err
		}
		if configHash, err = store.ConfigFingerprint(renderer.DefaultConfig().Merged(overrides)); err != nil {
			return nil, false, err
		}
		docs, err := cache.GetDocuments(ctx, workflowHash, renderer.Name(), configHash)
		if err != nil {
			return nil, false, err
		}
		if docs != nil {
			return docs, true, nil
		}
	}

	var docs map[string]string
	switch r := renderer.(type) {
	case render.StructuredRenderer:
		trees, err := render.Render(r, wf, overrides)
		if err != nil {
			return nil, false, err
		}
		if docs, err = render.EncodeDocuments(trees); err != nil {
			return nil, false, err
		}
	case render.RawRenderer:
		var err error
		if docs, err = render.RenderRaw(r, wf, overrides); err != nil {
			return nil, false, err
		}
	default:
		return nil, false, fmt.Errorf("renderer %q implements no render mode", renderer.Name())
	}

	if cache != nil {
		if err := cache.PutDocuments(ctx, workflowHash, renderer.Name(), configHash, docs); err != nil {
			formatter.VerboseLog("Render cache write failed: %v", err)
		}
	}
	return docs, false, nil
}

// parseConfigOverrides parses repeated key=value flags, recognizing bool,
// int, and float literals; anything else stays a string.
func parseConfigOverrides(pairs []string) (render.Config, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	cfg := make(render.Config, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --opt %q: expected key=value", pair)
		}
		cfg[key] = parseOptValue(value)
	}
	return cfg, nil
}

func parseOptValue(value string) any {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

func failRender(formatter *OutputFormatter, exitCode int, code, message string) error {
	_ = formatter.Failure(code, message)
	return WrapExitError(exitCode, fmt.Sprintf("%s: %s", code, message), nil)
}

func loadErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}
