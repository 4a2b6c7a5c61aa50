// Package render defines the renderer extension contract and hosts the
// shared machinery all renderers use: configuration merging, the reference
// renderer, ordered document helpers, and the subworkflow recursion.
//
// A renderer implements exactly one of two modes. Structured renderers
// produce nested, order-sensitive documents ready for serialization; raw
// renderers produce pre-formatted text blocks. The capability check happens
// at registration time, never by runtime probing.
package render

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/skeinworks/skein/internal/workflow"
)

// RootKey is the mandatory map key holding the outermost workflow's
// document. Every subworkflow appears under its own name beside it.
const RootKey = "__root__"

// Renderer declares a target format's name and default configuration.
// Recognized options are renderer-specific; unset options fall back to the
// declared defaults.
type Renderer interface {
	Name() string
	DefaultConfig() Config
}

// StructuredRenderer renders one workflow into an ordered document.
// The protocol, not the renderer, walks subworkflows.
type StructuredRenderer interface {
	Renderer
	RenderWorkflow(wf *workflow.Workflow, cfg Config) (*yaml.Node, error)
}

// RawRenderer renders one workflow into pre-formatted text.
type RawRenderer interface {
	Renderer
	RenderWorkflowRaw(wf *workflow.Workflow, cfg Config) (string, error)
}

// Registry holds registered renderers by name.
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Register adds a renderer after checking its capability: it must implement
// exactly one of the structured or raw modes.
func (r *Registry) Register(renderer Renderer) error {
	_, structured := renderer.(StructuredRenderer)
	_, raw := renderer.(RawRenderer)
	switch {
	case structured && raw:
		return &RenderError{
			Code:    ErrCodeUnsupportedMode,
			Message: "renderer implements both structured and raw modes",
			Subject: renderer.Name(),
		}
	case !structured && !raw:
		return &RenderError{
			Code:    ErrCodeUnsupportedMode,
			Message: "renderer implements neither structured nor raw mode",
			Subject: renderer.Name(),
		}
	}
	if _, exists := r.renderers[renderer.Name()]; exists {
		return fmt.Errorf("renderer %q already registered", renderer.Name())
	}
	r.renderers[renderer.Name()] = renderer
	return nil
}

// Lookup returns the named renderer.
func (r *Registry) Lookup(name string) (Renderer, error) {
	renderer, ok := r.renderers[name]
	if !ok {
		return nil, &RenderError{
			Code:    ErrCodeUnknownRenderer,
			Message: "no such renderer",
			Subject: name,
		}
	}
	return renderer, nil
}

// Render renders a workflow and its subworkflows in structured mode.
// The result maps RootKey and each subworkflow name to a document.
func Render(renderer StructuredRenderer, wf *workflow.Workflow, overrides Config) (map[string]*yaml.Node, error) {
	cfg := renderer.DefaultConfig().Merged(overrides)
	return renderTree(wf, func(sub *workflow.Workflow) (*yaml.Node, error) {
		return renderer.RenderWorkflow(sub, cfg)
	})
}

// RenderRaw renders a workflow and its subworkflows in raw mode.
func RenderRaw(renderer RawRenderer, wf *workflow.Workflow, overrides Config) (map[string]string, error) {
	cfg := renderer.DefaultConfig().Merged(overrides)
	return renderTree(wf, func(sub *workflow.Workflow) (string, error) {
		return renderer.RenderWorkflowRaw(sub, cfg)
	})
}

// renderTree recursively renders a workflow and its subworkflow mapping.
// Subworkflow documents of nested children are hoisted into the same flat
// map, keyed by their registered names.
func renderTree[T any](wf *workflow.Workflow, renderOne func(*workflow.Workflow) (T, error)) (map[string]T, error) {
	root, err := renderOne(wf)
	if err != nil {
		return nil, err
	}

	out := make(map[string]T, 1+len(wf.SubworkflowNames()))
	for _, name := range wf.SubworkflowNames() {
		sub, _ := wf.Subworkflow(name)
		nested, err := renderTree(sub, renderOne)
		if err != nil {
			return nil, err
		}
		for key, doc := range nested {
			if key == RootKey {
				out[name] = doc
			} else {
				out[key] = doc
			}
		}
	}
	out[RootKey] = root
	return out, nil
}
