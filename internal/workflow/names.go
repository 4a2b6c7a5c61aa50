package workflow

import "github.com/skeinworks/skein/internal/ir"

// SetRemap installs the display-identifier mapping computed by the
// simplification pass. It changes display names only; fingerprints, step
// IDs, and equality are untouched.
func (w *Workflow) SetRemap(remap map[string]string) {
	w.remap = remap
}

// DisplayID returns the display name for a step identifier, applying the
// simplification remap when one is installed.
func (w *Workflow) DisplayID(stepID string) string {
	if w.remap != nil {
		if name, ok := w.remap[stepID]; ok {
			return name
		}
	}
	return stepID
}

// DisplayRef returns the display form of a reference: "step/field" for a
// step output, or the bare parameter name.
func (w *Workflow) DisplayRef(ref ir.Reference) string {
	switch r := ref.(type) {
	case ir.StepRef:
		return w.DisplayID(r.Step) + "/" + r.Field
	case ir.ParamRef:
		return r.Name
	}
	return ""
}

// Fingerprint computes the content identity of the whole workflow,
// including subworkflows. Used as the render-cache key.
func (w *Workflow) Fingerprint() (string, error) {
	stepFPs := make(ir.Array, len(w.steps))
	for i, s := range w.steps {
		stepFPs[i] = ir.String(s.ID)
	}

	params := make(ir.Array, len(w.params))
	for i, p := range w.params {
		entry := ir.Object{
			"name": ir.String(p.Name),
			"type": ir.String(p.Type),
		}
		if p.Default != nil {
			entry["default"] = p.Default
		}
		params[i] = entry
	}

	var result ir.Value = ir.String("")
	switch {
	case w.Result != nil:
		result = ir.String(w.Result.Key())
	case w.ResultRaw != nil:
		result = ir.String(w.ResultRaw.Identity())
	}

	subs := make(ir.Array, 0, len(w.subNames))
	for _, name := range w.subNames {
		subFP, err := w.subworkflows[name].Fingerprint()
		if err != nil {
			return "", err
		}
		subs = append(subs, ir.Array{ir.String(name), ir.String(subFP)})
	}

	return ir.Fingerprint(ir.DomainWorkflow, ir.Object{
		"steps":        stepFPs,
		"params":       params,
		"result":       result,
		"subworkflows": subs,
	})
}
