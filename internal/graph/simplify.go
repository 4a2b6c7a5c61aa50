package graph

import (
	"fmt"

	"github.com/skeinworks/skein/internal/workflow"
)

// simplify computes name-n display identifiers, numbering each step by the
// order of use of its task in insertion (first-reachability) order. The
// remap changes display names only; identical input graphs always produce
// identical remaps. Applied recursively to subworkflows.
func simplify(wf *workflow.Workflow) {
	counter := make(map[string]int)
	remap := make(map[string]string, len(wf.Steps()))
	for _, step := range wf.Steps() {
		counter[step.Task.Name]++
		remap[step.ID] = fmt.Sprintf("%s-%d", step.Task.Name, counter[step.Task.Name])
	}
	wf.SetRemap(remap)

	for _, name := range wf.SubworkflowNames() {
		if sub, ok := wf.Subworkflow(name); ok {
			simplify(sub)
		}
	}
}
