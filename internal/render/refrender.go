package render

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/skeinworks/skein/internal/ir"
	"github.com/skeinworks/skein/internal/workflow"
)

// Reference renderer: the shared helper converting references and raw
// values into target addressing syntax. All structured renderers consume
// this rather than reimplementing reference resolution.

// Source converts a reference into the target format's addressing syntax:
// "stepId/fieldName" for a step output, the bare name for a parameter.
// Display identifiers honor the workflow's simplification remap.
func Source(wf *workflow.Workflow, ref ir.Reference) (string, error) {
	if _, err := wf.Resolve(ref); err != nil {
		return "", err
	}
	return wf.DisplayRef(ref), nil
}

// RawNode converts a raw value into an inline document node. Composite
// values (lists, records) are a type error unless allowComplex is set.
func RawNode(raw ir.Raw, allowComplex bool) (*yaml.Node, error) {
	switch raw.Value.(type) {
	case ir.Array, ir.Object:
		if !allowComplex {
			return nil, &RenderError{
				Code:    ErrCodeTypeError,
				Message: "cannot render complex type without allow_complex_types",
				Subject: fmt.Sprintf("%s value", raw.TypeTag()),
			}
		}
	}
	return ValueNode(raw.Value), nil
}

// TypeName maps an internal type tag to the target format's type name.
// The built-in renderers share CWL's primitive names, so this is currently
// the identity for scalars.
func TypeName(tag string) string {
	switch tag {
	case ir.TypeInt, ir.TypeDouble, ir.TypeString, ir.TypeBoolean, ir.TypeRecord:
		return tag
	case ir.TypeList:
		return "array"
	}
	return tag
}
