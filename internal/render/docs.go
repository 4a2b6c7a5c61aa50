package render

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/skeinworks/skein/internal/ir"
)

// Ordered document helpers. yaml.Node is the document model for structured
// renderers because it preserves mapping order, which plain Go maps do not.

// Map builds a mapping node from alternating key/value nodes.
func Map(pairs ...*yaml.Node) *yaml.Node {
	if len(pairs)%2 != 0 {
		panic("render.Map: odd number of nodes")
	}
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: pairs}
}

// Seq builds a block-style sequence node.
func Seq(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

// FlowSeq builds a flow-style sequence node ([a, b]).
func FlowSeq(items ...*yaml.Node) *yaml.Node {
	n := Seq(items...)
	n.Style = yaml.FlowStyle
	return n
}

// Str builds a string scalar. The explicit tag keeps number-looking strings
// quoted on output.
func Str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// Int builds an integer scalar.
func Int(i int64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(i, 10)}
}

// Float builds a float scalar with shortest round-trip formatting.
func Float(f float64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Bool builds a boolean scalar.
func Bool(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
}

// Null builds a null scalar.
func Null() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// ValueNode converts an ir literal into a document node, recursively.
func ValueNode(v ir.Value) *yaml.Node {
	switch val := v.(type) {
	case ir.Null:
		return Null()
	case ir.String:
		return Str(string(val))
	case ir.Int:
		return Int(int64(val))
	case ir.Float:
		return Float(float64(val))
	case ir.Bool:
		return Bool(bool(val))
	case ir.Array:
		items := make([]*yaml.Node, len(val))
		for i, elem := range val {
			items[i] = ValueNode(elem)
		}
		return FlowSeq(items...)
	case ir.Object:
		pairs := make([]*yaml.Node, 0, 2*len(val))
		for _, k := range val.SortedKeys() {
			pairs = append(pairs, Str(k), ValueNode(val[k]))
		}
		return Map(pairs...)
	}
	return Null()
}

// EncodeDocument serializes a document node to YAML with two-space indent.
func EncodeDocument(doc *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	return buf.String(), nil
}

// EncodeDocuments serializes every document in a render result.
func EncodeDocuments(docs map[string]*yaml.Node) (map[string]string, error) {
	out := make(map[string]string, len(docs))
	for name, doc := range docs {
		text, err := EncodeDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", name, err)
		}
		out[name] = text
	}
	return out, nil
}
