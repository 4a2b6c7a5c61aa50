package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// WriteDocuments writes rendered text blocks to files or a writer.
//
// With a single document, everything goes to target (or out when target is
// "-" or empty). A "%" in target expands per document name, the root
// document writing as "ROOT". Otherwise all documents concatenate into one
// file, subworkflows separated by "---" markers.
//
// Output is staged in memory first so a failing document never leaves
// partial files behind.
func WriteDocuments(rendered map[string]string, target string, out io.Writer) error {
	root, ok := rendered[RootKey]
	if !ok {
		return fmt.Errorf("rendered output has no %s document", RootKey)
	}

	if target == "" || target == "-" {
		_, err := io.WriteString(out, concatenated(rendered, root))
		return err
	}

	if strings.Contains(target, "%") {
		files := make(map[string]string, len(rendered))
		for name, body := range rendered {
			if name == RootKey {
				name = "ROOT"
			}
			files[strings.ReplaceAll(target, "%", name)] = body
		}
		return writeFiles(files)
	}

	return writeFiles(map[string]string{target: concatenated(rendered, root)})
}

func concatenated(rendered map[string]string, root string) string {
	if len(rendered) == 1 {
		return root
	}
	names := make([]string, 0, len(rendered)-1)
	for name := range rendered {
		if name != RootKey {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(root)
	for _, name := range names {
		sb.WriteString("\n---\n")
		sb.WriteString(rendered[name])
	}
	return sb.String()
}

func writeFiles(files map[string]string) error {
	for path, body := range files {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
