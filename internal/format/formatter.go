// Package format rewrites catalog files into their canonical layout.
package format

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/moyenne/internal/catalog"
	"github.com/dotcommander/moyenne/internal/discovery"
)

// Key order per mapping kind. Keys not listed follow alphabetically.
var (
	rootOrder           = []string{"years", "semesters"}
	yearOrder           = []string{"label", "specializations"}
	specializationOrder = []string{"id", "name", "icon"}
	semesterOrder       = []string{"subjects"}
	subjectOrder        = []string{"name", "formula", "coefficient", "optional_group"}
)

// Format returns the canonical rendering of a catalog document. Comments in
// YAML documents are kept.
func Format(content []byte, f discovery.Format) ([]byte, error) {
	switch f {
	case discovery.FormatYAML:
		return formatYAML(content)
	case discovery.FormatTOML:
		return formatTOML(content)
	default:
		return nil, fmt.Errorf("cannot format %s documents", f)
	}
}

func formatYAML(content []byte) ([]byte, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return []byte{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("not a YAML document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("catalog root must be a mapping, got %s", kindName(root.Kind))
	}

	normalizeRoot(root)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return ensureTrailingNewline(buf.Bytes()), nil
}

func formatTOML(content []byte) ([]byte, error) {
	c, err := catalog.Parse(content, discovery.FormatTOML)
	if err != nil {
		return nil, err
	}
	out, err := toml.Marshal(c)
	if err != nil {
		return nil, err
	}
	return ensureTrailingNewline(out), nil
}

func normalizeRoot(root *yaml.Node) {
	reorder(root, rootOrder)
	blockStyle(root)
	for i := 0; i+1 < len(root.Content); i += 2 {
		val := root.Content[i+1]
		switch root.Content[i].Value {
		case "years":
			eachEntry(val, func(year *yaml.Node) {
				reorder(year, yearOrder)
				eachItem(fieldValue(year, "specializations"), func(s *yaml.Node) {
					reorder(s, specializationOrder)
				})
			})
		case "semesters":
			eachEntry(val, func(sem *yaml.Node) {
				reorder(sem, semesterOrder)
				eachItem(fieldValue(sem, "subjects"), func(s *yaml.Node) {
					reorder(s, subjectOrder)
				})
			})
		}
	}
}

// eachEntry sorts a keyed mapping by key and calls fn on every value.
func eachEntry(m *yaml.Node, fn func(*yaml.Node)) {
	if m == nil || m.Kind != yaml.MappingNode {
		return
	}
	reorder(m, nil)
	for i := 1; i < len(m.Content); i += 2 {
		fn(m.Content[i])
	}
}

func eachItem(seq *yaml.Node, fn func(*yaml.Node)) {
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return
	}
	for _, item := range seq.Content {
		fn(item)
	}
}

func fieldValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// reorder sorts the pairs of a mapping node: priority keys first, in the
// given order, then the rest alphabetically.
func reorder(m *yaml.Node, priority []string) {
	if m == nil || m.Kind != yaml.MappingNode {
		return
	}
	rank := make(map[string]int, len(priority))
	for i, k := range priority {
		rank[k] = i
	}

	type pair struct{ k, v *yaml.Node }
	pairs := make([]pair, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		pairs = append(pairs, pair{m.Content[i], m.Content[i+1]})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ri, iok := rank[pairs[i].k.Value]
		rj, jok := rank[pairs[j].k.Value]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return pairs[i].k.Value < pairs[j].k.Value
		}
	})

	m.Content = m.Content[:0]
	for _, p := range pairs {
		m.Content = append(m.Content, p.k, p.v)
	}
}

// blockStyle turns flow collections into block ones, recursively.
func blockStyle(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style &^= yaml.FlowStyle
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "mapping"
	}
}

func ensureTrailingNewline(b []byte) []byte {
	return append(bytes.TrimRight(b, "\n"), '\n')
}

// Diff computes a simple line diff between original and formatted content.
// Returns empty string if contents are identical.
func Diff(original, formatted, filename string) string {
	if original == formatted {
		return ""
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s\n", filename)
	fmt.Fprintf(&buf, "+++ %s (formatted)\n", filename)

	origLines := strings.Split(original, "\n")
	fmtLines := strings.Split(formatted, "\n")
	for i := 0; i < max(len(origLines), len(fmtLines)); i++ {
		var origLine, fmtLine string
		if i < len(origLines) {
			origLine = origLines[i]
		}
		if i < len(fmtLines) {
			fmtLine = fmtLines[i]
		}
		if origLine == fmtLine {
			continue
		}
		if origLine != "" {
			fmt.Fprintf(&buf, "- %s\n", origLine)
		}
		if fmtLine != "" {
			fmt.Fprintf(&buf, "+ %s\n", fmtLine)
		}
	}
	return buf.String()
}
