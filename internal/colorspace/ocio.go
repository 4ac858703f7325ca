// Package colorspace enumerates the color spaces of an OCIO config.
package colorspace

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"pixotope-settings-go/internal/types"
)

const colorSpaceMarker = "- !<ColorSpace>"

// Parse reads an OCIO config and returns its color spaces in file order.
// Names are unique; a repeated name keeps its first entry.
//
// The config is read as YAML. Configs that YAML rejects (hand-edited files
// with stray tabs are common) are scanned line by line instead.
func Parse(r io.Reader) ([]types.ColorSpaceEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ocio config: %w", err)
	}

	entries, err := parseYAML(data)
	if err != nil {
		entries, err = scanLines(data)
		if err != nil {
			return nil, err
		}
	}
	return dedupe(entries), nil
}

func parseYAML(data []byte) ([]types.ColorSpaceEntry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("ocio config: top level is not a mapping")
	}

	seq := mappingValue(doc, "colorspaces")
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil, nil
	}

	entries := make([]types.ColorSpaceEntry, 0, len(seq.Content))
	for _, item := range seq.Content {
		if item.Kind != yaml.MappingNode {
			continue
		}
		var e types.ColorSpaceEntry
		if n := mappingValue(item, "name"); n != nil {
			e.Name = strings.TrimSpace(n.Value)
		}
		if n := mappingValue(item, "family"); n != nil {
			e.Family = strings.TrimSpace(n.Value)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// mappingValue returns the value node for key in a mapping node.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// scanLines opens an entry at every "- !<ColorSpace>" line and fills it from
// the name: and family: lines that follow.
func scanLines(data []byte) ([]types.ColorSpaceEntry, error) {
	var entries []types.ColorSpaceEntry
	var current *types.ColorSpaceEntry

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, colorSpaceMarker):
			if current != nil {
				entries = append(entries, *current)
			}
			current = &types.ColorSpaceEntry{}
		case current == nil:
		case strings.HasPrefix(line, "name:"):
			current.Name = afterColon(line)
		case strings.HasPrefix(line, "family:"):
			current.Family = afterColon(line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan ocio config: %w", err)
	}
	if current != nil {
		entries = append(entries, *current)
	}
	return entries, nil
}

func afterColon(line string) string {
	_, v, _ := strings.Cut(line, ":")
	return strings.TrimSpace(v)
}

func dedupe(entries []types.ColorSpaceEntry) []types.ColorSpaceEntry {
	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if e.Name == "" || seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		out = append(out, e)
	}
	return out
}
