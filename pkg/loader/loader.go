// Package loader reads attack-defense trees from ADTool XML exports and
// YAML documents.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dd0wney/cluso-adtree/pkg/adtree"
)

// ErrUnsupportedFormat is returned for files whose extension has no decoder
var ErrUnsupportedFormat = errors.New("unsupported tree format")

// Format is a tree file encoding
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// DetectFormat maps a file extension to a Format
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadFile reads and builds the tree stored at path
func LoadFile(path string) (*adtree.ADTree, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tree file: %w", err)
	}
	defer f.Close()

	var tree *adtree.ADTree
	switch format {
	case FormatXML:
		tree, err = ParseXML(f)
	case FormatYAML:
		tree, err = ParseYAML(f)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return tree, nil
}

// registry merges repeated label definitions into one node definition each.
// A bare reference (no children, no counter) defers to a fuller definition of
// the same label; two full definitions must agree.
type registry struct {
	defs  map[string]*adtree.NodeDef
	order []string
}

func newRegistry() *registry {
	return &registry{defs: make(map[string]*adtree.NodeDef)}
}

func bare(def *adtree.NodeDef) bool {
	return len(def.Children) == 0 && def.Counter == ""
}

func (r *registry) add(def adtree.NodeDef) error {
	existing, ok := r.defs[def.Label]
	if !ok {
		r.defs[def.Label] = &def
		r.order = append(r.order, def.Label)
		return nil
	}

	if existing.Actor != def.Actor {
		return &adtree.MalformedTreeError{Label: def.Label, Reason: adtree.ErrConflictingLabel}
	}
	switch {
	case bare(&def):
		return nil
	case bare(existing):
		*existing = def
		return nil
	case !sameDef(existing, &def):
		return &adtree.MalformedTreeError{Label: def.Label, Reason: adtree.ErrConflictingLabel}
	}
	return nil
}

func sameDef(a, b *adtree.NodeDef) bool {
	if a.Kind != b.Kind || a.Counter != b.Counter || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if a.Children[i] != b.Children[i] {
			return false
		}
	}
	return true
}

func (r *registry) build(root string) (*adtree.ADTree, error) {
	b := adtree.NewBuilder()
	for _, label := range r.order {
		b.Add(*r.defs[label])
	}
	return b.Root(root).Build()
}
