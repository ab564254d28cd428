package loader

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/dd0wney/cluso-adtree/pkg/adtree"
	"github.com/dd0wney/cluso-adtree/pkg/validation"
)

// xmlTree mirrors an ADTool export
type xmlTree struct {
	XMLName xml.Name `xml:"adtree"`
	Root    *xmlNode `xml:"node"`
}

type xmlNode struct {
	Refinement string    `xml:"refinement,attr"`
	SwitchRole string    `xml:"switchRole,attr"`
	Label      string    `xml:"label"`
	Children   []xmlNode `xml:"node"`
}

func (n *xmlNode) switches() bool {
	return strings.EqualFold(strings.TrimSpace(n.SwitchRole), "yes")
}

// ParseXML decodes an ADTool XML export. The root node belongs to the
// attacker; a child marked switchRole="yes" belongs to the other actor and
// counters its parent.
func ParseXML(r io.Reader) (*adtree.ADTree, error) {
	var doc xmlTree
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	if doc.Root == nil {
		return nil, &adtree.MalformedTreeError{Reason: adtree.ErrRootUnset}
	}

	reg := newRegistry()
	root, err := reg.addXML(doc.Root, adtree.Attacker)
	if err != nil {
		return nil, err
	}
	return reg.build(root)
}

func (r *registry) addXML(n *xmlNode, actor adtree.Actor) (string, error) {
	label := strings.TrimSpace(n.Label)
	if label == "" {
		return "", &adtree.MalformedTreeError{Reason: adtree.ErrEmptyLabel}
	}
	if err := validation.ValidateLabel(label); err != nil {
		return "", &adtree.MalformedTreeError{Label: label, Reason: fmt.Errorf("%w: %w", adtree.ErrInvalidLabel, err)}
	}

	def := adtree.NodeDef{Label: label, Actor: actor}
	for i := range n.Children {
		child := &n.Children[i]
		if child.switches() {
			if def.Counter != "" {
				return "", &adtree.MalformedTreeError{Label: label, Reason: adtree.ErrMultipleCounters}
			}
			c, err := r.addXML(child, actor.Opponent())
			if err != nil {
				return "", err
			}
			def.Counter = c
			continue
		}
		c, err := r.addXML(child, actor)
		if err != nil {
			return "", err
		}
		def.Children = append(def.Children, c)
	}

	if len(def.Children) > 0 {
		kind, err := adtree.ParseKind(n.Refinement)
		if err != nil {
			return "", fmt.Errorf("node %q: %w", label, err)
		}
		if kind == adtree.Basic {
			kind = adtree.Or
		}
		def.Kind = kind
	}

	if err := r.add(def); err != nil {
		return "", err
	}
	return label, nil
}
