package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-adtree/pkg/adtree"
)

const sharedXML = `<?xml version="1.0" encoding="UTF-8"?>
<adtree>
  <node refinement="disjunctive">
    <label>root</label>
    <node refinement="conjunctive">
      <label>viaNetwork</label>
      <node refinement="disjunctive"><label>phish</label></node>
      <node refinement="disjunctive">
        <label>steal</label>
        <node refinement="disjunctive" switchRole="yes"><label>encrypt</label></node>
      </node>
    </node>
    <node refinement="sequential">
      <label>viaInsider</label>
      <node refinement="disjunctive"><label>bribe</label></node>
      <node refinement="disjunctive"><label>steal</label></node>
      <node refinement="disjunctive" switchRole="yes"><label>audit</label></node>
    </node>
  </node>
</adtree>
`

func mustNode(t *testing.T, tree *adtree.ADTree, label string) *adtree.Node {
	t.Helper()
	n, ok := tree.Node(label)
	if !ok {
		t.Fatalf("node %q missing", label)
	}
	return n
}

func TestParseXML_SharedTree(t *testing.T) {
	tree, err := ParseXML(strings.NewReader(sharedXML))
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}

	if tree.NodeCount() != 8 {
		t.Errorf("NodeCount = %d, want 8", tree.NodeCount())
	}
	if tree.RootLabel() != "root" {
		t.Errorf("root = %q", tree.RootLabel())
	}

	wantAttacker := []string{"phish", "steal", "bribe"}
	if got := tree.BasicActions(adtree.Attacker); !reflect.DeepEqual(got, wantAttacker) {
		t.Errorf("attacker actions = %v, want %v", got, wantAttacker)
	}
	wantDefender := []string{"encrypt", "audit"}
	if got := tree.BasicActions(adtree.Defender); !reflect.DeepEqual(got, wantDefender) {
		t.Errorf("defender actions = %v, want %v", got, wantDefender)
	}

	insider := mustNode(t, tree, "viaInsider")
	if insider.Kind != adtree.Sand {
		t.Errorf("viaInsider kind = %s, want SAND", insider.Kind)
	}
	if !reflect.DeepEqual(insider.Children, []string{"bribe", "steal"}) {
		t.Errorf("viaInsider children = %v", insider.Children)
	}
	if insider.Counter != "audit" {
		t.Errorf("viaInsider counter = %q, want audit", insider.Counter)
	}

	steal := mustNode(t, tree, "steal")
	if !steal.IsBasic() || steal.Counter != "encrypt" {
		t.Errorf("steal = %+v, want countered basic action", steal)
	}
	if n := mustNode(t, tree, "encrypt"); n.Actor != adtree.Defender {
		t.Errorf("encrypt actor = %s, want defender", n.Actor)
	}
	if n := mustNode(t, tree, "viaNetwork"); n.Kind != adtree.And {
		t.Errorf("viaNetwork kind = %s, want AND", n.Kind)
	}
}

func TestParseXML_BareReferenceFirst(t *testing.T) {
	doc := `<adtree>
  <node refinement="conjunctive">
    <label>root</label>
    <node refinement="disjunctive"><label>steal</label></node>
    <node refinement="disjunctive">
      <label>steal</label>
      <node refinement="disjunctive" switchRole="yes"><label>encrypt</label></node>
    </node>
  </node>
</adtree>`

	tree, err := ParseXML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}
	if n := mustNode(t, tree, "steal"); n.Counter != "encrypt" {
		t.Errorf("steal counter = %q, want encrypt", n.Counter)
	}
}

func TestParseXML_CounterOfCounter(t *testing.T) {
	doc := `<adtree>
  <node refinement="disjunctive">
    <label>a1</label>
    <node refinement="disjunctive" switchRole="yes">
      <label>d1</label>
      <node refinement="disjunctive" switchRole="yes"><label>a2</label></node>
    </node>
  </node>
</adtree>`

	tree, err := ParseXML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}
	if n := mustNode(t, tree, "a2"); n.Actor != adtree.Attacker {
		t.Errorf("a2 actor = %s, want attacker", n.Actor)
	}
	if n := mustNode(t, tree, "d1"); n.Counter != "a2" || !n.IsBasic() {
		t.Errorf("d1 = %+v", n)
	}
}

func TestParseXML_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		reason error
	}{
		{
			name:   "no root",
			doc:    `<adtree></adtree>`,
			reason: adtree.ErrRootUnset,
		},
		{
			name: "two countermeasures",
			doc: `<adtree><node refinement="disjunctive"><label>a</label>
				<node switchRole="yes"><label>d1</label></node>
				<node switchRole="yes"><label>d2</label></node>
			</node></adtree>`,
			reason: adtree.ErrMultipleCounters,
		},
		{
			name: "conflicting definitions",
			doc: `<adtree><node refinement="conjunctive"><label>root</label>
				<node><label>x</label><node switchRole="yes"><label>d1</label></node></node>
				<node><label>x</label><node switchRole="yes"><label>d2</label></node></node>
			</node></adtree>`,
			reason: adtree.ErrConflictingLabel,
		},
		{
			name: "label reused across actors",
			doc: `<adtree><node refinement="disjunctive"><label>x</label>
				<node switchRole="yes"><label>x</label></node>
			</node></adtree>`,
			reason: adtree.ErrConflictingLabel,
		},
		{
			name:   "empty label",
			doc:    `<adtree><node><label>  </label></node></adtree>`,
			reason: adtree.ErrEmptyLabel,
		},
		{
			name:   "label too long",
			doc:    `<adtree><node><label>` + strings.Repeat("x", 300) + `</label></node></adtree>`,
			reason: adtree.ErrInvalidLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseXML(strings.NewReader(tt.doc))
			if !errors.Is(err, adtree.ErrMalformedTree) {
				t.Fatalf("error = %v, want ErrMalformedTree", err)
			}
			if !errors.Is(err, tt.reason) {
				t.Errorf("error = %v, want reason %v", err, tt.reason)
			}
		})
	}
}

func TestParseXML_DecodeErrors(t *testing.T) {
	if _, err := ParseXML(strings.NewReader(`<adtree><node>`)); err == nil {
		t.Error("truncated document accepted")
	}
	doc := `<adtree><node refinement="exclusive"><label>r</label><node><label>a</label></node></node></adtree>`
	if _, err := ParseXML(strings.NewReader(doc)); err == nil {
		t.Error("unknown refinement accepted")
	}
}

const sampleYAML = `root: root
nodes:
  - label: a1
    actor: a
    counter: d1
  - label: a2
    actor: attacker
  - label: d1
    actor: d
  - label: root
    actor: a
    kind: sand
    children: [a1, a2]
`

func TestParseYAML(t *testing.T) {
	tree, err := ParseYAML(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	root := tree.Root()
	if root.Kind != adtree.Sand || !reflect.DeepEqual(root.Children, []string{"a1", "a2"}) {
		t.Errorf("root = %+v", root)
	}
	if n := mustNode(t, tree, "d1"); n.Actor != adtree.Defender {
		t.Errorf("d1 actor = %s", n.Actor)
	}
}

func TestParseYAML_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing root", "nodes:\n  - {label: a, actor: a}\n", "Document.Root: field is required"},
		{"bad actor", "root: a\nnodes:\n  - {label: a, actor: x}\n", "Document.Nodes[0].Actor"},
		{"bad kind", "root: g\nnodes:\n  - {label: g, actor: a, kind: xor, children: [a]}\n", "Document.Nodes[0].Kind"},
		{"no nodes", "root: a\n", "Document.Nodes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestParseYAML_StructuralError(t *testing.T) {
	doc := "root: g\nnodes:\n  - {label: g, actor: a, kind: or, children: [missing]}\n"
	_, err := ParseYAML(strings.NewReader(doc))
	if !errors.Is(err, adtree.ErrUnknownLabel) {
		t.Errorf("error = %v, want ErrUnknownLabel", err)
	}
}

func TestWriteYAML_PreservesStructure(t *testing.T) {
	tree, err := ParseXML(strings.NewReader(sharedXML))
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteYAML(&buf, tree); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	converted, err := ParseYAML(&buf)
	if err != nil {
		t.Fatalf("ParseYAML: %v\n%s", err, buf.String())
	}

	want, got := tree.Nodes(), converted.Nodes()
	if len(want) != len(got) {
		t.Fatalf("converted tree has %d nodes, want %d", len(got), len(want))
	}
	for i := range want {
		if !reflect.DeepEqual(want[i], got[i]) {
			t.Errorf("node %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "tree.xml")
	yamlPath := filepath.Join(dir, "tree.YML")
	if err := os.WriteFile(xmlPath, []byte(sharedXML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	if tree, err := LoadFile(xmlPath); err != nil || tree.NodeCount() != 8 {
		t.Errorf("LoadFile(xml) = %v, %v", tree, err)
	}
	if tree, err := LoadFile(yamlPath); err != nil || tree.NodeCount() != 4 {
		t.Errorf("LoadFile(yaml) = %v, %v", tree, err)
	}

	if _, err := LoadFile(filepath.Join(dir, "tree.json")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.xml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want not-exist", err)
	}
}
