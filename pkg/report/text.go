package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type textStyles struct {
	title lipgloss.Style
	key   lipgloss.Style
	pair  lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")),
		key: r.NewStyle().
			Foreground(lipgloss.Color("#00FFFF")),
		pair: r.NewStyle().
			PaddingLeft(2),
	}
}

// TextOptions controls WriteText
type TextOptions struct {
	// ShowPairs lists every defense pair after the counts
	ShowPairs bool
}

// WriteText prints the per-tree figures one per line. Styling is dropped
// automatically when w is not a terminal.
func WriteText(w io.Writer, r *Report, opts TextOptions) error {
	s := r.Summary
	lines := []struct {
		key   string
		value any
	}{
		{"file name", r.File},
		{"number of nodes", s.Nodes},
		{"number of basic actions of the proponent", s.AttackerActions},
		{"number of basic actions of the opponent", s.DefenderActions},
		{"number of all opponent's strategies", s.OpponentStrategies},
		{"number of witnesses obtained via SuffWit", s.Witnesses},
		{"number of proponent's strategies", s.AttackStrategies},
		{"size of defense semantics", s.DefensePairs},
		{"time of computation", s.Duration},
	}

	st := newTextStyles(w)
	var b strings.Builder
	b.WriteString(st.title.Render("Defense semantics"))
	b.WriteByte('\n')
	for _, l := range lines {
		fmt.Fprintf(&b, "%s %v\n", st.key.Render(l.key+":"), l.value)
	}
	if opts.ShowPairs {
		for _, p := range s.Pairs {
			b.WriteString(st.pair.Render(p.String()))
			b.WriteByte('\n')
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
