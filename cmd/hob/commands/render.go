package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/muesli/termenv"
	"go.trai.ch/hob/internal/app"
	"go.trai.ch/hob/internal/ui/output"
	"go.trai.ch/hob/internal/ui/style"
)

// printer writes command output, colouring it only when the profile allows.
type printer struct {
	w   io.Writer
	out *termenv.Output
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, out: output.NewWithProfile(w, output.Profile(w))}
}

func (p *printer) paint(s string, c lipgloss.Color) string {
	return p.out.String(s).Foreground(p.out.Color(string(c))).String()
}

func (p *printer) bold(s string) string  { return p.out.String(s).Bold().String() }
func (p *printer) faint(s string) string { return p.paint(s, style.Slate) }
func (p *printer) ok(s string) string    { return p.paint(s, style.Green) }
func (p *printer) bad(s string) string   { return p.paint(s, style.Red) }
func (p *printer) note(s string) string  { return p.paint(s, style.Yellow) }

func (p *printer) println(a ...any) {
	_, _ = fmt.Fprintln(p.w, a...)
}

func (p *printer) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.w, format, a...)
}

// table prints rows in aligned columns without borders.
func (p *printer) table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for _, row := range append([][]string{headers}, rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	line := func(row []string, styleFn func(string) string) {
		var b strings.Builder
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(styleFn(cell))
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
			}
		}
		p.println(b.String())
	}
	line(headers, p.bold)
	for _, row := range rows {
		line(row, func(s string) string { return s })
	}
}

// renderTree draws a dependency tree with lipgloss tree glyphs.
func (p *printer) renderTree(root *app.TreeNode) string {
	t := tree.Root(p.treeLabel(root))
	addChildren(p, t, root.Children)
	return t.String()
}

func addChildren(p *printer, t *tree.Tree, children []*app.TreeNode) {
	for _, child := range children {
		if len(child.Children) == 0 {
			t.Child(p.treeLabel(child))
			continue
		}
		sub := tree.Root(p.treeLabel(child))
		addChildren(p, sub, child.Children)
		t.Child(sub)
	}
}

func (p *printer) treeLabel(n *app.TreeNode) string {
	var b strings.Builder
	switch {
	case n.Missing:
		b.WriteString(p.bad(style.Cross))
	case n.Installed:
		b.WriteString(p.ok(style.Dot))
	default:
		b.WriteString(p.faint(style.Circle))
	}
	b.WriteString(" ")
	b.WriteString(n.Name)
	if n.Version != "" {
		b.WriteString(" " + n.Version)
	}
	if n.Constraint != "" && n.Constraint != "*" {
		b.WriteString(p.faint(" (" + n.Constraint + ")"))
	}
	if n.Build {
		b.WriteString(p.faint(" [build]"))
	}
	switch {
	case n.Missing:
		b.WriteString(p.bad(" missing"))
	case n.Cycle:
		b.WriteString(p.bad(" (cycle)"))
	case n.Repeated:
		b.WriteString(p.faint(" (*)"))
	}
	return b.String()
}
