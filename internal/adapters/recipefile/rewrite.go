package recipefile

import (
	"bytes"
	"slices"
	"sort"

	"go.trai.ch/hob/internal/core/domain"
)

type edit struct {
	start, end int
	text       []byte
}

// rewrite returns src with the value of every binding named in updates
// replaced. Bindings that do not exist are inserted as new lines after the
// last state binding, else after the last definition binding, else at the top.
func rewrite(src []byte, bindings []binding, updates map[string]domain.Value) []byte {
	var edits []edit
	found := make(map[string]bool, len(updates))

	for _, b := range bindings {
		v, ok := updates[b.Name]
		if !ok {
			continue
		}
		found[b.Name] = true
		edits = append(edits, edit{start: b.ValueStart, end: b.ValueEnd, text: []byte(v.Literal())})
	}

	missing := missingNames(updates, found)
	if len(missing) > 0 {
		pos, leadingNewline := insertPosition(src, bindings)
		var buf bytes.Buffer
		if leadingNewline {
			buf.WriteByte('\n')
		}
		for _, name := range missing {
			buf.WriteString("let ")
			buf.WriteString(name)
			buf.WriteString(" = ")
			buf.WriteString(updates[name].Literal())
			buf.WriteString(";\n")
		}
		edits = append(edits, edit{start: pos, end: pos, text: buf.Bytes()})
	}

	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	out := slices.Clone(src)
	for _, e := range edits {
		out = slices.Concat(out[:e.start], e.text, out[e.end:])
	}
	return out
}

// missingNames returns the update keys with no existing binding: state
// variables in canonical order first, then the rest sorted.
func missingNames(updates map[string]domain.Value, found map[string]bool) []string {
	var names, rest []string
	for _, name := range domain.StateVars {
		if _, ok := updates[name]; ok && !found[name] {
			names = append(names, name)
		}
	}
	for name := range updates {
		if !found[name] && !slices.Contains(domain.StateVars, name) {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(names, rest...)
}

// insertPosition returns the offset of the line after the anchor binding and
// whether a newline must precede the inserted text.
func insertPosition(src []byte, bindings []binding) (int, bool) {
	anchor := -1
	for _, group := range [][]string{domain.StateVars, domain.DefinitionVars} {
		for _, b := range bindings {
			if slices.Contains(group, b.Name) && b.End > anchor {
				anchor = b.End
			}
		}
		if anchor >= 0 {
			break
		}
	}
	if anchor < 0 {
		return 0, false
	}

	nl := bytes.IndexByte(src[anchor:], '\n')
	if nl < 0 {
		return len(src), true
	}
	return anchor + nl + 1, false
}
