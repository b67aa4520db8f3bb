package dash

import (
	"fmt"
	"strings"

	"wastenot/cmd/wastenot/ui"
)

// pickerGroup is one filter dimension with its vocabulary.
type pickerGroup struct {
	label  string
	values []string
}

// picker is a keyboard-driven multi-select over grouped values.
type picker struct {
	title   string
	groups  []pickerGroup
	cursor  int
	checked map[string]bool
}

func newPicker(title string, groups ...pickerGroup) *picker {
	p := &picker{title: title, checked: make(map[string]bool)}
	for _, g := range groups {
		if len(g.values) > 0 {
			p.groups = append(p.groups, g)
		}
	}
	return p
}

func pickKey(label, value string) string {
	return label + "\x1f" + value
}

// preselect marks values that are already part of the active filter.
func (p *picker) preselect(label string, values []string) {
	for _, v := range values {
		p.checked[pickKey(label, v)] = true
	}
}

func (p *picker) size() int {
	n := 0
	for _, g := range p.groups {
		n += len(g.values)
	}
	return n
}

// item resolves a flattened cursor index to its group and value.
func (p *picker) item(idx int) (string, string) {
	for _, g := range p.groups {
		if idx < len(g.values) {
			return g.label, g.values[idx]
		}
		idx -= len(g.values)
	}
	return "", ""
}

func (p *picker) moveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

func (p *picker) moveDown() {
	if p.cursor < p.size()-1 {
		p.cursor++
	}
}

func (p *picker) toggle() {
	label, value := p.item(p.cursor)
	if label == "" {
		return
	}
	k := pickKey(label, value)
	if p.checked[k] {
		delete(p.checked, k)
	} else {
		p.checked[k] = true
	}
}

func (p *picker) clear() {
	p.checked = make(map[string]bool)
}

// chosen returns the checked values of one group in vocabulary order.
func (p *picker) chosen(label string) []string {
	var out []string
	for _, g := range p.groups {
		if g.label != label {
			continue
		}
		for _, v := range g.values {
			if p.checked[pickKey(g.label, v)] {
				out = append(out, v)
			}
		}
	}
	return out
}

func (p *picker) view(s ui.Styles) string {
	var sb strings.Builder
	sb.WriteString(s.Title.Render(p.title))
	sb.WriteString("\n")

	idx := 0
	for _, g := range p.groups {
		sb.WriteString(s.Subtitle.Render(g.label))
		sb.WriteString("\n")
		for _, v := range g.values {
			mark := "[ ]"
			if p.checked[pickKey(g.label, v)] {
				mark = "[x]"
			}
			line := fmt.Sprintf("%s %s", mark, v)
			if idx == p.cursor {
				sb.WriteString(s.Bold.Render("▸ " + line))
			} else {
				sb.WriteString(s.Body.Render("  " + line))
			}
			sb.WriteString("\n")
			idx++
		}
	}

	sb.WriteString("\n")
	sb.WriteString(s.Muted.Render("space:toggle  x:clear  esc:done"))
	return sb.String()
}
