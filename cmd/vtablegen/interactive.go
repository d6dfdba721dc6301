package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/vtable/compiler"
	"github.com/wippyai/vtable/config"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	modelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// browser lists the interfaces of the inputs and shows the layout of the
// selected one under each data model.
type browser struct {
	err       error
	pkgs      map[compiler.DataModel][]*compiler.Package
	abi       string
	inputs    []string
	items     []item
	filter    textinput.Model
	selected  int
	model     int
	filtering bool
}

type item struct {
	pkg  int
	name string
	full string
}

type compiledMsg struct {
	err  error
	pkgs map[compiler.DataModel][]*compiler.Package
}

func newBrowser(inputs []string, abi string, start compiler.DataModel) *browser {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter interfaces"
	ti.Width = 40

	b := &browser{inputs: inputs, abi: abi, filter: ti}
	for i, m := range compiler.DataModels {
		if m == start {
			b.model = i
		}
	}
	return b
}

func (b *browser) Init() tea.Cmd {
	return b.compile
}

func (b *browser) compile() tea.Msg {
	pkgs := make(map[compiler.DataModel][]*compiler.Package, len(compiler.DataModels))
	for _, m := range compiler.DataModels {
		p, err := compileAll(b.inputs, b.abi, m)
		if err != nil {
			return compiledMsg{err: err}
		}
		pkgs[m] = p
	}
	return compiledMsg{pkgs: pkgs}
}

func (b *browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case compiledMsg:
		b.err = msg.err
		b.pkgs = msg.pkgs
		b.refilter()
		return b, nil

	case tea.KeyMsg:
		if b.filtering {
			switch msg.String() {
			case "enter", "esc":
				b.filtering = false
				b.filter.Blur()
				return b, nil
			}
			var cmd tea.Cmd
			b.filter, cmd = b.filter.Update(msg)
			b.refilter()
			return b, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return b, tea.Quit
		case "/":
			b.filtering = true
			return b, b.filter.Focus()
		case "up", "k":
			if b.selected > 0 {
				b.selected--
			}
		case "down", "j":
			if b.selected < len(b.items)-1 {
				b.selected++
			}
		case "right", "l", "m":
			b.model = (b.model + 1) % len(compiler.DataModels)
		case "left", "h":
			b.model = (b.model + len(compiler.DataModels) - 1) % len(compiler.DataModels)
		}
	}
	return b, nil
}

func (b *browser) refilter() {
	pkgs := b.pkgs[compiler.DataModels[0]]
	q := strings.ToLower(strings.TrimSpace(b.filter.Value()))
	b.items = b.items[:0]
	for i, pkg := range pkgs {
		for _, u := range pkg.Units {
			full := u.QualifiedName(pkg.Name)
			if q != "" && !strings.Contains(strings.ToLower(full), q) {
				continue
			}
			b.items = append(b.items, item{pkg: i, name: u.Name, full: full})
		}
	}
	if b.selected >= len(b.items) {
		b.selected = max(len(b.items)-1, 0)
	}
}

// current returns the selected unit under the selected data model.
func (b *browser) current() (*compiler.Package, *compiler.Unit) {
	if len(b.items) == 0 {
		return nil, nil
	}
	it := b.items[b.selected]
	pkgs := b.pkgs[compiler.DataModels[b.model]]
	if it.pkg >= len(pkgs) {
		return nil, nil
	}
	pkg := pkgs[it.pkg]
	return pkg, pkg.Lookup(it.name)
}

func (b *browser) View() string {
	if b.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", b.err))
	}
	if b.pkgs == nil {
		return "Compiling..."
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("vtablegen"))
	s.WriteString(" ")
	for i, m := range compiler.DataModels {
		if i == b.model {
			s.WriteString(selectedStyle.Render(" " + string(m) + " "))
		} else {
			s.WriteString(modelStyle.Render(" " + string(m) + " "))
		}
	}
	s.WriteString("\n\n")

	if b.filtering || b.filter.Value() != "" {
		s.WriteString(b.filter.View())
		s.WriteString("\n\n")
	}

	if len(b.items) == 0 {
		s.WriteString("No interfaces match.\n")
	}
	for i, it := range b.items {
		if i == b.selected {
			s.WriteString(selectedStyle.Render("> " + it.full))
		} else {
			s.WriteString("  " + it.full)
		}
		s.WriteString("\n")
	}

	if pkg, u := b.current(); u != nil {
		s.WriteString("\n")
		s.WriteString(unitTitle(pkg, u))
		s.WriteString("\n")
		s.WriteString(slotTable(u, true))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓ select • ←/→ data model • / filter • q quit"))
	return s.String()
}

func runInteractive(inputs []string, cfg *config.Config) error {
	p := tea.NewProgram(newBrowser(inputs, cfg.Generate.DefaultABI, cfg.Model()), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
