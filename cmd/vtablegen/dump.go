package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/wippyai/vtable/compiler"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	ownStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// dump renders the slot table of every interface. styled adds colors and
// rounded borders; otherwise the output is plain ASCII.
func dump(pkgs []*compiler.Package, styled bool) string {
	var b strings.Builder
	for _, pkg := range pkgs {
		for _, u := range pkg.Units {
			title := unitTitle(pkg, u)
			if styled {
				title = headerStyle.Render(title)
			}
			b.WriteString(title)
			b.WriteByte('\n')
			b.WriteString(slotTable(u, styled))
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func unitTitle(pkg *compiler.Package, u *compiler.Unit) string {
	title := u.QualifiedName(pkg.Name)
	if u.Base != nil {
		title += " : " + u.Base.QualifiedName(pkg.Name)
	}
	return fmt.Sprintf("%s  (%s, size %d, align %d)", title, pkg.Model, u.Size, u.Align)
}

func slotRows(u *compiler.Unit) [][]string {
	rows := make([][]string, 0, len(u.Slots))
	for _, s := range u.Slots {
		rows = append(rows, []string{
			strconv.Itoa(s.Index),
			strconv.FormatUint(uint64(s.Offset), 10),
			s.Name,
			s.Owner,
			s.Method.Signature(),
		})
	}
	return rows
}

func slotTable(u *compiler.Unit, styled bool) string {
	t := table.New().
		Headers("#", "OFFSET", "SLOT", "OWNER", "SIGNATURE").
		Rows(slotRows(u)...)
	if !styled {
		return t.Border(lipgloss.ASCIIBorder()).String()
	}

	own := u.BaseSize()
	return t.Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return cellStyle.Bold(true)
			case row < len(u.Slots) && u.Slots[row].Offset >= own:
				return cellStyle.Inherit(ownStyle)
			default:
				return cellStyle
			}
		}).
		String()
}
