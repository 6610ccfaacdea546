package cli

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/facette/natsort"
	"github.com/mattn/go-isatty"

	"github.com/juruladenbam/bam-sub000/pkg/family"
)

// PersonPickerModel is the bubbletea model for choosing one person. Typing
// filters the list by name or id; arrows move the cursor.
type PersonPickerModel struct {
	Title    string
	All      []family.Person
	Branches map[family.ID]string
	Query    textinput.Model
	Cursor   int
	Offset   int
	Height   int
	Selected *family.Person

	visible []family.Person
}

// NewPersonPickerModel creates a picker over persons in natural name order.
func NewPersonPickerModel(title string, persons []family.Person, branches map[family.ID]string) PersonPickerModel {
	sorted := slices.Clone(persons)
	slices.SortStableFunc(sorted, func(a, b family.Person) int {
		switch {
		case natsort.Compare(a.FullName, b.FullName):
			return -1
		case natsort.Compare(b.FullName, a.FullName):
			return 1
		}
		return cmp.Compare(a.ID, b.ID)
	})
	ti := textinput.New()
	ti.Prompt = "› "
	ti.PromptStyle = StyleHighlight
	ti.Placeholder = "name or id"
	ti.CharLimit = 64
	ti.Focus()

	m := PersonPickerModel{
		Title:    title,
		All:      sorted,
		Branches: branches,
		Query:    ti,
		Height:   15,
	}
	m.applyFilter()
	return m
}

// Visible returns the persons matching the current query.
func (m PersonPickerModel) Visible() []family.Person { return m.visible }

func (m *PersonPickerModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.Query.Value()))
	visible := make([]family.Person, 0, len(m.All))
	for _, p := range m.All {
		if q == "" ||
			strings.Contains(strings.ToLower(p.FullName), q) ||
			strings.Contains(strings.ToLower(p.Nickname), q) ||
			p.ID.String() == q {
			visible = append(visible, p)
		}
	}
	m.visible = visible
	m.Cursor, m.Offset = 0, 0
}

func (m PersonPickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m PersonPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
			return m, nil
		case tea.KeyDown:
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
			return m, nil
		case tea.KeyEnter:
			if len(m.visible) == 0 {
				return m, nil
			}
			p := m.visible[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		return m, nil
	}

	before := m.Query.Value()
	var cmd tea.Cmd
	m.Query, cmd = m.Query.Update(msg)
	if m.Query.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

func (m PersonPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n")
	b.WriteString(m.Query.View())
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.visible))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		status := "✝"
		if p.IsAlive {
			status = ""
		}
		branch := m.Branches[p.BranchID]
		if branch == "" {
			branch = "—"
		}
		rows = append(rows, []string{cursor, p.ID.String(), p.FullName, branch, fmt.Sprintf("%d", p.Generation), status})
	}

	t := newTable(func(row, col int) lipgloss.Style {
		switch {
		case m.Offset+row == m.Cursor:
			return styleSelected
		case col == 1 || col == 4:
			return StyleDim
		}
		return lipgloss.NewStyle()
	}, "", "ID", "Name", "Branch", "Gen", "").Rows(rows...)

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(m.visible) == 0 {
		b.WriteString(StyleDim.Render("  no match"))
	} else {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.visible))))
	}

	return b.String()
}

// isTTY reports whether stdin and stdout are both terminals.
func isTTY() bool {
	term := func(f *os.File) bool {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return term(os.Stdin) && term(os.Stdout)
}

// pickPerson runs the picker and returns the chosen person, or nil when
// the user quit.
func pickPerson(title string, persons []family.Person, branches map[family.ID]string) (*family.Person, error) {
	final, err := tea.NewProgram(NewPersonPickerModel(title, persons, branches)).Run()
	if err != nil {
		return nil, fmt.Errorf("person picker: %w", err)
	}
	return final.(PersonPickerModel).Selected, nil
}
