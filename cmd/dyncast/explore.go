package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/dyncast"
	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/errors"
	"github.com/wippyai/dyncast/hierarchy"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	classStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	baseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	allowedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type exploreState int

const (
	stateSelectClass exploreState = iota
	stateShowClass
	stateSeedInput
)

type exploreModel struct {
	err      error
	model    *dyncast.Model
	build    func(seed uint64, mode abi.Mode) (*dyncast.Model, error)
	seedIn   textinput.Model
	seed     uint64
	mode     abi.Mode
	selected int
	state    exploreState
}

type builtMsg struct {
	err   error
	model *dyncast.Model
}

func newExploreModel(seed uint64, mode abi.Mode, build func(uint64, abi.Mode) (*dyncast.Model, error)) *exploreModel {
	ti := textinput.New()
	ti.Prompt = "seed: "
	ti.Placeholder = "number"
	ti.Width = 20
	return &exploreModel{
		build:  build,
		seedIn: ti,
		seed:   seed,
		mode:   mode,
		state:  stateSelectClass,
	}
}

func (m *exploreModel) Init() tea.Cmd {
	return m.rebuild
}

func (m *exploreModel) rebuild() tea.Msg {
	model, err := m.build(m.seed, m.mode)
	return builtMsg{model: model, err: err}
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateSeedInput {
			return m.updateSeedInput(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectClass && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectClass && m.model != nil && m.selected < len(m.model.Classes())-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectClass:
				if m.model != nil {
					m.state = stateShowClass
				}
			case stateShowClass:
				m.state = stateSelectClass
			}

		case "esc":
			m.state = stateSelectClass

		case "m":
			if m.mode == abi.Itanium {
				m.mode = abi.Microsoft
			} else {
				m.mode = abi.Itanium
			}
			return m, m.rebuild

		case "n":
			m.seed++
			m.selected = 0
			return m, m.rebuild

		case "s":
			m.state = stateSeedInput
			m.seedIn.SetValue("")
			m.seedIn.Focus()
			return m, textinput.Blink
		}

	case builtMsg:
		m.err = msg.err
		if msg.err == nil {
			m.model = msg.model
			if m.selected >= len(m.model.Classes()) {
				m.selected = 0
			}
		}
	}
	return m, nil
}

func (m *exploreModel) updateSeedInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.seedIn.Blur()
		m.state = stateSelectClass
		return m, nil
	case "enter":
		m.seedIn.Blur()
		m.state = stateSelectClass
		seed, err := strconv.ParseUint(strings.TrimSpace(m.seedIn.Value()), 10, 64)
		if err != nil {
			m.err = errors.InvalidInput(errors.PhaseGenerate, "seed must be a non-negative integer")
			return m, nil
		}
		m.seed = seed
		m.selected = 0
		return m, m.rebuild
	}
	var cmd tea.Cmd
	m.seedIn, cmd = m.seedIn.Update(msg)
	return m, cmd
}

func (m *exploreModel) View() string {
	if m.model == nil {
		if m.err != nil {
			return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
		}
		return "Generating hierarchy..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("dyncast"))
	b.WriteString(fmt.Sprintf(" seed %d, %s\n\n", m.seed, m.model.Target()))
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	classes := m.model.Classes()
	switch m.state {
	case stateSelectClass, stateSeedInput:
		for i, c := range classes {
			line := m.formatClass(c)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.state == stateSeedInput {
			b.WriteString(m.seedIn.View())
			b.WriteString("\n")
			b.WriteString(helpStyle.Render("enter load • esc cancel"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • enter layout • m toggle ABI • n next seed • s seed • q quit"))
		}

	case stateShowClass:
		b.WriteString(m.classDetail(classes[m.selected]))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))
	}
	return b.String()
}

func (m *exploreModel) formatClass(c *hierarchy.Class) string {
	var bases []string
	for _, e := range c.Bases() {
		bases = append(bases, baseStyle.Render(e.String()))
	}
	s := classStyle.Render(c.Name())
	if len(bases) > 0 {
		s += " : " + strings.Join(bases, ", ")
	}
	return s
}

// classDetail renders the layout dump of c and the dynamic_cast row for it.
func (m *exploreModel) classDetail(c *hierarchy.Class) string {
	var b strings.Builder
	l, err := m.model.Layout(c)
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", err))
	}
	b.WriteString(fmt.Sprintf("%s, %d bytes\n\n", m.formatClass(c), l.Size()))
	_ = l.Dump(&b)

	b.WriteString("\ndynamic_cast from ")
	b.WriteString(classStyle.Render(c.Name()))
	b.WriteString(":\n")
	o := m.model.Oracle()
	for _, to := range m.model.Classes() {
		mark := errorStyle.Render("no ")
		if o.CanDynamicCast(c, to) {
			mark = allowedStyle.Render("yes")
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", mark, to.Name()))
	}
	return b.String()
}

func newExploreCmd(a *app) *cobra.Command {
	var (
		seed uint64
		msvc bool
	)
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse generated hierarchies, layouts and cast tables interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
				return errors.Unsupported(errors.PhaseGenerate, "explore needs an interactive terminal")
			}
			build := func(seed uint64, mode abi.Mode) (*dyncast.Model, error) {
				return dyncast.Build(seed, a.cfg.Target(mode), a.generateOptions())
			}
			p := tea.NewProgram(newExploreModel(seed, modeFlag(msvc), build), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 1, "initial seed")
	cmd.Flags().BoolVar(&msvc, "msvc", false, "start with the Microsoft ABI")
	return cmd
}
