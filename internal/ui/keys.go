package ui

import (
	"fmt"
	"strings"

	"github.com/bnema/inputhook/event"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// EventMsg carries one hooked event into the key displayer.
type EventMsg event.Event

// SourceClosedMsg is sent once the event channel closes.
type SourceClosedMsg struct{}

// WaitForEvent reads the next event from src.
func WaitForEvent(src <-chan event.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-src
		if !ok {
			return SourceClosedMsg{}
		}
		return EventMsg(ev)
	}
}

const defaultHistory = 12

// KeysModel shows live hook activity: held modifiers and buttons, the
// last key, the pointer position and a short history.
type KeysModel struct {
	src     <-chan event.Event
	spinner spinner.Model
	history int

	enabled bool
	closed  bool
	mask    uint32
	lastKey string
	x, y    float64
	events  []event.Event
	counts  map[event.Type]int
}

func NewKeysModel(src <-chan event.Event) *KeysModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return &KeysModel{
		src:     src,
		spinner: s,
		history: defaultHistory,
		counts:  make(map[event.Type]int),
	}
}

func (m *KeysModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, WaitForEvent(m.src))
}

func (m *KeysModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case EventMsg:
		m.record(event.Event(msg))
		return m, WaitForEvent(m.src)
	case SourceClosedMsg:
		m.closed = true
		m.enabled = false
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *KeysModel) record(ev event.Event) {
	m.mask = ev.Mask
	m.counts[ev.Type]++

	switch ev.Type {
	case event.HookEnabled:
		m.enabled = true
	case event.HookDisabled:
		m.enabled = false
	case event.KeyPressed:
		m.lastKey = ev.Keyboard.Key.String()
	}
	if x, y, ok := ev.Position(); ok {
		m.x, m.y = x, y
	}

	m.events = append(m.events, ev)
	if len(m.events) > m.history {
		m.events = m.events[len(m.events)-m.history:]
	}
}

func (m *KeysModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("inputhook keys"))
	b.WriteString("\n\n")

	switch {
	case m.closed:
		b.WriteString(SubtleStyle.Render("hook stopped"))
		b.WriteString("\n")
		return b.String()
	case !m.enabled:
		b.WriteString(m.spinner.View() + " waiting for the hook to start...\n")
		return b.String()
	}

	b.WriteString(m.renderMask())
	b.WriteString("\n\n")

	lastKey := m.lastKey
	if lastKey == "" {
		lastKey = "-"
	}
	b.WriteString(fmt.Sprintf("Last key: %s   Pointer: (%.0f, %.0f)   Events: %d\n",
		BoldStyle.Render(lastKey), m.x, m.y, m.total()))
	b.WriteString(CreateSeparator(50, ""))
	b.WriteString("\n")

	for _, ev := range m.events {
		b.WriteString(FormatEvent(ev))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(FormatControl("q", "Quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *KeysModel) renderMask() string {
	held := make(map[string]bool)
	for _, name := range MaskNames(m.mask) {
		held[name] = true
	}

	var cells []string
	for _, mn := range maskNames {
		style := InactiveStyle
		if held[mn.name] {
			style = ActiveStyle
		}
		cells = append(cells, style.Render(mn.name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m *KeysModel) total() int {
	n := 0
	for _, c := range m.counts {
		n += c
	}
	return n
}

// Count returns how many events of type t were seen.
func (m *KeysModel) Count(t event.Type) int {
	return m.counts[t]
}

// Mask returns the mask carried by the last event.
func (m *KeysModel) Mask() uint32 {
	return m.mask
}

// RunKeys runs the key displayer until the user quits or src closes.
func RunKeys(src <-chan event.Event, opts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(NewKeysModel(src), opts...).Run()
	return err
}
