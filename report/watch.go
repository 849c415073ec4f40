package report

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nodetwin/twinsim/sim"
)

// Stepper is the narrow interface Watch needs from a simulator: one
// frame at a time, plus whether the device is still active.
type Stepper interface {
	Step() (sim.Frame, bool)
}

type tickMsg time.Time

type frameMsg struct {
	frame sim.Frame
	done  bool
}

// Model is the bubbletea program driving the live --watch view.
type Model struct {
	stepper  Stepper
	interval time.Duration
	onFrame  func(sim.Frame)
	frame    sim.Frame
	done     bool
	width    int
}

// NewModel builds a watch model polling stepper every interval.
// onFrame, if non-nil, is invoked once per tick so a caller can record
// the tick log without driving the stepper a second time.
func NewModel(stepper Stepper, interval time.Duration, onFrame func(sim.Frame)) Model {
	return Model{stepper: stepper, interval: interval, onFrame: onFrame}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(m.interval), stepOnce(m.stepper))
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func stepOnce(stepper Stepper) tea.Cmd {
	return func() tea.Msg {
		frame, active := stepper.Step()
		return frameMsg{frame: frame, done: !active}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tea.Batch(tick(m.interval), stepOnce(m.stepper))
	case frameMsg:
		m.frame = msg.frame
		m.done = msg.done
		if m.onFrame != nil {
			m.onFrame(msg.frame)
		}
		if m.done {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	device := m.frame.Device

	b.WriteString(titleStyle.Render(fmt.Sprintf("tick %d", m.frame.Tick)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("battery  ") + valueStyle.Render(fmt.Sprintf("%.1f%%", device.Battery.Percentage*100)) + "\n")
	b.WriteString(labelStyle.Render("cpu      ") + valueStyle.Render(fmt.Sprintf("%.0f%%", device.CPU.Utilization*100)) + "\n")
	b.WriteString(labelStyle.Render("memory   ") + valueStyle.Render(fmt.Sprintf("%.0f%%", device.Memory.Utilization*100)) + "\n")
	b.WriteString(labelStyle.Render("drift    ") + valueStyle.Render(fmt.Sprintf("%.3f", m.frame.Twin.CurrentDrift)) + "\n")

	for _, a := range m.frame.Alerts {
		b.WriteString(severityStyle(a.Severity).Render(fmt.Sprintf("%s [%s] %s: %s", a.Icon, a.Severity, a.Component, a.Message)))
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n" + labelStyle.Render("device inactive — run finished") + "\n")
	} else {
		b.WriteString("\n" + labelStyle.Render("press q to quit") + "\n")
	}

	return panelStyle.Render(b.String())
}

// Watch runs the live bubbletea view over stepper until the device
// goes inactive or the user quits, invoking onFrame once per tick (for
// tick-log recording) and returning the last frame observed.
func Watch(stepper Stepper, interval time.Duration, onFrame func(sim.Frame)) (sim.Frame, error) {
	m := NewModel(stepper, interval, onFrame)
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return sim.Frame{}, err
	}
	return final.(Model).frame, nil
}
