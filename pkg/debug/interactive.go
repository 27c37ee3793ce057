package debug

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InteractiveHook pauses after every cycle and renders the current
// Snapshot in a small bubbletea TUI, waiting for the user to press a
// key before letting the CPU advance, adapted from a 6502 debugger's
// page-table/status view into an architecture-neutral register dump.
type InteractiveHook struct {
	program *tea.Program
	model   *stepModel
}

// NewInteractiveHook starts the TUI and returns a hook that blocks in
// OnCycleEnd until the user presses a key to step.
func NewInteractiveHook() *InteractiveHook {
	m := &stepModel{ready: make(chan Snapshot), advance: make(chan struct{})}
	h := &InteractiveHook{model: m}
	h.program = tea.NewProgram(m)
	go func() {
		_, _ = h.program.Run()
	}()
	return h
}

// OnCycleEnd implements Hook: it hands the snapshot to the running TUI
// and blocks until the user steps past it.
func (h *InteractiveHook) OnCycleEnd(s Snapshot) {
	h.model.ready <- s
	<-h.model.advance
}

// Close tears down the TUI program.
func (h *InteractiveHook) Close() {
	h.program.Quit()
}

type stepModel struct {
	ready   chan Snapshot
	advance chan struct{}
	last    Snapshot
	quitted bool
}

func (m *stepModel) Init() tea.Cmd {
	return waitForSnapshot(m.ready)
}

type snapshotMsg Snapshot

func waitForSnapshot(ch chan Snapshot) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-ch)
	}
}

func (m *stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.last = Snapshot(msg)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitted = true
			close(m.advance)
			return m, tea.Quit
		case " ", "j", "n":
			close(m.advance)
			m.advance = make(chan struct{})
			return m, waitForSnapshot(m.ready)
		}
	}
	return m, nil
}

func (m *stepModel) View() string {
	var regs strings.Builder
	for i, v := range m.last.Gpr {
		name := fmt.Sprintf("r%d", i)
		if i < len(m.last.Names) {
			name = m.last.Names[i]
		}
		fmt.Fprintf(&regs, "%-5s = 0x%x\n", name, v)
	}
	header := fmt.Sprintf("cycle %d  pc=0x%x  %s", m.last.Executed, m.last.PC, m.last.Disasm)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		regs.String(),
		m.last.Flags,
		"",
		"(space/j: step, q: quit)",
	)
}
