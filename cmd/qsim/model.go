package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qsim"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusMenu
	focusSelectTarget
	focusSelectControls
	focusInputParam
	focusInputCount
)

// Model represents the TUI application state.
type Model struct {
	circuit      *qsim.Circuit
	cursorQubit  int
	cursorCol    int
	viewStartCol int // first column currently visible in the view
	width        int
	height       int
	focus        focus
	statusMsg    string // transient status message (e.g. run errors)
	measured     string // last measure-all bitstring

	// Menu state
	menuCat  int
	menuItem int

	// Target-selection state (for multi-qubit gates)
	pending       menuItem
	targetQubit   int
	controlQubits []int

	// Parameter / repeat-count entry
	input textinput.Model
}

func initialModel() Model {
	ti := textinput.New()
	ti.CharLimit = 16
	ti.Width = 20

	return Model{
		circuit: qsim.NewCircuit(4),
		input:   ti,
	}
}

// placeGate places the pending menu item at the cursor. targetQ is the
// target qubit for multi-qubit gates (-1 for single-qubit). Anything
// already at the touched cells is replaced.
func (m *Model) placeGate(item menuItem, targetQ int) bool {
	c := m.circuit
	col := m.cursorCol

	var err error
	switch {
	case item.isMarker:
		if item.kind == qsim.KindRepeat {
			count, convErr := strconv.Atoi(strings.TrimSpace(m.input.Value()))
			if convErr != nil || count < 0 {
				m.statusMsg = "Invalid repeat count — use a non-negative integer"
				return false
			}
			c.AddRepeat(col, count)
		} else {
			c.AddEnd(col)
		}

	case item.extraCtrl:
		controls := append([]int{m.cursorQubit}, m.controlQubits...)
		for _, q := range append(slices.Clone(controls), targetQ) {
			c.RemoveAt(col, q)
		}
		err = c.AddMultiControlled(item.kind, controls, targetQ, col)

	case item.needsTarget:
		c.RemoveAt(col, m.cursorQubit)
		c.RemoveAt(col, targetQ)
		err = c.AddControlled(item.kind, m.cursorQubit, targetQ, col)

	case item.needsParam:
		val, ok := parseParamExpr(m.input.Value())
		if !ok {
			m.statusMsg = "Invalid parameter — use numbers or pi expressions (e.g. pi/2, 3*pi/4)"
			return false
		}
		c.RemoveAt(col, m.cursorQubit)
		if item.kind.Parametric() {
			err = c.AddRotation(item.kind, m.cursorQubit, col, val)
		} else {
			err = c.AddNoise(item.kind, m.cursorQubit, col, val)
		}

	default:
		c.RemoveAt(col, m.cursorQubit)
		err = c.Add(item.kind, m.cursorQubit, col)
	}

	if err != nil {
		m.statusMsg = fmt.Sprintf("Cannot place: %v", err)
		m.clearPending()
		return false
	}

	m.clearPending()
	m.cursorCol++
	return true
}

func (m *Model) clearPending() {
	m.pending = menuItem{}
	m.controlQubits = nil
	m.input.SetValue("")
	m.input.Blur()
}

// beginTargetSelect moves focus to target selection, seeding the target to
// the nearest free qubit.
func (m *Model) beginTargetSelect() bool {
	if m.circuit.NumQubits < 2+len(m.controlQubits) {
		m.statusMsg = "Not enough qubits for this gate"
		return false
	}
	m.focus = focusSelectTarget
	m.targetQubit = m.nextFreeQubit(m.cursorQubit, +1)
	return true
}

// nextFreeQubit scans from start in the given direction for a qubit that is
// neither the cursor nor an already-chosen control, wrapping once.
func (m *Model) nextFreeQubit(start, dir int) int {
	n := m.circuit.NumQubits
	for i := 1; i <= n; i++ {
		q := ((start+dir*i)%n + n) % n
		if q != m.cursorQubit && !slices.Contains(m.controlQubits, q) {
			return q
		}
	}
	return start
}

func (m *Model) runCircuit() {
	m.measured = ""
	if _, err := m.circuit.Execute(); err != nil {
		m.statusMsg = fmt.Sprintf("Run failed: %v", err)
	}
}

func (m *Model) measureAll() {
	m.runCircuit()
	if m.circuit.State == nil {
		return
	}
	m.measured = m.circuit.State.MeasureAll()
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			m.statusMsg = ""
			switch key {
			case "q":
				return m, tea.Quit
			case "up", "k":
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case "down", "j":
				if m.cursorQubit < m.circuit.NumQubits-1 {
					m.cursorQubit++
				}
			case "left", "h":
				if m.cursorCol > 0 {
					m.cursorCol--
					if m.cursorCol < m.viewStartCol {
						m.viewStartCol = m.cursorCol
					}
				}
			case "right", "l":
				m.cursorCol++
			case "+", "=":
				if m.circuit.NumQubits < maxQubit {
					m.circuit.NumQubits++
				}
			case "-":
				if m.circuit.NumQubits > 1 {
					m.circuit.NumQubits--
					m.circuit.RemoveOnQubit(m.circuit.NumQubits)
					m.cursorQubit = min(m.cursorQubit, m.circuit.NumQubits-1)
				}
			case "a", "enter":
				m.focus = focusMenu
				m.menuCat = 0
				m.menuItem = 0
			case "backspace", "delete", "d", "x":
				if m.circuit.GateAt(m.cursorCol, m.cursorQubit) != nil {
					m.circuit.RemoveAt(m.cursorCol, m.cursorQubit)
				} else {
					m.circuit.RemoveMarkerAt(m.cursorCol)
				}
			case "r":
				m.runCircuit()
			case "m":
				m.measureAll()
			case "ctrl+r":
				m.circuit = qsim.NewCircuit(m.circuit.NumQubits)
				m.measured = ""
				m.cursorCol = 0
				m.viewStartCol = 0
			}

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusCircuit
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(gateMenu[m.menuCat].items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(gateMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				item := gateMenu[m.menuCat].items[m.menuItem]
				m.pending = item
				m.statusMsg = ""

				switch {
				case item.needsParam || item.needsCount:
					m.input.SetValue("")
					m.input.Placeholder = item.paramHint
					if item.needsCount {
						m.input.Placeholder = "2"
						m.focus = focusInputCount
					} else {
						m.focus = focusInputParam
					}
					m.input.Focus()
					cmds = append(cmds, textinput.Blink)
				case item.extraCtrl:
					if m.circuit.NumQubits < 3 {
						m.statusMsg = "Not enough qubits for this gate"
						m.focus = focusCircuit
						break
					}
					m.controlQubits = nil
					m.focus = focusSelectControls
					m.targetQubit = m.nextFreeQubit(m.cursorQubit, +1)
				case item.needsTarget:
					if !m.beginTargetSelect() {
						m.focus = focusCircuit
					}
				default:
					m.placeGate(item, -1)
					m.focus = focusCircuit
				}
			}

		case focusSelectTarget:
			switch key {
			case "esc":
				m.clearPending()
				m.focus = focusCircuit
			case "up", "k":
				m.targetQubit = m.nextFreeQubit(m.targetQubit, -1)
			case "down", "j":
				m.targetQubit = m.nextFreeQubit(m.targetQubit, +1)
			case "enter":
				m.placeGate(m.pending, m.targetQubit)
				m.focus = focusCircuit
			}

		case focusSelectControls:
			switch key {
			case "esc":
				m.clearPending()
				m.focus = focusCircuit
			case "up", "k":
				m.targetQubit = m.nextFreeQubit(m.targetQubit, -1)
			case "down", "j":
				m.targetQubit = m.nextFreeQubit(m.targetQubit, +1)
			case "enter":
				m.controlQubits = append(m.controlQubits, m.targetQubit)
				if m.beginTargetSelect() {
					break
				}
				m.clearPending()
				m.focus = focusCircuit
			}

		case focusInputParam, focusInputCount:
			switch key {
			case "esc":
				m.clearPending()
				m.focus = focusCircuit
			case "enter":
				// Parse failures keep the input open for another try.
				if m.placeGate(m.pending, -1) || m.pending.kind == qsim.KindUnknown {
					m.focus = focusCircuit
				}
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	stateWidth := m.width / 3
	circuitWidth := m.width - stateWidth - 4
	controlsHeight := 6
	circuitHeight := max(m.height-controlsHeight-2, 6)

	circuitPanel := m.renderCircuitPanel(circuitWidth, circuitHeight)
	statePanel := m.renderStatePanel(stateWidth, circuitHeight)
	controlsPanel := m.renderControlsPanel(m.width - 4)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, statePanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputParam:
		frame = overlayAt(frame, m.renderInputBox("Enter Parameter", "Examples: pi/2, 3*pi/4, 1.57"), 2, 2)
	case focusInputCount:
		frame = overlayAt(frame, m.renderInputBox("Repeat Count", "Number of iterations, 0 skips the block"), 2, 2)
	}

	return frame
}

// renderInputBox renders the text-entry overlay for angles and counts.
func (m Model) renderInputBox(title, hint string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render(hint))
	return menuBorderStyle.Render(sb.String())
}
