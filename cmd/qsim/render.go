package main

import (
	"fmt"
	"math"
	"strings"

	"qsim"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given rune width.
func padCenter(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	total := width - len(runes)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns a short display name for a placement kind.
func gateDisplayName(k qsim.Kind) string {
	switch k {
	case qsim.KindSdg:
		return "S†"
	case qsim.KindTdg:
		return "T†"
	case qsim.KindMeasure:
		return "M"
	case qsim.KindReset:
		return "|0⟩"
	case qsim.KindNoiseAmp:
		return "Aγ"
	case qsim.KindNoisePhase:
		return "Pλ"
	case qsim.KindUnknown:
		return "?"
	default:
		return k.String()
	}
}

// targetSymbol returns the wire symbol for the target end of a controlled
// gate, or "" when the kind draws a plain box instead.
func targetSymbol(k qsim.Kind) string {
	switch k {
	case qsim.KindCX, qsim.KindMCX:
		return "⊕"
	case qsim.KindCY, qsim.KindMCY:
		return "Y"
	case qsim.KindCZ, qsim.KindMCZ:
		return "●"
	case qsim.KindSwap:
		return "×"
	}
	return ""
}

// placementSpan returns the lowest and highest qubit a placement touches.
func placementSpan(p *qsim.Placement) (lo, hi int) {
	lo, hi = p.Target, p.Target
	qs := p.Controls
	if p.Control >= 0 {
		qs = append([]int{p.Control}, qs...)
	}
	for _, q := range qs {
		lo = min(lo, q)
		hi = max(hi, q)
	}
	return lo, hi
}

// ──────────────────────────── Cell rendering ────────────────────────────

// cellText returns the unstyled wire line for one (column, qubit) cell,
// exactly cellW visible runes wide.
func (m Model) cellText(col, qubit int) string {
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1
	p := m.circuit.GateAt(col, qubit)

	if p == nil {
		// Pass-through when a vertical connector crosses this wire.
		if m.spansAcross(col, qubit) {
			return strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
		}
		return strings.Repeat("─", cellW)
	}

	isControl := p.Control == qubit
	for _, cq := range p.Controls {
		if cq == qubit {
			isControl = true
		}
	}
	if isControl {
		sym := "●"
		if p.Kind == qsim.KindSwap {
			sym = "×"
		}
		return strings.Repeat("─", dashL) + sym + strings.Repeat("─", dashR)
	}

	if sym := targetSymbol(p.Kind); sym != "" {
		return strings.Repeat("─", dashL) + sym + strings.Repeat("─", dashR)
	}

	return "┤" + padCenter(gateDisplayName(p.Kind), cellW-2) + "├"
}

// spansAcross reports whether a multi-qubit placement in the column spans
// over the given qubit without touching it.
func (m Model) spansAcross(col, qubit int) bool {
	for q := 0; q < m.circuit.NumQubits; q++ {
		p := m.circuit.GateAt(col, q)
		if p == nil || p.Control < 0 && len(p.Controls) == 0 {
			continue
		}
		lo, hi := placementSpan(p)
		if lo < qubit && qubit < hi {
			return true
		}
	}
	return false
}

// connectorRow renders the between-wires line for vertical gate connectors.
func (m Model) connectorRow(startCol, cols, qubit int) string {
	half := cellW / 2
	row := strings.Repeat(" ", labelW)
	for col := startCol; col < startCol+cols; col++ {
		cell := strings.Repeat(" ", cellW)
		for q := 0; q < m.circuit.NumQubits; q++ {
			p := m.circuit.GateAt(col, q)
			if p == nil {
				continue
			}
			lo, hi := placementSpan(p)
			if lo <= qubit && qubit < hi {
				cell = strings.Repeat(" ", half) + "│" + strings.Repeat(" ", cellW-half-1)
				break
			}
		}
		row += cell
	}
	return row
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuitPanel renders the circuit grid panel.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Quantum Circuit"))
	sb.WriteString("\n\n")

	availWidth := width - labelW - 4
	cols := max(availWidth/cellW, minCols)

	startCol := m.viewStartCol
	if m.cursorCol >= startCol+cols {
		startCol = m.cursorCol - cols + 1
	}

	// Column number header.
	header := strings.Repeat(" ", labelW)
	for col := startCol; col < startCol+cols; col++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", col), cellW))
	}
	sb.WriteString(header + "\n")

	// Control-flow marker row.
	markerRow := strings.Repeat(" ", labelW)
	for col := startCol; col < startCol+cols; col++ {
		mk := m.circuit.MarkerAt(col)
		switch {
		case mk == nil:
			markerRow += strings.Repeat(" ", cellW)
		case mk.Kind == qsim.KindRepeat:
			markerRow += markerStyle.Render(padCenter(fmt.Sprintf("↻%d", mk.Count), cellW))
		default:
			markerRow += markerStyle.Render(padCenter("⊣", cellW))
		}
	}
	sb.WriteString(markerRow + "\n")

	for qubit := 0; qubit < m.circuit.NumQubits; qubit++ {
		label := fmt.Sprintf("q[%d]", qubit)
		line := qubitLabelStyle.Render(fmt.Sprintf("%-4s", label)) + "──"

		for col := startCol; col < startCol+cols; col++ {
			text := m.cellText(col, qubit)
			var cell string
			switch {
			case col == m.cursorCol && qubit == m.targetQubit &&
				(m.focus == focusSelectTarget || m.focus == focusSelectControls):
				cell = targetSelectStyle.Render("▸" + padCenter("?", cellW-2) + "◂")
			case col == m.cursorCol && qubit == m.cursorQubit &&
				m.focus != focusSelectTarget && m.focus != focusSelectControls:
				cell = cursorStyle.Render(text)
			case m.circuit.GateAt(col, qubit) != nil:
				cell = gateStyle.Render(text)
			default:
				cell = text
			}
			line += cell
		}
		sb.WriteString(line + "\n")

		if qubit < m.circuit.NumQubits-1 {
			sb.WriteString(m.connectorRow(startCol, cols, qubit) + "\n")
		}
	}

	// Status line.
	sb.WriteString("\n")
	switch m.focus {
	case focusSelectTarget:
		fmt.Fprintf(&sb, "  %s  target: %s  %s",
			markerStyle.Render(m.pending.name),
			targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)),
			dimStyle.Render("↑↓ Move  ⏎ Ok  Esc ✕"))
	case focusSelectControls:
		fmt.Fprintf(&sb, "  %s  control: %s  %s",
			markerStyle.Render(m.pending.name),
			targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)),
			dimStyle.Render("↑↓ Move  ⏎ Ok  Esc ✕"))
	default:
		fmt.Fprintf(&sb, "  q[%d] · column %d", m.cursorQubit, m.cursorCol)
		if p := m.circuit.GateAt(m.cursorCol, m.cursorQubit); p != nil && len(p.Params) > 0 {
			fmt.Fprintf(&sb, "  │  %s(%s)", gateDisplayName(p.Kind), formatParam(p.Params[0]))
		}
		if m.statusMsg != "" {
			fmt.Fprintf(&sb, "  │  %s", mixedStyle.Render(m.statusMsg))
		}
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderStatePanel renders amplitudes, per-qubit probabilities and Bloch
// coordinates for the state of the last run.
func (m Model) renderStatePanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("State"))
	sb.WriteString("\n\n")

	s := m.circuit.State
	if s == nil {
		sb.WriteString(dimStyle.Render("Press r to run the circuit."))
		return statePanelStyle.Width(width).Height(height).Render(sb.String())
	}

	if m.measured != "" {
		fmt.Fprintf(&sb, "Measured: %s\n\n", gateStyle.Render(m.measured))
	}

	shown := 0
	for i, a := range s.Amps {
		p := qsim.Probability(a)
		if p < 1e-6 {
			continue
		}
		if shown >= 10 {
			sb.WriteString(dimStyle.Render("  …") + "\n")
			break
		}
		fmt.Fprintf(&sb, "|%s⟩ %+.3f%+.3fi  %s\n",
			basisLabel(i, s.NumQubits), real(a), imag(a), probBar(p, 12))
		shown++
	}
	sb.WriteString("\n")

	for q := 0; q < s.NumQubits; q++ {
		p1 := s.Probability(q, 1)
		fmt.Fprintf(&sb, "q[%d] P(1)=%.2f %s ", q, p1, probBar(p1, 10))
		if v, err := s.Bloch(q); err == nil {
			if v.Pure {
				fmt.Fprintf(&sb, "(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
			} else {
				sb.WriteString(mixedStyle.Render("mixed"))
			}
		}
		sb.WriteString("\n")
	}

	return statePanelStyle.Width(width).Height(height).Render(sb.String())
}

// basisLabel writes the computational-basis label with qubit 0 leftmost.
func basisLabel(index, numQubits int) string {
	bits := make([]byte, numQubits)
	for q := 0; q < numQubits; q++ {
		bits[q] = byte('0' + (index>>q)&1)
	}
	return string(bits)
}

// probBar renders a probability as a fixed-width bar.
func probBar(p float64, width int) string {
	filled := int(math.Round(p * float64(width)))
	filled = min(max(filled, 0), width)
	return barStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width int) string {
	var sb strings.Builder

	sb.WriteString(markerStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Qubit  ←→/hl Column  +/- Qubits")
	sb.WriteString("    ")
	sb.WriteString(markerStyle.Render("a"))
	sb.WriteString(" Add gate\n")

	sb.WriteString(markerStyle.Render("Actions:  "))
	sb.WriteString("r Run  m Measure all  d/Bksp Delete  ^R Clear  q/^C Quit")

	return controlsStyle.Width(width).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at
// position (x, y), tracking visible columns across ANSI escapes.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces visible columns starting at position x in bgLine
// with the overlay content, preserving escape sequences in the prefix.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	ovWidth := visibleLen(overlay)

	var prefix strings.Builder
	var suffix strings.Builder

	col := 0
	i := 0

	// Prefix: everything up to visible column x.
	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				prefix.WriteRune(runes[i])
				done := runes[i] != '\x1b' && runes[i] != '[' &&
					((runes[i] >= 'A' && runes[i] <= 'Z') || (runes[i] >= 'a' && runes[i] <= 'z'))
				i++
				if done {
					break
				}
			}
		} else {
			prefix.WriteRune(runes[i])
			col++
			i++
		}
	}
	for col < x {
		prefix.WriteRune(' ')
		col++
	}

	// Skip ovWidth visible columns of background under the overlay.
	skipped := 0
	for i < len(runes) && skipped < ovWidth {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				r := runes[i]
				i++
				if r != '\x1b' && r != '[' && ((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
					break
				}
			}
		} else {
			skipped++
			i++
		}
	}

	for i < len(runes) {
		suffix.WriteRune(runes[i])
		i++
	}

	return prefix.String() + overlay + suffix.String()
}

// visibleLen returns the number of visible (non-escape) runes in a string.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}
