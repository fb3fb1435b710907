package main

import (
	"strings"

	"qsim"
)

// menuItem represents a single choice in the gate picker.
type menuItem struct {
	name        string
	kind        qsim.Kind
	symbol      string
	needsTarget bool // prompts for a target qubit after selection
	extraCtrl   bool // prompts for a second control first (Toffoli family)
	needsParam  bool
	paramHint   string
	isMarker    bool // control-flow marker, placed on the whole column
	needsCount  bool // repeat count prompt
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// gateMenu defines the gate picker categories and items.
var gateMenu = []menuCategory{
	{
		name: "Single",
		items: []menuItem{
			{name: "Hadamard", kind: qsim.KindH, symbol: "H"},
			{name: "Pauli-X (NOT)", kind: qsim.KindX, symbol: "X"},
			{name: "Pauli-Y", kind: qsim.KindY, symbol: "Y"},
			{name: "Pauli-Z", kind: qsim.KindZ, symbol: "Z"},
			{name: "Identity", kind: qsim.KindI, symbol: "I"},
			{name: "Phase (S)", kind: qsim.KindS, symbol: "S"},
			{name: "Phase Dagger (S†)", kind: qsim.KindSdg, symbol: "S†"},
			{name: "T Gate", kind: qsim.KindT, symbol: "T"},
			{name: "T Dagger (T†)", kind: qsim.KindTdg, symbol: "T†"},
		},
	},
	{
		name: "Rotation",
		items: []menuItem{
			{name: "Rotate X", kind: qsim.KindRX, symbol: "RX", needsParam: true, paramHint: "pi/2"},
			{name: "Rotate Y", kind: qsim.KindRY, symbol: "RY", needsParam: true, paramHint: "pi/2"},
			{name: "Rotate Z", kind: qsim.KindRZ, symbol: "RZ", needsParam: true, paramHint: "pi/2"},
		},
	},
	{
		name: "Multi Qubit",
		items: []menuItem{
			{name: "CNOT", kind: qsim.KindCX, symbol: "●─⊕", needsTarget: true},
			{name: "Controlled-Y", kind: qsim.KindCY, symbol: "●─Y", needsTarget: true},
			{name: "Controlled-Z", kind: qsim.KindCZ, symbol: "●─●", needsTarget: true},
			{name: "SWAP", kind: qsim.KindSwap, symbol: "×─×", needsTarget: true},
			{name: "Toffoli (CCX)", kind: qsim.KindMCX, symbol: "●─●─⊕", needsTarget: true, extraCtrl: true},
			{name: "CC-Z", kind: qsim.KindMCZ, symbol: "●─●─●", needsTarget: true, extraCtrl: true},
		},
	},
	{
		name: "Measure",
		items: []menuItem{
			{name: "Measure", kind: qsim.KindMeasure, symbol: "M"},
			{name: "Reset", kind: qsim.KindReset, symbol: "|0⟩"},
		},
	},
	{
		name: "Noise",
		items: []menuItem{
			{name: "Amplitude Damping", kind: qsim.KindNoiseAmp, symbol: "Aγ", needsParam: true, paramHint: "0.05"},
			{name: "Phase Damping", kind: qsim.KindNoisePhase, symbol: "Pλ", needsParam: true, paramHint: "0.05"},
		},
	},
	{
		name: "Flow",
		items: []menuItem{
			{name: "Repeat Block", kind: qsim.KindRepeat, symbol: "↻", isMarker: true, needsCount: true},
			{name: "End Block", kind: qsim.KindEnd, symbol: "⊣", isMarker: true},
		},
	},
}

// renderMenu renders the floating gate-picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Add Gate"))
	sb.WriteString("\n")

	for i, cat := range gateMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(markerStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(gateMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 44)))
	sb.WriteString("\n")

	for i, item := range gateMenu[m.menuCat].items {
		line := item.name
		if item.symbol != "" {
			line += "  " + dimStyle.Render(item.symbol)
		}
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render("▸ " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("←→ Category  ↑↓ Select  ⏎ Ok  Esc ✕"))
	return menuBorderStyle.Render(sb.String())
}
