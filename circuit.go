package qsim

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/charmbracelet/log"
)

// Placement is one gate placed on the circuit grid. Columns are sparse:
// they need not be contiguous and empty columns are skipped at execution.
type Placement struct {
	Kind     Kind
	Name     string // original external name, kept for unknown kinds
	Target   int
	Control  int   // -1 if not a two-qubit gate
	Controls []int // control list for multi-controlled gates
	Column   int
	Params   []float64 // rotation angle or noise probability
}

// Marker is a REPEAT or END control-flow marker on a column. REPEAT/END
// pairs match like a stack; the repeated range includes both marker
// columns.
type Marker struct {
	Kind   Kind // KindRepeat or KindEnd
	Column int
	Count  int
}

// Circuit owns the placed gates and control-flow markers, the derived
// MaxColumn, and the state produced by the last Execute.
type Circuit struct {
	NumQubits  int
	Placements []Placement
	Markers    []Marker
	MaxColumn  int // -1 while empty
	State      *State

	// MatrixFallback routes CX/CY/CZ/SWAP and the multi-controlled gates
	// through synthesized matrices instead of the closed-form permutation
	// loops. Exists for verification parity; leave false.
	MatrixFallback bool

	cache *GateCache
	rng   *rand.Rand
}

// NewCircuit returns an empty circuit on numQubits qubits.
func NewCircuit(numQubits int) *Circuit {
	return &Circuit{
		NumQubits: numQubits,
		MaxColumn: -1,
		cache:     NewGateCache(),
	}
}

// SetRand fixes the sampling source used by Execute for measurement and
// noise placements.
func (c *Circuit) SetRand(r *rand.Rand) { c.rng = r }

// Cache exposes the circuit's rotation-matrix cache.
func (c *Circuit) Cache() *GateCache { return c.cache }

func (c *Circuit) extend(column int) {
	if column > c.MaxColumn {
		c.MaxColumn = column
	}
}

func (c *Circuit) checkQubit(q int) error {
	if q < 0 || q >= c.NumQubits {
		return fmt.Errorf("%w: q[%d] with %d qubits", ErrQubitRange, q, c.NumQubits)
	}
	return nil
}

// Add places a single-qubit gate.
func (c *Circuit) Add(kind Kind, target, column int) error {
	if err := c.checkQubit(target); err != nil {
		return err
	}
	c.Placements = append(c.Placements, Placement{
		Kind: kind, Target: target, Control: -1, Column: column,
	})
	c.extend(column)
	return nil
}

// AddRotation places RX/RY/RZ at the given angle.
func (c *Circuit) AddRotation(kind Kind, target, column int, theta float64) error {
	if err := c.checkQubit(target); err != nil {
		return err
	}
	c.Placements = append(c.Placements, Placement{
		Kind: kind, Target: target, Control: -1, Column: column, Params: []float64{theta},
	})
	c.extend(column)
	return nil
}

// AddControlled places a two-qubit gate. Control and target must differ.
func (c *Circuit) AddControlled(kind Kind, control, target, column int) error {
	if control == target {
		return fmt.Errorf("%w: q[%d]", ErrControlIsTarget, control)
	}
	if err := c.checkQubit(control); err != nil {
		return err
	}
	if err := c.checkQubit(target); err != nil {
		return err
	}
	c.Placements = append(c.Placements, Placement{
		Kind: kind, Target: target, Control: control, Column: column,
	})
	c.extend(column)
	return nil
}

// AddMultiControlled places a multi-controlled X/Y/Z.
func (c *Circuit) AddMultiControlled(kind Kind, controls []int, target, column int) error {
	all := append(append([]int{}, controls...), target)
	seen := map[int]bool{}
	for _, q := range all {
		if err := c.checkQubit(q); err != nil {
			return err
		}
		if seen[q] {
			return fmt.Errorf("%w: q[%d]", ErrDuplicateQubit, q)
		}
		seen[q] = true
	}
	c.Placements = append(c.Placements, Placement{
		Kind: kind, Target: target, Control: -1,
		Controls: append([]int{}, controls...), Column: column,
	})
	c.extend(column)
	return nil
}

// AddNoise places an amplitude- or phase-damping column on one qubit.
func (c *Circuit) AddNoise(kind Kind, target, column int, p float64) error {
	if err := c.checkQubit(target); err != nil {
		return err
	}
	c.Placements = append(c.Placements, Placement{
		Kind: kind, Target: target, Control: -1, Column: column, Params: []float64{p},
	})
	c.extend(column)
	return nil
}

// AddRepeat opens a repeat block at the given column, replacing any marker
// already there. A block left unclosed extends to MaxColumn.
func (c *Circuit) AddRepeat(column, count int) {
	c.removeMarkerAt(column)
	c.Markers = append(c.Markers, Marker{Kind: KindRepeat, Column: column, Count: count})
	c.extend(column)
}

// AddEnd closes the most recent open repeat block. An END with no open
// REPEAT before it is kept but ignored at linearization.
func (c *Circuit) AddEnd(column int) {
	c.removeMarkerAt(column)
	c.Markers = append(c.Markers, Marker{Kind: KindEnd, Column: column})
	c.extend(column)
}

func (c *Circuit) removeMarkerAt(column int) {
	c.Markers = slices.DeleteFunc(c.Markers, func(m Marker) bool {
		return m.Column == column
	})
}

// RemoveMarkerAt deletes the control-flow marker on the column, if any, and
// recomputes MaxColumn.
func (c *Circuit) RemoveMarkerAt(column int) {
	c.removeMarkerAt(column)
	c.recomputeMaxColumn()
}

// Place resolves an external placement from the string vocabulary. Control
// qubits precede the target in qubits. Bare X/Y/Z with controls promote to
// their multi-controlled kinds. Unknown gate types are placed as identity
// with a diagnostic — exploratory editing must not crash the engine.
func (c *Circuit) Place(gateType string, qubits []int, column int, params ...float64) error {
	if len(qubits) == 0 {
		return fmt.Errorf("%w: no target qubit", ErrQubitRange)
	}
	kind := KindFromName(gateType)
	if kind == KindUnknown {
		log.Warn("unknown gate type, placing identity", "gate", gateType, "column", column)
		if err := c.checkQubit(qubits[len(qubits)-1]); err != nil {
			return err
		}
		c.Placements = append(c.Placements, Placement{
			Kind: KindUnknown, Name: gateType, Target: qubits[len(qubits)-1],
			Control: -1, Column: column,
		})
		c.extend(column)
		return nil
	}
	if len(qubits) > 1 {
		switch kind {
		case KindX, KindCX:
			kind = KindMCX
		case KindY, KindCY:
			kind = KindMCY
		case KindZ, KindCZ:
			kind = KindMCZ
		}
	}
	target := qubits[len(qubits)-1]
	controls := qubits[:len(qubits)-1]
	switch {
	case kind == KindSwap:
		if len(qubits) != 2 {
			return fmt.Errorf("%w: SWAP needs two qubits", ErrBadDimension)
		}
		return c.AddControlled(KindSwap, qubits[0], qubits[1], column)
	case kind == KindMCX || kind == KindMCY || kind == KindMCZ:
		if len(controls) == 1 {
			// Single control: keep the plain controlled kind.
			plain := map[Kind]Kind{KindMCX: KindCX, KindMCY: KindCY, KindMCZ: KindCZ}[kind]
			return c.AddControlled(plain, controls[0], target, column)
		}
		return c.AddMultiControlled(kind, controls, target, column)
	case kind.Parametric():
		theta := 0.0
		if len(params) > 0 {
			theta = params[0]
		}
		return c.AddRotation(kind, target, column, theta)
	case kind == KindNoiseAmp || kind == KindNoisePhase:
		p := 0.0
		if len(params) > 0 {
			p = params[0]
		}
		return c.AddNoise(kind, target, column, p)
	default:
		return c.Add(kind, target, column)
	}
}

// references reports whether the placement touches the given qubit.
func (p Placement) references(qubit int) bool {
	if p.Target == qubit || p.Control == qubit {
		return true
	}
	return slices.Contains(p.Controls, qubit)
}

// GateAt returns the placement at (column, qubit), or nil.
func (c *Circuit) GateAt(column, qubit int) *Placement {
	for i := range c.Placements {
		p := &c.Placements[i]
		if p.Column == column && p.references(qubit) {
			return p
		}
	}
	return nil
}

// MarkerAt returns the control-flow marker on the column, or nil.
func (c *Circuit) MarkerAt(column int) *Marker {
	for i := range c.Markers {
		if c.Markers[i].Column == column {
			return &c.Markers[i]
		}
	}
	return nil
}

// RemoveAt deletes any placement at (column, qubit) and recomputes
// MaxColumn.
func (c *Circuit) RemoveAt(column, qubit int) {
	c.Placements = slices.DeleteFunc(c.Placements, func(p Placement) bool {
		return p.Column == column && p.references(qubit)
	})
	c.recomputeMaxColumn()
}

// RemoveOnQubit deletes every placement referencing the qubit. Used when
// the register shrinks.
func (c *Circuit) RemoveOnQubit(qubit int) {
	c.Placements = slices.DeleteFunc(c.Placements, func(p Placement) bool {
		return p.references(qubit)
	})
	c.recomputeMaxColumn()
}

func (c *Circuit) recomputeMaxColumn() {
	c.MaxColumn = -1
	for _, p := range c.Placements {
		c.extend(p.Column)
	}
	for _, m := range c.Markers {
		c.extend(m.Column)
	}
}

// Linearize flattens the circuit into an ordered gate sequence, unrolling
// repeat blocks depth-first. Gates within one column keep placement order;
// order among them is otherwise unspecified.
func (c *Circuit) Linearize() []Placement {
	if c.MaxColumn < 0 {
		return nil
	}

	byColumn := make(map[int][]Placement)
	for _, p := range c.Placements {
		byColumn[p.Column] = append(byColumn[p.Column], p)
	}

	repeatCount := make(map[int]int)
	endMatch := make(map[int]int)
	var stack []int
	for col := 0; col <= c.MaxColumn; col++ {
		m := c.MarkerAt(col)
		if m == nil {
			continue
		}
		switch m.Kind {
		case KindRepeat:
			repeatCount[col] = m.Count
			stack = append(stack, col)
		case KindEnd:
			if len(stack) == 0 {
				continue // unmatched END, ignored
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			endMatch[open] = col
		}
	}
	// Unclosed repeats extend to the end of the circuit.
	for _, open := range stack {
		endMatch[open] = c.MaxColumn
	}

	var out []Placement
	expanding := make(map[int]bool)
	var expand func(from, to int)
	expand = func(from, to int) {
		for col := from; col <= to; col++ {
			if count, ok := repeatCount[col]; ok && !expanding[col] {
				end := min(endMatch[col], to)
				expanding[col] = true
				for r := 0; r < count; r++ {
					expand(col, end)
				}
				expanding[col] = false
				col = end
				continue
			}
			out = append(out, byColumn[col]...)
		}
	}
	expand(0, c.MaxColumn)
	return out
}

// Execute resets to |0…0⟩, replays the linearized sequence and stores the
// final state. A validation error aborts execution; soft conditions
// (unknown gates, empty columns) never do.
func (c *Circuit) Execute() (*State, error) {
	n := max(c.NumQubits, 1)
	st := NewState(n)
	if c.rng != nil {
		st.SetRand(c.rng)
	}
	for _, p := range c.Linearize() {
		if err := c.applyPlacement(st, p); err != nil {
			return nil, fmt.Errorf("%s at column %d: %w", p.Kind, p.Column, err)
		}
	}
	c.State = st
	return st, nil
}

func (c *Circuit) applyPlacement(st *State, p Placement) error {
	switch p.Kind {
	case KindI:
		return nil
	case KindUnknown:
		log.Warn("unknown gate type, applying identity", "gate", p.Name, "column", p.Column)
		return nil
	case KindMeasure:
		_, err := st.Measure(p.Target)
		return err
	case KindReset:
		return st.Reset(p.Target)
	case KindNoiseAmp:
		return st.ApplyAmplitudeDamping(p.Target, param0(p))
	case KindNoisePhase:
		return st.ApplyPhaseDamping(p.Target, param0(p))
	case KindRX, KindRY, KindRZ:
		return st.Apply(c.cache.Rotation(p.Kind, param0(p)), p.Target)
	case KindCX:
		if c.MatrixFallback {
			return st.Apply(matCX, p.Control, p.Target)
		}
		return st.ApplyCX(p.Control, p.Target)
	case KindCY:
		if c.MatrixFallback {
			return st.Apply(matCY, p.Control, p.Target)
		}
		return st.ApplyCY(p.Control, p.Target)
	case KindCZ:
		if c.MatrixFallback {
			return st.Apply(matCZ, p.Control, p.Target)
		}
		return st.ApplyCZ(p.Control, p.Target)
	case KindSwap:
		if c.MatrixFallback {
			return st.Apply(matSwap, p.Control, p.Target)
		}
		return st.ApplySwap(p.Control, p.Target)
	case KindMCX, KindMCY, KindMCZ:
		if c.MatrixFallback {
			base := map[Kind]Matrix{KindMCX: matX, KindMCY: matY, KindMCZ: matZ}[p.Kind]
			m := ControlledMatrix(base, len(p.Controls))
			targets := append(append([]int{}, p.Controls...), p.Target)
			return st.Apply(m, targets...)
		}
		switch p.Kind {
		case KindMCX:
			return st.ApplyMCX(p.Controls, p.Target)
		case KindMCY:
			return st.ApplyMCY(p.Controls, p.Target)
		default:
			return st.ApplyMCZ(p.Controls, p.Target)
		}
	default:
		return st.Apply(GateMatrix(p.Kind), p.Target)
	}
}

func param0(p Placement) float64 {
	if len(p.Params) > 0 {
		return p.Params[0]
	}
	return 0
}
