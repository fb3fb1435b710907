package qsim

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// State holds the 2^n complex amplitudes of an n-qubit register. Qubit 0 is
// the least-significant bit of the basis index. The amplitude slice is
// exclusively owned: gate application mutates it in place and qubit-count
// changes replace it wholesale.
type State struct {
	Amps      []Complex
	NumQubits int

	rng *rand.Rand
}

// NewState returns |0…0⟩ on numQubits qubits.
func NewState(numQubits int) *State {
	amps := make([]Complex, 1<<numQubits)
	amps[0] = 1
	return &State{
		Amps:      amps,
		NumQubits: numQubits,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand replaces the measurement sampling source. Inject a fixed-seed
// source for deterministic tests.
func (s *State) SetRand(r *rand.Rand) { s.rng = r }

// Clone returns a deep copy sharing the sampling source.
func (s *State) Clone() *State {
	amps := make([]Complex, len(s.Amps))
	copy(amps, s.Amps)
	return &State{Amps: amps, NumQubits: s.NumQubits, rng: s.rng}
}

// SetAmplitudes replaces the state vector wholesale and renormalizes. The
// length must be a power of two and the norm nonzero.
func (s *State) SetAmplitudes(amps []Complex) error {
	n := len(amps)
	if n == 0 || n&(n-1) != 0 {
		return fmt.Errorf("%w: length %d is not a power of two", ErrBadAmplitudes, n)
	}
	total := 0.0
	for _, a := range amps {
		total += Probability(a)
	}
	if total < Epsilon {
		return fmt.Errorf("%w: zero norm", ErrBadAmplitudes)
	}
	norm := complex(math.Sqrt(total), 0)
	out := make([]Complex, n)
	for i, a := range amps {
		out[i] = a / norm
	}
	s.Amps = out
	s.NumQubits = log2(n)
	return nil
}

// Norm returns Σ|amp_i|². Stays ≈ 1 under unitary application.
func (s *State) Norm() float64 {
	total := 0.0
	for _, a := range s.Amps {
		total += Probability(a)
	}
	return total
}

// Probability returns the marginal probability that measuring qubit q
// yields value (0 or 1).
func (s *State) Probability(q, value int) float64 {
	bit := 1 << q
	total := 0.0
	for i, a := range s.Amps {
		if (i&bit != 0) == (value != 0) {
			total += Probability(a)
		}
	}
	return total
}

// Probabilities returns the per-qubit P(1) marginals in one pass.
func (s *State) Probabilities() []float64 {
	probs := make([]float64, s.NumQubits)
	for i, a := range s.Amps {
		p := Probability(a)
		for q := 0; q < s.NumQubits; q++ {
			if i&(1<<q) != 0 {
				probs[q] += p
			}
		}
	}
	return probs
}

// validateTargets checks a target-qubit list: distinct, in range.
func (s *State) validateTargets(qubits []int) error {
	seen := 0
	for _, q := range qubits {
		if q < 0 || q >= s.NumQubits {
			return fmt.Errorf("%w: q[%d] with %d qubits", ErrQubitRange, q, s.NumQubits)
		}
		if seen&(1<<q) != 0 {
			return fmt.Errorf("%w: q[%d]", ErrDuplicateQubit, q)
		}
		seen |= 1 << q
	}
	return nil
}

func log2(n int) int {
	k := 0
	for n > 1 {
		n >>= 1
		k++
	}
	return k
}
