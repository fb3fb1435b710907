package qsim

import (
	"math"
	"strings"
)

// Kind identifies a gate. Placements resolve their kind once, at circuit
// build time; unrecognized names become KindUnknown and degrade to identity
// instead of crashing interactive editing.
type Kind int

const (
	KindUnknown Kind = iota
	KindI
	KindH
	KindX
	KindY
	KindZ
	KindS
	KindSdg
	KindT
	KindTdg
	KindRX
	KindRY
	KindRZ
	KindCX
	KindCY
	KindCZ
	KindSwap
	KindMCX
	KindMCY
	KindMCZ
	KindMeasure
	KindReset
	KindNoiseAmp
	KindNoisePhase
	KindRepeat
	KindEnd
)

var kindNames = map[Kind]string{
	KindUnknown:    "?",
	KindI:          "I",
	KindH:          "H",
	KindX:          "X",
	KindY:          "Y",
	KindZ:          "Z",
	KindS:          "S",
	KindSdg:        "SDG",
	KindT:          "T",
	KindTdg:        "TDG",
	KindRX:         "RX",
	KindRY:         "RY",
	KindRZ:         "RZ",
	KindCX:         "CX",
	KindCY:         "CY",
	KindCZ:         "CZ",
	KindSwap:       "SWAP",
	KindMCX:        "MCX",
	KindMCY:        "MCY",
	KindMCZ:        "MCZ",
	KindMeasure:    "MEASURE",
	KindReset:      "RESET",
	KindNoiseAmp:   "NOISE_AMP",
	KindNoisePhase: "NOISE_PHASE",
	KindRepeat:     "REPEAT",
	KindEnd:        "END",
}

var namesToKind = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	m["SDG"], m["Sdg"] = KindSdg, KindSdg
	m["TDG"], m["Tdg"] = KindTdg, KindTdg
	m["CNOT"] = KindCX
	m["TOFFOLI"] = KindMCX
	m["CCX"] = KindMCX
	m["CCZ"] = KindMCZ
	return m
}()

// String returns the vocabulary name of the kind.
func (k Kind) String() string { return kindNames[k] }

// KindFromName resolves an external gate-type string. Unknown strings map
// to KindUnknown; they are reported, not fatal.
func KindFromName(name string) Kind {
	if k, ok := namesToKind[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return k
	}
	return KindUnknown
}

// Parametric reports whether the kind takes a rotation angle.
func (k Kind) Parametric() bool {
	return k == KindRX || k == KindRY || k == KindRZ
}

// Controlled reports whether the kind takes a control qubit list.
func (k Kind) Controlled() bool {
	switch k {
	case KindCX, KindCY, KindCZ, KindSwap, KindMCX, KindMCY, KindMCZ:
		return true
	}
	return false
}

// ── Fixed gate matrices ──

var (
	invSqrt2 = complex(1/math.Sqrt2, 0)

	matI = Matrix{{1, 0}, {0, 1}}
	matH = Matrix{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}
	matX = Matrix{{0, 1}, {1, 0}}
	matY = Matrix{{0, -1i}, {1i, 0}}
	matZ = Matrix{{1, 0}, {0, -1}}
	matS = Matrix{{1, 0}, {0, 1i}}

	matCX = Matrix{
		{1, 0, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
	}
	matCY = Matrix{
		{1, 0, 0, 0},
		{0, 0, 0, -1i},
		{0, 0, 1, 0},
		{0, 1i, 0, 0},
	}
	matCZ = Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, -1},
	}
	matSwap = Matrix{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	}
)

// The two-qubit matrices above follow the engine's sub-basis convention:
// target-list index 0 is the least-significant bit. For CX/CY/CZ the control
// is list index 0, so basis order is |target control⟩ and the flip happens
// in rows/columns 1 and 3 (control bit set).

// GateMatrix returns the fixed matrix for a non-parametric gate kind, or
// nil when the kind has no fixed matrix (rotations, markers, measurements).
func GateMatrix(k Kind) Matrix {
	switch k {
	case KindI, KindUnknown:
		return matI
	case KindH:
		return matH
	case KindX:
		return matX
	case KindY:
		return matY
	case KindZ:
		return matZ
	case KindS:
		return matS
	case KindSdg:
		return matS.Dagger()
	case KindT:
		return Matrix{{1, 0}, {0, FromPolar(1, math.Pi/4)}}
	case KindTdg:
		return Matrix{{1, 0}, {0, FromPolar(1, -math.Pi/4)}}
	case KindCX:
		return matCX
	case KindCY:
		return matCY
	case KindCZ:
		return matCZ
	case KindSwap:
		return matSwap
	}
	return nil
}

// RotationMatrix builds the 2×2 rotation matrix for RX, RY or RZ at the
// given angle. Any other kind yields identity.
func RotationMatrix(k Kind, theta float64) Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := math.Sin(theta / 2)
	switch k {
	case KindRX:
		return Matrix{{c, complex(0, -s)}, {complex(0, -s), c}}
	case KindRY:
		return Matrix{{c, complex(-s, 0)}, {complex(s, 0), c}}
	case KindRZ:
		return Matrix{{FromPolar(1, -theta/2), 0}, {0, FromPolar(1, theta/2)}}
	}
	return matI
}

// ControlledMatrix embeds a single-qubit base matrix into a gate on
// numControls+1 qubits: identity except on the block where every control
// bit is set. Control qubits occupy the low sub-basis bits, the target the
// highest. Used as the verification fallback for the closed-form
// multi-controlled paths.
func ControlledMatrix(base Matrix, numControls int) Matrix {
	dim := 1 << (numControls + 1)
	out := Identity(dim)
	ctrlMask := dim/2 - 1 // low bits are controls
	tBit := dim / 2
	for i := 0; i < dim; i++ {
		if i&ctrlMask != ctrlMask {
			continue
		}
		// Row i has all controls set; overwrite with the base action on
		// the target bit.
		ti := (i & tBit) / tBit
		j0 := i &^ tBit
		j1 := i | tBit
		out[i][i] = 0
		out[i][j0] = base[ti][0]
		out[i][j1] = base[ti][1]
	}
	return out
}

// ── Rotation cache ──

type cacheKey struct {
	kind  Kind
	theta float64
}

// GateCache memoizes parametric gate matrices by (kind, angle). It is owned
// by whoever schedules gates and passed down explicitly; there is no
// package-level cache to invalidate.
type GateCache struct {
	entries map[cacheKey]Matrix
}

// NewGateCache returns an empty cache.
func NewGateCache() *GateCache {
	return &GateCache{entries: make(map[cacheKey]Matrix)}
}

// Rotation returns the cached matrix for a rotation kind at theta,
// building it on first use.
func (gc *GateCache) Rotation(k Kind, theta float64) Matrix {
	key := cacheKey{kind: k, theta: theta}
	if m, ok := gc.entries[key]; ok {
		return m
	}
	m := RotationMatrix(k, theta)
	gc.entries[key] = m
	return m
}

// Len returns the number of cached matrices.
func (gc *GateCache) Len() int { return len(gc.entries) }
