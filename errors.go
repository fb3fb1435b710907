package qsim

import "errors"

// Validation errors. These abort a single gate application before any
// amplitude is touched; callers decide whether to abort the whole circuit.
var (
	// ErrQubitRange reports a qubit index outside [0, NumQubits).
	ErrQubitRange = errors.New("qubit index out of range")

	// ErrDuplicateQubit reports a repeated index in a target list.
	ErrDuplicateQubit = errors.New("duplicate qubit index")

	// ErrControlIsTarget reports a two-qubit gate whose control and target
	// coincide.
	ErrControlIsTarget = errors.New("control qubit equals target qubit")

	// ErrBadDimension reports a matrix that is not square with a
	// power-of-two dimension, or one whose dimension does not match the
	// target list.
	ErrBadDimension = errors.New("matrix dimension invalid for target qubits")

	// ErrBadAmplitudes reports a state-vector replacement whose length is
	// not a power of two or whose norm is zero.
	ErrBadAmplitudes = errors.New("invalid amplitude vector")
)
