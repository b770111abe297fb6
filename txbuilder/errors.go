package txbuilder

import "fmt"

// ErrInsufficientFunds reports that UTXO selection exhausted the
// spendable set before covering the target amount plus fee.
type ErrInsufficientFunds struct {
	Need uint64
	Have uint64
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("txbuilder: insufficient funds: need %d, have %d", e.Need, e.Have)
}

// ErrDecoysUnavailable reports that the daemon could not supply enough
// ring members for one or more inputs.
type ErrDecoysUnavailable struct {
	Reason string
}

func (e *ErrDecoysUnavailable) Error() string {
	return fmt.Sprintf("txbuilder: decoys unavailable: %s", e.Reason)
}

// ErrCommitmentMismatch reports that a stored output's amount and mask no
// longer reconstruct its commitment. During a build this is a hard error
// (as opposed to scan's silent "treat as not owned").
type ErrCommitmentMismatch struct {
	OneTimePubkey [32]byte
}

func (e *ErrCommitmentMismatch) Error() string {
	return fmt.Sprintf("txbuilder: commitment mismatch for output %x", e.OneTimePubkey)
}

// ErrTooManyInputs reports a selection that would exceed the 150-input
// consensus bound.
type ErrTooManyInputs struct {
	Count int
}

func (e *ErrTooManyInputs) Error() string {
	return fmt.Sprintf("txbuilder: selection needs %d inputs, exceeding the 150 limit", e.Count)
}
