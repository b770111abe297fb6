package enote

// TxType tags the purpose of a transaction.
type TxType uint8

const (
	TxMiner TxType = iota
	TxProtocol
	TxTransfer
	TxConvert
	TxBurn
	TxStake
	TxReturn
	TxAudit
)

// Prefix is the canonical signable body of a transaction.
type Prefix struct {
	Version    uint64
	UnlockTime uint64
	Inputs     []Input
	Outputs    []Output
	Extra      []byte
	Type       TxType
}

// EcdhTuple carries one output's encrypted amount, i.e. ecdhInfo[i].
type EcdhTuple struct {
	EncryptedAmount [8]byte
}

// RCTSignatures is the ring-confidential section: commitments, encrypted
// amounts, and the opaque CLSAG/Bulletproof+ signature blob. Type 0 denotes coinbase/cleartext.
type RCTSignatures struct {
	Type       uint8
	Fee        uint64
	OutPk      [][32]byte
	EcdhInfo   []EcdhTuple
	Signatures []byte
}

// Transaction is the full on-wire transaction envelope.
type Transaction struct {
	Prefix Prefix
	RCT    RCTSignatures
}

// AmountBurnt is read by burn-transaction handling; it
// lives in Extra as a tagged field rather than a dedicated struct field so
// Prefix keeps the canonical on-wire layout. BurnedAmount extracts it, or
// returns (0, false) if the transaction does not carry a burn tag.
func (p Prefix) BurnedAmount() (uint64, bool) {
	return extraBurnAmount(p.Extra)
}
