package models

// BroadcastKind tells whether the entry node accepted a transaction into its mempool
type BroadcastKind int

const (
	// BroadcastAccepted indicates the transaction passed the synchronous check
	BroadcastAccepted BroadcastKind = iota
	// BroadcastRejected indicates the transaction failed the synchronous check
	BroadcastRejected
)

func (k BroadcastKind) String() string {
	switch k {
	case BroadcastAccepted:
		return "accepted"
	case BroadcastRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// BroadcastResult is the response of a sync broadcast
type BroadcastResult struct {
	Kind      BroadcastKind
	TxHash    string
	Code      uint32
	Codespace string
	RawLog    string
}

// LookupKind tells whether a transaction was found in a block
type LookupKind int

const (
	// LookupNotFound indicates the transaction is not (yet) visible in the index
	LookupNotFound LookupKind = iota
	// LookupIncluded indicates the transaction was included in a block
	LookupIncluded
)

func (k LookupKind) String() string {
	switch k {
	case LookupNotFound:
		return "not_found"
	case LookupIncluded:
		return "included"
	default:
		return "unknown"
	}
}

// TxLookup is the result of looking a transaction up by hash
type TxLookup struct {
	Kind      LookupKind
	Hash      string
	Height    int64
	Code      uint32
	Codespace string
	RawLog    string
}

// Succeeded returns true if the transaction was included and executed without error
func (l TxLookup) Succeeded() bool {
	return l.Kind == LookupIncluded && l.Code == 0
}

// ConfirmationState is the state of a submitted transaction as observed by the poller
type ConfirmationState int

const (
	// ConfirmationPending indicates the transaction was not observed in a block yet
	ConfirmationPending ConfirmationState = iota
	// ConfirmationConfirmed indicates the transaction was included with a success code
	ConfirmationConfirmed
	// ConfirmationFailed indicates the transaction was included with a failure code
	ConfirmationFailed
)

func (s ConfirmationState) String() string {
	switch s {
	case ConfirmationPending:
		return "pending"
	case ConfirmationConfirmed:
		return "confirmed"
	case ConfirmationFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Confirmation is the outcome of polling for a transaction
type Confirmation struct {
	State  ConfirmationState
	Hash   string
	Height int64
	Code   uint32
	RawLog string
}
