package voting

// Carrier types for decisions that have made it on-chain. They are produced
// by the blockchain collaborators (transaction parsing, checkpoint storage)
// and consumed here to verify aggregate signature sets and to retire votes
// whose decision is now permanently recorded.

// QuorumSignature pairs a validator's position in the quorum with their
// signature over a decision's content hash.
type QuorumSignature struct {
	VoterIndex uint16
	Signature  []byte
}

// StateChangeTx is a worker state change embedded in a transaction,
// backed by an aggregate signature set from the obligations quorum at
// Height.
type StateChangeTx struct {
	Version     uint8
	Height      uint64
	WorkerIndex uint16
	State       NewState
	Reason      uint16
	Signatures  []QuorumSignature
}

// Checkpoint is a block hash checkpointed by the checkpointing quorum at
// Height.
type Checkpoint struct {
	Height     uint64
	BlockHash  BlockHash
	Signatures []QuorumSignature
}

// NewEmptyCheckpoint returns a checkpoint for the given block with no
// signatures yet accumulated.
func NewEmptyCheckpoint(blockHash BlockHash, height uint64) *Checkpoint {
	return &Checkpoint{
		Height:    height,
		BlockHash: blockHash,
	}
}

// TxType discriminates the transaction kinds the voting layer cares about.
type TxType uint8

const (
	TxStandard TxType = iota
	TxStateChange
)

// Transaction is the minimal view of a committed transaction needed to
// retire obligation votes. StateChange is set iff Type is TxStateChange.
type Transaction struct {
	Type        TxType
	StateChange *StateChangeTx
}

// WorkerStatus is a worker's current recorded state on chain, as read
// from the chain-state collaborator.
type WorkerStatus uint8

const (
	WorkerActive WorkerStatus = iota
	WorkerDecommissioned
)

// StateReader is the voting layer's read-only view of chain state.
type StateReader interface {
	// LatestHeight is the height of the chain tip.
	LatestHeight() uint64
	// HardforkVersion is the protocol version active at the chain tip.
	HardforkVersion() uint8
	// WorkerState returns the current recorded status of the worker at
	// the given index within the obligations quorum's worker group,
	// reporting false if no such worker is registered.
	WorkerState(workerIndex uint16) (WorkerStatus, bool)
}

// legalTransition reports whether a worker in the given status may
// transition to the proposed state.
func legalTransition(from WorkerStatus, to NewState) bool {
	switch from {
	case WorkerActive:
		return to == Deregister || to == Decommission || to == IPChangePenalty
	case WorkerDecommissioned:
		return to == Deregister || to == Recommission
	default:
		return false
	}
}
