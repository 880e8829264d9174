package voting

import (
	"encoding/hex"
	"fmt"

	"github.com/quenero/masternode/pkg/quorum"
)

// BlockHash identifies the block a checkpoint vote attests to.
type BlockHash [32]byte

func (h BlockHash) String() string {
	return hex.EncodeToString(h[:])
}

// NewState is the state transition an obligation vote proposes for a worker.
type NewState uint8

const (
	Deregister NewState = iota
	Decommission
	Recommission
	IPChangePenalty
)

func (s NewState) String() string {
	switch s {
	case Deregister:
		return "deregister"
	case Decommission:
		return "decommission"
	case Recommission:
		return "recommission"
	case IPChangePenalty:
		return "ip_change_penalty"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Reason bitflags describing why a validator voted for a state change.
// A vote may carry any combination; the reason does not affect which
// decision the vote counts towards.
const (
	ReasonUptimeProofMissed uint16 = 1 << iota
	ReasonCheckpointVotesMissed
	ReasonPulseParticipationMissed
	ReasonStorageUnreachable
	ReasonTimestampOutOfSync
)

// StateChangeVote is the payload of an obligation vote: a proposal that
// the worker at WorkerIndex transitions to State.
type StateChangeVote struct {
	WorkerIndex uint16
	State       NewState
	Reason      uint16
}

// CheckpointVote is the payload of a checkpointing vote, attesting that
// BlockHash is the block at the vote's height.
type CheckpointVote struct {
	BlockHash BlockHash
}

// Vote is the atomic unit of the voting layer. Exactly one of StateChange
// or Checkpoint is set, selected by Type. A vote is immutable once signed:
// the signature covers version, type, height, group, index and the payload,
// so changing any field invalidates it.
type Vote struct {
	Version   uint8
	Type      quorum.Type
	Height    uint64
	Group     quorum.Group
	Index     uint16
	Signature []byte

	StateChange *StateChangeVote `json:",omitempty"`
	Checkpoint  *CheckpointVote  `json:",omitempty"`
}

// ValidateForm checks the structural invariants of a vote: the payload
// kind must match the quorum type, the signer group must be valid and the
// signature must be present. It performs no cryptographic verification.
func (v *Vote) ValidateForm() error {
	switch v.Type {
	case quorum.Obligations, quorum.Blink, quorum.Pulse:
		if v.StateChange == nil || v.Checkpoint != nil {
			return fmt.Errorf("%w: %s vote must carry a state change payload", ErrStructurallyInvalid, v.Type)
		}
	case quorum.Checkpointing:
		if v.Checkpoint == nil || v.StateChange != nil {
			return fmt.Errorf("%w: checkpointing vote must carry a checkpoint payload", ErrStructurallyInvalid)
		}
	default:
		return fmt.Errorf("%w: unrecognized quorum type %d", ErrStructurallyInvalid, uint8(v.Type))
	}

	if v.Group != quorum.GroupValidator && v.Group != quorum.GroupWorker {
		return fmt.Errorf("%w: invalid signer group", ErrStructurallyInvalid)
	}

	if len(v.Signature) == 0 {
		return fmt.Errorf("%w: vote does not contain any signature", ErrStructurallyInvalid)
	}

	return nil
}

func (v *Vote) String() string {
	if v == nil {
		return "nil"
	}
	switch {
	case v.StateChange != nil:
		return fmt.Sprintf("Vote{%s @ %d from %s:%d, worker %d -> %s}",
			v.Type, v.Height, v.Group, v.Index, v.StateChange.WorkerIndex, v.StateChange.State)
	case v.Checkpoint != nil:
		return fmt.Sprintf("Vote{%s @ %d from %s:%d, block %s}",
			v.Type, v.Height, v.Group, v.Index, v.Checkpoint.BlockHash)
	default:
		return fmt.Sprintf("Vote{%s @ %d from %s:%d, no payload}", v.Type, v.Height, v.Group, v.Index)
	}
}
