package quorum

import "fmt"

// Type identifies which class of decision a quorum is responsible for.
// It selects the verification and relay rules that apply to votes cast
// by the quorum's validators.
type Type uint8

const (
	Obligations Type = iota
	Checkpointing
	Blink
	Pulse
)

func (t Type) String() string {
	switch t {
	case Obligations:
		return "obligations"
	case Checkpointing:
		return "checkpointing"
	case Blink:
		return "blink"
	case Pulse:
		return "pulse"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Group partitions a quorum's members. Validators cast votes, workers
// are the subjects that obligation votes refer to.
type Group uint8

const (
	GroupInvalid Group = iota
	GroupValidator
	GroupWorker
)

func (g Group) String() string {
	switch g {
	case GroupValidator:
		return "validator"
	case GroupWorker:
		return "worker"
	default:
		return "invalid"
	}
}

// Quorum is the resolved membership for a (type, height) pair: an ordered
// list of public keys per group. Resolution is performed by an external
// collaborator; this package only models the result.
type Quorum struct {
	Validators []PubKey
	Workers    []PubKey
}

// Member returns the public key at the given position within a group,
// reporting false if the group or index does not exist.
func (q *Quorum) Member(group Group, index uint16) (PubKey, bool) {
	var keys []PubKey
	switch group {
	case GroupValidator:
		keys = q.Validators
	case GroupWorker:
		keys = q.Workers
	default:
		return nil, false
	}
	if int(index) >= len(keys) {
		return nil, false
	}
	return keys[index], true
}

func (q *Quorum) GroupSize(group Group) int {
	switch group {
	case GroupValidator:
		return len(q.Validators)
	case GroupWorker:
		return len(q.Workers)
	default:
		return 0
	}
}

// Resolver supplies quorum membership for a given type and height. It is
// read-only from the perspective of the voting core.
type Resolver interface {
	ResolveQuorum(t Type, height uint64) (*Quorum, error)
}
