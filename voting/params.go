package voting

import "github.com/quenero/masternode/pkg/quorum"

// Protocol constants. These are consensus critical: every node in a network
// must agree on them.
const (
	// VoteLifetime is the number of blocks a vote remains relevant for.
	// Votes whose height has fallen further behind the chain are stale and
	// are neither accepted nor relayed.
	VoteLifetime uint64 = 60

	// VerifyHeightBuffer is the look-ahead allowed when verifying heights
	// embedded in transactions. A state change may reference a height
	// slightly ahead of our view of the chain without being rejected.
	VerifyHeightBuffer uint64 = 5

	ObligationsQuorumSize = 10
	StateChangeMinVotes   = 7

	CheckpointQuorumSize = 20
	CheckpointMinVotes   = 13

	BlinkSubquorumSize = 10
	BlinkMinVotes      = 7

	// Pulse quorums have fixed, non-configurable cardinality.
	PulseQuorumNumValidators = 11
	PulseQuorumNumWorkers    = 1
	PulseMinVotes            = 7
)

// Hardfork versions at which protocol rules changed.
const (
	// HFVersionCheckpointing introduced checkpointing quorums.
	HFVersionCheckpointing uint8 = 12
	// HFVersionEnforceCheckpoints started requiring a full checkpoint
	// signature threshold rather than accepting any signed checkpoint.
	HFVersionEnforceCheckpoints uint8 = 13
	// HFVersionQuorumnet moved obligation vote relay from the p2p flood
	// network onto the quorum-specific transport. Checkpoint votes stay
	// on p2p.
	HFVersionQuorumnet uint8 = 14
	// HFVersionPulse introduced pulse quorums.
	HFVersionPulse uint8 = 16
)

// MinVotes returns the number of valid signatures an aggregate signature
// set needs to satisfy a quorum of the given type at the given hardfork
// version. The result is monotonically non-decreasing in hfVersion.
func MinVotes(t quorum.Type, hfVersion uint8) int {
	switch t {
	case quorum.Obligations:
		return StateChangeMinVotes
	case quorum.Checkpointing:
		if hfVersion < HFVersionEnforceCheckpoints {
			return 1
		}
		return CheckpointMinVotes
	case quorum.Blink:
		return BlinkMinVotes
	case quorum.Pulse:
		return PulseMinVotes
	default:
		return 0
	}
}

// relayedOverQuorumnet reports whether votes of the given type travel over
// the quorum-specific transport instead of p2p at the given hardfork
// version. Before HFVersionQuorumnet everything goes via p2p; from then on
// obligation votes use quorumnet while checkpoint votes remain on p2p.
func relayedOverQuorumnet(t quorum.Type, hfVersion uint8) bool {
	if hfVersion < HFVersionQuorumnet {
		return false
	}
	return t == quorum.Obligations
}
