package voting

import (
	"fmt"

	"github.com/quenero/masternode/pkg/quorum"
)

// VerifyVoteAge checks that a vote's height can still plausibly be
// relevant given our view of the chain tip. A vote further than
// VoteLifetime behind the tip is stale; a vote ahead of the tip comes
// from a signer ahead of (or lying about) chain state.
func VerifyVoteAge(v *Vote, latestHeight uint64) error {
	if latestHeight > v.Height+VoteLifetime {
		return fmt.Errorf("%w: vote height %d, latest height %d", ErrVoteStale, v.Height, latestHeight)
	}
	if v.Height > latestHeight {
		return fmt.Errorf("%w: vote height %d, latest height %d", ErrVoteFromFuture, v.Height, latestHeight)
	}
	return nil
}

// Verifier performs the cryptographic checks of the voting layer. It is
// stateless beyond the configured signature scheme and safe for
// concurrent use.
type Verifier struct {
	verify quorum.VerifyFunc
}

// NewVerifier creates a Verifier using the given signature scheme. A nil
// verify function defaults to ed25519.
func NewVerifier(verify quorum.VerifyFunc) *Verifier {
	if verify == nil {
		verify = quorum.DefaultVerifyFunc()
	}
	return &Verifier{verify: verify}
}

// VerifyVoteSignature checks that a vote was produced by the member it
// claims to come from: the quorum type must be active at hfVersion, the
// (group, index) pair must resolve to a member of the quorum and the
// signature must verify over the vote's canonical content against that
// member's key.
func (vf *Verifier) VerifyVoteSignature(hfVersion uint8, v *Vote, q *quorum.Quorum) error {
	if err := v.ValidateForm(); err != nil {
		return err
	}

	switch v.Type {
	case quorum.Checkpointing:
		if hfVersion < HFVersionCheckpointing {
			return fmt.Errorf("%w: checkpointing votes are not active at version %d", ErrStructurallyInvalid, hfVersion)
		}
	case quorum.Pulse:
		if hfVersion < HFVersionPulse {
			return fmt.Errorf("%w: pulse votes are not active at version %d", ErrStructurallyInvalid, hfVersion)
		}
	}

	if v.Group != quorum.GroupValidator {
		return fmt.Errorf("%w: votes must come from the validator group, got %s", ErrStructurallyInvalid, v.Group)
	}

	key, ok := q.Member(v.Group, v.Index)
	if !ok {
		return fmt.Errorf("%w: %s index %d, group size %d", ErrUnknownSigner, v.Group, v.Index, q.GroupSize(v.Group))
	}

	if !vf.verify(key, VoteSignBytes(v), v.Signature) {
		return fmt.Errorf("%w: vote from %s:%d at height %d", ErrBadSignature, v.Group, v.Index, v.Height)
	}

	return nil
}

// VerifyQuorumSignatures validates an aggregate signature set over a
// decision's content hash: every voter index must be unique and resolve
// to a validator of the quorum, every signature must verify, and the
// count of valid signatures must meet the threshold for the quorum type
// at hfVersion.
func (vf *Verifier) VerifyQuorumSignatures(q *quorum.Quorum, t quorum.Type, hfVersion uint8, height uint64, hash []byte, sigs []QuorumSignature) error {
	seen := make(map[uint16]struct{}, len(sigs))
	valid := 0
	for _, sig := range sigs {
		if _, ok := seen[sig.VoterIndex]; ok {
			return fmt.Errorf("%w: voter index %d", ErrDuplicateSigner, sig.VoterIndex)
		}
		seen[sig.VoterIndex] = struct{}{}

		key, ok := q.Member(quorum.GroupValidator, sig.VoterIndex)
		if !ok {
			return fmt.Errorf("%w: voter index %d, validator group size %d", ErrUnknownSigner, sig.VoterIndex, len(q.Validators))
		}

		if !vf.verify(key, hash, sig.Signature) {
			return fmt.Errorf("%w: voter index %d for %s decision at height %d", ErrBadSignature, sig.VoterIndex, t, height)
		}
		valid++
	}

	if required := MinVotes(t, hfVersion); valid < required {
		return fmt.Errorf("%w: %s decision at height %d has %d signatures, requires %d", ErrInsufficientSignatures, t, height, valid, required)
	}

	return nil
}

// VerifyCheckpoint checks that a checkpoint carries a satisfying
// signature set from the checkpointing quorum.
func (vf *Verifier) VerifyCheckpoint(hfVersion uint8, cp *Checkpoint, q *quorum.Quorum) error {
	hash := CheckpointHash(cp.Height, cp.BlockHash)
	return vf.VerifyQuorumSignatures(q, quorum.Checkpointing, hfVersion, cp.Height, hash, cp.Signatures)
}

// VerifyStateChange checks a state change extracted from a transaction:
// its height must still be within the decision window (with a small
// look-ahead buffer, since a transaction may be mined slightly behind the
// height it references), its signature set must satisfy the obligations
// quorum, the referenced worker must exist and the proposed transition
// must be legal from the worker's current recorded state.
func (vf *Verifier) VerifyStateChange(sc *StateChangeTx, latestHeight uint64, q *quorum.Quorum, hfVersion uint8, reader StateReader) error {
	if latestHeight > sc.Height+VoteLifetime+VerifyHeightBuffer {
		return fmt.Errorf("%w: state change height %d, latest height %d", ErrVoteStale, sc.Height, latestHeight)
	}
	if sc.Height > latestHeight+VerifyHeightBuffer {
		return fmt.Errorf("%w: state change height %d, latest height %d", ErrVoteFromFuture, sc.Height, latestHeight)
	}

	if int(sc.WorkerIndex) >= len(q.Workers) {
		return fmt.Errorf("%w: worker index %d, worker group size %d", ErrUnknownSigner, sc.WorkerIndex, len(q.Workers))
	}

	hash := StateChangeHash(sc.Height, sc.WorkerIndex, sc.State)
	if err := vf.VerifyQuorumSignatures(q, quorum.Obligations, hfVersion, sc.Height, hash, sc.Signatures); err != nil {
		return err
	}

	status, ok := reader.WorkerState(sc.WorkerIndex)
	if !ok {
		return fmt.Errorf("%w: worker %d has no recorded state", ErrIllegalStateTransition, sc.WorkerIndex)
	}
	if !legalTransition(status, sc.State) {
		return fmt.Errorf("%w: worker %d cannot move to %s", ErrIllegalStateTransition, sc.WorkerIndex, sc.State)
	}

	return nil
}

// VerifyPulseQuorumSizes checks the fixed cardinality mandated for pulse
// quorums.
func VerifyPulseQuorumSizes(q *quorum.Quorum) error {
	if len(q.Validators) != PulseQuorumNumValidators {
		return fmt.Errorf("%w: pulse quorum has %d validators, requires %d", ErrWrongQuorumSize, len(q.Validators), PulseQuorumNumValidators)
	}
	if len(q.Workers) != PulseQuorumNumWorkers {
		return fmt.Errorf("%w: pulse quorum has %d workers, requires %d", ErrWrongQuorumSize, len(q.Workers), PulseQuorumNumWorkers)
	}
	return nil
}
