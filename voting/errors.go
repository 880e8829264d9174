package voting

import "errors"

// Verification failures are reported as one of the sentinel errors below,
// usually wrapped with context. Callers discriminate with errors.Is so a
// misbehaving peer can be scored differently for a stale vote versus a
// forged one.
var (
	ErrStructurallyInvalid    = errors.New("structurally invalid vote")
	ErrVoteStale              = errors.New("vote height is too far behind the chain")
	ErrVoteFromFuture         = errors.New("vote height is ahead of the chain")
	ErrUnknownSigner          = errors.New("signer index out of range for quorum group")
	ErrBadSignature           = errors.New("signature verification failed")
	ErrInsufficientSignatures = errors.New("not enough valid signatures for quorum")
	ErrDuplicateSigner        = errors.New("duplicate signer index in signature set")
	ErrIllegalStateTransition = errors.New("illegal worker state transition")
	ErrWrongQuorumSize        = errors.New("quorum does not have the mandated size")
)
