package voting_test

import (
	"github.com/quenero/masternode/pkg/keys"
	"github.com/quenero/masternode/pkg/quorum"
	"github.com/quenero/masternode/voting"
)

// makeQuorum builds a quorum with freshly generated validator keys and
// anonymous workers, returning the keys so tests can sign votes.
func makeQuorum(validators, workers int) (*quorum.Quorum, []*keys.Keys) {
	q := &quorum.Quorum{
		Validators: make([]quorum.PubKey, validators),
		Workers:    make([]quorum.PubKey, workers),
	}
	ks := make([]*keys.Keys, validators)
	for i := 0; i < validators; i++ {
		ks[i] = keys.Generate()
		q.Validators[i] = ks[i].PublicKey()
	}
	for i := 0; i < workers; i++ {
		q.Workers[i] = keys.Generate().PublicKey()
	}
	return q, ks
}

type fakeState struct {
	height  uint64
	hf      uint8
	workers map[uint16]voting.WorkerStatus
}

func (s *fakeState) LatestHeight() uint64 {
	return s.height
}

func (s *fakeState) HardforkVersion() uint8 {
	return s.hf
}

func (s *fakeState) WorkerState(index uint16) (voting.WorkerStatus, bool) {
	status, ok := s.workers[index]
	return status, ok
}

type fakeResolver struct {
	quorum *quorum.Quorum
	err    error
}

func (r *fakeResolver) ResolveQuorum(t quorum.Type, height uint64) (*quorum.Quorum, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.quorum, nil
}

// unsigned votes for pool tests: the pool performs no cryptographic
// checks, so a placeholder signature is enough.

func obligationVote(height uint64, index, workerIndex uint16, state voting.NewState, reason uint16) *voting.Vote {
	return &voting.Vote{
		Type:      quorum.Obligations,
		Height:    height,
		Group:     quorum.GroupValidator,
		Index:     index,
		Signature: []byte("sig"),
		StateChange: &voting.StateChangeVote{
			WorkerIndex: workerIndex,
			State:       state,
			Reason:      reason,
		},
	}
}

func checkpointVote(height uint64, index uint16, hash voting.BlockHash) *voting.Vote {
	return &voting.Vote{
		Type:       quorum.Checkpointing,
		Height:     height,
		Group:      quorum.GroupValidator,
		Index:      index,
		Signature:  []byte("sig"),
		Checkpoint: &voting.CheckpointVote{BlockHash: hash},
	}
}

func stateChangeSignatures(sc *voting.StateChangeTx, ks []*keys.Keys, n int) []voting.QuorumSignature {
	sigs := make([]voting.QuorumSignature, 0, n)
	for i := 0; i < n; i++ {
		sigs = append(sigs, voting.QuorumSignature{
			VoterIndex: uint16(i),
			Signature:  voting.SignatureFromStateChange(sc, ks[i]),
		})
	}
	return sigs
}

func checkpointSignatures(cp *voting.Checkpoint, ks []*keys.Keys, n int) []voting.QuorumSignature {
	sigs := make([]voting.QuorumSignature, 0, n)
	for i := 0; i < n; i++ {
		sigs = append(sigs, voting.QuorumSignature{
			VoterIndex: uint16(i),
			Signature:  voting.SignatureFromCheckpoint(cp, ks[i]),
		})
	}
	return sigs
}
