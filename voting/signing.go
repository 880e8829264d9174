package voting

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	"github.com/quenero/masternode/pkg/keys"
	"github.com/quenero/masternode/pkg/quorum"
)

// VoteVersion marks the current serialization of the signed vote content.
// Bumping it invalidates signatures produced under older versions.
const VoteVersion uint8 = 0

// VoteSignBytes encodes the canonical content a vote signature covers.
//
// The format is:
// 1 byte version
// 1 byte quorum type
// 8 bytes height
// 1 byte group
// 2 bytes index in group
// payload:
//   state change: 2 bytes worker index, 1 byte state, 2 bytes reason
//   checkpoint:   32 bytes block hash
//
// Both signer and verifier must reproduce this byte-for-byte, so the
// encoding is explicit and has no optional fields.
func VoteSignBytes(v *Vote) []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteByte(v.Version)
	buf.WriteByte(uint8(v.Type))
	heightBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(heightBytes, v.Height)
	buf.Write(heightBytes)
	buf.WriteByte(uint8(v.Group))
	indexBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(indexBytes, v.Index)
	buf.Write(indexBytes)

	switch {
	case v.StateChange != nil:
		workerBytes := make([]byte, 2)
		binary.BigEndian.PutUint16(workerBytes, v.StateChange.WorkerIndex)
		buf.Write(workerBytes)
		buf.WriteByte(uint8(v.StateChange.State))
		reasonBytes := make([]byte, 2)
		binary.BigEndian.PutUint16(reasonBytes, v.StateChange.Reason)
		buf.Write(reasonBytes)
	case v.Checkpoint != nil:
		buf.Write(v.Checkpoint.BlockHash[:])
	}

	return buf.Bytes()
}

// StateChangeHash is the content hash an aggregate state change signature
// set signs. It deliberately excludes the reason bitflags: votes with
// different reasons for the same transition count towards the same
// decision and their signatures must aggregate into one transaction.
func StateChangeHash(height uint64, workerIndex uint16, state NewState) []byte {
	buf := make([]byte, 11)
	binary.BigEndian.PutUint64(buf, height)
	binary.BigEndian.PutUint16(buf[8:], workerIndex)
	buf[10] = uint8(state)
	digest := sha256.Sum256(buf)
	return digest[:]
}

// CheckpointHash is the content hash a checkpoint signature set signs.
func CheckpointHash(height uint64, blockHash BlockHash) []byte {
	buf := make([]byte, 40)
	binary.BigEndian.PutUint64(buf, height)
	copy(buf[8:], blockHash[:])
	digest := sha256.Sum256(buf)
	return digest[:]
}

// NewStateChangeVote constructs and signs an obligation vote from the
// local masternode's key material. Signing happens last, over the fully
// populated content.
func NewStateChangeVote(height uint64, index, workerIndex uint16, state NewState, reason uint16, keys *keys.Keys) *Vote {
	vote := &Vote{
		Version: VoteVersion,
		Type:    quorum.Obligations,
		Height:  height,
		Group:   quorum.GroupValidator,
		Index:   index,
		StateChange: &StateChangeVote{
			WorkerIndex: workerIndex,
			State:       state,
			Reason:      reason,
		},
	}
	vote.Signature = SignatureFromVote(vote, keys)
	return vote
}

// NewCheckpointVote constructs and signs a checkpointing vote attesting
// to blockHash at height.
func NewCheckpointVote(blockHash BlockHash, height uint64, index uint16, keys *keys.Keys) *Vote {
	vote := &Vote{
		Version:    VoteVersion,
		Type:       quorum.Checkpointing,
		Height:     height,
		Group:      quorum.GroupValidator,
		Index:      index,
		Checkpoint: &CheckpointVote{BlockHash: blockHash},
	}
	vote.Signature = SignatureFromVote(vote, keys)
	return vote
}

// SignatureFromVote signs the vote's canonical content.
func SignatureFromVote(v *Vote, keys *keys.Keys) []byte {
	return keys.Sign(VoteSignBytes(v))
}

// SignatureFromStateChange signs the aggregate content hash of a state
// change, for inclusion in that state change's signature set.
func SignatureFromStateChange(sc *StateChangeTx, keys *keys.Keys) []byte {
	return keys.Sign(StateChangeHash(sc.Height, sc.WorkerIndex, sc.State))
}

// SignatureFromCheckpoint signs the aggregate content hash of a
// checkpoint, for inclusion in that checkpoint's signature set.
func SignatureFromCheckpoint(cp *Checkpoint, keys *keys.Keys) []byte {
	return keys.Sign(CheckpointHash(cp.Height, cp.BlockHash))
}
