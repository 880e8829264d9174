package voting

import (
	"sync"
	"time"

	"github.com/quenero/masternode/pkg/quorum"
)

// DefaultMinRelayInterval is the minimum time between two relays of the
// same vote. Tunable via WithMinRelayInterval.
const DefaultMinRelayInterval = time.Minute

// PoolVoteEntry is a pooled vote plus the last time it was relayed.
// TimeLastSent is unix seconds, 0 meaning never sent. It is the only
// mutable field and is updated exclusively by SetRelayed.
type PoolVoteEntry struct {
	Vote         *Vote
	TimeLastSent int64
}

// Decision keys. Two votes count towards the same obligation decision iff
// height, worker index and proposed state all match; the reason bitflags
// are deliberately not part of the key.
type obligationsKey struct {
	height      uint64
	workerIndex uint16
	state       NewState
}

type checkpointKey struct {
	height uint64
	hash   BlockHash
}

// decisions is a keyed collection of vote lists with at most one vote per
// signer index per decision. The same dedup logic serves both sub-pools;
// only the key shape differs. Callers hold the pool lock.
type decisions[K comparable] struct {
	entries map[K]*decisionEntry
}

type decisionEntry struct {
	height uint64
	votes  []*PoolVoteEntry
}

func newDecisions[K comparable]() decisions[K] {
	return decisions[K]{entries: make(map[K]*decisionEntry)}
}

// add inserts the vote into the decision keyed by key unless a vote from
// the same signer index is already present, and returns the decision's
// current vote list either way. The first vote accepted for an index wins;
// a later vote from the same index never overwrites it.
func (d decisions[K]) add(key K, height uint64, v *Vote) []*PoolVoteEntry {
	entry, ok := d.entries[key]
	if !ok {
		entry = &decisionEntry{height: height}
		d.entries[key] = entry
	}

	for _, pv := range entry.votes {
		if pv.Vote.Index == v.Index {
			return entry.list()
		}
	}

	entry.votes = append(entry.votes, &PoolVoteEntry{Vote: v})
	return entry.list()
}

func (d decisions[K]) remove(key K) {
	delete(d.entries, key)
}

func (d decisions[K]) expire(minHeight uint64) int {
	removed := 0
	for key, entry := range d.entries {
		if entry.height < minHeight {
			removed += len(entry.votes)
			delete(d.entries, key)
		}
	}
	return removed
}

func (d decisions[K]) find(key K, index uint16) *PoolVoteEntry {
	entry, ok := d.entries[key]
	if !ok {
		return nil
	}
	for _, pv := range entry.votes {
		if pv.Vote.Index == index {
			return pv
		}
	}
	return nil
}

// list returns a copy of the vote list so that callers can hold it
// outside the pool lock. The entries themselves are shared.
func (e *decisionEntry) list() []*PoolVoteEntry {
	out := make([]*PoolVoteEntry, len(e.votes))
	copy(out, e.votes)
	return out
}

// Pool holds the live votes of both decision kinds, deduplicated per
// signer. It is shared mutable state between the inbound vote path, the
// relay timer and the block-commit handler; every exported method takes
// the single pool lock once and internal helpers never call back into
// exported methods.
//
// The pool performs no cryptographic checks. A vote must pass
// verification before it is added.
type Pool struct {
	mtx sync.Mutex

	obligations decisions[obligationsKey]
	checkpoints decisions[checkpointKey]

	minRelayInterval time.Duration
	now              func() time.Time
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithMinRelayInterval sets the send-rate throttle applied by
// GetRelayableVotes.
func WithMinRelayInterval(d time.Duration) PoolOption {
	return func(p *Pool) {
		p.minRelayInterval = d
	}
}

func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		obligations:      newDecisions[obligationsKey](),
		checkpoints:      newDecisions[checkpointKey](),
		minRelayInterval: DefaultMinRelayInterval,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddVoteIfUnique routes the vote to its sub-pool and inserts it unless a
// vote from the same signer index already exists for the same decision.
// It returns the decision's current vote list in both cases, so the
// caller can still relay or count a duplicate's decision. Votes of types
// that are not pooled (blink, pulse) and votes whose payload does not
// match their type return nil.
func (p *Pool) AddVoteIfUnique(v *Vote) []*PoolVoteEntry {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	switch v.Type {
	case quorum.Obligations:
		if v.StateChange == nil {
			return nil
		}
		key := obligationsKey{v.Height, v.StateChange.WorkerIndex, v.StateChange.State}
		return p.obligations.add(key, v.Height, v)
	case quorum.Checkpointing:
		if v.Checkpoint == nil {
			return nil
		}
		key := checkpointKey{v.Height, v.Checkpoint.BlockHash}
		return p.checkpoints.add(key, v.Height, v)
	default:
		return nil
	}
}

// GetRelayableVotes returns every pooled vote whose decision is still
// within the lifetime window of height and which is eligible for the
// requested transport: quorumRelay false selects the p2p flood path,
// true the quorum-specific path. The split is version dependent, see
// relayedOverQuorumnet. Votes relayed more recently than the minimum
// relay interval are excluded. Calling this does not mark anything as
// sent; that is SetRelayed's job.
func (p *Pool) GetRelayableVotes(height uint64, hfVersion uint8, quorumRelay bool) []*Vote {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	minHeight := uint64(0)
	if height > VoteLifetime {
		minHeight = height - VoteLifetime
	}
	resendBefore := p.now().Unix() - int64(p.minRelayInterval/time.Second)

	var result []*Vote
	if relayedOverQuorumnet(quorum.Obligations, hfVersion) == quorumRelay {
		result = appendRelayable(result, p.obligations, minHeight, resendBefore)
	}
	if relayedOverQuorumnet(quorum.Checkpointing, hfVersion) == quorumRelay {
		result = appendRelayable(result, p.checkpoints, minHeight, resendBefore)
	}
	return result
}

func appendRelayable[K comparable](result []*Vote, d decisions[K], minHeight uint64, resendBefore int64) []*Vote {
	for _, entry := range d.entries {
		if entry.height < minHeight {
			continue
		}
		for _, pv := range entry.votes {
			if pv.TimeLastSent > resendBefore {
				continue
			}
			result = append(result, pv.Vote)
		}
	}
	return result
}

// SetRelayed stamps the given votes, matched by decision key and signer
// index, with the current time so later relay passes can throttle them.
func (p *Pool) SetRelayed(votes []*Vote) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	now := p.now().Unix()
	for _, v := range votes {
		var pv *PoolVoteEntry
		switch {
		case v.Type == quorum.Obligations && v.StateChange != nil:
			key := obligationsKey{v.Height, v.StateChange.WorkerIndex, v.StateChange.State}
			pv = p.obligations.find(key, v.Index)
		case v.Type == quorum.Checkpointing && v.Checkpoint != nil:
			key := checkpointKey{v.Height, v.Checkpoint.BlockHash}
			pv = p.checkpoints.find(key, v.Index)
		}
		if pv != nil {
			pv.TimeLastSent = now
		}
	}
}

// RemoveExpiredVotes drops every decision whose height has fallen further
// behind height than VoteLifetime. This bounds pool memory against a
// chain that never finalizes a decision.
func (p *Pool) RemoveExpiredVotes(height uint64) int {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	minHeight := uint64(0)
	if height > VoteLifetime {
		minHeight = height - VoteLifetime
	}
	return p.obligations.expire(minHeight) + p.checkpoints.expire(minHeight)
}

// RemoveUsedVotes retires obligation decisions whose state change was
// just committed on chain via one of the given transactions. Further
// votes for those decisions are moot: the transition is permanently
// recorded.
func (p *Pool) RemoveUsedVotes(txs []*Transaction, hfVersion uint8) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	for _, tx := range txs {
		if tx.Type != TxStateChange || tx.StateChange == nil {
			continue
		}
		sc := tx.StateChange
		p.obligations.remove(obligationsKey{sc.Height, sc.WorkerIndex, sc.State})
	}
}

// RemoveCheckpointedVotes retires checkpoint decisions that have since
// been persisted by the blockchain. Unlike state changes, persisted
// checkpoints are not derivable from transaction contents, so the block
// commit handler passes them in explicitly.
func (p *Pool) RemoveCheckpointedVotes(checkpoints []*Checkpoint) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	for _, cp := range checkpoints {
		p.checkpoints.remove(checkpointKey{cp.Height, cp.BlockHash})
	}
}

// ReceivedCheckpointVote reports whether the signer at index has already
// contributed a checkpoint vote at this height, for any block hash.
func (p *Pool) ReceivedCheckpointVote(height uint64, index uint16) bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	for key, entry := range p.checkpoints.entries {
		if key.height != height {
			continue
		}
		for _, pv := range entry.votes {
			if pv.Vote.Index == index {
				return true
			}
		}
	}
	return false
}
