package voting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/quenero/masternode/pkg/quorum"
)

// Sender is the broadcast half of a relay channel. The p2p flood network
// and the quorum-specific transport each provide one.
type Sender interface {
	BroadcastVote(context.Context, *Vote) error
}

// Relayer drives the vote pool: it verifies and pools inbound votes,
// periodically re-broadcasts votes that peers may still be missing and
// retires votes whose decision is committed or expired.
//
// It runs only in memory. On restart the pool simply re-accumulates from
// the network's re-broadcasts.
type Relayer struct {
	pool     *Pool
	verifier *Verifier
	resolver quorum.Resolver
	state    StateReader

	// the two relay paths. Which votes go where is decided by the pool,
	// see Pool.GetRelayableVotes.
	p2p       Sender
	quorumnet Sender

	relayInterval time.Duration

	// lifecycle, see Start/Stop/Wait. cancel and done are guarded by
	// lifecycleMtx and are always set before status flips on.
	status       atomic.Bool
	lifecycleMtx sync.Mutex
	cancel       context.CancelFunc
	done         chan struct{}

	logger zerolog.Logger
}

// Operational phases
const (
	off = false
	on  = true
)

// DefaultRelayInterval is how often the relay pass and the expiry reaper
// run.
const DefaultRelayInterval = 30 * time.Second

// NewRelayer wires the pool to its collaborators. Either sender may be
// nil, in which case votes eligible for that path are simply not relayed
// by this node.
func NewRelayer(pool *Pool, verifier *Verifier, resolver quorum.Resolver, state StateReader, p2p, quorumnet Sender, opts ...Option) *Relayer {
	r := &Relayer{
		pool:          pool,
		verifier:      verifier,
		resolver:      resolver,
		state:         state,
		p2p:           p2p,
		quorumnet:     quorumnet,
		relayInterval: DefaultRelayInterval,
		logger:        zerolog.New(os.Stdout),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start runs the periodic relay pass and expiry reaper until the context
// is cancelled or Stop is called.
func (r *Relayer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	defer close(done)

	r.lifecycleMtx.Lock()
	if !r.status.CompareAndSwap(off, on) {
		r.lifecycleMtx.Unlock()
		return errors.New("relayer already running")
	}
	r.cancel = cancel
	r.done = done
	r.lifecycleMtx.Unlock()
	defer r.status.CompareAndSwap(on, off)

	ticker := time.NewTicker(r.relayInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			height := r.state.LatestHeight()
			if removed := r.pool.RemoveExpiredVotes(height); removed > 0 {
				r.logger.Debug().
					Uint64("height", height).
					Int("votes", removed).
					Msg("dropped expired votes")
			}
			r.relayPass(ctx, height)
		}
	}
}

func (r *Relayer) Stop() error {
	r.lifecycleMtx.Lock()
	if !r.status.Load() {
		r.lifecycleMtx.Unlock()
		return errors.New("relayer is not running")
	}
	cancel, done := r.cancel, r.done
	r.lifecycleMtx.Unlock()
	cancel()
	<-done
	return nil
}

func (r *Relayer) IsRunning() bool {
	return r.status.Load()
}

func (r *Relayer) Wait() <-chan struct{} {
	r.lifecycleMtx.Lock()
	defer r.lifecycleMtx.Unlock()
	return r.done
}

// relayPass pushes every still-relevant vote back out on its eligible
// path and stamps the ones that were actually sent.
func (r *Relayer) relayPass(ctx context.Context, height uint64) {
	hfVersion := r.state.HardforkVersion()
	r.relayOn(ctx, r.p2p, height, hfVersion, false)
	r.relayOn(ctx, r.quorumnet, height, hfVersion, true)
}

func (r *Relayer) relayOn(ctx context.Context, sender Sender, height uint64, hfVersion uint8, quorumRelay bool) {
	if sender == nil {
		return
	}
	votes := r.pool.GetRelayableVotes(height, hfVersion, quorumRelay)
	if len(votes) == 0 {
		return
	}

	sent := make([]*Vote, 0, len(votes))
	for _, vote := range votes {
		if err := sender.BroadcastVote(ctx, vote); err != nil {
			r.logger.Err(err).
				Str("vote", vote.String()).
				Bool("quorumnet", quorumRelay).
				Msg("relaying vote")
			continue
		}
		sent = append(sent, vote)
	}
	r.pool.SetRelayed(sent)

	r.logger.Debug().
		Uint64("height", height).
		Bool("quorumnet", quorumRelay).
		Int("votes", len(sent)).
		Msg("relayed votes")
}

// HandleVote is the full inbound path for a vote received from the
// network: structural validation, age check, quorum resolution, signature
// check and finally deduplicated insertion. The returned error carries
// the verification failure reason so the transport can score the sending
// peer; a duplicate vote is not an error.
func (r *Relayer) HandleVote(ctx context.Context, v *Vote) error {
	if err := v.ValidateForm(); err != nil {
		return err
	}

	if err := VerifyVoteAge(v, r.state.LatestHeight()); err != nil {
		return err
	}

	q, err := r.resolver.ResolveQuorum(v.Type, v.Height)
	if err != nil {
		return fmt.Errorf("resolving %s quorum at height %d: %w", v.Type, v.Height, err)
	}

	if err := r.verifier.VerifyVoteSignature(r.state.HardforkVersion(), v, q); err != nil {
		return err
	}

	votes := r.pool.AddVoteIfUnique(v)
	r.logger.Debug().
		Str("vote", v.String()).
		Int("decision_votes", len(votes)).
		Msg("pooled vote")
	return nil
}

// OnVote satisfies the network notifiee contract. Invalid votes are
// logged and the reason propagated so the transport rejects the message.
func (r *Relayer) OnVote(ctx context.Context, v *Vote) error {
	if err := r.HandleVote(ctx, v); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Info().
			Err(err).
			Str("vote", v.String()).
			Msg("invalid vote")
		return err
	}
	return nil
}

// OnBlockCommitted retires votes made moot by a newly committed block:
// obligation decisions whose state change is embedded in one of the
// block's transactions and checkpoint decisions that the block's
// checkpoint persisted.
func (r *Relayer) OnBlockCommitted(height uint64, txs []*Transaction, checkpoints []*Checkpoint, hfVersion uint8) {
	r.pool.RemoveUsedVotes(txs, hfVersion)
	r.pool.RemoveCheckpointedVotes(checkpoints)
	r.logger.Debug().
		Uint64("height", height).
		Int("txs", len(txs)).
		Int("checkpoints", len(checkpoints)).
		Msg("removed used votes")
}
