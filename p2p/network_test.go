package p2p

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	mocknet "github.com/libp2p/go-libp2p/p2p/net/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quenero/masternode/network"
	"github.com/quenero/masternode/pkg/quorum"
	"github.com/quenero/masternode/voting"
)

func TestP2PNetwork(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)

	nets := setupP2PNetworks(ctx, t, 2)
	n0, n1 := nets[0], nets[1]

	c0, err := n0.Channel(VoteTopic)
	require.NoError(t, err)
	c1, err := n1.Channel(VoteTopic)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, c0.Close())
		require.NoError(t, c1.Close())
	})

	nt0, nt1 := makeNotifiee(), makeNotifiee()
	c0.Notify(nt0)
	c1.Notify(nt1)

	voteIn0 := randVote()
	err = c0.BroadcastVote(ctx, voteIn0)
	require.NoError(t, err)

	voteOut0, err := nt0.RcvVote(ctx) // ensures we receive msg from ourselves
	require.NoError(t, err)
	require.NotNil(t, voteOut0)
	assert.EqualValues(t, voteIn0, voteOut0)
	voteOut0, err = nt1.RcvVote(ctx)
	require.NoError(t, err)
	require.NotNil(t, voteOut0)
	assert.EqualValues(t, voteIn0, voteOut0)

	voteIn1 := randVote()
	err = c1.BroadcastVote(ctx, voteIn1)
	require.NoError(t, err)

	voteOut1, err := nt0.RcvVote(ctx)
	require.NoError(t, err)
	require.NotNil(t, voteOut1)
	assert.EqualValues(t, voteIn1, voteOut1)
	voteOut1, err = nt1.RcvVote(ctx)
	require.NoError(t, err)
	require.NotNil(t, voteOut1)
	assert.EqualValues(t, voteIn1, voteOut1)

	// a vote the notifiee rejects must not be published
	invalidVote := randVote()
	nt0.validateVote = func(vote *voting.Vote) error {
		if vote.Height == invalidVote.Height {
			return fmt.Errorf("invalid height")
		}
		return nil
	}
	err = c0.BroadcastVote(ctx, invalidVote)
	assert.Error(t, err)
}

type notifiee struct {
	votes chan *voting.Vote

	validateVote func(*voting.Vote) error
}

func makeNotifiee() *notifiee {
	return &notifiee{
		votes: make(chan *voting.Vote, 1),
		validateVote: func(vote *voting.Vote) error {
			return nil
		},
	}
}

func (n *notifiee) RcvVote(ctx context.Context) (*voting.Vote, error) {
	select {
	case vote := <-n.votes:
		return vote, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (n *notifiee) OnVote(ctx context.Context, vote *voting.Vote) error {
	if err := n.validateVote(vote); err != nil {
		return err
	}
	select {
	case n.votes <- vote:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func randVote() *voting.Vote {
	var hash voting.BlockHash
	rand.Read(hash[:])
	return &voting.Vote{
		Type:       quorum.Checkpointing,
		Height:     rand.Uint64(),
		Group:      quorum.GroupValidator,
		Index:      uint16(rand.Intn(20)),
		Signature:  randBytes(64),
		Checkpoint: &voting.CheckpointVote{BlockHash: hash},
	}
}

func randBytes(n int) []byte {
	bs := make([]byte, n)
	for i := 0; i < len(bs); i++ {
		bs[i] = byte(rand.Int() & 0xFF)
	}
	return bs
}

func setupP2PNetworks(ctx context.Context, t *testing.T, n int) []network.Network {
	mn, err := mocknet.FullMeshLinked(n)
	require.NoError(t, err)

	nets := make([]network.Network, n)
	for i := range nets {
		ps, err := pubsub.NewGossipSub(ctx, mn.Hosts()[i])
		require.NoError(t, err)
		nets[i] = NewNetwork(ps)
	}

	err = mn.ConnectAllButSelf()
	require.NoError(t, err)
	return nets
}
