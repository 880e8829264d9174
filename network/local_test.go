package network_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quenero/masternode/network"
	"github.com/quenero/masternode/pkg/quorum"
	"github.com/quenero/masternode/voting"
)

type recordingNotifiee struct {
	votes []*voting.Vote
}

func (n *recordingNotifiee) OnVote(_ context.Context, v *voting.Vote) error {
	n.votes = append(n.votes, v)
	return nil
}

func TestLocalNetworkDeliversToPeers(t *testing.T) {
	net := network.NewLocalNetwork()

	c0, err := net.Channel("votes/p2p")
	require.NoError(t, err)
	c1, err := net.Channel("votes/p2p")
	require.NoError(t, err)
	other, err := net.Channel("votes/quorumnet")
	require.NoError(t, err)

	n1, nOther := &recordingNotifiee{}, &recordingNotifiee{}
	c1.Notify(n1)
	other.Notify(nOther)

	vote := &voting.Vote{
		Type:       quorum.Checkpointing,
		Height:     10,
		Group:      quorum.GroupValidator,
		Signature:  []byte("sig"),
		Checkpoint: &voting.CheckpointVote{},
	}
	require.NoError(t, c0.BroadcastVote(context.Background(), vote))

	// delivered to the peer on the same topic, not to the sender and
	// not across topics
	require.Len(t, n1.votes, 1)
	assert.Equal(t, vote, n1.votes[0])
	assert.Empty(t, nOther.votes)

	require.NoError(t, c1.Close())
	require.NoError(t, c0.BroadcastVote(context.Background(), vote))
	assert.Len(t, n1.votes, 1)
}
