package network

import (
	"context"
	"sync"

	"github.com/quenero/masternode/voting"
)

// LocalNetwork is an in-process Network where every channel delivers
// broadcasts synchronously to all other subscribers of the same topic.
// Useful for tests and single-process simulations.
type LocalNetwork struct {
	mtx      sync.Mutex
	channels map[string][]*LocalChannel
}

func NewLocalNetwork() *LocalNetwork {
	return &LocalNetwork{
		channels: make(map[string][]*LocalChannel),
	}
}

func (n *LocalNetwork) Channel(topic string) (Channel, error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	ch := &LocalChannel{network: n, topic: topic}
	n.channels[topic] = append(n.channels[topic], ch)
	return ch, nil
}

type LocalChannel struct {
	network *LocalNetwork
	topic   string

	mtx      sync.Mutex
	notifiee Notifiee
}

func (c *LocalChannel) BroadcastVote(ctx context.Context, vote *voting.Vote) error {
	c.network.mtx.Lock()
	peers := append([]*LocalChannel(nil), c.network.channels[c.topic]...)
	c.network.mtx.Unlock()

	for _, peer := range peers {
		if peer == c {
			continue
		}
		peer.deliver(ctx, vote)
	}
	return nil
}

func (c *LocalChannel) Notify(notifiee Notifiee) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.notifiee = notifiee
}

func (c *LocalChannel) Close() error {
	c.network.mtx.Lock()
	defer c.network.mtx.Unlock()
	peers := c.network.channels[c.topic]
	for i, peer := range peers {
		if peer == c {
			c.network.channels[c.topic] = append(peers[:i], peers[i+1:]...)
			break
		}
	}
	return nil
}

func (c *LocalChannel) deliver(ctx context.Context, vote *voting.Vote) {
	c.mtx.Lock()
	notifiee := c.notifiee
	c.mtx.Unlock()
	if notifiee == nil {
		return
	}
	// rejection only matters for gossip scoring, which a local network
	// does not have
	_ = notifiee.OnVote(ctx, vote)
}
