package p2p

import (
	"context"
	"encoding/json"
	"errors"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/quenero/masternode/network"
	"github.com/quenero/masternode/voting"
)

// Topic names for the two relay paths.
const (
	VoteTopic      = "votes/p2p"
	QuorumnetTopic = "votes/quorumnet"
)

var _ network.Network = (*Network)(nil)

// Network implements vote relay over libp2p gossipsub. Each relay path
// maps onto its own pubsub topic; quorum-specific relay is expressed by
// only quorum members joining the quorumnet topic.
type Network struct {
	ps *pubsub.PubSub
}

func NewNetwork(ps *pubsub.PubSub) *Network {
	return &Network{
		ps: ps,
	}
}

func (pn *Network) Channel(topic string) (network.Channel, error) {
	tp, err := pn.ps.Join(topic)
	if err != nil {
		return nil, err
	}

	ch := &Channel{
		ps: pn.ps,
		tp: tp,
	}
	ch.ensureSubscribed()
	return ch, nil
}

type Channel struct {
	ps  *pubsub.PubSub
	tp  *pubsub.Topic
	sub *pubsub.Subscription
}

func (c *Channel) BroadcastVote(ctx context.Context, vote *voting.Vote) error {
	data, err := json.Marshal(vote)
	if err != nil {
		return err
	}

	// so that we publish when we have at least one peer
	opt := pubsub.WithReadiness(pubsub.MinTopicSize(1))
	return c.tp.Publish(ctx, data, opt)
}

func (c *Channel) Notify(notifiee network.Notifiee) {
	// error can be safely ignored
	_ = c.ps.RegisterTopicValidator(c.tp.String(), func(ctx context.Context, _ peer.ID, pmsg *pubsub.Message) pubsub.ValidationResult {
		var vote voting.Vote
		if err := json.Unmarshal(pmsg.Data, &vote); err != nil {
			return pubsub.ValidationReject
		}

		if err := notifiee.OnVote(ctx, &vote); err != nil {
			return pubsub.ValidationReject
		}

		return pubsub.ValidationAccept
	})
}

func (c *Channel) Close() (err error) {
	c.sub.Cancel()
	err = errors.Join(err, c.ps.UnregisterTopicValidator(c.tp.String()))
	err = errors.Join(err, c.tp.Close())
	return err
}

// ensureSubscribed maintains one and only subscription for the topic.
// PubSub requires at least one subscription in order to work correctly.
// The Channel interface does not need the notion of subscribers and
// relies only on validators.
func (c *Channel) ensureSubscribed() {
	sub, err := c.tp.Subscribe()
	if err != nil {
		return // safe to ignore
	}
	c.sub = sub

	go func() {
		for {
			_, err := sub.Next(context.Background())
			if err != nil {
				// happens when subscription is canceled
				return
			}
			// simply ignore messages
		}
	}()
}
