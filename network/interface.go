package network

import (
	"context"
	"io"

	"github.com/quenero/masternode/voting"
)

// The voting layer relays votes over two logically separate channels: the
// general p2p flood network and the quorum-specific transport that only
// quorum members participate in. Which votes travel over which channel is
// decided by the vote pool; this package only moves bytes.

// Network hands out relay channels by topic.
type Network interface {
	Channel(topic string) (Channel, error)
}

// Channel is a single relay path. It must eventually propagate broadcast
// votes to all non-faulty subscribers; whether that is done by flooding
// or something smarter is left to the implementation.
type Channel interface {
	io.Closer
	Broadcaster
	Notifier
}

type Broadcaster interface {
	BroadcastVote(context.Context, *voting.Vote) error
}

type Notifier interface {
	// Notify registers a Notifiee wishing to receive inbound votes.
	// A non-nil error returned from OnVote rejects the message.
	Notify(Notifiee)
}

type Notifiee interface {
	OnVote(context.Context, *voting.Vote) error
}
