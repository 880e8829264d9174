package masternode

import (
	pubsub "github.com/libp2p/go-libp2p-pubsub"

	"github.com/quenero/masternode/p2p"
	"github.com/quenero/masternode/pkg/quorum"
	"github.com/quenero/masternode/voting"
)

// New wires a vote relayer over libp2p gossipsub: it joins both relay
// topics, registers the relayer as the inbound vote handler on each and
// returns the relayer ready to Start.
func New(ps *pubsub.PubSub, pool *voting.Pool, verifier *voting.Verifier, resolver quorum.Resolver, state voting.StateReader, opts ...voting.Option) (*voting.Relayer, error) {
	net := p2p.NewNetwork(ps)

	p2pChannel, err := net.Channel(p2p.VoteTopic)
	if err != nil {
		return nil, err
	}
	quorumnetChannel, err := net.Channel(p2p.QuorumnetTopic)
	if err != nil {
		return nil, err
	}

	relayer := voting.NewRelayer(pool, verifier, resolver, state, p2pChannel, quorumnetChannel, opts...)
	p2pChannel.Notify(relayer)
	quorumnetChannel.Notify(relayer)
	return relayer, nil
}
