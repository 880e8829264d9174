// Package masternode ties the quorum voting layer to a libp2p transport.
// The core logic lives in the voting package; pkg/quorum and pkg/keys
// model quorum membership and local key material.
package masternode
