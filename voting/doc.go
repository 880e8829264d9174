// Package voting implements the quorum voting layer of a masternode
// network: construction and signing of quorum votes, verification of
// individual votes and aggregate signature sets, and an in-memory pool
// that deduplicates votes per decision and selects which votes still
// need relaying to peers.
package voting
