package voting

import (
	"time"

	"github.com/rs/zerolog"
)

// Option is a set of configurable relayer parameters. If left empty,
// defaults will be used
type Option func(r *Relayer)

// WithLogger sets the logger used for relay and verification events
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Relayer) {
		r.logger = logger
	}
}

// WithRelayInterval sets how often the relay pass and expiry reaper run
func WithRelayInterval(d time.Duration) Option {
	return func(r *Relayer) {
		r.relayInterval = d
	}
}
