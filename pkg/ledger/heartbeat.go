package ledger

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/DytallixHQ/dytallix-node/pkg/mempool"
)

// Heartbeat periodically logs chain height and mempool depth, independent
// of the producer's own block-interval ticker. It is scheduled with
// robfig/cron rather than a second time.Ticker so the schedule can be
// tuned with a standard cron expression without touching the producer's
// deterministic block timing.
type Heartbeat struct {
	cron *cron.Cron
}

// NewHeartbeat builds a Heartbeat logging ls/mp state on the given cron
// schedule (e.g. "@every 30s").
func NewHeartbeat(schedule string, ls *Store, mp *mempool.Mempool) (*Heartbeat, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		meta, err := ls.GetChainMeta()
		if err != nil {
			log.Debug().Err(err).Msg("heartbeat: chain meta unavailable yet")
			return
		}
		log.Info().Uint64("height", meta.Height).Int("mempool_size", mp.Size()).Msg("heartbeat")
	})
	if err != nil {
		return nil, err
	}
	return &Heartbeat{cron: c}, nil
}

// Start begins running the schedule in the background.
func (h *Heartbeat) Start() { h.cron.Start() }

// Stop halts the schedule, waiting for any in-flight run to finish.
func (h *Heartbeat) Stop() { h.cron.Stop() }
