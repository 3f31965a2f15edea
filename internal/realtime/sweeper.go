package realtime

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/db"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
)

const (
	// HeartbeatPeriod is how often players are expected to report in.
	HeartbeatPeriod = 30 * time.Second

	// StaleAfter is the liveness threshold: a store is only flipped offline
	// after missing three consecutive heartbeats. The margin fails open so
	// one dropped beat never flaps an operator's view of the store.
	StaleAfter = 3 * HeartbeatPeriod
)

// Sweeper periodically marks stores offline whose last_seen has gone stale.
// A player process killed without a clean socket teardown would otherwise
// read as online forever.
type Sweeper struct {
	store     db.Store
	relay     *Relay
	interval  time.Duration
	threshold time.Duration
}

func NewSweeper(store db.Store, relay *Relay) *Sweeper {
	return &Sweeper{
		store:     store,
		relay:     relay,
		interval:  HeartbeatPeriod,
		threshold: StaleAfter,
	}
}

// SetInterval overrides the sweep cadence. Call before Run.
func (s *Sweeper) SetInterval(d time.Duration) {
	s.interval = d
	s.threshold = 3 * d
}

// Run blocks until ctx is canceled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", s.interval).
		Dur("threshold", s.threshold).
		Msg("liveness sweeper started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("liveness sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(time.Now())
		}
	}
}

// SweepOnce flips every store whose last_seen predates now-threshold,
// emitting the same offline trail as a clean disconnect.
func (s *Sweeper) SweepOnce(now time.Time) {
	stale, err := s.store.ListStaleOnlineStores(now.Add(-s.threshold))
	if err != nil {
		return
	}
	for _, st := range stale {
		// a live socket means the device is reachable even if heartbeats
		// stopped; leave it alone
		if s.relay != nil && s.relay.hub.StoreConnected(st.ID) {
			continue
		}
		if err := s.store.SetStoreOnline(st.ID, false); err != nil {
			continue
		}
		_ = s.store.AppendPlaybackLog(model.PlaybackLog{
			StoreID:   st.ID,
			EventType: model.EventDeviceOffline,
			Metadata:  model.JSONMap{"reason": "heartbeat_timeout"},
		})
		log.Warn().Int("store_id", st.ID).Msg("store marked offline by liveness sweep")
		if s.relay != nil {
			s.relay.NotifyStoreOffline(st.ID, st.OrganizationID)
		}
	}
}
