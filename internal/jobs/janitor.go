package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/shef088/Hospital-Management-System-sub001/internal/cache"
	"github.com/shef088/Hospital-Management-System-sub001/internal/config"
)

// Janitor periodically sweeps the resource cache so long-lived dashboard
// processes stay bounded: errored entries and long-stale snapshots are
// evicted on a cron schedule.
type Janitor struct {
	cron      *cron.Cron
	store     *cache.Store
	spec      string
	retention time.Duration
	log       zerolog.Logger
}

func NewJanitor(cfg config.CacheConfig, store *cache.Store, log zerolog.Logger) *Janitor {
	return &Janitor{
		cron:      cron.New(cron.WithSeconds()),
		store:     store,
		spec:      cfg.SweepSpec,
		retention: cfg.Retention,
		log:       log.With().Str("component", "janitor").Logger(),
	}
}

func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.sweep); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts scheduling and waits briefly for a running sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (j *Janitor) sweep() {
	n := j.store.Sweep(j.retention)
	if n > 0 {
		j.log.Debug().Int("evicted", n).Msg("cache swept")
	}
}
