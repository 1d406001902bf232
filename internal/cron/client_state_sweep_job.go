package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/omnicart-backend/pkg/logger"
)

const ClientStateSweepJobName = "client-state-sweep"

// IdleEvictor forgets in-memory session copies not touched for idle.
type IdleEvictor interface {
	EvictIdle(idle time.Duration) int
}

// ExpiryPurger drops stored values past their TTL.
type ExpiryPurger interface {
	PurgeExpired() int
}

// ClientStateSweepJobParams configure the client state sweep.
type ClientStateSweepJobParams struct {
	Logger   *logger.Logger
	Evictors []IdleEvictor
	// Purger is set when client state lives in process memory.
	Purger ExpiryPurger
	Idle   time.Duration
}

type clientStateSweepJob struct {
	logg     *logger.Logger
	evictors []IdleEvictor
	purger   ExpiryPurger
	idle     time.Duration
}

// NewClientStateSweepJob builds the sweep job.
func NewClientStateSweepJob(params ClientStateSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Idle <= 0 {
		return nil, fmt.Errorf("idle eviction window must be positive")
	}
	evictors := make([]IdleEvictor, 0, len(params.Evictors))
	for _, e := range params.Evictors {
		if e != nil {
			evictors = append(evictors, e)
		}
	}
	return &clientStateSweepJob{
		logg:     params.Logger,
		evictors: evictors,
		purger:   params.Purger,
		idle:     params.Idle,
	}, nil
}

func (j *clientStateSweepJob) Name() string { return ClientStateSweepJobName }

func (j *clientStateSweepJob) Run(ctx context.Context) error {
	evicted := 0
	for _, e := range j.evictors {
		evicted += e.EvictIdle(j.idle)
	}
	purged := 0
	if j.purger != nil {
		purged = j.purger.PurgeExpired()
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"evicted_sessions": evicted,
		"purged_values":    purged,
	}), "client state swept")
	return ctx.Err()
}
