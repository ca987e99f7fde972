package cron

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopmithra/mithra-backend/pkg/logger"
)

type cartPurger interface {
	PurgeStale(ctx context.Context, age time.Duration) (int64, error)
}

// StaleCartJobParams configures the abandoned cart sweep.
type StaleCartJobParams struct {
	Logger *logger.Logger
	Carts  cartPurger
	MaxAge time.Duration
}

type staleCartJob struct {
	logg   *logger.Logger
	carts  cartPurger
	maxAge time.Duration
}

// NewStaleCartJob deletes carts that have sat untouched past the configured age.
func NewStaleCartJob(params StaleCartJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.MaxAge <= 0 {
		return nil, fmt.Errorf("max age must be positive")
	}
	return &staleCartJob{logg: params.Logger, carts: params.Carts, maxAge: params.MaxAge}, nil
}

func (j *staleCartJob) Name() string { return "stale_cart_cleanup" }

func (j *staleCartJob) Run(ctx context.Context) error {
	purged, err := j.carts.PurgeStale(ctx, j.maxAge)
	if err != nil {
		return fmt.Errorf("purge stale carts: %w", err)
	}
	if purged > 0 {
		j.logg.Info(j.logg.WithField(ctx, "purged", strconv.FormatInt(purged, 10)), "removed stale carts")
	}
	return nil
}
