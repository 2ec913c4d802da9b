package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/luminastudio/lumina-backend/pkg/enums"
	"github.com/luminastudio/lumina-backend/pkg/logger"
	"github.com/luminastudio/lumina-backend/pkg/metrics"
)

// ProposalExpiryJobParams configure the expiry sweep.
type ProposalExpiryJobParams struct {
	Logger     *logger.Logger
	Repository proposalExpiryRepo
	Metrics    *metrics.ProposalMetrics
}

type proposalExpiryRepo interface {
	CountPastValidityByStatus(ctx context.Context, status enums.ProposalStatus, now time.Time) (int64, error)
}

// NewProposalExpiryJob builds the sweep that reports how many open proposals
// are past their validity date. Expiration is a derived view property, so the
// sweep only observes; it never rewrites statuses.
func NewProposalExpiryJob(params ProposalExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("proposals repository required")
	}
	return &proposalExpiryJob{
		logg:    params.Logger,
		repo:    params.Repository,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type proposalExpiryJob struct {
	logg    *logger.Logger
	repo    proposalExpiryRepo
	metrics *metrics.ProposalMetrics
	now     func() time.Time
}

func (j *proposalExpiryJob) Name() string { return "proposal-expiry-sweep" }

func (j *proposalExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	total := int64(0)
	var errs []error
	for _, status := range enums.OpenProposalStatuses() {
		count, err := j.repo.CountPastValidityByStatus(ctx, status, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("count %s proposals past validity: %w", status, err))
			continue
		}
		total += count
		j.metrics.SetPastValidity(string(status), int(count))
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"past_validity": total,
		"swept_at":      now,
	})
	j.logg.Info(logCtx, "proposal expiry sweep complete")
	return multierr.Combine(errs...)
}
