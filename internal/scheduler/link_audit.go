package scheduler

import (
	"context"
	"time"

	"github.com/linkmarkhq/linkmark/internal/auditor"
	"github.com/linkmarkhq/linkmark/internal/logger"
)

// URLLister is the slice of persistence the audit job needs.
type URLLister interface {
	ListURLs(ctx context.Context) ([]string, error)
}

// LinkAuditJob periodically runs the broken-link checker over every stored
// URL.
type LinkAuditJob struct {
	auditor  *auditor.Auditor
	store    URLLister
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewLinkAuditJob creates a new periodic link audit job
func NewLinkAuditJob(a *auditor.Auditor, store URLLister, log logger.Logger, interval time.Duration) *LinkAuditJob {
	return &LinkAuditJob{
		auditor:  a,
		store:    store,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic audit process
func (j *LinkAuditJob) Start(ctx context.Context) {
	// Run immediately on start
	j.run(ctx)

	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.run(ctx)
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the job
func (j *LinkAuditJob) Stop() {
	close(j.stopCh)
}

func (j *LinkAuditJob) run(ctx context.Context) {
	urls, err := j.store.ListURLs(ctx)
	if err != nil {
		j.logger.Error("failed to list urls for audit", logger.Error(err))
		return
	}

	report := j.auditor.Check(ctx, urls)
	for _, b := range report.BrokenURLs {
		j.logger.Warn("broken link",
			logger.String("url", b.URL),
			logger.String("reason", b.Reason))
	}
}
