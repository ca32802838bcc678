// Package auditor walks every stored bookmark URL and reports the ones that
// no longer resolve. Checks run as HEAD requests in fixed-size concurrent
// batches so a large collection cannot open thousands of sockets at once.
package auditor

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/metrics"
)

// UserAgent identifies audit traffic so site operators can tell it apart
// from enrichment fetches.
const UserAgent = "Linkmark-BrokenLinkChecker/1.0"

// BrokenLink is one URL that failed its check, with the reason kept for the
// report.
type BrokenLink struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// Report summarizes one audit run.
type Report struct {
	Total      int          `json:"total"`
	Broken     int          `json:"broken"`
	BrokenURLs []BrokenLink `json:"brokenUrls,omitempty"`
}

type Auditor struct {
	client    *http.Client
	timeout   time.Duration
	batchSize int
	log       logger.Logger
}

func New(timeout time.Duration, batchSize int, log logger.Logger) *Auditor {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Auditor{
		client:    &http.Client{},
		timeout:   timeout,
		batchSize: batchSize,
		log:       log,
	}
}

// Check audits urls and returns the report. Each batch finishes before the
// next starts, and a cancelled ctx stops between batches.
func (a *Auditor) Check(ctx context.Context, urls []string) Report {
	report := Report{Total: len(urls)}

	for start := 0; start < len(urls); start += a.batchSize {
		if ctx.Err() != nil {
			break
		}
		end := start + a.batchSize
		if end > len(urls) {
			end = len(urls)
		}
		batch := urls[start:end]

		results := make([]*BrokenLink, len(batch))
		var wg sync.WaitGroup
		for i, u := range batch {
			wg.Add(1)
			go func(i int, u string) {
				defer wg.Done()
				results[i] = a.checkOne(ctx, u)
			}(i, u)
		}
		wg.Wait()

		for _, r := range results {
			if r != nil {
				report.Broken++
				report.BrokenURLs = append(report.BrokenURLs, *r)
			}
		}
	}

	a.log.Info("link audit finished",
		logger.Int("total", report.Total),
		logger.Int("broken", report.Broken))
	return report
}

// checkOne returns nil for a healthy URL. Redirects are followed by the
// default client, so a permanently moved page is not broken.
func (a *Auditor) checkOne(ctx context.Context, url string) *BrokenLink {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		metrics.LinkChecksTotal.WithLabelValues("broken").Inc()
		return &BrokenLink{URL: url, Reason: err.Error()}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		metrics.LinkChecksTotal.WithLabelValues("broken").Inc()
		return &BrokenLink{URL: url, Reason: err.Error()}
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.LinkChecksTotal.WithLabelValues("broken").Inc()
		return &BrokenLink{URL: url, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	metrics.LinkChecksTotal.WithLabelValues("ok").Inc()
	return nil
}
