package auditor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarkhq/linkmark/internal/logger"
)

func TestCheckSeparatesHealthyFromBroken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/moved":
			http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	a := New(2*time.Second, 10, logger.Nop())
	report := a.Check(context.Background(), []string{
		srv.URL + "/ok",
		srv.URL + "/moved",
		srv.URL + "/gone",
		"http://127.0.0.1:1/unreachable",
	})

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Broken)
	require.Len(t, report.BrokenURLs, 2)

	reasons := map[string]string{}
	for _, b := range report.BrokenURLs {
		reasons[b.URL] = b.Reason
	}
	assert.Equal(t, "status 404", reasons[srv.URL+"/gone"])
	assert.Contains(t, reasons, "http://127.0.0.1:1/unreachable")
}

func TestCheckBatchesConcurrency(t *testing.T) {
	var (
		mu      sync.Mutex
		current int
		peak    int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
	}))
	defer srv.Close()

	urls := make([]string, 23)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/%d", srv.URL, i)
	}

	a := New(2*time.Second, 10, logger.Nop())
	report := a.Check(context.Background(), urls)

	assert.Equal(t, 23, report.Total)
	assert.Equal(t, 0, report.Broken)
	assert.LessOrEqual(t, peak, 10)
	assert.Greater(t, peak, 1)
}

func TestCheckEmptyList(t *testing.T) {
	a := New(time.Second, 10, logger.Nop())
	report := a.Check(context.Background(), nil)
	assert.Equal(t, 0, report.Total)
	assert.Empty(t, report.BrokenURLs)
}
