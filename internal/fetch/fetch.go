package fetch

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/imroc/req/v3"

	"github.com/relayforge/subconverter/internal/customlog"
	"github.com/relayforge/subconverter/internal/xerrors"
)

// Options governs the fetcher's concurrency and retry behavior.
type Options struct {
	PoolSize            int
	Timeout             time.Duration
	Retries             int
	BackoffBase         time.Duration
	TotalOutstandingCap int
	Strict              bool
}

// DefaultOptions returns the stated defaults: pool 8, timeout 10s, 3
// retries at 250ms doubling backoff, 32 total outstanding fetches.
func DefaultOptions() Options {
	return Options{
		PoolSize:            8,
		Timeout:             10 * time.Second,
		Retries:             3,
		BackoffBase:         250 * time.Millisecond,
		TotalOutstandingCap: 32,
		Strict:              false,
	}
}

// UserInfo carries the HTTP subscription-userinfo header fields, which
// generators may surface to the client as traffic-quota metadata.
type UserInfo struct {
	Upload   int64
	Download int64
	Total    int64
	Expire   int64
}

// Result is one successfully retrieved source.
type Result struct {
	Raw         []byte
	SourceTag   string
	ContentType string
	UserInfo    *UserInfo
}

// Report is the outcome of fetching a whole target list: results for
// sources that succeeded, and ingest errors for sources that exhausted
// their retries.
type Report struct {
	Results []Result
	Errors  []*xerrors.IngestError
}

// Fetch retrieves every target with bounded concurrency. If opts.Strict
// is set, the first IngestError aborts the whole batch; otherwise it is
// recorded and the remaining targets still run.
func Fetch(ctx context.Context, targets []Target, opts Options) (Report, error) {
	if len(targets) > opts.TotalOutstandingCap {
		targets = targets[:opts.TotalOutstandingCap]
	}

	client := req.C().
		SetTimeout(opts.Timeout).
		SetUserAgent("subconverter/1.0")

	pool := pond.NewPool(opts.PoolSize)
	defer pool.Stop()
	group := pool.NewGroupContext(ctx)

	var mu sync.Mutex
	var report Report
	var aborted bool

	for _, target := range targets {
		t := target
		group.Submit(func() {
			mu.Lock()
			if aborted {
				mu.Unlock()
				return
			}
			mu.Unlock()

			res, err := fetchOne(group.Context(), client, t, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				ingestErr := toIngestError(t, err)
				report.Errors = append(report.Errors, ingestErr)
				customlog.Printf(customlog.Warning, "fetch %s failed: %v\n", t.Group, err)
				if opts.Strict {
					aborted = true
				}
				return
			}
			report.Results = append(report.Results, res)
		})
	}

	if err := group.Wait(); err != nil && err != context.Canceled {
		return report, err
	}
	if aborted {
		return report, &xerrors.CancelledError{Where: "fetch: strict mode aborted on first ingest error"}
	}
	return report, nil
}

func fetchOne(ctx context.Context, client *req.Client, t Target, opts Options) (Result, error) {
	switch t.detectKind() {
	case KindLocalPath:
		return fetchLocal(t)
	case KindInlineURI:
		return Result{Raw: []byte(t.Value), SourceTag: t.Group, ContentType: "text/plain"}, nil
	default:
		return fetchRemote(ctx, client, t, opts)
	}
}

func fetchLocal(t Target) (Result, error) {
	data, err := os.ReadFile(t.Value)
	if err != nil {
		return Result{}, &xerrors.IngestError{Source: t.Group, Kind: xerrors.IngestDecode, Err: err}
	}
	return Result{Raw: data, SourceTag: t.Group, ContentType: "application/octet-stream"}, nil
}

func fetchRemote(ctx context.Context, client *req.Client, t Target, opts Options) (Result, error) {
	var lastErr error
	backoff := opts.BackoffBase

	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Result{}, &xerrors.IngestError{Source: t.Group, Kind: xerrors.IngestTimeout, Err: ctx.Err()}
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		r := client.R().SetContext(ctx)
		for k, v := range t.Headers {
			r = r.SetHeader(k, v)
		}
		resp, err := r.Get(t.Value)
		if err != nil {
			lastErr = err
			continue
		}
		if !resp.IsSuccessState() {
			lastErr = &xerrors.IngestError{
				Source: t.Group,
				Kind:   xerrors.IngestHTTPStatus,
				Err:    errStatus(resp.StatusCode),
			}
			continue
		}
		body := resp.Bytes()
		return Result{
			Raw:         body,
			SourceTag:   t.Group,
			ContentType: resp.GetContentType(),
			UserInfo:    parseUserInfo(resp.Header.Get("subscription-userinfo")),
		}, nil
	}

	if ierr, ok := lastErr.(*xerrors.IngestError); ok {
		return Result{}, ierr
	}
	return Result{}, &xerrors.IngestError{Source: t.Group, Kind: xerrors.IngestNetwork, Err: lastErr}
}

func errStatus(code int) error {
	return &statusError{code: code}
}

type statusError struct{ code int }

func (e *statusError) Error() string {
	return "unexpected status code " + strconv.Itoa(e.code)
}

func toIngestError(t Target, err error) *xerrors.IngestError {
	if ierr, ok := err.(*xerrors.IngestError); ok {
		return ierr
	}
	return &xerrors.IngestError{Source: t.Group, Kind: xerrors.IngestNetwork, Err: err}
}

// parseUserInfo parses the subscription-userinfo header, a
// space-separated list of key=value pairs (upload, download, total,
// expire), tolerating missing fields.
func parseUserInfo(header string) *UserInfo {
	if header == "" {
		return nil
	}
	info := &UserInfo{}
	for _, field := range strings.Fields(header) {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSuffix(kv[1], ";"), 10, 64)
		if err != nil {
			continue
		}
		switch kv[0] {
		case "upload":
			info.Upload = v
		case "download":
			info.Download = v
		case "total":
			info.Total = v
		case "expire":
			info.Expire = v
		}
	}
	return info
}
