// Package ruleset implements the Ruleset Engine: fetch, cache, classify
// and expand ruleset references into resolved (target_group,
// match-lines) pairs.
package ruleset

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"github.com/relayforge/subconverter/internal/fetch"
	"github.com/relayforge/subconverter/internal/xerrors"
)

// DeclaredType is the ruleset kind the caller asserts for a reference;
// it governs normalization.
type DeclaredType string

const (
	TypeClassical DeclaredType = "classical"
	TypeDomain    DeclaredType = "domain"
	TypeIPCIDR    DeclaredType = "ipcidr"
	TypeScript    DeclaredType = "script"
)

// Reference is one configured ruleset: a URL or inline text, its
// declared type, and the proxy group it feeds.
type Reference struct {
	URL          string
	InlineBody   string
	DeclaredType DeclaredType
	TargetGroup  string
}

// Resolved is a fully fetched and classified ruleset ready for a
// generator: TargetGroup paired with its normalized match lines.
// Script rulesets carry their opaque body in Script instead.
type Resolved struct {
	TargetGroup string
	Lines       []string
	IsScript    bool
	Script      string
}

type cacheEntry struct {
	contentHash string
	body        string
	fetchedAt   time.Time
}

// Engine holds the process-wide ruleset cache and fetch-coalescing
// group: an in-flight-fetch map that ensures
// at-most-one concurrent download per (url, declared_type) key.
type Engine struct {
	ttl time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry

	group singleflight.Group
}

// NewEngine constructs a ruleset engine with the given cache TTL.
func NewEngine(ttl time.Duration) *Engine {
	return &Engine{
		ttl:   ttl,
		cache: make(map[string]cacheEntry),
	}
}

func cacheKey(url string, declared DeclaredType) string {
	return string(declared) + "|" + url
}

// Resolve fetches (or serves from cache) every reference concurrently,
// one goroutine per reference, and classifies each into a Resolved
// plan. Each fetch is its own fetch.Fetch call with its own worker
// pool; no pool or bound is shared across references. A failure on one reference is reported via RulesetError but
// does not abort the others.
func (e *Engine) Resolve(ctx context.Context, refs []Reference, opts fetch.Options) ([]Resolved, []*xerrors.RulesetError) {
	var (
		mu       sync.Mutex
		resolved []Resolved
		errs     []*xerrors.RulesetError
		wg       sync.WaitGroup
	)

	for _, ref := range refs {
		ref := ref
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, err := e.fetchBody(ctx, ref, opts)
			if err != nil {
				mu.Lock()
				errs = append(errs, &xerrors.RulesetError{URL: ref.URL, Kind: xerrors.RulesetFetch, Err: err})
				mu.Unlock()
				return
			}
			r, err := classify(ref, body)
			if err != nil {
				mu.Lock()
				errs = append(errs, &xerrors.RulesetError{URL: ref.URL, Kind: xerrors.RulesetParse, Err: err})
				mu.Unlock()
				return
			}
			mu.Lock()
			resolved = append(resolved, r)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return resolved, errs
}

func (e *Engine) fetchBody(ctx context.Context, ref Reference, opts fetch.Options) (string, error) {
	if ref.URL == "" {
		return ref.InlineBody, nil
	}

	key := cacheKey(ref.URL, ref.DeclaredType)

	e.mu.RLock()
	entry, ok := e.cache[key]
	e.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < e.ttl {
		return entry.body, nil
	}

	v, err, _ := e.group.Do(key, func() (interface{}, error) {
		report, err := fetch.Fetch(ctx, []fetch.Target{{Value: ref.URL, Group: ref.TargetGroup}}, opts)
		if err != nil {
			return "", err
		}
		if len(report.Errors) > 0 {
			return "", report.Errors[0]
		}
		if len(report.Results) == 0 {
			return "", errNoResult
		}
		body := string(report.Results[0].Raw)
		e.mu.Lock()
		e.cache[key] = cacheEntry{contentHash: hashContent(body), body: body, fetchedAt: timeNow()}
		e.mu.Unlock()
		return body, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

var errNoResult = errors.New("fetch returned no result")

func hashContent(body string) string {
	sum := blake2b.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// timeNow is indirected for testability of cache TTL behavior.
var timeNow = time.Now

// classify normalizes a fetched ruleset body into its Resolved form:
// classical rulesets pass through verbatim, domain/ipcidr rulesets are
// normalized line-by-line, and script rulesets stay opaque.
func classify(ref Reference, body string) (Resolved, error) {
	if ref.DeclaredType == TypeScript {
		return Resolved{TargetGroup: ref.TargetGroup, IsScript: true, Script: body}, nil
	}

	var lines []string
	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		lines = append(lines, normalizeLine(ref.DeclaredType, line))
	}
	return Resolved{TargetGroup: ref.TargetGroup, Lines: lines}, nil
}

func normalizeLine(declared DeclaredType, line string) string {
	switch declared {
	case TypeDomain:
		if strings.Contains(line, ",") {
			return line // already classical
		}
		if strings.HasPrefix(line, "+.") || strings.HasPrefix(line, "*.") {
			return "DOMAIN-SUFFIX," + strings.TrimPrefix(strings.TrimPrefix(line, "+."), "*.")
		}
		return "DOMAIN," + line
	case TypeIPCIDR:
		if strings.Contains(line, ",") {
			return line
		}
		return "IP-CIDR," + line
	default:
		return line
	}
}
