package tilecache

import (
	"context"
	"log"
	"time"
)

// LoadResult is the single outcome every listener registered on a
// submission eventually receives. All errors internal to a Job are
// absorbed and transformed into a LoadResult rather than propagated as
// exceptions.
type LoadResult int

const (
	Failure LoadResult = iota
	Success
	Canceled
)

func (r LoadResult) String() string {
	switch r {
	case Success:
		return "success"
	case Canceled:
		return "canceled"
	default:
		return "failure"
	}
}

// CompletionHook is invoked once per Job run, on every exit path, via
// SetFinishedTask.
type CompletionHook func(job *Job, result LoadResult)

// Job orchestrates one submission: cache lookup, freshness check, fetch,
// stale-on-failure fallback, and dedup fan-out. A Job is per-submission
// transient state; multiple concurrent Submit calls for the same key share
// a single Job's execution via the Loader's DedupRegistry rather than each
// running their own.
type Job struct {
	backend CacheBackend
	fetcher *Fetcher
	dedup   *DedupRegistry
	config  HTTPConfig
	caps    Capabilities
	onDone  CompletionHook
	logger  *log.Logger

	url   string
	key   string
	force bool
	now   time.Time
}

// logf logs through the Job's injected logger, falling back to the
// standard library's default logger when none was supplied.
func (j *Job) logf(format string, args ...any) {
	logger := j.logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf(format, args...)
}

// Run executes the Job's full lifecycle. It never panics on a cache/network
// failure: every path ends in exactly one finishLoading call.
func (j *Job) Run() {
	ctx := context.Background()

	content, attrs, hasCached := j.backend.Get(j.key)
	loadable := hasCached && CacheEntry{Content: content}.Loadable()
	nowMs := millis(j.now)

	if !j.force && hasCached && loadable && IsFresh(attrs, j.now) {
		j.finishLoading(content, attrs, Success)
		return
	}

	result := j.fetcher.Fetch(ctx, FetchRequest{
		URL:            j.url,
		Now:            j.now,
		Force:          j.force,
		HasCachedEntry: hasCached,
		CachedLoadable: loadable,
		CachedAttrs:    attrs,
		Capabilities:   j.caps,
		Config:         j.config,
	})

	// An entry whose LastModification predates ABSOLUTE_EXPIRE_TIME_LIMIT is
	// never served, even stale — a successful revalidation or a fetch
	// failure must not resurrect it.
	staleServable := loadable && !tooOldToServe(attrs, nowMs)

	switch result.Outcome {
	case FetchStored:
		j.backend.Put(j.key, result.Entry.Content, result.Attrs)
		j.finishLoading(result.Entry.Content, result.Attrs, Success)

	case FetchRevalidated:
		if !staleServable {
			j.finishLoading(nil, result.Attrs, Failure)
			return
		}
		// The origin confirmed the existing entry is current; keep the
		// cached bytes but persist the refreshed attributes (new
		// expiration, possibly a new response code from the probe/304).
		j.backend.Put(j.key, content, result.Attrs)
		j.finishLoading(content, result.Attrs, Success)

	default: // FetchFailed
		if staleServable {
			j.finishLoading(content, result.Attrs, Success)
			return
		}
		j.finishLoading(nil, result.Attrs, Failure)
	}
}

// Cancel implements handleJobCancellation: fan out Canceled without
// touching the cache or network.
func (j *Job) Cancel() {
	j.finishLoading(nil, Attributes{}, Canceled)
}

// finishLoading drains the DedupRegistry entry for this Job's key and
// notifies every listener exactly once, then invokes the completion hook.
// The key drained here is the same key captured at Submit time (j.key),
// not re-derived from the URL, so a capability that changes key derivation
// between Submit and Run can't orphan listeners.
func (j *Job) finishLoading(content []byte, attrs Attributes, result LoadResult) {
	listeners := j.dedup.Drain(j.key)
	if len(listeners) == 0 {
		j.logf("tilecache: no listeners registered for %s (key %s); dropping %s result", j.url, j.key, result)
	}
	for _, listener := range listeners {
		listener(content, attrs, result)
	}
	if j.onDone != nil {
		j.onDone(j, result)
	}
}
