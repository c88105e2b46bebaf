package tilecache

import (
	"log"
	"time"
)

// Loader is the surface callers actually use: Submit, Get, SetFinishedTask,
// CancelOutstandingTasks. It owns the shared state (DedupRegistry,
// OriginProfile, WorkerPool) that individual Jobs are constructed against,
// so tests can build an isolated Loader instead of relying on
// package-level globals.
type Loader struct {
	Backend CacheBackend
	Fetcher *Fetcher
	Dedup   *DedupRegistry
	Pool    *WorkerPool
	Config  HTTPConfig
	// Logger receives diagnostic output (e.g. a finished Job with no
	// listeners left to notify). Defaults to log.Default() when nil.
	Logger *log.Logger

	onDone CompletionHook
}

// NewLoader wires a Loader from its collaborators. maxThreads is
// cache.jcs.max_threads (0 selects the default, 10).
func NewLoader(backend CacheBackend, transport Transport, cfg HTTPConfig, maxThreads int) *Loader {
	origins := NewOriginProfile()
	return &Loader{
		Backend: backend,
		Fetcher: &Fetcher{Transport: transport, Origins: origins},
		Dedup:   NewDedupRegistry(),
		Pool:    NewWorkerPool(maxThreads),
		Config:  cfg,
		Logger:  log.Default(),
	}
}

// SetFinishedTask registers a hook invoked once per Job run, on every exit
// path (success, stale-on-failure, failure, or cancellation).
func (l *Loader) SetFinishedTask(hook CompletionHook) {
	l.onDone = hook
}

// Submit registers listener against url (or the key Capabilities.GetCacheKey
// derives from it) and schedules a fetch if this is the first outstanding
// submission for that key, or if force is set. It returns ErrNoURL if no
// cache key could be derived.
func (l *Loader) Submit(url string, caps Capabilities, force bool, listener Listener) error {
	key, ok := caps.cacheKey(url)
	if !ok {
		return ErrNoURL
	}

	isFirst := l.Dedup.Register(key, listener)
	if !isFirst && !force {
		return nil
	}

	job := &Job{
		backend: l.Backend,
		fetcher: l.Fetcher,
		dedup:   l.Dedup,
		config:  l.Config,
		caps:    caps,
		onDone:  l.onDone,
		logger:  l.Logger,
		url:     url,
		key:     key,
		force:   force,
		now:     time.Now(),
	}
	l.Pool.Submit(job)
	return nil
}

// Get performs a synchronous cache-only lookup: no fetch is triggered even
// on a miss.
func (l *Loader) Get(url string, caps Capabilities) (content []byte, attrs Attributes, ok bool) {
	key, derived := caps.cacheKey(url)
	if !derived {
		return nil, Attributes{}, false
	}
	return l.Backend.Get(key)
}

// CancelOutstandingTasks cancels every queued-but-not-yet-running Job.
// Running jobs finish normally; a partially completed fetch still caches
// its result.
func (l *Loader) CancelOutstandingTasks() {
	l.Pool.CancelQueued()
}
