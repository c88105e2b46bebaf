// Package tilecache implements a concurrent, revalidating HTTP object cache
// for remote binary artifacts such as map tiles and attribution blobs.
//
// A Job coalesces concurrent submissions for the same URL behind a single
// in-flight fetch, consults a pluggable CacheBackend, applies HTTP
// conditional-request validation (Expires/Cache-Control/Last-Modified/ETag),
// and falls back to HEAD probing for origins that don't honor conditional
// GETs. Work is scheduled onto a bounded WorkerPool whose queue is drained
// newest-first, since a user is most likely waiting on what they most
// recently requested.
package tilecache
