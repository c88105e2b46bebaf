package tilecache

import "errors"

// ErrNoURL is returned by Submit when neither the URL argument nor
// Capabilities.GetCacheKey can produce a usable cache key.
var ErrNoURL = errors.New("tilecache: no URL could be derived for submission")
