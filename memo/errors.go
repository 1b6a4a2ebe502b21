package memo

import "errors"

// ErrCacheKey marks an argument tuple that cannot be reduced to a stable
// byte key. It propagates to the caller; a failed key is never treated as a
// cache miss.
var ErrCacheKey = errors.New("memo: argument cannot be serialized to a cache key")
