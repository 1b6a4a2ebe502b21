// Package memo caches the outputs of pure functions over float64 arrays.
//
// Keys are built from the exact bit pattern of every argument, so two calls
// hit the same entry only when their arguments are bit-identical - the
// property that makes caching deterministic stencil computations sound.
//
// Caches are NOT safe for concurrent use; wrap Call with a mutex if shared
// across goroutines.
package memo

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MaxEntries bounds the entry count of every Cache. On insertion at
// capacity the oldest-inserted entry is evicted first (FIFO, not LRU).
const MaxEntries = 100

// Registry tracks live caches so they can all be cleared in one call.
// A zero-value-adjacent registry is available as the package Default; an
// application context can own its own instead.
type Registry struct {
	nextID  int
	clearFn map[int]func()
}

func NewRegistry() *Registry {
	return &Registry{clearFn: make(map[int]func())}
}

// Default is the process-wide registry used by New when reg is nil.
var Default = NewRegistry()

func (r *Registry) register(clear func()) (id int) {
	id = r.nextID
	r.nextID++
	r.clearFn[id] = clear
	return
}

func (r *Registry) deregister(id int) {
	delete(r.clearFn, id)
}

// ClearAll resets the storage of every cache still registered. Caches that
// have been closed are gone from the registry already, so clearing after
// their owners dropped them is a no-op rather than an error.
func (r *Registry) ClearAll() {
	for _, clear := range r.clearFn {
		clear()
	}
}

// ClearCaches clears every live cache registered with the Default registry.
func ClearCaches() {
	Default.ClearAll()
}

// Cache memoizes fn, a pure function of float64 slices.
type Cache[V any] struct {
	fn      func(args ...[]float64) (V, error)
	order   []string // insertion order, oldest first
	entries map[string]V
	reg     *Registry
	regID   int
	closed  bool
}

// New wraps fn in a Cache and registers it with reg (the Default registry
// when reg is nil). The caller owns the cache and should Close it when done
// so the registry does not accumulate dead clear handles.
func New[V any](reg *Registry, fn func(args ...[]float64) (V, error)) (c *Cache[V]) {
	if reg == nil {
		reg = Default
	}
	c = &Cache[V]{
		fn:      fn,
		entries: make(map[string]V),
		reg:     reg,
	}
	c.regID = reg.register(c.Clear)
	return
}

// Call returns the cached result for bit-identical args, computing and
// storing it on first sight. Errors from fn are returned as-is and never
// cached.
func (c *Cache[V]) Call(args ...[]float64) (val V, err error) {
	var key string
	if key, err = Key(args...); err != nil {
		return
	}
	if val, ok := c.entries[key]; ok {
		return val, nil
	}
	if val, err = c.fn(args...); err != nil {
		return
	}
	// make sure there is room for the new entry
	for len(c.entries) >= MaxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = val
	c.order = append(c.order, key)
	return
}

// Contains reports whether bit-identical args currently have a cached entry.
func (c *Cache[V]) Contains(args ...[]float64) bool {
	key, err := Key(args...)
	if err != nil {
		return false
	}
	_, ok := c.entries[key]
	return ok
}

func (c *Cache[V]) Len() int { return len(c.entries) }

// Clear drops every cached entry. The cache remains usable.
func (c *Cache[V]) Clear() {
	c.entries = make(map[string]V)
	c.order = nil
}

// Close clears the cache and removes it from its registry. Further Calls
// still work but are no longer reachable from Registry.ClearAll.
func (c *Cache[V]) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.Clear()
	c.reg.deregister(c.regID)
}

// Key serializes the argument tuple to a stable byte key. Each argument is
// length-prefixed so that ([1 2],[3]) and ([1],[2 3]) produce distinct keys.
// A nil argument cannot be reduced to a byte key and yields ErrCacheKey.
func Key(args ...[]float64) (key string, err error) {
	var size int
	for i, a := range args {
		if a == nil {
			err = fmt.Errorf("%w: argument %d is nil", ErrCacheKey, i)
			return
		}
		size += 8 * (len(a) + 1)
	}
	buf := make([]byte, 0, size)
	var scratch [8]byte
	for _, a := range args {
		binary.BigEndian.PutUint64(scratch[:], uint64(len(a)))
		buf = append(buf, scratch[:]...)
		for _, v := range a {
			binary.BigEndian.PutUint64(scratch[:], math.Float64bits(v))
			buf = append(buf, scratch[:]...)
		}
	}
	key = string(buf)
	return
}
