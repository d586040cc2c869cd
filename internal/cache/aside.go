package cache

// WithCache returns the value cached under key, or runs compute and caches
// its result. The boolean reports whether the value came from the cache.
// Errors from compute are returned as-is and nothing is stored. A cached
// value of the wrong type is treated as a miss.
func WithCache[T any](
	store *Store, key string, compute func() (T, error),
) (T, bool, error) {
	if store == nil {
		v, err := compute()
		return v, false, err
	}

	if raw, ok := store.Get(key); ok {
		if v, ok := raw.(T); ok {
			return v, true, nil
		}
	}

	v, err := compute()
	if err != nil {
		return v, false, err
	}
	store.Set(key, v)

	return v, false, nil
}
