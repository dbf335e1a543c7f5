package secrets

import (
	"context"
	"fmt"
)

// ResolveAPIKey returns the "api_key" entry of the named secret, caching the
// resolved value so rotations are picked up after the cache TTL.
func ResolveAPIKey(ctx context.Context, p Provider, cache *Cache[string], name string) (string, error) {
	if key, ok := cache.Get(name); ok {
		return key, nil
	}

	entries, err := p.GetSecret(ctx, name)
	if err != nil {
		return "", err
	}
	key, ok := entries["api_key"]
	if !ok || key == "" {
		return "", fmt.Errorf("secret [%s] has no api_key entry", name)
	}

	cache.Put(name, key)
	return key, nil
}
