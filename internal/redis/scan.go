package redis

import (
	"context"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// ScanKeys returns every key matching pattern, sorted. A cluster client is
// scanned on each master since SCAN only walks the node it reaches.
func ScanKeys(ctx context.Context, client Client, pattern string) ([]string, error) {
	var (
		mu   sync.Mutex
		keys []string
	)

	scan := func(ctx context.Context, c redis.Cmdable) error {
		iter := c.Scan(ctx, 0, pattern, scanBatch).Iterator()
		for iter.Next(ctx) {
			mu.Lock()
			keys = append(keys, iter.Val())
			mu.Unlock()
		}
		return iter.Err()
	}

	var err error
	if cluster, ok := client.(*redis.ClusterClient); ok {
		err = cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return scan(ctx, node)
		})
	} else {
		err = scan(ctx, client)
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(keys)
	return keys, nil
}
