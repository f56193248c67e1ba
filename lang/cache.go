package lang

import (
	"context"
	"encoding/binary"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

// compiled stores *entry values keyed by source and option hash.
//
//nolint:gochecknoglobals
var compiled sync.Map

// cacheLimit bounds the number of entries in compiled. Storing one more
// clears the cache.
//
//nolint:gochecknoglobals
var (
	cacheLimit int64 = 4096
	cacheSize  atomic.Int64
)

// entry holds the result of compiling one source once.
type entry struct {
	once sync.Once
	expr *Expression
	err  error
}

// hashOptions hashes the options that change compile output.
func hashOptions(c config) uint64 {
	return xxh3.Hash(binary.LittleEndian.AppendUint64(nil, uint64(c.backend)))
}

func cacheKey(source string, c config) string {
	return strconv.FormatUint(xxh3.HashString(source)^hashOptions(c), 36)
}

// compileCached compiles source at most once per option set. Failures are
// cached as well, since compilation is deterministic.
func compileCached(ctx context.Context, source string, c config) (*Expression, error) {
	key := cacheKey(source, c)

	value, hit := compiled.LoadOrStore(key, new(entry))
	if !hit && cacheSize.Add(1) > cacheLimit {
		ClearCache()
	}

	cached, ok := value.(*entry)
	if !ok {
		return compile(ctx, source, c)
	}

	c.logger.TraceContext(ctx, "cache lookup",
		slog.String("key", key),
		slog.Bool("cache_hit", hit),
	)

	cached.once.Do(func() {
		cached.expr, cached.err = compile(ctx, source, c)
	})

	return cached.expr, cached.err
}

// ClearCache removes all cached expressions.
func ClearCache() {
	compiled.Clear()
	cacheSize.Store(0)
}
