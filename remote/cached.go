package remote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/wippyai/dyncast/errors"
)

// Cached memoizes successful runs of an underlying Runner by job content.
// Errors are never cached.
type Cached struct {
	next  Runner
	cache *lru.Cache[string, Result]
}

// NewCached wraps next with an LRU of the given size.
func NewCached(next Runner, size int) (*Cached, error) {
	cache, err := lru.New[string, Result](size)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseCompile, errors.KindInvalidInput, err, "result cache")
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Run(ctx context.Context, job Job) (Result, error) {
	key := jobKey(job)
	if res, ok := c.cache.Get(key); ok {
		Logger().Debug("cached run", zap.String("compiler", job.Compiler))
		return res, nil
	}
	res, err := c.next.Run(ctx, job)
	if err != nil {
		return res, err
	}
	c.cache.Add(key, res)
	return res, nil
}

// Len reports the number of cached results.
func (c *Cached) Len() int { return c.cache.Len() }

func jobKey(job Job) string {
	h := sha256.New()
	for _, s := range []string{job.Compiler, job.Options, strings.Join(job.RawFlags, "\x00"), job.Source} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
