package lua

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dshills/lexfold/internal/logging"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Cache keeps the results of keyword scripts. An entry is keyed by the
// script path, the grammar and the file's modification time and size,
// so editing a script runs it again.
type Cache struct {
	cache  *gocache.Cache
	opts   []StateOption
	logger *logging.Logger
}

// NewCache creates a cache whose entries expire after expiration.
func NewCache(expiration time.Duration, opts ...StateOption) *Cache {
	return &Cache{
		cache:  gocache.New(expiration, DefaultCleanupInterval),
		opts:   opts,
		logger: logging.Null(),
	}
}

// SetLogger logs cache hits and script runs to l.
func (c *Cache) SetLogger(l *logging.Logger) {
	c.logger = l.WithComponent("keyword-script")
}

// Load returns the keyword lists of the script at path, running it when
// no current result is cached.
func (c *Cache) Load(ctx context.Context, path string, env Env) (Keywords, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ScriptError{Path: path, Err: err}
	}
	key := cacheKey(path, env.Grammar, info)

	if v, found := c.cache.Get(key); found {
		if kw, ok := v.(Keywords); ok {
			c.logger.Debug("cache hit for %s", path)
			return kw.Clone(), nil
		}
		c.logger.Error("wrong type in cache for %s", path)
	}

	kw, err := RunFile(ctx, path, env, c.opts...)
	if err != nil {
		return nil, err
	}
	c.logger.WithField("grammar", env.Grammar).Debug("ran %s: %d lists", path, len(kw))
	c.cache.SetDefault(key, kw)
	return kw.Clone(), nil
}

// Invalidate drops every cached result of the script at path.
func (c *Cache) Invalidate(path string) {
	prefix := path + "\x00"
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
}

// Len returns the number of cached results, expired ones included until
// the next cleanup.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}

// Flush drops every result.
func (c *Cache) Flush() {
	c.cache.Flush()
}

func cacheKey(path, grammar string, info os.FileInfo) string {
	return fmt.Sprintf("%s\x00%s\x00%d\x00%d", path, grammar, info.ModTime().UnixNano(), info.Size())
}
