package cache

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/blake3"

	"gita/internal/domain"
	"gita/internal/port"
)

// AnswerCache is a bounded LRU of synthesized answers with a TTL.
type AnswerCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	answer    domain.Answer
	timestamp time.Time
}

func NewAnswerCache(maxSize int, ttl time.Duration) *AnswerCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AnswerCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key identifies an answer by model, question and the verses it was given.
// Prior conversation is left out, so a repeated question over the same
// verses is served from cache even mid-conversation.
func Key(model, question string, verses []domain.VerseID) string {
	var b strings.Builder
	b.WriteString(model)
	b.WriteByte(0)
	b.WriteString(strings.ToLower(strings.TrimSpace(question)))
	for _, id := range verses {
		b.WriteByte(0)
		b.WriteString(string(id))
	}
	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

func (c *AnswerCache) Get(key string) (domain.Answer, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return domain.Answer{}, false
	}

	if c.now().Sub(entry.timestamp) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.mu.Unlock()
		return domain.Answer{}, false
	}

	c.mu.Lock()
	c.moveToEnd(key)
	c.mu.Unlock()

	return entry.answer, true
}

func (c *AnswerCache) Put(key string, answer domain.Answer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = &cacheEntry{answer: answer, timestamp: c.now()}
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{answer: answer, timestamp: c.now()}
	c.order = append(c.order, key)
}

func (c *AnswerCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
}

func (c *AnswerCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *AnswerCache) MaxSize() int       { return c.maxSize }
func (c *AnswerCache) TTL() time.Duration { return c.ttl }

func (c *AnswerCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *AnswerCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *AnswerCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedSynthesizer serves repeated requests from an AnswerCache and
// reports cache_hit / cache_miss metrics. Failed syntheses are not cached.
type CachedSynthesizer struct {
	synth    port.Synthesizer
	cache    *AnswerCache
	observer port.Observer
}

var _ port.Synthesizer = (*CachedSynthesizer)(nil)

func NewCachedSynthesizer(synth port.Synthesizer, cache *AnswerCache, observer port.Observer) *CachedSynthesizer {
	return &CachedSynthesizer{
		synth:    synth,
		cache:    cache,
		observer: observer,
	}
}

func (s *CachedSynthesizer) ModelName() string {
	return s.synth.ModelName()
}

func (s *CachedSynthesizer) Synthesize(ctx context.Context, req domain.AnswerRequest) (domain.Answer, error) {
	ids := make([]domain.VerseID, len(req.Verses))
	for i, v := range req.Verses {
		ids[i] = v.VerseID
	}
	key := Key(s.synth.ModelName(), req.Question, ids)

	if answer, hit := s.cache.Get(key); hit {
		s.metric("cache_hit", map[string]any{"key": key})
		return answer, nil
	}

	answer, err := s.synth.Synthesize(ctx, req)
	if err != nil {
		return answer, err
	}

	s.cache.Put(key, answer)
	s.metric("cache_miss", map[string]any{"key": key})
	return answer, nil
}

func (s *CachedSynthesizer) metric(name string, fields map[string]any) {
	if s.observer != nil {
		s.observer.Metric(name, 1, fields)
	}
}
