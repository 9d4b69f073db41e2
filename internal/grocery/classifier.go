package grocery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// CategoryGroup is one category bucket returned by categorization.
type CategoryGroup struct {
	Category string       `json:"category"`
	Items    []ParsedItem `json:"items"`
}

// ResultCache caches categorization results per input text with a
// time-based expiry. It is constructor-injected rather than ambient
// package state: created once per process, cleared on demand.
type ResultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cachedResult
}

type cachedResult struct {
	groups []CategoryGroup
	at     time.Time
}

// NewResultCache creates a cache whose entries expire after ttl.
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ResultCache{ttl: ttl, entries: make(map[string]cachedResult)}
}

func (c *ResultCache) get(key string) ([]CategoryGroup, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Since(entry.at) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.groups, true
}

func (c *ResultCache) set(key string, groups []CategoryGroup) {
	c.mu.Lock()
	c.entries[key] = cachedResult{groups: groups, at: time.Now()}
	c.mu.Unlock()
}

// Clear empties the cache.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cachedResult)
	c.mu.Unlock()
}

// Classifier calls the hosted text-classification service. A nil
// *Classifier is valid and always reports unavailable, which pushes
// callers down the fallback chain.
type Classifier struct {
	url    string
	client *http.Client
	cache  *ResultCache
}

// NewClassifier creates a classifier client. cache may be nil to disable
// result caching.
func NewClassifier(url string, cache *ResultCache) *Classifier {
	return &Classifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  cache,
	}
}

type classifyRequest struct {
	Text          string   `json:"text"`
	ExistingItems []string `json:"existing_items,omitempty"`
	Language      string   `json:"language,omitempty"`
}

type classifyResponse struct {
	Categories []CategoryGroup `json:"categories"`
}

// Categorize asks the service to split and categorize the given text.
func (c *Classifier) Categorize(ctx context.Context, text string, existingNames []string, language string) ([]CategoryGroup, error) {
	if c == nil || c.url == "" {
		return nil, fmt.Errorf("classifier not configured")
	}

	key := language + "\x00" + strings.ToLower(strings.TrimSpace(text))
	if c.cache != nil {
		if groups, ok := c.cache.get(key); ok {
			return groups, nil
		}
	}

	body, err := json.Marshal(classifyRequest{Text: text, ExistingItems: existingNames, Language: language})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classify: status %d", resp.StatusCode)
	}

	var cr classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if c.cache != nil {
		c.cache.set(key, cr.Categories)
	}
	return cr.Categories, nil
}

// CategorizeText runs the fallback chain: hosted classifier, then the
// local rule table, then a single "Other" bucket. It never fails.
func CategorizeText(ctx context.Context, classifier *Classifier, text string, existingNames []string, language string) []CategoryGroup {
	if groups, err := classifier.Categorize(ctx, text, existingNames, language); err == nil && len(groups) > 0 {
		return groups
	}

	items := ParseText(text)
	if len(items) == 0 {
		return nil
	}

	byCategory := make(map[string][]ParsedItem)
	for _, item := range items {
		cat := Categorize(item.Name)
		byCategory[cat] = append(byCategory[cat], item)
	}

	var groups []CategoryGroup
	for _, cat := range Categories {
		if items, ok := byCategory[cat]; ok {
			groups = append(groups, CategoryGroup{Category: cat, Items: items})
		}
	}
	return groups
}

// CategorizeBatch categorizes several independent texts concurrently,
// e.g. the lines of an import.
func CategorizeBatch(ctx context.Context, classifier *Classifier, texts []string, existingNames []string, language string) [][]CategoryGroup {
	results := make([][]CategoryGroup, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			results[i] = CategorizeText(ctx, classifier, text, existingNames, language)
			return nil
		})
	}
	g.Wait()
	return results
}
