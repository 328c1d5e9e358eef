package knowledge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/4everinbeta/ragchat/internal/models"
)

// HTTPProvider fetches documents.json and vectors.json over HTTP. Each URL's decoded payload
// is cached and reused until the TTL expires; a zero TTL keeps it for the life of the provider.
// Loaded knowledge bases share the cached slices and must be treated as read-only.
type HTTPProvider struct {
	documentURL string
	vectorURL   string
	client      *http.Client
	ttl         time.Duration
	now         func() time.Time

	mu    sync.Mutex
	cache map[string]cachedPayload
}

type cachedPayload struct {
	value     any
	fetchedAt time.Time
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithCacheTTL sets how long a fetched payload is reused.
func WithCacheTTL(ttl time.Duration) HTTPOption {
	return func(p *HTTPProvider) { p.ttl = ttl }
}

// WithHTTPClient sets the client used for fetches.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) { p.client = c }
}

// NewHTTPProvider creates a provider for the two knowledge URLs.
func NewHTTPProvider(documentURL, vectorURL string, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		documentURL: documentURL,
		vectorURL:   vectorURL,
		client:      &http.Client{Timeout: 30 * time.Second},
		now:         time.Now,
		cache:       make(map[string]cachedPayload),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load implements Provider.
func (p *HTTPProvider) Load(ctx context.Context) (*KnowledgeBase, error) {
	docs, err := p.fetch(ctx, p.documentURL, func(data []byte) (any, error) {
		return decodeDocuments(data)
	})
	if err != nil {
		return nil, err
	}
	vf, err := p.fetch(ctx, p.vectorURL, func(data []byte) (any, error) {
		return decodeVectors(data)
	})
	if err != nil {
		return nil, err
	}
	return assemble(docs.([]models.Document), vf.(*vectorFile)), nil
}

// Invalidate drops every cached payload so the next Load refetches.
func (p *HTTPProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]cachedPayload)
}

// fetch returns the decoded payload at url, from cache when it is still fresh.
// Payloads that fail to decode are not cached.
func (p *HTTPProvider) fetch(ctx context.Context, url string, decode func([]byte) (any, error)) (any, error) {
	p.mu.Lock()
	if c, ok := p.cache[url]; ok && (p.ttl <= 0 || p.now().Sub(c.fetchedAt) < p.ttl) {
		p.mu.Unlock()
		return c.value, nil
	}
	p.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("failed to load %s: %w", url, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("failed to load %s: %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	value, err := decode(body)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[url] = cachedPayload{value: value, fetchedAt: p.now()}
	p.mu.Unlock()
	return value, nil
}
