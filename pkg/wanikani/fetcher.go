// Package wanikani fetches user and summary resources from the WaniKani API
// with cooldown, conditional revalidation and store-backed caching.
package wanikani

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/wkbadge/pkg/domain"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// defaults for Config
const (
	DefaultBaseURL  = "https://api.wanikani.com/v2"
	DefaultRevision = "20170710"
	DefaultCooldown = 5 * time.Second
	DefaultTimeout  = 30 * time.Second
)

const maxBodySize = 4 * 1024 * 1024

// Store is the part of the persistent store used by the fetcher
type Store interface {
	Get(ctx context.Context, keys ...string) (domain.Items, error)
	Update(ctx context.Context, fn func(current domain.Items) (domain.Items, error)) error
}

// Config for Fetcher
type Config struct {
	BaseURL  string
	Revision string
	Cooldown time.Duration
	Timeout  time.Duration
	Client   *http.Client     // optional, built from Timeout if nil
	Now      func() time.Time // optional, time.Now if nil
}

// Fetcher issues conditional GETs for resources and records results in the store
type Fetcher struct {
	store    Store
	client   *http.Client
	baseURL  string
	revision string
	cooldown time.Duration
	now      func() time.Time
	locks    map[domain.Resource]*sync.Mutex // one request sequence per resource at a time
}

// View is a resource's cache bookkeeping merged with its projected fields
type View struct {
	Resource domain.Resource `json:"resource,omitempty"`
	domain.ResourceCache
	*domain.Summary
	*domain.User
}

// outcome collects what one request produced, applied to the store in a single write
type outcome struct {
	requestedAt  time.Time
	received     bool
	receivedAt   time.Time
	status       int
	etag         string
	unauthorized bool
	updatedAt    time.Time
	fields       domain.Items // projected resource fields, nil if body wasn't accepted
}

// NewFetcher makes a fetcher, zero config values replaced by defaults
func NewFetcher(store Store, cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Revision == "" {
		cfg.Revision = DefaultRevision
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	locks := make(map[domain.Resource]*sync.Mutex, len(domain.Resources))
	for _, r := range domain.Resources {
		locks[r] = &sync.Mutex{}
	}

	return &Fetcher{
		store:    store,
		client:   cfg.Client,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		revision: cfg.Revision,
		cooldown: cfg.Cooldown,
		now:      cfg.Now,
		locks:    locks,
	}
}

// Refresh requests the resource unless it is unknown, no api key is set, or the
// cooldown applies. Network and parse failures are logged and swallowed, the error
// is returned only if the store can't be read or written.
func (f *Fetcher) Refresh(ctx context.Context, r domain.Resource, force bool) error {
	if !r.Valid() {
		return nil
	}

	lock := f.locks[r]
	lock.Lock()
	defer lock.Unlock()

	var apiKey, etag string
	requestedAt := f.now()

	// check and mark in one store step, so the request is visible to the next check
	err := f.store.Update(ctx, func(cur domain.Items) (domain.Items, error) {
		snap := domain.NewSnapshot(cur)
		if !snap.Authenticated() {
			return nil, nil
		}
		cache := snap.Book.Cache(r)
		if !force && !cache.RequestedAt.IsZero() && !cache.UpdatedAt.IsZero() &&
			requestedAt.Sub(cache.RequestedAt) < f.cooldown {
			lgr.Printf("[DEBUG] skip %s request, last one %v ago", r, requestedAt.Sub(cache.RequestedAt))
			return nil, nil
		}
		apiKey, etag = snap.APIKey, cache.ETag
		snap.Book.RequestedAt[r] = requestedAt
		res := domain.Items{}
		res.Put(domain.KeyRequestedAt, snap.Book.RequestedAt)
		return res, nil
	})
	if err != nil {
		return fmt.Errorf("mark %s requested: %w", r, err)
	}
	if apiKey == "" {
		return nil
	}

	if force {
		etag = ""
	}
	res := f.request(ctx, r, apiKey, etag)
	res.requestedAt = requestedAt

	if err := f.store.Update(ctx, func(cur domain.Items) (domain.Items, error) {
		return res.items(r, cur), nil
	}); err != nil {
		return fmt.Errorf("store %s response: %w", r, err)
	}
	return nil
}

// Get returns cached bookkeeping and fields of the resource. Unknown resources give an empty view.
func (f *Fetcher) Get(ctx context.Context, r domain.Resource) (View, error) {
	if !r.Valid() {
		return View{}, nil
	}
	items, err := f.store.Get(ctx)
	if err != nil {
		return View{}, fmt.Errorf("get %s: %w", r, err)
	}
	snap := domain.NewSnapshot(items)
	view := View{Resource: r, ResourceCache: snap.Book.Cache(r)}
	switch r {
	case domain.ResourceSummary:
		summary := snap.Summary
		view.Summary = &summary
	case domain.ResourceUser:
		user := snap.User
		view.User = &user
	}
	return view, nil
}

// request performs the GET and interprets the response, never failing
func (f *Fetcher) request(ctx context.Context, r domain.Resource, apiKey, etag string) outcome {
	res := outcome{}
	resourceURL := f.resourceURL(r)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resourceURL, http.NoBody)
	if err != nil {
		lgr.Printf("[WARN] can't make %s request: %v", r, err)
		return res
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Wanikani-Revision", f.revision)
	req.Header.Set("Cache-Control", "no-cache")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		lgr.Printf("[WARN] %s request failed: %v", r, err)
		return res
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	res.received = true
	res.receivedAt = f.now()
	res.status = resp.StatusCode
	res.etag = resp.Header.Get("ETag")
	lgr.Printf("[DEBUG] %s responded with status %d", r, resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		lgr.Printf("[WARN] api key rejected, clearing it")
		res.unauthorized = true
		return res
	case resp.StatusCode == http.StatusNotModified:
		return res
	case resp.StatusCode == http.StatusTooManyRequests:
		lgr.Printf("[INFO] %s request rate-limited", r)
		return res
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		lgr.Printf("[WARN] %s request unexpected status %d", r, resp.StatusCode)
		return res
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&body); err != nil {
		lgr.Printf("[WARN] can't decode %s response: %v", r, err)
		return res
	}
	if body.URL != resourceURL {
		lgr.Printf("[WARN] %s response is for %q, discarded", r, body.URL)
		return res
	}
	fields, err := project(r, body.Data)
	if err != nil {
		lgr.Printf("[WARN] can't project %s response: %v", r, err)
		return res
	}
	res.fields = fields
	res.updatedAt = res.receivedAt
	if body.DataUpdatedAt != nil {
		res.updatedAt = *body.DataUpdatedAt
	}
	return res
}

func (f *Fetcher) resourceURL(r domain.Resource) string {
	return f.baseURL + "/" + string(r)
}

// items merges the outcome into current bookkeeping maps and returns everything to write
func (o outcome) items(r domain.Resource, cur domain.Items) domain.Items {
	book := domain.NewSnapshot(cur).Book
	res := domain.Items{}

	book.RequestedAt[r] = o.requestedAt
	res.Put(domain.KeyRequestedAt, book.RequestedAt)
	if !o.received {
		return res
	}

	book.ReceivedAt[r] = o.receivedAt
	book.LastStatus[r] = o.status
	if o.etag != "" || o.status != http.StatusNotModified {
		book.ETag[r] = o.etag
	}
	res.Put(domain.KeyReceivedAt, book.ReceivedAt)
	res.Put(domain.KeyLastStatus, book.LastStatus)
	res.Put(domain.KeyETag, book.ETag)

	if o.unauthorized {
		res.Put(domain.KeyAPIKey, "")
		return res
	}
	if o.fields != nil {
		book.UpdatedAt[r] = o.updatedAt
		res.Put(domain.KeyUpdatedAt, book.UpdatedAt)
		res.Merge(o.fields)
	}
	return res
}
