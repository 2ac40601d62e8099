package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/wkbadge/pkg/badge"
	"github.com/umputun/wkbadge/pkg/domain"
	"github.com/umputun/wkbadge/pkg/reactor"
	"github.com/umputun/wkbadge/pkg/store"
	"github.com/umputun/wkbadge/pkg/wanikani"
	"github.com/umputun/wkbadge/server/mocks"
)

// memStore keeps items in a map and notifies subscribers with changed keys, like the real store does
func memStore(items domain.Items) *mocks.StoreMock {
	subs := map[int]func(store.Changes){}
	next := 0
	st := &mocks.StoreMock{
		SnapshotFunc: func(context.Context) (domain.Snapshot, error) { return domain.NewSnapshot(items), nil },
		ClearFunc: func(context.Context) error {
			for k := range items {
				delete(items, k)
			}
			return nil
		},
		SubscribeFunc: func(fn func(store.Changes)) func() {
			id := next
			next++
			subs[id] = fn
			return func() { delete(subs, id) }
		},
	}
	st.SetFunc = func(_ context.Context, upd domain.Items) error {
		changes := store.Changes{}
		for k, v := range upd {
			if !bytes.Equal(items[k], v) {
				changes[k] = store.Change{Old: items[k], New: v}
			}
		}
		items.Merge(upd)
		if len(changes) == 0 {
			return nil
		}
		for _, fn := range subs {
			fn(changes)
		}
		return nil
	}
	return st
}

// answerKeyChange responds to a new non-empty api key with a user response, the way
// the reactor's forced user refresh lands in the store
func answerKeyChange(st *mocks.StoreMock, status int, username string) {
	st.Subscribe(func(changes store.Changes) {
		if !changes.Has(domain.KeyAPIKey) {
			return
		}
		var key string
		if err := json.Unmarshal(changes[domain.KeyAPIKey].New, &key); err != nil || key == "" {
			return
		}
		upd := domain.Items{}
		upd.Put(domain.KeyReceivedAt, map[domain.Resource]time.Time{domain.ResourceUser: time.Now()})
		upd.Put(domain.KeyLastStatus, map[domain.Resource]int{domain.ResourceUser: status})
		switch {
		case status == http.StatusUnauthorized:
			upd.Put(domain.KeyAPIKey, "")
		case username != "":
			upd.Put(domain.KeyUsername, username)
		}
		_ = st.Set(context.Background(), upd)
	})
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var res T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

func TestServer_badgeHandler(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	presenter := &mocks.PresenterMock{
		LastStateFunc: func() badge.State { return badge.State{Text: "12", Title: "12 reviews available now", RenderedAt: ts} },
	}
	srv := New(Deps{Config: testConfig(":8080"), Presenter: presenter}, "test", false)

	w := do(t, srv, "GET", "/api/v1/badge", "")
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[badge.State](t, w)
	assert.Equal(t, "12", st.Text)
	assert.Equal(t, "12 reviews available now", st.Title)
	assert.True(t, ts.Equal(st.RenderedAt))
}

func TestServer_resourceHandler(t *testing.T) {
	fetcher := &mocks.FetcherMock{
		GetFunc: func(_ context.Context, r domain.Resource) (wanikani.View, error) {
			if r == domain.ResourceUser {
				return wanikani.View{}, errors.New("store closed")
			}
			return wanikani.View{Resource: r, ResourceCache: domain.ResourceCache{LastStatus: 200, ETag: `W/"abc"`},
				Summary: &domain.Summary{ReviewsAvailable: 4}}, nil
		},
	}
	srv := New(Deps{Config: testConfig(":8080"), Fetcher: fetcher}, "test", false)

	t.Run("summary", func(t *testing.T) {
		w := do(t, srv, "GET", "/api/v1/resources/summary", "")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[map[string]any](t, w)
		assert.Equal(t, "summary", resp["resource"])
		assert.InDelta(t, 200, resp["last_response_status"], 0.001)
		assert.Equal(t, `W/"abc"`, resp["etag"])
		assert.InDelta(t, 4, resp["reviews_available"], 0.001)
	})

	t.Run("unknown resource", func(t *testing.T) {
		w := do(t, srv, "GET", "/api/v1/resources/assignments", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, decode[map[string]string](t, w)["error"], "unknown resource")
	})

	t.Run("get failure", func(t *testing.T) {
		w := do(t, srv, "GET", "/api/v1/resources/user", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestServer_refreshResourceHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		refreshErr error
		wantCode   int
		wantForce  *bool
	}{
		{name: "cooldown respected", path: "/api/v1/resources/summary/refresh", wantCode: http.StatusOK, wantForce: new(bool)},
		{name: "forced", path: "/api/v1/resources/user/refresh?force=true", wantCode: http.StatusOK, wantForce: func() *bool { b := true; return &b }()},
		{name: "bad force", path: "/api/v1/resources/user/refresh?force=maybe", wantCode: http.StatusBadRequest},
		{name: "unknown resource", path: "/api/v1/resources/other/refresh", wantCode: http.StatusNotFound},
		{name: "refresh failure", path: "/api/v1/resources/summary/refresh", refreshErr: errors.New("save failed"),
			wantCode: http.StatusInternalServerError, wantForce: new(bool)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &mocks.FetcherMock{
				RefreshFunc: func(context.Context, domain.Resource, bool) error { return tt.refreshErr },
				GetFunc: func(_ context.Context, r domain.Resource) (wanikani.View, error) {
					return wanikani.View{Resource: r}, nil
				},
			}
			srv := New(Deps{Config: testConfig(":8080"), Fetcher: fetcher}, "test", false)

			w := do(t, srv, "POST", tt.path, "")
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantForce == nil {
				assert.Empty(t, fetcher.RefreshCalls())
				return
			}
			require.Len(t, fetcher.RefreshCalls(), 1)
			assert.Equal(t, *tt.wantForce, fetcher.RefreshCalls()[0].Force)
		})
	}
}

func TestServer_getOptionsHandler(t *testing.T) {
	items := domain.DefaultPreferences().Items()
	items.Put(domain.KeyAPIKey, "0123456789abcdef")
	items.Put(domain.KeyNotifications, true)
	items.Put(domain.KeyUsername, "kani")
	srv := New(Deps{Config: testConfig(":8080"), Store: memStore(items)}, "test", false)

	w := do(t, srv, "GET", "/api/v1/options", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[optionsResponse](t, w)
	assert.Equal(t, "************cdef", resp.APIKey)
	assert.Equal(t, 15, resp.UpdateInterval)
	assert.True(t, resp.Notifications)
	assert.Equal(t, 5, resp.NotifLife)
	require.NotNil(t, resp.Username)
	assert.Equal(t, "kani", *resp.Username)
	assert.Nil(t, resp.Valid)
}

func TestServer_saveOptionsHandler(t *testing.T) {
	t.Run("new key checked by user response", func(t *testing.T) {
		items := domain.DefaultPreferences().Items()
		st := memStore(items)
		answerKeyChange(st, http.StatusOK, "kani")
		fetcher := &mocks.FetcherMock{}
		srv := New(Deps{Config: testConfig(":8080"), Store: st, Fetcher: fetcher}, "test", false)

		w := do(t, srv, "PUT", "/api/v1/options", `{"api_key":" secret-key ","update_interval":20}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[optionsResponse](t, w)
		require.NotNil(t, resp.Valid)
		assert.True(t, *resp.Valid)
		assert.Equal(t, "Options saved, kani", resp.Message)
		assert.Equal(t, "******-key", resp.APIKey)
		assert.Equal(t, 20, resp.UpdateInterval)

		// key trimmed, untouched fields kept
		snap := domain.NewSnapshot(items)
		assert.Equal(t, "secret-key", snap.APIKey)
		assert.Equal(t, 20, snap.UpdateInterval)
		assert.Equal(t, 5, snap.NotifLife)

		assert.Empty(t, fetcher.RefreshCalls(), "handler leaves fetching to the reactor")
	})

	t.Run("rejected key", func(t *testing.T) {
		items := domain.DefaultPreferences().Items()
		st := memStore(items)
		answerKeyChange(st, http.StatusUnauthorized, "")
		srv := New(Deps{Config: testConfig(":8080"), Store: st}, "test", false)

		w := do(t, srv, "PUT", "/api/v1/options", `{"api_key":"bad"}`)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[optionsResponse](t, w)
		require.NotNil(t, resp.Valid)
		assert.False(t, *resp.Valid)
		assert.Equal(t, "API key is not valid", resp.Message)
		assert.Empty(t, domain.NewSnapshot(items).APIKey)
	})

	t.Run("unchanged key not checked", func(t *testing.T) {
		items := domain.DefaultPreferences().Items()
		items.Put(domain.KeyAPIKey, "secret-key")
		items.Put(domain.KeyUsername, "kani")
		st := memStore(items)
		answerKeyChange(st, http.StatusUnauthorized, "")
		srv := New(Deps{Config: testConfig(":8080"), Store: st}, "test", false)

		w := do(t, srv, "PUT", "/api/v1/options", `{"api_key":"secret-key","update_interval":25}`)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[optionsResponse](t, w)
		assert.Nil(t, resp.Valid)
		assert.Equal(t, "Options saved, kani", resp.Message)
		assert.Equal(t, 25, resp.UpdateInterval)
		assert.Equal(t, "secret-key", domain.NewSnapshot(items).APIKey)
		assert.Len(t, st.SubscribeCalls(), 1, "only the key change answer subscribed")
	})

	t.Run("masked key read back keeps stored key", func(t *testing.T) {
		items := domain.DefaultPreferences().Items()
		items.Put(domain.KeyAPIKey, "abcdefgh")
		st := memStore(items)
		answerKeyChange(st, http.StatusUnauthorized, "")
		srv := New(Deps{Config: testConfig(":8080"), Store: st}, "test", false)

		w := do(t, srv, "GET", "/api/v1/options", "")
		require.Equal(t, http.StatusOK, w.Code)
		opts := decode[map[string]any](t, w)
		assert.Equal(t, "****efgh", opts["api_key"])

		opts["notif_life"] = 7
		body, err := json.Marshal(opts)
		require.NoError(t, err)
		w = do(t, srv, "PUT", "/api/v1/options", string(body))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[optionsResponse](t, w)
		assert.Nil(t, resp.Valid)
		assert.Equal(t, "Options saved", resp.Message)

		snap := domain.NewSnapshot(items)
		assert.Equal(t, "abcdefgh", snap.APIKey)
		assert.Equal(t, 7, snap.NotifLife)
	})

	t.Run("no user response in time", func(t *testing.T) {
		items := domain.DefaultPreferences().Items()
		srv := New(Deps{Config: testConfig(":8080"), Store: memStore(items)}, "test", false)
		srv.keyCheck = 20 * time.Millisecond

		w := do(t, srv, "PUT", "/api/v1/options", `{"api_key":"secret-key"}`)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[optionsResponse](t, w)
		assert.Nil(t, resp.Valid)
		assert.Equal(t, "Options saved", resp.Message)
		assert.Equal(t, "secret-key", domain.NewSnapshot(items).APIKey)
	})

	t.Run("key removed", func(t *testing.T) {
		items := domain.DefaultPreferences().Items()
		items.Put(domain.KeyAPIKey, "secret-key")
		st := memStore(items)
		srv := New(Deps{Config: testConfig(":8080"), Store: st}, "test", false)

		w := do(t, srv, "PUT", "/api/v1/options", `{"api_key":""}`)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[optionsResponse](t, w)
		assert.Nil(t, resp.Valid)
		assert.Equal(t, "Options saved", resp.Message)
		assert.Empty(t, domain.NewSnapshot(items).APIKey)
		assert.Empty(t, st.SubscribeCalls())
	})

	t.Run("no key, no check", func(t *testing.T) {
		items := domain.DefaultPreferences().Items()
		st := memStore(items)
		srv := New(Deps{Config: testConfig(":8080"), Store: st}, "test", false)

		w := do(t, srv, "PUT", "/api/v1/options", `{"notifications":true,"notif_life":9}`)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[optionsResponse](t, w)
		assert.Equal(t, "Options saved", resp.Message)
		assert.Nil(t, resp.Valid)
		assert.True(t, resp.Notifications)
		assert.Equal(t, 9, resp.NotifLife)
		assert.Empty(t, st.SubscribeCalls())
	})

	t.Run("invalid values", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{name: "zero interval", body: `{"update_interval":0}`},
			{name: "negative notif life", body: `{"notif_life":-2}`},
			{name: "not json", body: `{interval`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				items := domain.DefaultPreferences().Items()
				st := memStore(items)
				srv := New(Deps{Config: testConfig(":8080"), Store: st}, "test", false)

				w := do(t, srv, "PUT", "/api/v1/options", tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Empty(t, st.SetCalls())
			})
		}
	})

	t.Run("save failure", func(t *testing.T) {
		st := memStore(domain.Items{})
		st.SetFunc = func(context.Context, domain.Items) error { return errors.New("disk full") }
		srv := New(Deps{Config: testConfig(":8080"), Store: st}, "test", false)

		w := do(t, srv, "PUT", "/api/v1/options", `{"update_interval":30}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestServer_clearOptionsHandler(t *testing.T) {
	items := domain.DefaultPreferences().Items()
	items.Put(domain.KeyAPIKey, "secret")
	st := memStore(items)
	srv := New(Deps{Config: testConfig(":8080"), Store: st}, "test", false)

	w := do(t, srv, "DELETE", "/api/v1/options", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, st.ClearCalls(), 1)
	assert.Empty(t, items)

	st.ClearFunc = func(context.Context) error { return errors.New("locked") }
	w = do(t, srv, "DELETE", "/api/v1/options", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestServer_reactorEvents(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		postErr  error
		wantCode int
		wantEv   *reactor.Event
	}{
		{name: "action click", method: "POST", path: "/api/v1/action", wantCode: http.StatusAccepted,
			wantEv: &reactor.Event{Kind: reactor.KindActionClick}},
		{name: "menu item", method: "POST", path: "/api/v1/menu/startReview", wantCode: http.StatusAccepted,
			wantEv: &reactor.Event{Kind: reactor.KindMenu, MenuID: reactor.MenuStartReview}},
		{name: "unknown menu item", method: "POST", path: "/api/v1/menu/nope", postErr: fmt.Errorf("%w %q", reactor.ErrUnknownMenu, "nope"),
			wantCode: http.StatusNotFound, wantEv: &reactor.Event{Kind: reactor.KindMenu, MenuID: "nope"}},
		{name: "stopped", method: "POST", path: "/api/v1/action", postErr: reactor.ErrStopped,
			wantCode: http.StatusServiceUnavailable, wantEv: &reactor.Event{Kind: reactor.KindActionClick}},
		{name: "page command", method: "POST", path: "/api/v1/page", body: `{"command":"update-summary"}`,
			wantCode: http.StatusAccepted, wantEv: &reactor.Event{Kind: reactor.KindPageRefresh}},
		{name: "page refresh flag", method: "POST", path: "/api/v1/page", body: `{"refresh":true}`,
			wantCode: http.StatusAccepted, wantEv: &reactor.Event{Kind: reactor.KindPageRefresh}},
		{name: "page review count", method: "POST", path: "/api/v1/page", body: `{"reviews_available":42}`,
			wantCode: http.StatusAccepted, wantEv: &reactor.Event{Kind: reactor.KindPageReviewCount, Reviews: 42}},
		{name: "page review count rejected", method: "POST", path: "/api/v1/page", body: `{"reviews_available":999999999}`,
			postErr: errors.New("review count 999999999 out of range"), wantCode: http.StatusBadRequest,
			wantEv: &reactor.Event{Kind: reactor.KindPageReviewCount, Reviews: 999999999}},
		{name: "page snapshot with count", method: "POST", path: "/api/v1/page",
			body: `{"html":"<span id=\"available-count\">17</span>"}`,
			wantCode: http.StatusAccepted, wantEv: &reactor.Event{Kind: reactor.KindPageReviewCount, Reviews: 17}},
		{name: "page snapshot lesson end", method: "POST", path: "/api/v1/page",
			body: `{"html":"<button id=\"lesson-ready-end\">Quiz</button>"}`,
			wantCode: http.StatusAccepted, wantEv: &reactor.Event{Kind: reactor.KindPageRefresh}},
		{name: "page snapshot without session", method: "POST", path: "/api/v1/page", body: `{"html":"<p>hi</p>"}`,
			wantCode: http.StatusBadRequest},
		{name: "page unsupported", method: "POST", path: "/api/v1/page", body: `{"command":"dance"}`, wantCode: http.StatusBadRequest},
		{name: "page not json", method: "POST", path: "/api/v1/page", body: `nope`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rct := &mocks.ReactorMock{PostFunc: func(reactor.Event) error { return tt.postErr }}
			srv := New(Deps{Config: testConfig(":8080"), Reactor: rct}, "test", false)

			w := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantEv == nil {
				assert.Empty(t, rct.PostCalls())
				return
			}
			require.Len(t, rct.PostCalls(), 1)
			assert.Equal(t, *tt.wantEv, rct.PostCalls()[0].Ev)
			if tt.wantCode == http.StatusAccepted {
				assert.Equal(t, tt.wantEv.Kind.String(), decode[map[string]string](t, w)["kind"])
			}
		})
	}
}

func TestServer_menuListHandler(t *testing.T) {
	srv := New(Deps{Config: testConfig(":8080")}, "test", false)
	w := do(t, srv, "GET", "/api/v1/menu", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, reactor.MenuIDs, decode[map[string][]string](t, w)["menu"])
}

func TestMaskKey(t *testing.T) {
	assert.Empty(t, maskKey(""))
	assert.Equal(t, "***", maskKey("abc"))
	assert.Equal(t, "****", maskKey("abcd"))
	assert.Equal(t, "*bcde", maskKey("abcde"))
}
