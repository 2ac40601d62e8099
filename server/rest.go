package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/umputun/wkbadge/pkg/domain"
	"github.com/umputun/wkbadge/pkg/page"
	"github.com/umputun/wkbadge/pkg/reactor"
	"github.com/umputun/wkbadge/pkg/store"
)

// messages reported after options are saved
const (
	msgKeyInvalid = "API key is not valid"
	msgSaved      = "Options saved"
)

// optionsResponse is the options view, api key masked
type optionsResponse struct {
	APIKey         string  `json:"api_key"`
	UpdateInterval int     `json:"update_interval"`
	Notifications  bool    `json:"notifications"`
	NotifLife      int     `json:"notif_life"`
	Username       *string `json:"username,omitempty"`
	Valid          *bool   `json:"valid,omitempty"`
	Message        string  `json:"message,omitempty"`
}

// optionsRequest updates only the fields present
type optionsRequest struct {
	APIKey         *string `json:"api_key"`
	UpdateInterval *int    `json:"update_interval"`
	Notifications  *bool   `json:"notifications"`
	NotifLife      *int    `json:"notif_life"`
}

// pageMessage is sent by the page observer. One of the fields is expected.
type pageMessage struct {
	Command          string `json:"command"`
	Refresh          bool   `json:"refresh"`
	ReviewsAvailable *int   `json:"reviews_available"`
	HTML             string `json:"html"` // page snapshot, observed like the page itself
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	if s.db != nil {
		status["database"] = "ok"
		if err := s.db.Ping(r.Context()); err != nil {
			log.Printf("[WARN] database ping failed: %v", err)
			status["database"] = err.Error()
		}
	}
	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		log.Printf("[WARN] can't get snapshot for status: %v", err)
		RenderJSON(w, r, http.StatusOK, status)
		return
	}
	status["authenticated"] = snap.Authenticated()
	if snap.HasSummary {
		status["reviews_available"] = snap.Summary.ReviewsAvailable
		status["lessons_available"] = snap.Summary.LessonsAvailable
		status["next_reviews_at"] = snap.Summary.NextReviewsAt
	}
	RenderJSON(w, r, http.StatusOK, status)
}

// badgeHandler returns the last rendered badge
func (s *Server) badgeHandler(w http.ResponseWriter, r *http.Request) {
	RenderJSON(w, r, http.StatusOK, s.presenter.LastState())
}

// resourceHandler returns cached bookkeeping and fields of a resource
func (s *Server) resourceHandler(w http.ResponseWriter, r *http.Request) {
	res := domain.Resource(r.PathValue("kind"))
	if !res.Valid() {
		RenderError(w, r, fmt.Errorf("unknown resource %q", res), http.StatusNotFound)
		return
	}
	view, err := s.fetcher.Get(r.Context(), res)
	if err != nil {
		log.Printf("[ERROR] failed to get %s: %v", res, err)
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	RenderJSON(w, r, http.StatusOK, view)
}

// refreshResourceHandler refreshes a resource and returns the updated view.
// Without force=true the request is subject to cooldown.
func (s *Server) refreshResourceHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := domain.Resource(r.PathValue("kind"))
	if !res.Valid() {
		RenderError(w, r, fmt.Errorf("unknown resource %q", res), http.StatusNotFound)
		return
	}

	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		f, err := strconv.ParseBool(v)
		if err != nil {
			RenderError(w, r, errors.New("invalid force value"), http.StatusBadRequest)
			return
		}
		force = f
	}

	if err := s.fetcher.Refresh(ctx, res, force); err != nil {
		log.Printf("[ERROR] failed to refresh %s: %v", res, err)
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	view, err := s.fetcher.Get(ctx, res)
	if err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	RenderJSON(w, r, http.StatusOK, view)
}

// getOptionsHandler returns current preferences
func (s *Server) getOptionsHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	RenderJSON(w, r, http.StatusOK, newOptionsResponse(snap))
}

// saveOptionsHandler stores preferences. A changed api key is checked by the
// forced user refresh the reactor runs on key change, the handler waits for its response.
// A masked key sent back as is keeps the stored one.
func (s *Server) saveOptionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req optionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RenderError(w, r, fmt.Errorf("invalid options: %w", err), http.StatusBadRequest)
		return
	}

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}

	prefs := snap.Preferences
	keyChanged := false
	if req.APIKey != nil {
		key := strings.TrimSpace(*req.APIKey)
		if key != snap.APIKey && key != maskKey(snap.APIKey) {
			prefs.APIKey, keyChanged = key, true
		}
	}
	if req.UpdateInterval != nil {
		prefs.UpdateInterval = *req.UpdateInterval
	}
	if req.Notifications != nil {
		prefs.Notifications = *req.Notifications
	}
	if req.NotifLife != nil {
		prefs.NotifLife = *req.NotifLife
	}
	if err := prefs.Validate(); err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}

	checkKey := keyChanged && prefs.APIKey != ""
	received := make(chan struct{}, 1)
	if checkKey {
		unsubscribe := s.store.Subscribe(func(changes store.Changes) {
			if changes.Has(domain.KeyReceivedAt) {
				select {
				case received <- struct{}{}:
				default:
				}
			}
		})
		defer unsubscribe()
	}

	savedAt := time.Now()
	if err := s.store.Set(ctx, prefs.Items()); err != nil {
		log.Printf("[ERROR] failed to save options: %v", err)
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}

	if !checkKey {
		if snap, err = s.store.Snapshot(ctx); err != nil {
			RenderError(w, r, err, http.StatusInternalServerError)
			return
		}
		resp := newOptionsResponse(snap)
		resp.Message = savedMessage(snap)
		RenderJSON(w, r, http.StatusOK, resp)
		return
	}

	snap, checked, err := s.awaitUser(ctx, savedAt, received)
	if err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	resp := newOptionsResponse(snap)
	resp.Message = savedMessage(snap)
	if checked {
		valid := snap.Book.LastStatus[domain.ResourceUser] != http.StatusUnauthorized
		resp.Valid = &valid
		if !valid {
			resp.Message = msgKeyInvalid
		}
	}
	RenderJSON(w, r, http.StatusOK, resp)
}

// awaitUser waits for a user response received after since. Returns the latest
// snapshot and false if none arrived within the key check timeout.
func (s *Server) awaitUser(ctx context.Context, since time.Time, received <-chan struct{}) (domain.Snapshot, bool, error) {
	timer := time.NewTimer(s.keyCheck)
	defer timer.Stop()
	for {
		snap, err := s.store.Snapshot(ctx)
		if err != nil {
			return domain.Snapshot{}, false, err
		}
		if !snap.Book.ReceivedAt[domain.ResourceUser].Before(since) {
			return snap, true, nil
		}
		select {
		case <-received:
		case <-timer.C:
			log.Printf("[WARN] no user response within %v, api key not checked", s.keyCheck)
			return snap, false, nil
		case <-ctx.Done():
			return snap, false, ctx.Err()
		}
	}
}

// clearOptionsHandler wipes the store back to defaults
func (s *Server) clearOptionsHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		log.Printf("[ERROR] failed to clear store: %v", err)
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actionHandler is the badge click
func (s *Server) actionHandler(w http.ResponseWriter, r *http.Request) {
	s.post(w, r, reactor.Event{Kind: reactor.KindActionClick})
}

// menuListHandler returns context menu entries
func (s *Server) menuListHandler(w http.ResponseWriter, r *http.Request) {
	RenderJSON(w, r, http.StatusOK, map[string][]string{"menu": reactor.MenuIDs})
}

// menuHandler runs a context menu entry
func (s *Server) menuHandler(w http.ResponseWriter, r *http.Request) {
	s.post(w, r, reactor.Event{Kind: reactor.KindMenu, MenuID: r.PathValue("id")})
}

// pageHandler accepts page observer messages
func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	var msg pageMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		RenderError(w, r, fmt.Errorf("invalid page message: %w", err), http.StatusBadRequest)
		return
	}

	switch {
	case msg.Command == "update-summary" || msg.Refresh:
		s.post(w, r, reactor.Event{Kind: reactor.KindPageRefresh})
	case msg.ReviewsAvailable != nil:
		s.post(w, r, reactor.Event{Kind: reactor.KindPageReviewCount, Reviews: *msg.ReviewsAvailable})
	case msg.HTML != "":
		obs, err := page.Observe(strings.NewReader(msg.HTML))
		if err != nil {
			RenderError(w, r, err, http.StatusBadRequest)
			return
		}
		if obs.Reviews != nil {
			s.post(w, r, reactor.Event{Kind: reactor.KindPageReviewCount, Reviews: *obs.Reviews})
			return
		}
		s.post(w, r, reactor.Event{Kind: reactor.KindPageRefresh})
	default:
		RenderError(w, r, errors.New("unsupported page message"), http.StatusBadRequest)
	}
}

// post hands the event to the reactor, mapping its errors to statuses
func (s *Server) post(w http.ResponseWriter, r *http.Request, ev reactor.Event) {
	err := s.reactor.Post(ev)
	switch {
	case err == nil:
		RenderJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted", "kind": ev.Kind.String()})
	case errors.Is(err, reactor.ErrUnknownMenu):
		RenderError(w, r, err, http.StatusNotFound)
	case errors.Is(err, reactor.ErrStopped):
		RenderError(w, r, err, http.StatusServiceUnavailable)
	default:
		RenderError(w, r, err, http.StatusBadRequest)
	}
}

// savedMessage is the save confirmation, with the username when known
func savedMessage(snap domain.Snapshot) string {
	if snap.APIKey != "" && snap.User.Username != nil {
		return fmt.Sprintf("%s, %s", msgSaved, *snap.User.Username)
	}
	return msgSaved
}

func newOptionsResponse(snap domain.Snapshot) optionsResponse {
	return optionsResponse{
		APIKey:         maskKey(snap.APIKey),
		UpdateInterval: snap.UpdateInterval,
		Notifications:  snap.Notifications,
		NotifLife:      snap.NotifLife,
		Username:       snap.User.Username,
	}
}

// maskKey keeps the last 4 characters of the key
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
