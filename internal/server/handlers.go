package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/sw33tLie/appshell/pkg/api"
	"github.com/sw33tLie/appshell/pkg/bridge"
)

const maxBridgeMessage = 64 << 10

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Update)
}

func (s *Server) handleTutorial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Tutorial)
}

type ExchangeRequest struct {
	AppToken  string            `json:"appToken"`
	LoginInfo map[string]string `json:"loginInfo,omitempty"`
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.AppToken != "" && req.AppToken != s.AppToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	s.log.Debugf("Token exchanged (login info: %t)", len(req.LoginInfo) > 0)
	w.WriteHeader(http.StatusNoContent)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := api.ValidateCredentials(req.Email, req.Password); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": uuid.NewString()})
}

// handleBridge dispatches one message posted by the page and answers with
// the replies it produced, one JSON object per line.
//
// Only same-origin JSON posts are accepted: a cross-origin page cannot send
// application/json without a preflight, which this endpoint never answers.
func (s *Server) handleBridge(w http.ResponseWriter, r *http.Request) {
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}
	if !sameOrigin(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBridgeMessage+1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(raw) > maxBridgeMessage {
		s.log.Warnf("[Bridge] Rejected a message over %d bytes", maxBridgeMessage)
		http.Error(w, "Message too large", http.StatusRequestEntityTooLarge)
		return
	}

	var (
		mu      sync.Mutex
		replies bytes.Buffer
	)
	sender := bridge.SenderFunc(func(_ context.Context, msg []byte) error {
		mu.Lock()
		defer mu.Unlock()
		replies.Write(msg)
		replies.WriteByte('\n')
		return nil
	})

	d := bridge.NewDispatcher(s.host, sender,
		bridge.WithLogger(s.log),
		bridge.WithDeviceToken(s.DeviceToken),
		bridge.WithObserver(func(m bridge.Message) {
			s.metrics.bridgeMessages.WithLabelValues(m.Command).Inc()
		}),
	)
	d.Handle(r.Context(), raw)
	d.Wait()

	w.Header().Set("Content-Type", "application/x-ndjson")
	mu.Lock()
	defer mu.Unlock()
	w.Write(replies.Bytes())
}

// sameOrigin reports whether the request carries no Origin (non-browser
// clients) or one matching the host it was sent to.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	io.WriteString(w, bridge.InjectedScript(bridge.FetchPost("/bridge")))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := WebFS.Open("web/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer page.Close()

	out, err := bridge.InjectScript(page, bridge.InjectedScript(bridge.FetchPost("/bridge")))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, out)
}
