package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"synaphack/platform/internal/notify"
)

var upgrader = websocket.Upgrader{
	// Origin is enforced upstream; the token check below gates access.
	CheckOrigin:      func(r *http.Request) bool { return true },
	HandshakeTimeout: 10 * time.Second,
}

const streamWriteTimeout = 5 * time.Second

// streamNotifications pushes the live notification set over a WebSocket. The
// client receives the current set on connect and a fresh full set on every
// change; there is no incremental protocol to desync.
func streamNotifications(w http.ResponseWriter, r *http.Request, deps Deps) {
	if deps.Auth == nil {
		writeError(w, http.StatusServiceUnavailable, "auth service unavailable")
		return
	}

	// Browsers cannot set Authorization on WebSocket requests, so the token
	// also travels as a query parameter.
	token := r.URL.Query().Get("token")
	if token == "" {
		var err error
		token, err = extractBearerToken(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
			return
		}
	}
	if _, err := deps.Auth.ValidateToken(token); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// A single latest-value slot: a slow client coalesces bursts and always
	// converges on the current set, and the bus broadcast never blocks.
	var (
		mu     sync.Mutex
		latest []notify.Entry
	)
	updates := make(chan struct{}, 1)
	unsubscribe := deps.Notifications.Subscribe(func(entries []notify.Entry) {
		mu.Lock()
		latest = entries
		mu.Unlock()
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-updates:
			mu.Lock()
			entries := latest
			mu.Unlock()
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(map[string]any{"items": entries}); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
