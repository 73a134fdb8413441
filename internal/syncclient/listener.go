package syncclient

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/floodyboy/sync-party/internal/realtime"
)

const reconnectDelay = 3 * time.Second

// Listen dials the server's websocket and feeds every event into
// HandleEvent, reconnecting with a fixed delay. There is no replay
// queue server-side, so each successful (re)connect invalidates the
// snapshot for a full resync.
func (a *Agent) Listen(ctx context.Context) error {
	wsURL, err := a.websocketURL()
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(reconnectDelay):
			}
			continue
		}

		// Anything broadcast while we were away is gone
		a.Invalidate()

		a.readEvents(ctx, conn)
		_ = conn.Close()
	}
}

func (a *Agent) readEvents(ctx context.Context, conn *websocket.Conn) {
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var event realtime.Event
		if err := json.Unmarshal(data, &event); err != nil {
			continue
		}
		a.HandleEvent(event)
	}
}

func (a *Agent) websocketURL() (string, error) {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {a.token}}.Encode()

	return u.String(), nil
}
