package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

const wsWriteTimeout = 5 * time.Second

// handleWebSocket pushes the current snapshot on connect and the latest one
// after every change. Client frames are ignored.
func (a *api) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{OriginPatterns: a.origins}
	for _, o := range a.origins {
		if o == "*" {
			opts = &websocket.AcceptOptions{InsecureSkipVerify: true}
			break
		}
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		a.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx := conn.CloseRead(r.Context())
	snapshots, cancel := a.chat.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "conversation closed")
				return
			}
			if err := writeTimeout(ctx, conn, snap); err != nil {
				a.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}

func writeTimeout(ctx context.Context, conn *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}
