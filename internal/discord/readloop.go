package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// closeResumable — close-код, после которого Discord сохраняет сессию
// (1000/1001 её завершают).
const closeResumable = 4000

// close-коды, после которых переподключаться бессмысленно
var fatalCloseCodes = map[int]string{
	4004: "authentication failed",
	4010: "invalid shard",
	4011: "sharding required",
	4012: "invalid API version",
	4013: "invalid intents",
	4014: "disallowed intents",
}

func (g *Gateway) readLoop(ctx context.Context) {
	done := g.done
	defer func() {
		g.closed.Store(true)
		g.closeConn(websocket.CloseNormalClosure)
		if g.OnDisconnected != nil {
			g.OnDisconnected()
		}
		close(done)
	}()

	// закрыть по отмене контекста
	go func() {
		select {
		case <-ctx.Done():
			g.closed.Store(true)
			g.closeConn(websocket.CloseNormalClosure)
		case <-done:
		}
	}()

	backoff := g.minBackoff

	for {
		conn := g.getConn()
		if conn == nil {
			if g.closed.Load() {
				return
			}
		} else {
			var p payload
			err := conn.ReadJSON(&p)
			if err == nil {
				reconnect, herr := g.handle(conn, &p)
				if herr != nil && g.OnError != nil {
					g.OnError(herr)
				}
				if !reconnect {
					backoff = g.minBackoff
					continue
				}
			} else {
				if g.closed.Load() {
					return
				}
				var ce *websocket.CloseError
				if errors.As(err, &ce) {
					if reason, fatal := fatalCloseCodes[ce.Code]; fatal {
						g.setErr(fmt.Errorf("gateway closed %d: %s", ce.Code, reason))
						return
					}
				}
				if g.OnError != nil {
					g.OnError(err)
				}
			}
		}

		g.closeConn(closeResumable)

		// реконнект с backoff
		if !g.reconnect(ctx, &backoff) {
			return
		}
	}
}

// handle разбирает одно сообщение gateway. true — нужно переподключиться.
func (g *Gateway) handle(conn *websocket.Conn, p *payload) (bool, error) {
	if p.S != nil {
		g.seq.Store(*p.S)
	}

	switch p.Op {
	case OpDispatch:
		return false, g.dispatch(p)

	case OpHeartbeat:
		return false, g.heartbeat(conn)

	case OpHeartbeatAck:
		g.acked.Store(true)

	case OpReconnect:
		return true, nil

	case OpInvalidSession:
		var resumable bool
		_ = json.Unmarshal(p.D, &resumable)
		if !resumable {
			g.forgetSession()
		}
		return true, nil
	}
	return false, nil
}

func (g *Gateway) dispatch(p *payload) error {
	switch p.T {
	case "READY":
		var r Ready
		if err := json.Unmarshal(p.D, &r); err != nil {
			return fmt.Errorf("decode READY: %w", err)
		}
		g.sessMu.Lock()
		g.sessionID, g.resumeURL = r.SessionID, r.ResumeGatewayURL
		g.sessMu.Unlock()
		if g.OnReady != nil {
			g.OnReady(&r)
		}

	case "RESUMED":
		if g.OnResumed != nil {
			g.OnResumed()
		}

	case "MESSAGE_CREATE":
		var m Message
		if err := json.Unmarshal(p.D, &m); err != nil {
			return fmt.Errorf("decode MESSAGE_CREATE: %w", err)
		}
		if g.OnMessage != nil {
			g.OnMessage(&m)
		}
	}
	return nil
}

// reconnect ждёт backoff и пробует подключиться заново. false — клиент
// закрыт или контекст отменён.
func (g *Gateway) reconnect(ctx context.Context, backoff *time.Duration) bool {
	for !g.closed.Load() {
		t := time.NewTimer(*backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}

		if g.OnConnecting != nil {
			g.OnConnecting()
		}
		conn, err := g.handshake(ctx, g.resumeAddr())
		if err != nil {
			if g.OnError != nil {
				g.OnError(fmt.Errorf("reconnect failed (wait %v): %w", *backoff, err))
			}
			*backoff = min(*backoff*2, g.maxBackoff)
			continue
		}
		g.setConn(conn)
		return true
	}
	return false
}
