package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/url"
	"runtime"
	"time"

	"github.com/gorilla/websocket"
)

// ========================= low-level =========================

func (g *Gateway) getConn() *websocket.Conn {
	g.connMu.Lock()
	defer g.connMu.Unlock()
	return g.conn
}

func (g *Gateway) setConn(c *websocket.Conn) {
	g.connMu.Lock()
	g.conn = c
	g.connMu.Unlock()
}

// handshake: dial, ждём Hello, запускаем heartbeat, шлём Identify или
// Resume (если есть сессия).
func (g *Gateway) handshake(ctx context.Context, addr string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial gateway: %w", err)
	}
	conn.SetReadLimit(16 << 20)

	_ = conn.SetReadDeadline(time.Now().Add(15 * time.Second))
	var p payload
	if err := conn.ReadJSON(&p); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read hello: %w", err)
	}
	if p.Op != OpHello {
		_ = conn.Close()
		return nil, fmt.Errorf("expected hello, got op %d", p.Op)
	}
	var h hello
	if err := json.Unmarshal(p.D, &h); err != nil || h.HeartbeatInterval <= 0 {
		_ = conn.Close()
		return nil, fmt.Errorf("bad hello payload: %s", p.D)
	}
	_ = conn.SetReadDeadline(time.Time{})

	g.sessMu.Lock()
	sessionID := g.sessionID
	g.sessMu.Unlock()

	if sessionID != "" && g.seq.Load() > 0 {
		err = g.write(conn, OpResume, resume{
			Token:     g.token,
			SessionID: sessionID,
			Seq:       g.seq.Load(),
		})
	} else {
		err = g.write(conn, OpIdentify, identify{
			Token:   g.token,
			Intents: g.intents,
			Properties: identifyProperties{
				OS:      runtime.GOOS,
				Browser: "teamsbot",
				Device:  "teamsbot",
			},
			Presence: g.presence,
		})
	}
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	g.startHeartbeat(conn, time.Duration(h.HeartbeatInterval)*time.Millisecond)
	return conn, nil
}

// resumeAddr — адрес для переподключения: resume_gateway_url из READY,
// если сессия есть, иначе исходный url.
func (g *Gateway) resumeAddr() string {
	g.sessMu.Lock()
	defer g.sessMu.Unlock()
	if g.sessionID == "" || g.resumeURL == "" {
		return g.url
	}
	u, err := url.Parse(g.resumeURL)
	if err != nil {
		return g.url
	}
	if base, err := url.Parse(g.url); err == nil && u.RawQuery == "" {
		u.RawQuery = base.RawQuery
	}
	return u.String()
}

func (g *Gateway) forgetSession() {
	g.sessMu.Lock()
	g.sessionID, g.resumeURL = "", ""
	g.sessMu.Unlock()
	g.seq.Store(0)
}

// write отправляет {op, d} в соединение под мьютексом записи.
func (g *Gateway) write(conn *websocket.Conn, op Opcode, d any) error {
	g.wmu.Lock()
	defer g.wmu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(outgoing{Op: op, D: d}); err != nil {
		return fmt.Errorf("write op %d: %w", op, err)
	}
	return nil
}

func (g *Gateway) heartbeat(conn *websocket.Conn) error {
	var d any
	if s := g.seq.Load(); s > 0 {
		d = s
	}
	return g.write(conn, OpHeartbeat, d)
}

// startHeartbeat шлёт heartbeat каждые interval (первый — со случайной
// задержкой). Если прошлый heartbeat не подтверждён, соединение считается
// зомби и закрывается — readLoop переподключится.
func (g *Gateway) startHeartbeat(conn *websocket.Conn, interval time.Duration) {
	stop := g.resetHeartbeat()
	g.acked.Store(true)

	go func() {
		first := time.NewTimer(time.Duration(rand.Float64() * float64(interval)))
		defer first.Stop()
		select {
		case <-stop:
			return
		case <-first.C:
		}

		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			if !g.acked.Swap(false) {
				if g.OnError != nil {
					g.OnError(fmt.Errorf("heartbeat not acknowledged"))
				}
				g.dropConn(conn)
				return
			}
			if err := g.heartbeat(conn); err != nil {
				return
			}
			select {
			case <-stop:
				return
			case <-t.C:
			}
		}
	}()
}

func (g *Gateway) resetHeartbeat() chan struct{} {
	g.hbMu.Lock()
	defer g.hbMu.Unlock()
	if g.hbStop != nil {
		close(g.hbStop)
	}
	g.hbStop = make(chan struct{})
	return g.hbStop
}

func (g *Gateway) stopHeartbeat() {
	g.hbMu.Lock()
	defer g.hbMu.Unlock()
	if g.hbStop != nil {
		close(g.hbStop)
		g.hbStop = nil
	}
}

// dropConn закрывает conn без close-фрейма, только если он всё ещё текущий.
// Код 1000 заставил бы Discord завершить сессию, а её хотим продолжить.
func (g *Gateway) dropConn(conn *websocket.Conn) {
	g.connMu.Lock()
	if g.conn == conn {
		g.conn = nil
	}
	g.connMu.Unlock()
	_ = conn.Close()
}

// closeConn закрывает текущее соединение с указанным close-кодом.
func (g *Gateway) closeConn(code int) {
	g.stopHeartbeat()

	g.connMu.Lock()
	conn := g.conn
	g.conn = nil
	g.connMu.Unlock()

	if conn != nil {
		g.wmu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, "closing"),
			time.Now().Add(500*time.Millisecond))
		g.wmu.Unlock()
		_ = conn.Close()
	}
}
