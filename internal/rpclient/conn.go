package rpclient

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ========================= low-level =========================

func (rp *RustPlus) nextSeq() uint32 {
	return atomic.AddUint32(&rp.seq, 1)
}

func (rp *RustPlus) getConn() *websocket.Conn {
	rp.connMu.Lock()
	defer rp.connMu.Unlock()
	return rp.conn
}

func (rp *RustPlus) setConn(c *websocket.Conn) {
	rp.connMu.Lock()
	rp.conn = c
	rp.connMu.Unlock()
}

// формирует адрес ws/wss по текущей конфигурации
func (rp *RustPlus) wsURL() string {
	if rp.useProxy {
		return fmt.Sprintf("wss://companion-rust.facepunch.com/game/%s/%d", rp.server, rp.port)
	}
	return fmt.Sprintf("ws://%s:%d", rp.server, rp.port)
}

// dial с установкой pong-handler'а, дедлайнов и запуском пингов
func (rp *RustPlus) dialAndSetup(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, rp.wsURL(), nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(64 << 20)

	// всегда обновляем отметку активности сразу
	rp.touchActivity()

	if rp.useProxy {
		// через Facepunch proxy — pong есть
		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		conn.SetPongHandler(func(string) error {
			rp.touchActivity()
			return conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		})
		rp.startPing(conn) // ping каждые 10s
	} else {
		// прямой коннект к серверу: pong обычно нет,
		// держим соединение app-heartbeat'ом
		rp.startAppHeartbeat()
	}
	return conn, nil
}

// безопасно закрыть текущее соединение
func (rp *RustPlus) closeConn() {
	rp.stopPing() // останавливает и app-heartbeat, и ws-ping (общий канал)

	rp.connMu.Lock()
	conn := rp.conn
	rp.conn = nil
	rp.connMu.Unlock()

	if conn != nil {
		rp.wmu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closing"),
			time.Now().Add(500*time.Millisecond))
		rp.wmu.Unlock()
		_ = conn.Close()
	}
}

func (rp *RustPlus) startAppHeartbeat() {
	stop := rp.resetPing()

	go func() {
		tick := time.NewTicker(25 * time.Second)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				// давно не было трафика — дёрнем GetTeamInfo
				if rp.sinceLastActivity() > 20*time.Second && rp.getConn() != nil {
					done := make(chan struct{}, 1)
					_ = rp.GetTeamInfo(func(m *AppMessage) bool {
						done <- struct{}{}
						return true
					})
					select {
					case <-done:
						rp.touchActivity()
					case <-stop:
						return
					case <-time.After(8 * time.Second):
						// соединение подвисло — закрываем, readLoop реконнектит
						rp.closeConn()
					}
				}
			}
		}
	}()
}

func (rp *RustPlus) touchActivity() {
	rp.lastActivity.Store(time.Now().UnixNano())
}

func (rp *RustPlus) sinceLastActivity() time.Duration {
	n := rp.lastActivity.Load()
	if n == 0 {
		return time.Hour
	}
	return time.Since(time.Unix(0, n))
}

func (rp *RustPlus) startPing(c *websocket.Conn) {
	stop := rp.resetPing()

	go func() {
		t := time.NewTicker(10 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				rp.wmu.Lock()
				_ = c.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
				rp.wmu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

// resetPing останавливает предыдущие ping-горутины и выдаёт новый стоп-канал.
func (rp *RustPlus) resetPing() chan struct{} {
	rp.pingMu.Lock()
	defer rp.pingMu.Unlock()
	if rp.pingStop != nil {
		close(rp.pingStop)
	}
	rp.pingStop = make(chan struct{})
	return rp.pingStop
}

func (rp *RustPlus) stopPing() {
	rp.pingMu.Lock()
	defer rp.pingMu.Unlock()
	if rp.pingStop != nil {
		close(rp.pingStop)
		rp.pingStop = nil
	}
}
