package rpclient

import (
	"context"
	"fmt"
	"time"
)

func (rp *RustPlus) readLoop(ctx context.Context) {
	done := rp.done
	defer func() {
		rp.closed.Store(true)
		rp.closeConn()
		rp.failPendingCallbacks(fmt.Errorf("connection closed"))
		if rp.OnDisconnected != nil {
			rp.OnDisconnected()
		}
		close(done)
	}()

	// закрыть по отмене контекста
	go func() {
		select {
		case <-ctx.Done():
			rp.closed.Store(true)
			rp.closeConn()
		case <-done:
		}
	}()

	backoff := time.Second

	for {
		conn := rp.getConn()
		if conn == nil {
			if rp.closed.Load() {
				return
			}
			// соединение сбросил heartbeat — идём в реконнект ниже
			if rp.OnError != nil {
				rp.OnError(fmt.Errorf("connection is nil"))
			}
		} else {
			_, data, err := conn.ReadMessage()
			if err == nil {
				var msg AppMessage
				if uerr := msg.Unmarshal(data); uerr != nil {
					if rp.OnError != nil {
						rp.OnError(fmt.Errorf("decode AppMessage: %w", uerr))
					}
					continue
				}

				rp.touchActivity()

				// callbacks по seq
				if resp := msg.GetResponse(); resp != nil {
					rp.mu.Lock()
					cb, ok := rp.cbs[resp.Seq]
					if ok {
						delete(rp.cbs, resp.Seq)
					}
					rp.mu.Unlock()
					if ok && cb(&msg) {
						continue
					}
				}

				if rp.OnMessage != nil {
					rp.OnMessage(&msg)
				}

				backoff = time.Second
				continue
			}

			if rp.closed.Load() {
				return
			}
			if rp.OnError != nil {
				rp.OnError(err)
			}
		}

		// закрываем и фейлим ожидающие
		rp.closeConn()
		rp.failPendingCallbacks(fmt.Errorf("connection lost"))

		// реконнект с backoff
		if !rp.reconnect(ctx, &backoff) {
			return
		}
	}
}

// reconnect ждёт backoff и пробует подключиться заново, пока не выйдет или
// не закроют клиента. false — клиент закрыт.
func (rp *RustPlus) reconnect(ctx context.Context, backoff *time.Duration) bool {
	for !rp.closed.Load() {
		t := time.NewTimer(*backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}

		conn, err := rp.dialAndSetup(ctx)
		if err != nil {
			if rp.OnError != nil {
				rp.OnError(fmt.Errorf("reconnect failed (wait %v): %w", *backoff, err))
			}
			*backoff = min(*backoff*2, 30*time.Second)
			continue
		}
		rp.setConn(conn)
		rp.touchActivity()
		if rp.OnConnected != nil {
			rp.OnConnected()
		}
		*backoff = time.Second
		return true
	}
	return false
}

// пометить все ожидающие callbacks ошибкой при реконнекте/закрытии
func (rp *RustPlus) failPendingCallbacks(err error) {
	rp.mu.Lock()
	pending := rp.cbs
	rp.cbs = make(map[uint32]func(*AppMessage) bool)
	rp.mu.Unlock()

	for _, cb := range pending {
		if cb == nil {
			continue
		}
		// искусственный AppMessage с AppResponse.Error
		cb(&AppMessage{
			Response: &AppResponse{Error: &AppError{Error: err.Error()}},
		})
	}
}
