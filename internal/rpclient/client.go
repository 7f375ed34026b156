package rpclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var ErrNotConnected = errors.New("not connected")

type RustPlus struct {
	server      string
	port        int
	playerID    uint64
	playerToken int32
	useProxy    bool

	connMu sync.Mutex
	conn   *websocket.Conn
	seq    uint32
	mu     sync.Mutex
	cbs    map[uint32]func(*AppMessage) bool
	closed atomic.Bool

	wmu          sync.Mutex    // сериализует запись в websocket
	pingMu       sync.Mutex    // защищает pingStop
	pingStop     chan struct{} // стоп-канал для ping-горутин
	lastActivity atomic.Int64  // unix nanos последнего успешного приёма сообщения
	done         chan struct{} // закрывается, когда readLoop завершился

	// "События"
	OnConnecting   func()
	OnConnected    func()
	OnMessage      func(*AppMessage)
	OnDisconnected func()
	OnError        func(error)
	OnRequest      func(*AppRequest)
}

func New(server string, port int, playerID uint64, playerToken int32, useProxy bool) *RustPlus {
	return &RustPlus{
		server:      server,
		port:        port,
		playerID:    playerID,
		playerToken: playerToken,
		useProxy:    useProxy,
		cbs:         make(map[uint32]func(*AppMessage) bool),
	}
}

// Addr — server:port, по нему бот строит ключ сессии.
func (rp *RustPlus) Addr() string {
	return fmt.Sprintf("%s:%d", rp.server, rp.port)
}

// Connect — устанавливает WebSocket и запускает readLoop.
// Отмена контекста закрывает соединение и останавливает реконнект.
func (rp *RustPlus) Connect(ctx context.Context) error {
	if rp.OnConnecting != nil {
		rp.OnConnecting()
	}
	conn, err := rp.dialAndSetup(ctx)
	if err != nil {
		return err
	}
	rp.setConn(conn)
	rp.closed.Store(false)
	rp.done = make(chan struct{})

	if rp.OnConnected != nil {
		rp.OnConnected()
	}

	go rp.readLoop(ctx)
	return nil
}

// Disconnect закрывает соединение и ждёт выхода из readLoop.
func (rp *RustPlus) Disconnect() {
	rp.closed.Store(true)
	rp.closeConn()
	if rp.done != nil {
		<-rp.done
	}
}

func (rp *RustPlus) IsConnected() bool {
	return rp.getConn() != nil && !rp.closed.Load()
}

// SendRequest — отправляет AppRequest, привязывая seq/игрока.
// Если cb != nil, будет вызван по ответу с тем же seq; если cb вернёт true —
// OnMessage для этого сообщения НЕ вызовется.
func (rp *RustPlus) SendRequest(req *AppRequest, cb func(*AppMessage) bool) error {
	conn := rp.getConn()
	if conn == nil {
		return ErrNotConnected
	}
	seq := rp.nextSeq()
	req.Seq = seq
	req.PlayerID = rp.playerID
	req.PlayerToken = rp.playerToken

	if cb != nil {
		rp.mu.Lock()
		rp.cbs[seq] = cb
		rp.mu.Unlock()
	}

	data := req.Marshal()

	if rp.OnRequest != nil {
		rp.OnRequest(req)
	}

	// запись строго через один мьютекс + write-deadline
	rp.wmu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	werr := conn.WriteMessage(websocket.BinaryMessage, data)
	rp.wmu.Unlock()

	if werr != nil {
		// сеть упала между подготовкой и записью — подчищаем cb
		rp.mu.Lock()
		delete(rp.cbs, seq)
		rp.mu.Unlock()
		return werr
	}
	return nil
}

// SendRequestAsync отправляет запрос и ждёт ответ с тем же seq.
func (rp *RustPlus) SendRequestAsync(ctx context.Context, req *AppRequest, timeout time.Duration) (*AppResponse, error) {
	respCh := make(chan *AppResponse, 1)
	errCh := make(chan error, 1)

	err := rp.SendRequest(req, func(m *AppMessage) bool {
		if r := m.GetResponse(); r != nil {
			if r.Error != nil {
				errCh <- errors.New(r.GetError())
				return true
			}
			respCh <- r
			return true
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case r := <-respCh:
		return r, nil
	case e := <-errCh:
		return nil, e
	case <-ctx.Done():
		rp.dropCallback(req.Seq)
		return nil, ctx.Err()
	case <-t.C:
		rp.dropCallback(req.Seq)
		return nil, fmt.Errorf("timeout waiting for response (seq=%d)", req.Seq)
	}
}

func (rp *RustPlus) dropCallback(seq uint32) {
	rp.mu.Lock()
	delete(rp.cbs, seq)
	rp.mu.Unlock()
}
