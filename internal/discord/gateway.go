package discord

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultGatewayURL — адрес gateway v10 с JSON-кодированием.
const DefaultGatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

var ErrNotConnected = errors.New("gateway: not connected")

type Gateway struct {
	url      string
	token    string
	intents  Intents
	presence *Presence

	connMu sync.Mutex
	conn   *websocket.Conn
	wmu    sync.Mutex // сериализует запись в websocket

	seq       atomic.Int64 // последний s из dispatch, 0 — ещё не было
	sessMu    sync.Mutex
	sessionID string
	resumeURL string

	hbMu   sync.Mutex
	hbStop chan struct{}
	acked  atomic.Bool

	closed     atomic.Bool
	done       chan struct{}
	errMu      sync.Mutex
	err        error
	minBackoff time.Duration
	maxBackoff time.Duration

	// "События"
	OnConnecting   func()
	OnReady        func(*Ready)
	OnResumed      func()
	OnMessage      func(*Message)
	OnDisconnected func()
	OnError        func(error)
}

// NewGateway создаёт клиента gateway. Пустой url — DefaultGatewayURL.
func NewGateway(url, token string, intents Intents, presence *Presence) *Gateway {
	if url == "" {
		url = DefaultGatewayURL
	}
	return &Gateway{
		url:        url,
		token:      token,
		intents:    intents,
		presence:   presence,
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
}

// Connect выполняет Hello/Identify и запускает readLoop. Отмена контекста
// закрывает соединение; повторные подключения readLoop делает сам.
func (g *Gateway) Connect(ctx context.Context) error {
	if g.OnConnecting != nil {
		g.OnConnecting()
	}
	conn, err := g.handshake(ctx, g.url)
	if err != nil {
		return err
	}
	g.setConn(conn)
	g.closed.Store(false)
	g.done = make(chan struct{})

	go g.readLoop(ctx)
	return nil
}

// Disconnect закрывает соединение и ждёт выхода из readLoop.
func (g *Gateway) Disconnect() {
	g.closed.Store(true)
	g.closeConn(websocket.CloseNormalClosure)
	if g.done != nil {
		<-g.done
	}
}

// Done закрывается, когда gateway окончательно остановлен.
func (g *Gateway) Done() <-chan struct{} {
	return g.done
}

// Err — причина остановки, если gateway остановился сам (например, 4004
// при неверном токене). После Disconnect — nil.
func (g *Gateway) Err() error {
	g.errMu.Lock()
	defer g.errMu.Unlock()
	return g.err
}

func (g *Gateway) IsConnected() bool {
	return g.getConn() != nil && !g.closed.Load()
}

// SessionID — id сессии из READY (нужен для Resume).
func (g *Gateway) SessionID() string {
	g.sessMu.Lock()
	defer g.sessMu.Unlock()
	return g.sessionID
}

func (g *Gateway) setErr(err error) {
	g.errMu.Lock()
	g.err = err
	g.errMu.Unlock()
}
