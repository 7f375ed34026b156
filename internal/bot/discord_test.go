package bot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/EgorLis/Teamsbot/internal/config"
	"github.com/EgorLis/Teamsbot/internal/discord"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type restCall struct {
	method, path string
	content      string
}

// fakeREST запоминает запросы к API.
func fakeREST(t *testing.T, calls chan<- restCall) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bot secret" {
			t.Errorf("bad auth header %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		var msg struct {
			Content string `json:"content"`
		}
		_ = json.Unmarshal(body, &msg)
		calls <- restCall{method: r.Method, path: r.URL.Path, content: msg.Content}

		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"reply","channel_id":"c1","content":"ok","author":{"id":"bot","bot":true}}`)
	}))
}

type gatewayOp struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

func sendEvent(c *websocket.Conn, s int64, t string, d any) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.WriteJSON(gatewayOp{Op: 0, S: &s, T: t, D: raw})
}

// serveGateway: Hello, ждёт Identify, отправляет events и отвечает на
// heartbeat до закрытия соединения.
func serveGateway(t *testing.T, events []discord.Message) *httptest.Server {
	up := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()

		if err := c.WriteJSON(map[string]any{"op": 10, "d": map[string]any{"heartbeat_interval": 45000}}); err != nil {
			return
		}
		identified := false
		for {
			var p gatewayOp
			if err := c.ReadJSON(&p); err != nil {
				return
			}
			switch p.Op {
			case 1:
				if err := c.WriteJSON(map[string]any{"op": 11}); err != nil {
					return
				}
			case 2:
				if identified {
					t.Errorf("identified twice")
					return
				}
				identified = true
				seq := int64(1)
				_ = sendEvent(c, seq, "READY", discord.Ready{V: 10, User: discord.User{ID: "bot", Bot: true}, SessionID: "s1"})
				for _, m := range events {
					seq++
					_ = sendEvent(c, seq, "MESSAGE_CREATE", m)
				}
			}
		}
	}))
}

func TestDiscordFrontend(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"))

	calls := make(chan restCall, 16)
	rest := fakeREST(t, calls)
	defer rest.Close()

	gwSrv := serveGateway(t, []discord.Message{
		{
			ID: "m0", ChannelID: "c1", GuildID: "g1", Content: "!teams help",
			Author: discord.User{ID: "other-bot", Bot: true},
		},
		{
			ID: "m1", ChannelID: "c1", GuildID: "g1", Content: "!teams roll 1 <@1> <@!2>",
			Author:   discord.User{ID: "9", Username: "Speedy"},
			Mentions: []discord.User{{ID: "2"}, {ID: "1"}},
		},
		{
			ID: "m2", ChannelID: "d1", Content: "!teams whosglued",
			Author: discord.User{ID: "9", Username: "Speedy"},
		},
		{
			ID: "m3", ChannelID: "c1", GuildID: "g1", Content: "just chatting",
			Author: discord.User{ID: "9", Username: "Speedy"},
		},
	})
	defer gwSrv.Close()

	b := New(config.Bot{Prefix: "!teams", DeleteTrigger: true}, zap.NewNop())
	b.SetRand(lastRand{})
	b.SetDiscord(
		discord.NewGateway("ws"+strings.TrimPrefix(gwSrv.URL, "http"), "secret", discord.DefaultIntents, discord.ListeningPresence("!teams commands")),
		discord.NewREST("secret", rest.URL, 0),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- b.Run(ctx) }()

	var got []restCall
	for len(got) < 3 {
		select {
		case c := <-calls:
			got = append(got, c)
		case <-time.After(5 * time.Second):
			t.Fatalf("got only %d REST calls: %+v", len(got), got)
		}
	}

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}

	assert.ElementsMatch(t, []restCall{
		{method: http.MethodPost, path: "/channels/c1/messages", content: "Teams:\nDudes: <@2>\nBuds: <@1>"},
		{method: http.MethodDelete, path: "/channels/c1/messages/m1"},
		{method: http.MethodPost, path: "/channels/d1/messages", content: "Nobody is glued right now."},
	}, got)

	select {
	case c := <-calls:
		t.Errorf("unexpected REST call %+v", c)
	default:
	}
}

func TestDiscordSessionKey(t *testing.T) {
	assert.EqualValues(t, "g1", discordSession(&discord.Message{GuildID: "g1", ChannelID: "c1"}))
	assert.EqualValues(t, "dm:c1", discordSession(&discord.Message{ChannelID: "c1"}))
}

func TestRunWithoutFrontends(t *testing.T) {
	b := newTestBot(t)
	assert.Error(t, b.Run(context.Background()))
}
