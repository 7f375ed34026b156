package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/EgorLis/Teamsbot/internal/rpclient"
	"github.com/EgorLis/Teamsbot/internal/teams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTeam отвечает составом команды и запоминает сказанное в чат.
type fakeTeam struct {
	mu       sync.Mutex
	members  []*rpclient.AppTeamMember
	err      error
	requests int
	said     []string
}

func (f *fakeTeam) TeamInfo(ctx context.Context) (*rpclient.AppTeamInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if f.err != nil {
		return nil, f.err
	}
	return &rpclient.AppTeamInfo{Members: f.members}, nil
}

func (f *fakeTeam) BotSay(msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.said = append(f.said, msg)
	return nil
}

func newFakeTeam() *fakeTeam {
	return &fakeTeam{members: []*rpclient.AppTeamMember{
		{SteamID: 76561198000000001, Name: "Speedy", IsOnline: true},
		{SteamID: 76561198000000002, Name: "Big Rollie", IsOnline: true},
		{SteamID: 76561198000000003, Name: "zed", IsOnline: false},
	}}
}

func teamChat(t *testing.T, b *Bot, team *fakeTeam, text string) []string {
	t.Helper()
	b.onTeamMessage(context.Background(), zap.NewNop(), team, "rustplus:127.0.0.1:28082", text)
	team.mu.Lock()
	defer team.mu.Unlock()
	said := team.said
	team.said = nil
	return said
}

func TestTeamChatRollResolvesNames(t *testing.T) {
	b := newTestBot(t)
	team := newFakeTeam()

	said := teamChat(t, b, team, `!teams roll 1 @speedy "Big Rollie"`)
	assert.Equal(t, []string{"Teams:\nDudes: Big Rollie\nBuds: Speedy"}, said)
	assert.Equal(t, 1, team.requests)
}

func TestTeamChatGlueBySteamID(t *testing.T) {
	b := newTestBot(t)
	team := newFakeTeam()

	said := teamChat(t, b, team, "!teams glue ZED 76561198000000001")
	assert.Equal(t, []string{"Current glue:\nzed, Speedy will always team up."}, said)

	// reroll и whosglued без аргументов всё равно показывают имена
	said = teamChat(t, b, team, "!teams whosglued")
	assert.Equal(t, []string{"Current glue:\nzed, Speedy will always team up."}, said)
	assert.Equal(t, 2, team.requests)
}

func TestTeamChatSkipsUnknownNames(t *testing.T) {
	b := newTestBot(t)
	team := newFakeTeam()

	said := teamChat(t, b, team, "!teams glue speedy nobody 42")
	require.NotEmpty(t, said)
	assert.True(t, strings.HasPrefix(said[0], "You need to tag two or more players to glue!"), said[0])
}

func TestTeamChatRosterFailure(t *testing.T) {
	b := newTestBot(t)
	team := newFakeTeam()
	team.err = errors.New("timeout")

	said := teamChat(t, b, team, "!teams roll 2 speedy zed")
	require.NotEmpty(t, said)
	assert.True(t, strings.HasPrefix(said[0], "You forgot to tag who is playing!"), said[0])
}

func TestTeamChatNoRosterForHelp(t *testing.T) {
	b := newTestBot(t)
	team := newFakeTeam()

	said := teamChat(t, b, team, "!teams help")
	assert.Zero(t, team.requests)
	require.Greater(t, len(said), 1)
	for _, part := range said {
		assert.LessOrEqual(t, len(rpclient.BotPrefix)+1+len(part), rustChatLimit, part)
		assert.NotContains(t, part, "**")
	}
	assert.Contains(t, strings.Join(said, "\n"), "Usage: !teams roll [team size] <tag players>")
}

func TestTeamChatSessionIsSeparateFromDiscord(t *testing.T) {
	b := newTestBot(t)
	team := newFakeTeam()

	b.GlueCommand("g1", []teams.PlayerID{"1", "2"}, nil)
	said := teamChat(t, b, team, "!teams whosglued")
	assert.Equal(t, []string{"Nobody is glued right now."}, said)
}

func TestRustPlusSessionKey(t *testing.T) {
	rp := rpclient.New("10.0.0.5", 28082, 1, 2, false)
	assert.Equal(t, teams.SessionKey("rustplus:10.0.0.5:28082"), rustPlusSession(rp))
}
