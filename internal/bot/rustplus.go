package bot

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/EgorLis/Teamsbot/internal/rpclient"
	"github.com/EgorLis/Teamsbot/internal/teams"
	"go.uber.org/zap"
)

// rustChatLimit — длина сообщения тим-чата Rust, включая префикс бота.
const rustChatLimit = 128

// teamSender — то, что нужно тим-чату от клиента Rust+.
type teamSender interface {
	TeamInfo(ctx context.Context) (*rpclient.AppTeamInfo, error)
	BotSay(msg string) error
}

func rustPlusSession(rp *rpclient.RustPlus) teams.SessionKey {
	return teams.SessionKey("rustplus:" + rp.Addr())
}

func (bot *Bot) runRustPlus(ctx context.Context, rp *rpclient.RustPlus) error {
	log := bot.log.Named("rustplus").With(zap.String("server", rp.Addr()))
	session := rustPlusSession(rp)

	var wg sync.WaitGroup
	rp.OnConnecting = func() { log.Debug("connecting") }
	rp.OnConnected = func() { log.Info("connected") }
	rp.OnDisconnected = func() { log.Info("disconnected") }
	rp.OnError = func(err error) { log.Warn("rustplus error", zap.Error(err)) }
	rp.OnRequest = func(req *rpclient.AppRequest) {
		log.Debug("request", zap.Uint32("seq", req.Seq), zap.Bool("team_info", req.GetTeamInfo != nil))
	}
	rp.OnMessage = func(msg *rpclient.AppMessage) {
		chat := msg.GetBroadcast().GetTeamMessage()
		if chat == nil {
			return
		}
		text := strings.TrimSpace(chat.Message)
		if rpclient.IsBotMessage(text) || !bot.IsCommand(text) {
			return
		}
		log.Debug("team chat command", zap.String("player", chat.Name), zap.String("text", text))

		// ответ на GetTeamInfo читает тот же readLoop, поэтому не здесь
		wg.Add(1)
		bot.queue.Go(session, func() {
			defer wg.Done()
			bot.onTeamMessage(ctx, log, rp, session, text)
		})
	}

	if err := rp.Connect(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	rp.Disconnect()
	wg.Wait()
	return nil
}

func (bot *Bot) onTeamMessage(ctx context.Context, log *zap.Logger, rp teamSender, session teams.SessionKey, text string) {
	r := &roster{rp: rp, ctx: ctx, log: log}
	reply, ok := bot.HandleCommand(Command{
		Session: session,
		Text:    text,
		Resolve: r.resolve,
		Mention: r.mention,
	})
	if !ok {
		return
	}

	limit := rustChatLimit - len(rpclient.BotPrefix) - 1
	for _, part := range chunkLines(stripMarkdown(reply), limit) {
		if err := rp.BotSay(part); err != nil {
			log.Error("send reply", zap.Error(err))
			return
		}
	}
}

// roster — состав команды Rust+, запрашивается не больше одного раза на
// команду и только если он понадобился.
type roster struct {
	rp  teamSender
	ctx context.Context
	log *zap.Logger

	loaded bool
	byName map[string]uint64 // имя в нижнем регистре -> SteamID
	names  map[uint64]string
}

func (r *roster) load() {
	if r.loaded {
		return
	}
	r.loaded = true
	r.byName = make(map[string]uint64)
	r.names = make(map[uint64]string)

	info, err := r.rp.TeamInfo(r.ctx)
	if err != nil {
		r.log.Warn("get team info", zap.Error(err))
		return
	}
	for _, m := range info.GetMembers() {
		r.byName[strings.ToLower(m.Name)] = m.SteamID
		r.names[m.SteamID] = m.Name
	}
}

// resolve ищет игроков по имени (без учёта регистра, "@" необязателен) или
// по SteamID. Незнакомые имена пропускаются.
func (r *roster) resolve(args []string) []teams.PlayerID {
	r.load()
	var out []teams.PlayerID
	for _, arg := range args {
		name := trimMention(arg)
		if name == "" {
			continue
		}
		id, ok := r.byName[strings.ToLower(name)]
		if !ok {
			if n, err := strconv.ParseUint(name, 10, 64); err == nil && r.names[n] != "" {
				id, ok = n, true
			}
		}
		if !ok {
			r.log.Debug("unknown teammate", zap.String("name", name))
			continue
		}
		out = append(out, teams.PlayerID(strconv.FormatUint(id, 10)))
	}
	return out
}

func (r *roster) mention(id teams.PlayerID) string {
	r.load()
	if n, err := strconv.ParseUint(string(id), 10, 64); err == nil {
		if name, ok := r.names[n]; ok {
			return name
		}
	}
	return string(id)
}

// trimMention убирает "@" у имени, набранного вручную.
func trimMention(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}
