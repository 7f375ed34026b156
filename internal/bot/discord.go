package bot

import (
	"context"
	"sync"
	"time"

	"github.com/EgorLis/Teamsbot/internal/discord"
	"github.com/EgorLis/Teamsbot/internal/teams"
	"go.uber.org/zap"
)

// discordLimit — максимальная длина сообщения Discord.
const discordLimit = 2000

const discordReplyTimeout = 15 * time.Second

func (bot *Bot) runDiscord(ctx context.Context) error {
	log := bot.log.Named("discord")
	gw := bot.gw

	var wg sync.WaitGroup
	gw.OnConnecting = func() { log.Debug("connecting") }
	gw.OnReady = func(r *discord.Ready) {
		log.Info("ready", zap.String("user", r.User.Username), zap.String("session_id", r.SessionID))
	}
	gw.OnResumed = func() { log.Info("resumed") }
	gw.OnDisconnected = func() { log.Info("disconnected") }
	gw.OnError = func(err error) { log.Warn("gateway error", zap.Error(err)) }
	gw.OnMessage = func(m *discord.Message) {
		if m.Author.Bot || !bot.IsCommand(m.Content) {
			return
		}
		// REST-вызовы не должны держать readLoop; команды одной сессии
		// выполняются и отвечают по порядку
		wg.Add(1)
		bot.queue.Go(discordSession(m), func() {
			defer wg.Done()
			bot.onDiscordMessage(ctx, log, m)
		})
	}

	if err := gw.Connect(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-gw.Done():
	}
	gw.Disconnect()
	wg.Wait()
	return gw.Err()
}

// discordSession — сервер, а для личных сообщений — канал.
func discordSession(m *discord.Message) teams.SessionKey {
	if m.GuildID != "" {
		return teams.SessionKey(m.GuildID)
	}
	return teams.SessionKey("dm:" + m.ChannelID)
}

func (bot *Bot) onDiscordMessage(ctx context.Context, log *zap.Logger, m *discord.Message) {
	reply, ok := bot.HandleCommand(Command{
		Session: discordSession(m),
		Text:    m.Content,
		Resolve: func([]string) []teams.PlayerID {
			ids := discord.MentionedUserIDs(m)
			out := make([]teams.PlayerID, len(ids))
			for i, id := range ids {
				out[i] = teams.PlayerID(id)
			}
			return out
		},
		Mention: teams.DiscordMention,
	})
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, discordReplyTimeout)
	defer cancel()

	for _, part := range chunkLines(reply, discordLimit) {
		if _, err := bot.rest.CreateMessage(ctx, m.ChannelID, part); err != nil {
			log.Error("send reply", zap.String("channel", m.ChannelID), zap.Error(err))
			return
		}
	}

	if bot.deleteTrigger && m.GuildID != "" {
		if err := bot.rest.DeleteMessage(ctx, m.ChannelID, m.ID); err != nil {
			log.Warn("delete trigger message", zap.String("message", m.ID), zap.Error(err))
		}
	}
}
