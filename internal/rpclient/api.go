package rpclient

import (
	"context"
	"strings"
	"time"
)

// ========================= high-level API =========================

// BotPrefix помечает сообщения бота в тим-чате; такие сообщения бот
// сам не обрабатывает.
const BotPrefix = "[bot]"

// TeamInfoTimeout — сколько TeamInfo ждёт ответа сервера.
const TeamInfoTimeout = 8 * time.Second

func (rp *RustPlus) SendTeamMessage(message string, cb func(*AppMessage) bool) error {
	return rp.SendRequest(&AppRequest{
		SendTeamMessage: &AppSendMessage{Message: message},
	}, cb)
}

func (rp *RustPlus) GetTeamInfo(cb func(*AppMessage) bool) error {
	return rp.SendRequest(&AppRequest{
		GetTeamInfo: &AppEmpty{},
	}, cb)
}

// TeamInfo запрашивает состав команды и ждёт ответ. Нельзя вызывать из
// OnMessage: ответ читает тот же readLoop.
func (rp *RustPlus) TeamInfo(ctx context.Context) (*AppTeamInfo, error) {
	resp, err := rp.SendRequestAsync(ctx, &AppRequest{GetTeamInfo: &AppEmpty{}}, TeamInfoTimeout)
	if err != nil {
		return nil, err
	}
	return resp.GetTeamInfo(), nil
}

// BotSay пишет в тим-чат от имени бота.
func (rp *RustPlus) BotSay(msg string) error {
	return rp.SendTeamMessage(BotPrefix+" "+msg, nil)
}

// IsBotMessage — сообщение написано ботом (своим или чужим).
func IsBotMessage(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), BotPrefix)
}
