package bot

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/EgorLis/Teamsbot/internal/teams"
	"go.uber.org/zap"
)

// сплит с поддержкой кавычек: "Big Rollie" — один аргумент
var reArg = regexp.MustCompile(`"([^"]*)"|(\S+)`)

// Command — входящая команда от фронтенда.
type Command struct {
	Session teams.SessionKey
	Text    string
	// Resolve превращает аргументы после имени команды (и размера команды
	// для roll) в игроков. Discord берёт упоминания из сообщения, Rust+ —
	// ищет имена в составе команды.
	Resolve func(args []string) []teams.PlayerID
	// Mention — как показывать игрока в ответе.
	Mention teams.MentionFunc
}

func (c Command) players(args []string) []teams.PlayerID {
	if c.Resolve == nil {
		return nil
	}
	return c.Resolve(args)
}

// IsCommand — текст начинается с префикса бота.
func (bot *Bot) IsCommand(text string) bool {
	fields := strings.Fields(text)
	return len(fields) > 0 && strings.EqualFold(fields[0], bot.prefix)
}

// HandleCommand разбирает "<prefix> <команда> [аргументы]" и возвращает
// ответ. false — текст не является командой бота.
func (bot *Bot) HandleCommand(cmd Command) (string, bool) {
	fields := splitArgs(cmd.Text)
	if len(fields) == 0 || !strings.EqualFold(fields[0], bot.prefix) {
		return "", false
	}
	if len(fields) < 2 {
		return bot.Help(), true
	}
	name := strings.ToLower(fields[1])
	args := fields[2:]

	start := time.Now()
	defer func() {
		bot.log.Info("command handled",
			zap.String("session", string(cmd.Session)),
			zap.String("command", name),
			zap.Duration("took", time.Since(start)))
	}()

	switch name {
	case "roll":
		if len(args) == 0 {
			return bot.msgs.noTeamSize, true
		}
		size, err := strconv.Atoi(args[0])
		if err != nil {
			return bot.msgs.noTeamSize, true
		}
		return bot.Roll(cmd.Session, size, cmd.players(args[1:]), cmd.Mention), true

	case "reroll":
		return bot.Reroll(cmd.Session, cmd.Mention), true

	case "glue":
		return bot.GlueCommand(cmd.Session, cmd.players(args), cmd.Mention), true

	case "unglue":
		return bot.UnglueCommand(cmd.Session), true

	case "whosglued":
		return bot.WhosGlued(cmd.Session, cmd.Mention), true

	case "help":
		return bot.Help(), true

	default:
		return bot.msgs.unknownCommand, true
	}
}

// Roll запоминает бросок для reroll и раскладывает игроков по командам.
func (bot *Bot) Roll(session teams.SessionKey, teamSize int, players []teams.PlayerID, mention teams.MentionFunc) string {
	if teamSize < 1 {
		return bot.msgs.invalidTeamSize
	}
	if len(players) == 0 {
		return bot.msgs.noPlayers
	}
	defer bot.locks.lock(session)()
	bot.history.Record(session, teamSize, players)
	return bot.roll(session, teamSize, players, mention)
}

// Reroll повторяет последний бросок сессии с новой случайностью.
func (bot *Bot) Reroll(session teams.SessionKey, mention teams.MentionFunc) string {
	defer bot.locks.lock(session)()
	last, err := bot.history.Last(session)
	if err != nil {
		return bot.userError(err)
	}
	return bot.roll(session, last.TeamSize, last.Players, mention)
}

// roll вызывается под замком сессии.
func (bot *Bot) roll(session teams.SessionKey, teamSize int, players []teams.PlayerID, mention teams.MentionFunc) string {
	assignment, err := teams.Partition(bot.rng, players, teamSize, bot.glue.Current(session))
	if err != nil {
		return bot.userError(err)
	}
	return bot.format.Teams(assignment, mention)
}

func (bot *Bot) GlueCommand(session teams.SessionKey, players []teams.PlayerID, mention teams.MentionFunc) string {
	defer bot.locks.lock(session)()
	state, err := bot.glue.Glue(session, players)
	if err != nil {
		return bot.userError(err)
	}
	return bot.format.Glue(state, mention)
}

func (bot *Bot) UnglueCommand(session teams.SessionKey) string {
	defer bot.locks.lock(session)()
	bot.glue.Unglue(session)
	return msgAllGlueRemoved
}

func (bot *Bot) WhosGlued(session teams.SessionKey, mention teams.MentionFunc) string {
	defer bot.locks.lock(session)()
	state := bot.glue.Current(session)
	if len(state) == 0 {
		return bot.msgs.nobodyGlued
	}
	return bot.format.Glue(state, mention)
}

func (bot *Bot) Help() string {
	return bot.msgs.help
}

// userError превращает ошибку ядра в текст для чата.
func (bot *Bot) userError(err error) string {
	switch {
	case errors.Is(err, teams.ErrInvalidTeamSize):
		return bot.msgs.invalidTeamSize
	case errors.Is(err, teams.ErrNoPlayers):
		return bot.msgs.noPlayers
	case errors.Is(err, teams.ErrInsufficientPlayers):
		return bot.msgs.glueNoPlayers
	case errors.Is(err, teams.ErrNoPriorRoll):
		return bot.msgs.noRecentRoll
	}
	bot.log.Error("unexpected error", zap.Error(err))
	return bot.msgs.internalError
}

func splitArgs(s string) []string {
	var out []string
	for _, m := range reArg.FindAllStringSubmatch(s, -1) {
		if m[1] != "" {
			out = append(out, m[1])
		} else {
			out = append(out, m[2])
		}
	}
	return out
}
