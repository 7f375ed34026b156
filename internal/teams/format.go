package teams

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// DefaultTeamNames — имена команд по кругу.
var DefaultTeamNames = []string{
	"Dudes",
	"Buds",
	"Pals",
	"Super Friend Squad",
	"The Boys",
}

// MentionFunc превращает id игрока в упоминание для конкретной платформы.
type MentionFunc func(PlayerID) string

// DiscordMention — упоминание в формате Discord: <@id>.
func DiscordMention(id PlayerID) string {
	return "<@" + string(id) + ">"
}

// PlainMention выводит id как есть.
func PlainMention(id PlayerID) string {
	return string(id)
}

// Formatter собирает текст ответов. Счётчик имён общий для всех сессий
// процесса: каждый выведенный список команд продолжает с того имени, на
// котором остановился предыдущий.
type Formatter struct {
	names []string
	next  atomic.Uint64
}

// NewFormatter создаёт форматтер; пустой names — DefaultTeamNames.
func NewFormatter(names []string) *Formatter {
	if len(names) == 0 {
		names = DefaultTeamNames
	}
	return &Formatter{names: append([]string(nil), names...)}
}

// Name выдаёт очередное имя команды и сдвигает счётчик.
func (f *Formatter) Name() string {
	n := f.next.Add(1) - 1
	return f.names[n%uint64(len(f.names))]
}

// Teams именует команды assignment по порядку и возвращает список:
//
//	Teams:
//	Dudes: <@1>, <@2>
func (f *Formatter) Teams(assignment []Team, mention MentionFunc) string {
	var sb strings.Builder
	sb.WriteString("Teams:\n")
	for i := range assignment {
		assignment[i].Name = f.Name()
		fmt.Fprintf(&sb, "%s: %s\n", assignment[i].Name, Mentions(assignment[i].Members, mention))
	}
	return sb.String()
}

// Glue возвращает список склеенных групп.
func (f *Formatter) Glue(state GlueState, mention MentionFunc) string {
	var sb strings.Builder
	sb.WriteString("Current glue:\n")
	for _, g := range state {
		fmt.Fprintf(&sb, "%s will always team up.\n", Mentions(g, mention))
	}
	return sb.String()
}

// Mentions соединяет упоминания через запятую.
func Mentions(ids []PlayerID, mention MentionFunc) string {
	if mention == nil {
		mention = PlainMention
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = mention(id)
	}
	return strings.Join(parts, ", ")
}
