package discord

import "regexp"

var reMention = regexp.MustCompile(`<@!?(\d+)>`)

// MentionedUserIDs возвращает id упомянутых в сообщении пользователей в
// порядке появления в тексте, без повторов. Учитываются только те, кого
// Discord сам положил в Message.Mentions; упомянутые, но не найденные в
// тексте (например, в ответе на сообщение), добавляются в конец.
func MentionedUserIDs(m *Message) []string {
	known := make(map[string]bool, len(m.Mentions))
	for _, u := range m.Mentions {
		known[u.ID] = true
	}

	seen := make(map[string]bool, len(m.Mentions))
	var out []string
	for _, sub := range reMention.FindAllStringSubmatch(m.Content, -1) {
		id := sub[1]
		if known[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, u := range m.Mentions {
		if !seen[u.ID] {
			seen[u.ID] = true
			out = append(out, u.ID)
		}
	}
	return out
}
