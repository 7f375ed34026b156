package teams

// PlayerID — идентификатор игрока на платформе (snowflake Discord, SteamID).
type PlayerID string

// SessionKey — ключ изолированного состояния (гильдия, канал, сервер).
type SessionKey string

// GlueGroup — игроки, которые всегда попадают в одну команду.
type GlueGroup []PlayerID

// GlueState — все группы клея одной сессии в порядке добавления.
type GlueState []GlueGroup

// Team — одна команда результата. Name заполняет Formatter.
type Team struct {
	Name    string
	Members []PlayerID
}

// Roll — параметры броска, которые запоминаются для reroll.
type Roll struct {
	TeamSize int
	Players  []PlayerID
}

func (g GlueGroup) contains(id PlayerID) bool {
	for _, m := range g {
		if m == id {
			return true
		}
	}
	return false
}

func (s GlueState) clone() GlueState {
	if len(s) == 0 {
		return GlueState{}
	}
	out := make(GlueState, len(s))
	for i, g := range s {
		out[i] = append(GlueGroup(nil), g...)
	}
	return out
}

// dedupe убирает повторы, сохраняя порядок первого появления.
func dedupe(ids []PlayerID) []PlayerID {
	seen := make(map[PlayerID]struct{}, len(ids))
	out := make([]PlayerID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
