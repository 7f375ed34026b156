package teams

// GlueRegistry хранит склеенные группы по сессиям.
type GlueRegistry struct {
	sessions sessionMap[GlueState]
}

func NewGlueRegistry() *GlueRegistry {
	return &GlueRegistry{}
}

// Glue склеивает игроков в новую группу и возвращает состояние сессии
// целиком. Каждый игрок сначала удаляется из прежней группы; группа, где
// осталось меньше двух игроков, исчезает — одного игрока клеить не с кем.
func (r *GlueRegistry) Glue(key SessionKey, players []PlayerID) (GlueState, error) {
	group := GlueGroup(dedupe(players))
	if len(group) < 2 {
		return nil, ErrInsufficientPlayers
	}

	var out GlueState
	r.sessions.update(key, func(state *GlueState) {
		next := make(GlueState, 0, len(*state)+1)
		for _, g := range *state {
			kept := make(GlueGroup, 0, len(g))
			for _, id := range g {
				if !group.contains(id) {
					kept = append(kept, id)
				}
			}
			if len(kept) >= 2 {
				next = append(next, kept)
			}
		}
		*state = append(next, group)
		out = state.clone()
	})
	return out, nil
}

// Unglue снимает весь клей в сессии.
func (r *GlueRegistry) Unglue(key SessionKey) {
	r.sessions.update(key, func(state *GlueState) {
		*state = nil
	})
}

// Current — копия текущего клея; пустая, если сессии нет.
func (r *GlueRegistry) Current(key SessionKey) GlueState {
	out := GlueState{}
	r.sessions.view(key, func(state GlueState) {
		out = state.clone()
	})
	return out
}
