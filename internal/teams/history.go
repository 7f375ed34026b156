package teams

// RollHistory помнит последний бросок каждой сессии.
type RollHistory struct {
	sessions sessionMap[*Roll]
}

func NewRollHistory() *RollHistory {
	return &RollHistory{}
}

// Record перезаписывает последний бросок сессии.
func (h *RollHistory) Record(key SessionKey, teamSize int, players []PlayerID) {
	roll := &Roll{TeamSize: teamSize, Players: append([]PlayerID(nil), players...)}
	h.sessions.update(key, func(last **Roll) {
		*last = roll
	})
}

// Last возвращает копию последнего броска или ErrNoPriorRoll.
func (h *RollHistory) Last(key SessionKey) (Roll, error) {
	var (
		out   Roll
		found bool
	)
	h.sessions.view(key, func(last *Roll) {
		if last == nil {
			return
		}
		out = Roll{TeamSize: last.TeamSize, Players: append([]PlayerID(nil), last.Players...)}
		found = true
	})
	if !found {
		return Roll{}, ErrNoPriorRoll
	}
	return out, nil
}
