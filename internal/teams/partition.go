package teams

import "fmt"

// Rand — источник случайности для выбора команды. *rand.Rand из
// math/rand/v2 подходит как есть.
type Rand interface {
	// IntN возвращает число из [0, n).
	IntN(n int) int
}

// Partition раскладывает игроков по ceil(len(players)/teamSize) командам.
//
// Сначала размещаются склеенные группы (в порядке хранения): группа целиком
// уходит в случайную команду, где свободных мест строго больше, чем
// активных участников группы. Если такой нет — в команду с наибольшим
// остатком мест, даже если она переполнится. Участники группы, которых нет
// в броске, игнорируются.
//
// Остальные игроки по одному уходят в случайную команду со свободным местом,
// а если мест нет — в последнюю команду. Повторы в players схлопываются.
// Команд в результате всегда ceil(n/teamSize): если переполненная группа
// забрала чужие места, часть команд остаётся пустой.
func Partition(rng Rand, players []PlayerID, teamSize int, glue []GlueGroup) ([]Team, error) {
	if teamSize < 1 {
		return nil, ErrInvalidTeamSize
	}
	players = dedupe(players)
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}

	numTeams := (len(players) + teamSize - 1) / teamSize
	teams := make([][]PlayerID, numTeams)

	unplaced := make(map[PlayerID]bool, len(players))
	for _, p := range players {
		unplaced[p] = true
	}

	// сначала склеенные группы
	for _, group := range glue {
		var active []PlayerID
		for _, id := range dedupe(group) {
			if unplaced[id] {
				active = append(active, id)
			}
		}
		if len(active) == 0 {
			continue
		}

		eligible := teamsWhere(teams, func(size int) bool {
			return teamSize-size > len(active)
		})
		if len(eligible) == 0 {
			eligible = roomiest(teams)
		}
		idx := eligible[rng.IntN(len(eligible))]
		teams[idx] = append(teams[idx], active...)
		for _, id := range active {
			delete(unplaced, id)
		}
	}

	// затем все остальные
	for _, p := range players {
		if !unplaced[p] {
			continue
		}
		eligible := teamsWhere(teams, func(size int) bool {
			return teamSize-size > 0
		})
		idx := numTeams - 1
		if len(eligible) > 0 {
			idx = eligible[rng.IntN(len(eligible))]
		}
		teams[idx] = append(teams[idx], p)
		delete(unplaced, p)
	}

	out := make([]Team, numTeams)
	placed := 0
	for i, members := range teams {
		placed += len(members)
		out[i] = Team{Members: members}
	}
	if placed != len(players) {
		panic(fmt.Sprintf("teams: placed %d of %d players", placed, len(players)))
	}
	return out, nil
}

// teamsWhere возвращает индексы команд, размер которых удовлетворяет ok.
func teamsWhere(teams [][]PlayerID, ok func(size int) bool) []int {
	var idx []int
	for i, t := range teams {
		if ok(len(t)) {
			idx = append(idx, i)
		}
	}
	return idx
}

// roomiest — индексы команд с наименьшим числом игроков.
func roomiest(teams [][]PlayerID) []int {
	least := -1
	var idx []int
	for i, t := range teams {
		switch {
		case least == -1 || len(t) < least:
			least = len(t)
			idx = []int{i}
		case len(t) == least:
			idx = append(idx, i)
		}
	}
	return idx
}
