package teams

import "errors"

var (
	ErrInvalidTeamSize     = errors.New("team size must be at least 1")
	ErrNoPlayers           = errors.New("no players to place")
	ErrInsufficientPlayers = errors.New("glue needs two or more players")
	ErrNoPriorRoll         = errors.New("no prior roll in this session")
)
