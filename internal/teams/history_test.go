package teams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollHistoryAbsent(t *testing.T) {
	h := NewRollHistory()
	_, err := h.Last("g")
	require.ErrorIs(t, err, ErrNoPriorRoll)
}

func TestRollHistoryOverwrites(t *testing.T) {
	h := NewRollHistory()

	h.Record("g", 2, ids("a", "b"))
	players := ids("c", "d", "e")
	h.Record("g", 3, players)
	players[0] = "mutated"

	last, err := h.Last("g")
	require.NoError(t, err)
	assert.Equal(t, Roll{TeamSize: 3, Players: ids("c", "d", "e")}, last)

	_, err = h.Last("other")
	require.ErrorIs(t, err, ErrNoPriorRoll)
}
