package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontier_Order(t *testing.T) {
	f := &frontier{}
	f.push(&worker{score: 5, moves: []Move{{Target: 1}}})
	f.push(&worker{score: 9, moves: []Move{{Target: 2}}})
	f.push(&worker{score: 5, moves: []Move{{Target: 3}}})
	f.push(&worker{score: -2, moves: []Move{{Target: 4}}})
	f.push(&worker{score: 9, moves: []Move{{Target: 5}}})

	var got []int
	for f.len() > 0 {
		got = append(got, f.pop().moves[0].Target)
	}
	assert.Equal(t, []int{2, 5, 1, 3, 4}, got, "highest score first, ties in insertion order")
}

func TestWorker_ExtendDoesNotAlias(t *testing.T) {
	parent := &worker{moves: []Move{{Target: 1, Distance: 1}}, prevDirection: -1}

	a := parent.extend(Move{Target: 2, Distance: 2})
	b := parent.extend(Move{Target: 3, Distance: 3})

	require.Len(t, parent.moves, 1)
	assert.Equal(t, []Move{{1, 1}, {2, 2}}, a.moves)
	assert.Equal(t, []Move{{1, 1}, {3, 3}}, b.moves)
	assert.Equal(t, -1, a.prevDirection)
}

func TestScore_PenalizesDirectionChange(t *testing.T) {
	s, err := New(puzzle(4, pt(1, 1), 6, battery(2, 1, 1), battery(1, 2, 1)), Options{})
	require.NoError(t, err)

	root := s.Initial()
	cursor := s.Cycle().Cursor()
	order := s.Cycle().Order()
	require.Equal(t, 0, order[0])

	// The tour leaves the anchor towards one neighbor and returns from the
	// other: one is a step forward, the other a step back.
	forward, backward := order[1], order[len(order)-1]

	fw := (&worker{}).extend(Move{Target: forward, Distance: 1})
	s.score(fw, root, Move{Target: forward, Distance: 1}, cursor)
	bw := (&worker{}).extend(Move{Target: backward, Distance: 1})
	s.score(bw, root, Move{Target: backward, Distance: 1}, cursor)

	base := 1 * s.scale
	assert.Equal(t, base-2, fw.score, "first move sets the direction")
	assert.Equal(t, 1, fw.prevDirection)
	assert.Equal(t, base-2, bw.score)
	assert.Equal(t, -1, bw.prevDirection)

	again := fw.extend(Move{Target: forward, Distance: 1})
	s.score(again, root, Move{Target: forward, Distance: 1}, cursor)
	assert.Equal(t, base-1, again.score, "keeping the direction is not doubled")
}
