package pathgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

func TestWalk(t *testing.T) {
	board := boardWith(3, pt(2, 1))
	path := FindPath(pt(1, 1), pt(2, 1), board)
	require.Equal(t, []grid.Point{pt(1, 1), pt(1, 2), pt(2, 2), pt(2, 1)}, path.Extended)

	tests := []struct {
		name     string
		from     grid.Point
		distance int
		want     []grid.Point
	}{
		{"shortest forward", pt(1, 1), 1, []grid.Point{pt(2, 1)}},
		{"shortest backward", pt(2, 1), 1, []grid.Point{pt(1, 1)}},
		{"extended forward", pt(1, 1), 3, []grid.Point{pt(1, 2), pt(2, 2), pt(2, 1)}},
		{"extended backward", pt(2, 1), 3, []grid.Point{pt(2, 2), pt(1, 2), pt(1, 1)}},
		{"detour forward", pt(1, 1), 5, []grid.Point{pt(1, 2), pt(2, 2), pt(1, 2), pt(2, 2), pt(2, 1)}},
		{"detour backward", pt(2, 1), 5, []grid.Point{pt(2, 2), pt(1, 2), pt(2, 2), pt(1, 2), pt(1, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := path.Walk(tt.from, tt.distance)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, tt.distance)
		})
	}
}

func TestWalk_Loop(t *testing.T) {
	path := FindPath(pt(2, 2), pt(2, 2), boardWith(3))

	got, err := path.Walk(pt(2, 2), 2)
	require.NoError(t, err)
	assert.Equal(t, []grid.Point{pt(2, 3), pt(2, 2)}, got)

	got, err = path.Walk(pt(2, 2), 6)
	require.NoError(t, err)
	assert.Equal(t, []grid.Point{pt(2, 3), pt(1, 3), pt(2, 3), pt(1, 3), pt(2, 3), pt(2, 2)}, got)
}

func TestWalk_Errors(t *testing.T) {
	path := FindPath(pt(1, 1), pt(2, 1), boardWith(3, pt(2, 1)))

	_, err := path.Walk(pt(3, 3), 1)
	assert.ErrorIs(t, err, ErrNoRoute, "not an endpoint")

	_, err = path.Walk(pt(1, 1), 2)
	assert.ErrorIs(t, err, ErrNoRoute, "shorter than the extended route")

	_, err = path.Walk(pt(1, 1), 4)
	assert.ErrorIs(t, err, ErrNoRoute, "odd surplus")

	blocked := FindPath(pt(1, 1), pt(1, 1), boardWith(2, pt(2, 1), pt(1, 2)))
	_, err = blocked.Walk(pt(1, 1), 2)
	assert.ErrorIs(t, err, ErrNoRoute, "unavailable")
}
