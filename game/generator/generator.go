// Package generator builds solvable puzzles by playing the game backwards.
//
// The robot starts on a random goal cell with no charge. Every backwards hop
// to a battery hands the robot the battery's stored charge and leaves the
// battery holding the robot's old charge plus the hop distance. Once enough
// hops were made the robot walks back to a random free start cell, and the
// charge it carries there becomes the puzzle's starting charge. Replaying the
// hops forwards drains every battery, so the result is solvable by
// construction; the forward replay is returned as a witness.
package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wricardo/mcp-training/stromrallye/game/engine"
	"github.com/wricardo/mcp-training/stromrallye/game/grid"
	"github.com/wricardo/mcp-training/stromrallye/game/pathgraph"
)

// ErrGenerationFailed is returned when reverse play gets stuck or the result
// does not form a valid puzzle.
var ErrGenerationFailed = errors.New("puzzle generation failed")

var generatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "stromrallye_generator_puzzles_total",
	Help: "Generated puzzles by outcome",
}, []string{"outcome"})

// Result is a generated puzzle and one forward path that solves it.
type Result struct {
	Puzzle     *engine.Puzzle `json:"puzzle"`
	Difficulty Difficulty     `json:"difficulty"`
	Goal       grid.Point     `json:"goal"`
	Witness    []grid.Point   `json:"witness"`
	Hops       int            `json:"hops"`
}

type hop struct {
	from, to, distance int
}

// Generate places batteries for d and plays backwards from a random goal.
func Generate(d Difficulty, rng *rand.Rand, opts Options) (*Result, error) {
	res, err := generate(d, rng, opts.withDefaults())
	if err != nil {
		generatedTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	generatedTotal.WithLabelValues("generated").Inc()
	return res, nil
}

// MaxAttempts is how often GenerateWithin retries a failed reverse play.
const MaxAttempts = 10

// GenerateWithin calibrates a difficulty inside c and generates a puzzle for
// it, retrying failed placements up to MaxAttempts times.
func GenerateWithin(c Constraints, rng *rand.Rand, opts Options) (*Result, error) {
	d, err := Calibrate(c, rng, opts)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		res, err := Generate(d, rng, opts)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if opts.Debug && opts.Logger != nil {
			opts.Logger.Printf("attempt %d failed: %v", attempt, err)
		}
	}
	return nil, lastErr
}

func generate(d Difficulty, rng *rand.Rand, opts Options) (*Result, error) {
	n := d.Size
	if n < 2 || n > engine.MaxGridSize {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidConstraints, n)
	}
	area := n * n

	count := int(math.Round(float64(area) * d.Density))
	count = min(max(count, 1), area-1)
	pathLength := int(math.Round(float64(count) * d.Length))

	free := make([]bool, area)
	for i := range free {
		free[i] = true
	}
	pick := func() int {
		for {
			id := rng.IntN(area)
			if free[id] {
				free[id] = false
				return id
			}
		}
	}

	// The goal may share a cell with the start or a battery.
	goal := rng.IntN(area)
	start := pick()

	// Pick order doubles as the tie-break order for the least visited battery.
	batteries := make([]int, count)
	isBattery := make([]bool, area)
	for i := range batteries {
		batteries[i] = pick()
		isBattery[batteries[i]] = true
	}
	sorted := slices.Clone(batteries)
	slices.Sort(sorted)

	g := pathgraph.Build(pathgraph.NewBoard(n, sorted), append([]int{start}, sorted...))
	g.AddPoint(goal)
	hopGraph := availableHops(g)

	stored := make([]int, area)
	visits := make(map[int]int, count)
	leastVisited := func() int {
		best := batteries[0]
		for _, b := range batteries {
			if visits[b] < visits[best] {
				best = b
			}
		}
		return best
	}

	pos, charge := goal, 0
	var hops []hop
	maxRounds := pathLength + 4*area

	for round := 0; pos != start || charge == 0; round++ {
		if round >= maxRounds {
			return nil, fmt.Errorf("%w: no way back to the start after %d rounds", ErrGenerationFailed, round)
		}

		route := batteryRoute(g, hopGraph, isBattery, pos, start)
		if len(route) == 0 || len(route) < pathLength {
			route = batteryRoute(g, hopGraph, isBattery, pos, leastVisited())
		}
		if len(route) == 0 {
			for _, i := range rng.Perm(count) {
				if route = batteryRoute(g, hopGraph, isBattery, pos, batteries[i]); len(route) > 0 {
					break
				}
			}
		}
		if len(route) == 0 {
			return nil, fmt.Errorf("%w: robot stuck at %v", ErrGenerationFailed, grid.Decode(pos, n))
		}

		for _, next := range route {
			path := g.Path(pos, next)
			if !path.Available {
				break
			}

			distance := path.Length
			if path.Extendable && rng.IntN(10) > 7 {
				distance = path.ExtendedLength + rng.IntN(6)*2
			}

			if next == start {
				charge += distance
			} else {
				charge, stored[next] = stored[next], charge+distance
				visits[next]++
			}
			hops = append(hops, hop{from: pos, to: next, distance: distance})
			pos = next

			if pathLength > 0 {
				pathLength--
			}
		}

		if opts.Debug {
			opts.Logger.Printf("round %d: robot at %v holds %d, %d hops", round+1, grid.Decode(pos, n), charge, len(hops))
		}
	}

	p := &engine.Puzzle{
		Name:        "generated",
		Description: fmt.Sprintf("size %d, density %.2f, length %.2f, DI %.1f", n, d.Density, d.Length, d.DI),
		Size:        n,
		Robot:       engine.RobotSpec{Position: grid.Decode(start, n), Charge: charge},
	}
	for _, b := range sorted {
		p.Batteries = append(p.Batteries, engine.BatterySpec{Position: grid.Decode(b, n), Charge: stored[b]})
	}
	if err := engine.ValidatePuzzle(p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	witness, err := replay(g, n, hops)
	if err != nil {
		return nil, err
	}

	return &Result{
		Puzzle:     p,
		Difficulty: d,
		Goal:       grid.Decode(goal, n),
		Witness:    witness,
		Hops:       len(hops),
	}, nil
}

// replay turns the backwards hops into the forward cell sequence.
func replay(g *pathgraph.Graph, n int, hops []hop) ([]grid.Point, error) {
	var cells []grid.Point
	for i := len(hops) - 1; i >= 0; i-- {
		h := hops[i]
		steps, err := g.Path(h.from, h.to).Walk(grid.Decode(h.to, n), h.distance)
		if err != nil {
			return nil, fmt.Errorf("%w: hop %d: %w", ErrGenerationFailed, i+1, err)
		}
		cells = append(cells, steps...)
	}
	return cells, nil
}

// availableHops links every two distinct points of interest with an available path.
func availableHops(g *pathgraph.Graph) *core.Graph {
	hops := core.NewGraph()
	points := g.Points()
	for _, a := range points {
		_ = hops.AddVertex(pathgraph.VertexID(a))
	}
	for i, a := range points {
		for _, b := range points[i+1:] {
			if g.Path(a, b).Available {
				_, _ = hops.AddEdge(pathgraph.VertexID(a), pathgraph.VertexID(b), 0)
			}
		}
	}
	return hops
}

var errArrived = errors.New("arrived")

// batteryRoute finds the fewest-hop route from one point of interest to
// another over available paths, stopping only on batteries in between. The
// result excludes from. A route from a point to itself is its loop, when
// there is one.
func batteryRoute(g *pathgraph.Graph, hops *core.Graph, isBattery []bool, from, to int) []int {
	if from == to {
		if g.Path(from, to).Available {
			return []int{to}
		}
		return nil
	}

	target := pathgraph.VertexID(to)
	res, err := bfs.BFS(hops, pathgraph.VertexID(from),
		bfs.WithFilterNeighbor(func(_, next string) bool {
			return next == target || isBattery[pathgraph.NodeID(next)]
		}),
		bfs.WithOnVisit(func(id string, _ int) error {
			if id == target {
				return errArrived
			}
			return nil
		}),
	)
	if err != nil && !errors.Is(err, errArrived) {
		return nil
	}

	ids, err := res.PathTo(target)
	if err != nil {
		return nil
	}
	route := make([]int, 0, len(ids)-1)
	for _, id := range ids[1:] {
		route = append(route, pathgraph.NodeID(id))
	}
	return route
}
