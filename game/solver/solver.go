// Package solver finds a move sequence that drains every unit of charge of a
// Stromrallye puzzle.
//
// The search is best-first over charge-transfer moves. Every queued worker is
// only a move list; its board state is recomputed from the puzzle whenever it
// is popped, and states whose batteries have split into unreachable clusters
// are discarded. The path graph and the board tour are built once in New and
// are read-only afterwards.
package solver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/mcp-training/stromrallye/game/engine"
	"github.com/wricardo/mcp-training/stromrallye/game/grid"
	"github.com/wricardo/mcp-training/stromrallye/game/hamilton"
	"github.com/wricardo/mcp-training/stromrallye/game/pathgraph"
)

var (
	// ErrUnsolvable is returned when the search queue runs empty.
	ErrUnsolvable = errors.New("puzzle is unsolvable")
	// ErrBudgetExhausted is returned when Options.MaxNodes workers were
	// expanded without finding a solution. The puzzle may still be solvable.
	ErrBudgetExhausted = errors.New("search budget exhausted")
)

// Options tune a solver run.
type Options struct {
	// MaxNodes caps the number of popped workers. Zero means unlimited.
	MaxNodes int
	// Debug logs every accepted worker's score and remaining charge.
	Debug bool
	// Logger receives debug output. Defaults to log.Default().
	Logger *log.Logger
}

// Solution is an accepted move sequence and the steps it expands to.
type Solution struct {
	Moves []Move `json:"moves"`
	// Leftover is the robot's charge once every battery is empty. The
	// trailing moves that burn it do not transfer charge.
	Leftover int          `json:"leftover"`
	Path     []grid.Point `json:"path"`
	Expanded int          `json:"expanded"`
	Final    *State       `json:"-"`
}

// Solver holds the per-puzzle search context.
type Solver struct {
	puzzle    *engine.Puzzle
	graph     *pathgraph.Graph
	cycle     *hamilton.Cycle
	batteries []int
	start     int
	initial   State
	scale     int
	opts      Options
}

// New validates the puzzle and builds its path graph and tour.
func New(p *engine.Puzzle, opts Options) (*Solver, error) {
	if err := engine.ValidatePuzzle(p); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	began := time.Now()
	n := p.Size
	s := &Solver{
		puzzle: p.Clone(),
		start:  grid.Encode(p.Robot.Position, n),
		opts:   opts,
	}

	s.initial = State{
		Charges:     make([]int, n*n),
		RobotPos:    s.start,
		RobotCharge: p.Robot.Charge,
		ChargeSum:   p.TotalCharge(),
	}
	for _, b := range p.Batteries {
		id := grid.Encode(b.Position, n)
		s.batteries = append(s.batteries, id)
		s.initial.Charges[id] = b.Charge
	}
	sort.Ints(s.batteries)

	board := pathgraph.NewBoard(n, s.batteries)
	s.graph = pathgraph.Build(board, append([]int{s.start}, s.batteries...))

	cycle, err := hamilton.Build(n, p.Robot.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to build tour: %w", err)
	}
	s.cycle = cycle

	s.scale = n * n
	if len(s.batteries) > 0 {
		s.scale = n * n / len(s.batteries)
	}

	graphBuildDuration.Observe(time.Since(began).Seconds())
	return s, nil
}

// Solve is a convenience wrapper around New and Solver.Solve.
func Solve(ctx context.Context, p *engine.Puzzle, opts Options) (*Solution, error) {
	s, err := New(p, opts)
	if err != nil {
		return nil, err
	}
	return s.Solve(ctx)
}

// Graph returns the path graph of the puzzle.
func (s *Solver) Graph() *pathgraph.Graph {
	return s.graph
}

// Cycle returns the board tour used for scoring.
func (s *Solver) Cycle() *hamilton.Cycle {
	return s.cycle
}

// Batteries returns the battery node ids in ascending order.
func (s *Solver) Batteries() []int {
	return s.batteries
}

// Initial returns the state before any move.
func (s *Solver) Initial() *State {
	return s.Reconstruct(nil)
}

// Solve runs the best-first search until a solution is found, the queue runs
// empty (ErrUnsolvable), the node budget is spent (ErrBudgetExhausted) or ctx
// is done.
func (s *Solver) Solve(ctx context.Context) (*Solution, error) {
	began := time.Now()
	ctx, span := getTracer().Start(ctx, "solver.Solve",
		trace.WithAttributes(
			attribute.Int("size", s.puzzle.Size),
			attribute.Int("batteries", len(s.batteries)),
			attribute.Int("total_charge", s.initial.ChargeSum),
			attribute.Int("max_nodes", s.opts.MaxNodes),
		),
	)
	defer span.End()

	sol, expanded, err := s.search(ctx)

	outcome := "solved"
	switch {
	case errors.Is(err, ErrUnsolvable):
		outcome = "unsolvable"
	case errors.Is(err, ErrBudgetExhausted):
		outcome = "budget_exhausted"
	case err != nil:
		outcome = "canceled"
	}
	solveTotal.WithLabelValues(outcome).Inc()
	solveDuration.Observe(time.Since(began).Seconds())
	nodesExpanded.Observe(float64(expanded))
	span.SetAttributes(
		attribute.Int("expanded", expanded),
		attribute.String("outcome", outcome),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}

	path, err := s.BuildPath(sol)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "path reconstruction failed")
		return nil, err
	}
	sol.Path = path

	span.SetAttributes(attribute.Int("steps", len(path)))
	span.SetStatus(codes.Ok, "solved")
	return sol, nil
}

func (s *Solver) search(ctx context.Context) (*Solution, int, error) {
	cursor := s.cycle.Cursor()
	queue := &frontier{}
	queue.push(&worker{})

	expanded := 0
	for queue.len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, expanded, err
		}
		if s.opts.MaxNodes > 0 && expanded >= s.opts.MaxNodes {
			return nil, expanded, fmt.Errorf("%w after %d nodes", ErrBudgetExhausted, expanded)
		}

		w := queue.pop()
		expanded++

		st := s.Reconstruct(w.moves)
		if !s.IsFeasible(st) {
			continue
		}

		if s.opts.Debug {
			s.opts.Logger.Printf("score: %-5d rem. charge: %-5d queue: %d", w.score, st.ChargeSum, queue.len())
		}

		if st.Remaining() == 0 {
			moves, ok := s.burn(w.moves, st)
			if !ok {
				continue
			}
			return &Solution{
				Moves:    moves,
				Leftover: st.RobotCharge,
				Expanded: expanded,
				Final:    st,
			}, expanded, nil
		}

		for _, target := range s.graph.Points() {
			path := s.graph.Path(st.RobotPos, target)
			if !path.Available {
				continue
			}
			if target == s.start {
				continue
			}
			if st.Charges[target] == 0 {
				continue
			}
			if st.RobotCharge < path.Length {
				continue
			}

			s.push(queue, w, st, Move{Target: target, Distance: path.Length}, cursor)

			if path.Extendable {
				// Every extended route can grow by walking back and forth once more.
				shortest := path.ExtendedLength
				if shortest == path.Length {
					shortest += 2
				}
				for d := shortest; d <= st.RobotCharge; d += 2 {
					s.push(queue, w, st, Move{Target: target, Distance: d}, cursor)
				}
			}
		}
	}

	return nil, expanded, ErrUnsolvable
}

func (s *Solver) push(queue *frontier, parent *worker, st *State, m Move, cursor *hamilton.Cursor) {
	child := parent.extend(m)
	s.score(child, st, m, cursor)
	queue.push(child)
}

// burn appends the moves that spend the robot's leftover charge once every
// battery is empty:
//
//	0    nothing to do
//	1    one step onto the first neighbor on the board
//	2    onto the loop neighbor and back, needs an available self loop
//	>2   loop neighbor and back repeatedly, needs an extendable self loop
func (s *Solver) burn(moves []Move, st *State) ([]Move, bool) {
	out := make([]Move, len(moves), len(moves)+2)
	copy(out, moves)

	if st.RobotCharge == 0 {
		return out, true
	}

	n := s.puzzle.Size
	robot := grid.Decode(st.RobotPos, n)
	loop := s.graph.Path(st.RobotPos, st.RobotPos)

	switch {
	case st.RobotCharge == 2:
		if loop.Available {
			return append(out, Move{Target: grid.Encode(loop.Shortest[1], n), Distance: 1}), true
		}
	case st.RobotCharge > 2:
		if loop.Extendable {
			return append(out,
				Move{Target: grid.Encode(loop.Shortest[1], n), Distance: 1},
				Move{Target: grid.Encode(loop.Shortest[2], n), Distance: 1},
			), true
		}
	default:
		for _, dir := range pathgraph.LoopDirections() {
			middle := robot.Add(dir)
			if middle.In(n) {
				return append(out, Move{Target: grid.Encode(middle, n), Distance: 1}), true
			}
		}
	}

	return nil, false
}
