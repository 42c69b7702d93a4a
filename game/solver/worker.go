package solver

import (
	"container/heap"

	"github.com/wricardo/mcp-training/stromrallye/game/grid"
	"github.com/wricardo/mcp-training/stromrallye/game/hamilton"
)

// worker is a candidate move sequence waiting in the search queue.
type worker struct {
	moves         []Move
	score         int
	prevDirection int
	seq           uint64
}

// extend returns a child worker with m appended. The parent is not modified.
func (w *worker) extend(m Move) *worker {
	moves := make([]Move, len(w.moves), len(w.moves)+1)
	copy(moves, w.moves)
	return &worker{
		moves:         append(moves, m),
		prevDirection: w.prevDirection,
	}
}

// workerQueue is a max-heap on score. Equal scores pop in insertion order.
type workerQueue []*worker

func (q workerQueue) Len() int { return len(q) }

func (q workerQueue) Less(i, j int) bool {
	if q[i].score != q[j].score {
		return q[i].score > q[j].score
	}
	return q[i].seq < q[j].seq
}

func (q workerQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *workerQueue) Push(x any) {
	*q = append(*q, x.(*worker))
}

func (q *workerQueue) Pop() any {
	old := *q
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return w
}

// frontier wraps the heap and stamps insertion order.
type frontier struct {
	queue workerQueue
	next  uint64
}

func (f *frontier) push(w *worker) {
	w.seq = f.next
	f.next++
	heap.Push(&f.queue, w)
}

func (f *frontier) pop() *worker {
	return heap.Pop(&f.queue).(*worker)
}

func (f *frontier) len() int {
	return f.queue.Len()
}

// score rates a child that appends m to a worker whose replayed state is
// parent. The drained charge is scaled by area/batteries; the deviation from
// the tour, seen from the parent's robot cell, is subtracted and doubled when
// the direction of travel flips.
func (s *Solver) score(child *worker, parent *State, m Move, cursor *hamilton.Cursor) {
	drained := s.initial.ChargeSum - (parent.ChargeSum - m.Distance)
	score := drained * s.scale

	cursor.RotateTo(parent.RobotPos)
	deviation := cursor.Distance(m.Target)
	sign := grid.Sign(deviation)
	if sign != child.prevDirection {
		deviation *= 2
		child.prevDirection = sign
	}

	if deviation < 0 {
		deviation = -deviation
	}
	child.score = score - deviation
}
