package solver

import (
	"github.com/wricardo/mcp-training/stromrallye/game/pathgraph"
)

type group struct {
	record  int
	members []int
}

// IsFeasible reports whether all charged batteries and the robot still form a
// single connected cluster.
//
// The robot seeds the first group with its charge as the group's record.
// Batteries are visited in the given order; empty ones are ignored. A battery
// joins a group when some member is reachable over an available path no
// longer than the battery's charge or the group's record. A battery joining
// several groups merges them into one new group. Charge can never cross
// between two clusters, so more than one remaining group means the state is
// lost.
func IsFeasible(g *pathgraph.Graph, batteries []int, st *State) bool {
	groups := []group{{record: st.RobotCharge, members: []int{st.RobotPos}}}

	for _, b := range batteries {
		charge := st.Charges[b]
		if charge == 0 {
			continue
		}

		var found []int
		for i, grp := range groups {
			for _, member := range grp.members {
				path := g.Path(b, member)
				if path == nil || !path.Available {
					continue
				}
				if path.Length <= charge || path.Length <= grp.record {
					found = append(found, i)
					break
				}
			}
		}

		switch len(found) {
		case 0:
			groups = append(groups, group{record: charge, members: []int{b}})
		case 1:
			grp := &groups[found[0]]
			grp.members = append(grp.members, b)
			grp.record = max(grp.record, charge)
		default:
			merged := group{record: charge}
			joined := make(map[int]bool, len(found))
			for _, i := range found {
				merged.members = append(merged.members, groups[i].members...)
				merged.record = max(merged.record, groups[i].record)
				joined[i] = true
			}
			merged.members = append(merged.members, b)

			kept := make([]group, 0, len(groups)-len(found)+1)
			for i, grp := range groups {
				if !joined[i] {
					kept = append(kept, grp)
				}
			}
			groups = append(kept, merged)
		}
	}

	return len(groups) == 1
}

// IsFeasible checks st against the solver's path graph.
func (s *Solver) IsFeasible(st *State) bool {
	return IsFeasible(s.graph, s.batteries, st)
}
