package solver

// Move is one charge transfer: the robot walks Distance steps and ends on Target.
// Trailing moves of a solution may target a free cell to burn leftover charge.
type Move struct {
	Target   int `json:"target"`
	Distance int `json:"distance"`
}

// State is the board after replaying a move list from the initial puzzle.
type State struct {
	// Charges holds the stored charge per node id. Non-battery cells stay 0.
	Charges     []int `json:"-"`
	RobotPos    int   `json:"robot_pos"`
	RobotCharge int   `json:"robot_charge"`
	// ChargeSum includes the robot's own charge.
	ChargeSum int `json:"charge_sum"`
}

// Remaining is the charge still stored in batteries.
func (s *State) Remaining() int {
	return s.ChargeSum - s.RobotCharge
}

// Reconstruct replays moves against the initial configuration. Each move
// spends Distance units, then the robot and the target swap charges.
func (s *Solver) Reconstruct(moves []Move) *State {
	st := &State{
		Charges:     append([]int(nil), s.initial.Charges...),
		RobotPos:    s.initial.RobotPos,
		RobotCharge: s.initial.RobotCharge,
		ChargeSum:   s.initial.ChargeSum,
	}

	for _, m := range moves {
		old := st.RobotCharge - m.Distance
		st.RobotCharge = st.Charges[m.Target]
		st.Charges[m.Target] = old
		st.ChargeSum -= m.Distance
		st.RobotPos = m.Target
	}

	return st
}
