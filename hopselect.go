package hop

// HopKind labels the resolution of a hop attempt.
type HopKind int

const (
	//Accepted means the destination was reached and the momenta were rescaled.
	Accepted HopKind = iota
	//Frustrated means the kinetic energy along the rescaling direction could not
	//cover the gap; the trajectory stays on its surface.
	Frustrated
	//Rejected means the random draw kept the trajectory on its surface, so no
	//rescaling was ever attempted.
	Rejected
)

func (k HopKind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case Frustrated:
		return "frustrated"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Outcome is the resolution of one surface-hopping decision.
type Outcome struct {
	Kind     HopKind
	From     int  //surface occupied when the decision started
	To       int  //proposed destination; equal to From on a Rejected outcome
	Final    int  //surface occupied after the decision
	Reversed bool //a frustrated hop flipped the momentum along the rescaling direction
}

// Rejection returns the Outcome of a draw that proposed no hop from the
// surface given.
func Rejection(current int) Outcome {
	return Outcome{Kind: Rejected, From: current, To: current, Final: current}
}

// SelectHop picks the destination surface by cumulative sampling: it walks the
// probability row in increasing index order and returns the first index at which
// the cumulative probability exceeds the draw. If the draw is never exceeded
// (the cumulative sum of a floored row can fall slightly short of 1) the
// trajectory stays on the current surface. SelectHop is pure: same row and
// draw, same answer.
func SelectHop(current int, row []float64, draw float64) int {
	acc := 0.0
	for j, p := range row {
		acc += p
		if draw < acc {
			return j
		}
	}
	return current
}
