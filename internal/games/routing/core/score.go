package core

// Score is the final breakdown of an episode. Lower totals are better.
type Score struct {
	DrainSteps int `json:"drain_steps"`
	Eaten      int `json:"eaten"`
	Leftover   int `json:"leftover"`
	Total      int `json:"total"`
}

// ComputeScore returns drainSteps + w.Collision*eaten + w.Leftover*leftover.
func ComputeScore(w Weights, drainSteps, eaten, leftover int) Score {
	return Score{
		DrainSteps: drainSteps,
		Eaten:      eaten,
		Leftover:   leftover,
		Total:      drainSteps + w.Collision*eaten + w.Leftover*leftover,
	}
}

// Reward converts the score to the learning signal.
func (s Score) Reward() float64 {
	return -float64(s.Total)
}
