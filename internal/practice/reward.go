package practice

const (
	xpPerPoint    = 5
	coinsPerPoint = 10

	// MaxScore bounds any model-reported score so reward arithmetic cannot
	// overflow.
	MaxScore = 1_000_000
)

// Rewards converts an evaluation score into XP and coin deltas.
// Negative scores earn nothing; scores above MaxScore earn as much as MaxScore.
func Rewards(score int) (xp, coins int) {
	s := clampScore(max(0, score))
	return s * xpPerPoint, s * coinsPerPoint
}

func clampScore(score int) int {
	return min(max(score, -MaxScore), MaxScore)
}
