// Package scoring converts question values into awarded points.
package scoring

import "math"

// MaxTimeBonus is the cap on the speed bonus fraction.
const MaxTimeBonus = 0.5

// TimeBonus returns the speed bonus fraction for a correct answer: half of
// the unused share of the time limit, clamped to [0, MaxTimeBonus].
func TimeBonus(timeLimitSeconds, timeSpentSeconds int) float64 {
	if timeLimitSeconds <= 0 {
		return 0
	}
	bonus := float64(timeLimitSeconds-timeSpentSeconds) / float64(timeLimitSeconds) * MaxTimeBonus
	if bonus < 0 {
		return 0
	}
	if bonus > MaxTimeBonus {
		return MaxTimeBonus
	}
	return bonus
}

// Points computes the total points for one answer. Wrong answers earn
// nothing; correct answers earn the base value scaled by the time bonus.
func Points(basePoints, timeLimitSeconds, timeSpentSeconds int, correct bool) (int, float64) {
	if !correct {
		return 0, 0
	}
	bonus := TimeBonus(timeLimitSeconds, timeSpentSeconds)
	return int(math.Round(float64(basePoints) * (1 + bonus))), bonus
}
