package progression

import (
	"math"

	"github.com/KirkDiggler/guild-progression/internal/errors"
)

const (
	// MaxLevel is the last level the experience curve defines
	MaxLevel int32 = 100

	// LevelCap is the highest level a player can reach. Experience beyond
	// Cumulative(MaxLevel) keeps accruing inside the cap level.
	LevelCap = MaxLevel + 1

	baseLevelCost  int64 = 10
	levelCostGrowth      = 1.3
)

// curveTable holds per-level cost and cumulative threshold; index 0 is unused
type curveTable struct {
	cost       [MaxLevel + 1]int64
	cumulative [MaxLevel + 1]int64
}

var curve = buildCurve()

func buildCurve() *curveTable {
	t := &curveTable{}
	t.cost[1] = baseLevelCost
	t.cumulative[1] = baseLevelCost

	growth := levelCostGrowth
	for i := int32(2); i <= MaxLevel; i++ {
		t.cost[i] = int64(math.Ceil(float64(t.cost[i-1]) * growth))
		t.cumulative[i] = t.cumulative[i-1] + t.cost[i]
	}
	return t
}

func checkLevel(level int32) error {
	if level < 1 || level > MaxLevel {
		return errors.OutOfRangef("level %d is outside the experience curve (1..%d)", level, MaxLevel)
	}
	return nil
}

// Cost returns the experience needed to complete the given level.
// Returns errors.OutOfRange for levels outside 1..MaxLevel.
func Cost(level int32) (int64, error) {
	if err := checkLevel(level); err != nil {
		return 0, err
	}
	return curve.cost[level], nil
}

// Cumulative returns the total experience needed to have completed the given level.
// Returns errors.OutOfRange for levels outside 1..MaxLevel.
func Cumulative(level int32) (int64, error) {
	if err := checkLevel(level); err != nil {
		return 0, err
	}
	return curve.cumulative[level], nil
}

// LevelForExperience derives the level and the experience accrued inside it.
// The level is one above the highest completed level; thresholds increase
// monotonically so the scan stops at the first one exp does not reach.
func LevelForExperience(exp int64) (level int32, expCurrentLevel int64) {
	level = 1
	expCurrentLevel = exp
	for i := int32(1); i <= MaxLevel; i++ {
		if exp < curve.cumulative[i] {
			break
		}
		level = i + 1
		expCurrentLevel = exp - curve.cumulative[i]
	}
	return level, expCurrentLevel
}

// ExperienceToNextLevel returns how much experience the given level takes to
// complete, or 0 at the level cap.
func ExperienceToNextLevel(level int32) int64 {
	cost, err := Cost(level)
	if err != nil {
		return 0
	}
	return cost
}
