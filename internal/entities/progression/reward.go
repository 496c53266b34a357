package progression

import (
	"math"

	"github.com/KirkDiggler/guild-progression/internal/errors"
)

// RewardTier scales task rewards
type RewardTier string

// Reward tiers
const (
	RewardIntro     RewardTier = "REWARD_INTRO"
	RewardNormal    RewardTier = "REWARD_NORMAL"
	RewardHigh      RewardTier = "REWARD_HIGH"
	RewardVeryHigh  RewardTier = "REWARD_VERY_HIGH"
	RewardExtreme   RewardTier = "REWARD_EXTREME"
	RewardLegendary RewardTier = "REWARD_LEGENDARY"
)

var rewardCoefficients = map[RewardTier]float64{
	RewardIntro:     0.5,
	RewardNormal:    1,
	RewardHigh:      1.5,
	RewardVeryHigh:  2,
	RewardExtreme:   2.5,
	RewardLegendary: 3,
}

// Coefficient returns the multiplier for the tier.
// Returns errors.InvalidArgument for unknown tiers.
func (t RewardTier) Coefficient() (float64, error) {
	c, ok := rewardCoefficients[t]
	if !ok {
		return 0, errors.InvalidArgumentf("unknown reward tier %q", string(t))
	}
	return c, nil
}

// Scale applies the tier coefficient to base, rounding up
func (t RewardTier) Scale(base int64) (int64, error) {
	c, err := t.Coefficient()
	if err != nil {
		return 0, err
	}
	return int64(math.Ceil(float64(base) * c)), nil
}
