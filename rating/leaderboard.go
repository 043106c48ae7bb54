package rating

import (
	"time"

	"github.com/hackteam-red/bbs-leaderboard/models"
)

// DefaultTopUsersLimit is how many entries BuildLeaderboard exposes when the
// caller passes a non-positive limit.
const DefaultTopUsersLimit = 50

// BuildLeaderboard packages a full ranking into the exported leaderboard.
// TopUsers is truncated to topN, but the tier distribution and total user
// count always cover the entire ranking, not just the visible slice.
func BuildLeaderboard(rankings []models.RankedEntry, topN int, generatedAt time.Time, points models.PointsConfig) models.Leaderboard {
	if topN <= 0 {
		topN = DefaultTopUsersLimit
	}

	distribution := make(map[string]int)
	for _, entry := range rankings {
		distribution[entry.Tier]++
	}

	top := rankings
	if len(top) > topN {
		top = top[:topN]
	}
	topUsers := make([]models.RankedEntry, len(top))
	copy(topUsers, top)

	return models.Leaderboard{
		GeneratedAt:      generatedAt,
		TotalUsers:       len(rankings),
		TopUsers:         topUsers,
		TierDistribution: distribution,
		PointsConfig:     points,
	}
}
