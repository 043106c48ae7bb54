package rating

import (
	"testing"
	"time"

	"github.com/hackteam-red/bbs-leaderboard/models"
)

func rankedFixture(count int) []models.RankedEntry {
	rankings := make([]models.RankedEntry, count)
	for i := range rankings {
		score := (count - i) * 20
		tier, level := classifyTier(score)
		rankings[i] = models.RankedEntry{
			Rank:      i + 1,
			Username:  string(rune('a' + i%26)),
			Score:     score,
			Tier:      tier,
			TierLevel: level,
		}
	}
	return rankings
}

func TestBuildLeaderboardTruncation(t *testing.T) {
	generatedAt := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	rankings := rankedFixture(60)

	board := BuildLeaderboard(rankings, 10, generatedAt, DefaultPoints())

	if len(board.TopUsers) != 10 {
		t.Errorf("len(TopUsers) = %d; want 10", len(board.TopUsers))
	}
	if board.TotalUsers != 60 {
		t.Errorf("TotalUsers = %d; want 60", board.TotalUsers)
	}
	if !board.GeneratedAt.Equal(generatedAt) {
		t.Errorf("GeneratedAt = %v; want %v", board.GeneratedAt, generatedAt)
	}

	// the tier histogram covers everyone, not just the visible top slice
	sum := 0
	for _, count := range board.TierDistribution {
		sum += count
	}
	if sum != 60 {
		t.Errorf("tier distribution sums to %d; want 60", sum)
	}
}

func TestBuildLeaderboardSmallerThanLimit(t *testing.T) {
	rankings := rankedFixture(3)

	board := BuildLeaderboard(rankings, 10, time.Now(), DefaultPoints())

	if len(board.TopUsers) != 3 {
		t.Errorf("len(TopUsers) = %d; want 3", len(board.TopUsers))
	}
	if board.TotalUsers != 3 {
		t.Errorf("TotalUsers = %d; want 3", board.TotalUsers)
	}
}

func TestBuildLeaderboardDefaultLimit(t *testing.T) {
	rankings := rankedFixture(80)

	board := BuildLeaderboard(rankings, 0, time.Now(), DefaultPoints())

	if len(board.TopUsers) != DefaultTopUsersLimit {
		t.Errorf("len(TopUsers) = %d; want %d", len(board.TopUsers), DefaultTopUsersLimit)
	}
}

func TestBuildLeaderboardEmpty(t *testing.T) {
	board := BuildLeaderboard(nil, 50, time.Now(), DefaultPoints())

	if board.TotalUsers != 0 {
		t.Errorf("TotalUsers = %d; want 0", board.TotalUsers)
	}
	if len(board.TopUsers) != 0 {
		t.Errorf("len(TopUsers) = %d; want 0", len(board.TopUsers))
	}
	if len(board.TierDistribution) != 0 {
		t.Errorf("TierDistribution = %v; want empty", board.TierDistribution)
	}
}

func TestBuildLeaderboardEmbedsPointsConfig(t *testing.T) {
	points := models.PointsConfig{
		DiscussionCreated:  7,
		CommentPosted:      2,
		DiscussionAnswered: 11,
		HelpfulComment:     4,
		DiscussionUpvoted:  1,
	}

	board := BuildLeaderboard(rankedFixture(5), 50, time.Now(), points)

	if board.PointsConfig != points {
		t.Errorf("PointsConfig = %+v; want %+v", board.PointsConfig, points)
	}
}
