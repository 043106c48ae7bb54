package rating

import (
	"sort"

	"github.com/hackteam-red/bbs-leaderboard/models"
)

// Tier thresholds, highest first. Bounds are inclusive: a score of exactly
// 1000 is Legend, 999 is Diamond.
var tiers = []struct {
	MinScore int
	Name     string
	Level    int
}{
	{1000, "Legend", 6},
	{500, "Diamond", 5},
	{250, "Gold", 4},
	{100, "Silver", 3},
	{50, "Bronze", 2},
	{0, "Newcomer", 1},
}

// Badge thresholds. Badges are independent of each other and of rank; any
// subset may apply to a user.
const (
	BadgeProblemSolver     = "Problem Solver"    // 10+ accepted answers
	BadgeHelpful           = "Helpful"           // 20+ helpful comments
	BadgeActivePoster      = "Active Poster"     // 50+ discussions
	BadgeConversationalist = "Conversationalist" // 100+ comments
	BadgeHotStreak         = "Hot Streak"        // 5+ activities this week
)

// Rank converts accumulated user statistics into an ordered leaderboard
// sequence. Users are sorted by score descending, then discussion count,
// then comment count. Users equal on all three keys keep a stable relative
// order (ascending username, since map iteration order would otherwise be
// random); no further tie-breaking is defined. Ranks are dense and unique:
// equal scores do not share a rank number.
func Rank(stats map[string]*models.UserStats) []models.RankedEntry {
	usernames := make([]string, 0, len(stats))
	for username := range stats {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	sort.SliceStable(usernames, func(i, j int) bool {
		a, b := stats[usernames[i]], stats[usernames[j]]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Discussions != b.Discussions {
			return a.Discussions > b.Discussions
		}
		return a.Comments > b.Comments
	})

	rankings := make([]models.RankedEntry, 0, len(usernames))
	for i, username := range usernames {
		user := stats[username]
		tier, level := classifyTier(user.Score)

		rankings = append(rankings, models.RankedEntry{
			Rank:      i + 1,
			Username:  username,
			Score:     user.Score,
			Tier:      tier,
			TierLevel: level,
			Badges:    classifyBadges(user),
			Stats:     snapshot(user),
		})
	}

	return rankings
}

// classifyTier returns the highest tier whose threshold the score meets.
func classifyTier(score int) (string, int) {
	for _, t := range tiers {
		if score >= t.MinScore {
			return t.Name, t.Level
		}
	}
	// scores are never negative, but fall through to the floor tier anyway
	return "Newcomer", 1
}

func classifyBadges(user *models.UserStats) []string {
	badges := make([]string, 0, 5)
	if user.Answers >= 10 {
		badges = append(badges, BadgeProblemSolver)
	}
	if user.HelpfulComments >= 20 {
		badges = append(badges, BadgeHelpful)
	}
	if user.Discussions >= 50 {
		badges = append(badges, BadgeActivePoster)
	}
	if user.Comments >= 100 {
		badges = append(badges, BadgeConversationalist)
	}
	if user.RecentActivity >= 5 {
		badges = append(badges, BadgeHotStreak)
	}
	return badges
}

// snapshot deep-copies the stats so a RankedEntry stays immutable even if
// the accumulator map is reused.
func snapshot(user *models.UserStats) models.UserStats {
	copied := *user
	copied.Categories = make(map[string]int, len(user.Categories))
	for category, count := range user.Categories {
		copied.Categories[category] = count
	}
	if user.FirstSeen != nil {
		t := *user.FirstSeen
		copied.FirstSeen = &t
	}
	if user.LastSeen != nil {
		t := *user.LastSeen
		copied.LastSeen = &t
	}
	return copied
}
