package rating

import (
	"errors"
	"fmt"
	"time"

	"github.com/hackteam-red/bbs-leaderboard/models"
)

// ErrMalformedRecord is returned when a discussion or comment is missing a
// structurally required field, such as its creation timestamp. A record with
// a missing author is NOT malformed; it simply contributes nothing.
var ErrMalformedRecord = errors.New("malformed record")

// recencyWindow is the trailing interval used for the recent-activity counter.
const recencyWindow = 7 * 24 * time.Hour

// Accumulate folds a complete discussion collection into per-user statistics.
//
// It is a single deterministic pass: the same input always produces the same
// mapping. The reference time now is injected by the caller so the 7-day
// recency window is reproducible in tests. Records or comments without an
// author are skipped entirely; their reactions are not attributed to anyone.
func Accumulate(discussions []models.Discussion, now time.Time, points models.PointsConfig) (map[string]*models.UserStats, error) {
	stats := make(map[string]*models.UserStats)
	weekAgo := now.Add(-recencyWindow)

	for _, disc := range discussions {
		if disc.CreatedAt.IsZero() {
			return nil, fmt.Errorf("%w: discussion %s has no creation timestamp", ErrMalformedRecord, disc.ID)
		}

		if disc.Author != nil && disc.Author.Login != "" {
			user := getOrCreate(stats, disc.Author.Login)

			user.Score += points.DiscussionCreated
			user.Discussions++

			category := disc.Category
			if category == "" {
				category = "General"
			}
			user.Categories[category]++

			user.ReactionsReceived += disc.Reactions
			user.Score += disc.Reactions * points.DiscussionUpvoted

			observe(user, disc.CreatedAt)
			if disc.CreatedAt.After(weekAgo) {
				user.RecentActivity++
			}
		}

		// Accepted answers score for their author even when that author is
		// also the discussion author.
		if disc.Answer != nil && disc.Answer.Author != nil && disc.Answer.Author.Login != "" {
			user := getOrCreate(stats, disc.Answer.Author.Login)
			user.Score += points.DiscussionAnswered
			user.Answers++
		}

		for _, comment := range disc.Comments {
			if comment.Author == nil || comment.Author.Login == "" {
				continue
			}
			if comment.CreatedAt.IsZero() {
				return nil, fmt.Errorf("%w: comment %s has no creation timestamp", ErrMalformedRecord, comment.ID)
			}

			user := getOrCreate(stats, comment.Author.Login)
			user.Score += points.CommentPosted
			user.Comments++

			// A comment with any reactions scores per reaction, but counts
			// as exactly one helpful comment regardless of how many.
			if comment.Reactions > 0 {
				user.ReactionsReceived += comment.Reactions
				user.Score += comment.Reactions * points.HelpfulComment
				user.HelpfulComments++
			}

			observe(user, comment.CreatedAt)
			if comment.CreatedAt.After(weekAgo) {
				user.RecentActivity++
			}
		}
	}

	return stats, nil
}

// getOrCreate returns the stats record for login, initializing a zeroed one
// on first encounter.
func getOrCreate(stats map[string]*models.UserStats, login string) *models.UserStats {
	if user, ok := stats[login]; ok {
		return user
	}
	user := &models.UserStats{
		Categories: make(map[string]int),
	}
	stats[login] = user
	return user
}

// observe widens the user's first/last-seen range to include ts. Only
// authored events (discussions, comments) reach here; answers and reactions
// do not move the range on their own.
func observe(user *models.UserStats, ts time.Time) {
	if user.FirstSeen == nil || ts.Before(*user.FirstSeen) {
		t := ts
		user.FirstSeen = &t
	}
	if user.LastSeen == nil || ts.After(*user.LastSeen) {
		t := ts
		user.LastSeen = &t
	}
}
