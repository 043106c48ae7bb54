package rating

import (
	"github.com/hackteam-red/bbs-leaderboard/models"
)

// DefaultPoints returns the standard scoring table:
// 10 for creating a discussion, 3 per comment, 15 for an accepted answer,
// 5 per reaction on a comment, 1 per reaction on a discussion.
func DefaultPoints() models.PointsConfig {
	return models.PointsConfig{
		DiscussionCreated:  10,
		CommentPosted:      3,
		DiscussionAnswered: 15,
		HelpfulComment:     5,
		DiscussionUpvoted:  1,
	}
}
