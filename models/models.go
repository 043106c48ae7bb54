package models

import (
	"time"
)

// Actor identifies a discussion participant. Records carry a *Actor because
// the upstream API returns null authors for deleted or anonymous accounts.
type Actor struct {
	Login string `json:"login"`
}

// Answer is the accepted answer of a discussion, when one has been marked.
type Answer struct {
	ID     string `json:"id"`
	Author *Actor `json:"author"`
}

// Discussion represents one discussion thread with its nested comments
type Discussion struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    *Actor    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Category  string    `json:"category"`
	Reactions int       `json:"reactions"`
	Answer    *Answer   `json:"answer,omitempty"`
	Comments  []Comment `json:"comments"`
}

// Comment represents one comment on a discussion
type Comment struct {
	ID        string    `json:"id"`
	Author    *Actor    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Reactions int       `json:"reactions"`
}

// UserStats holds the accumulated activity of a single user
type UserStats struct {
	Score             int            `json:"score"`
	Discussions       int            `json:"discussions"`
	Comments          int            `json:"comments"`
	Answers           int            `json:"answers"`
	HelpfulComments   int            `json:"helpful_comments"`
	RecentActivity    int            `json:"recent_activity"`
	ReactionsReceived int            `json:"reactions_received"`
	Categories        map[string]int `json:"categories"`
	FirstSeen         *time.Time     `json:"first_seen"`
	LastSeen          *time.Time     `json:"last_seen"`
}

// RankedEntry is one user's position on the leaderboard
type RankedEntry struct {
	Rank      int       `json:"rank"`
	Username  string    `json:"username"`
	Score     int       `json:"score"`
	Tier      string    `json:"tier"`
	TierLevel int       `json:"tier_level"`
	Badges    []string  `json:"badges"`
	Stats     UserStats `json:"stats"`
}

// PointsConfig is the scoring table used to accumulate user scores. It is
// embedded in every Leaderboard so a published board records how it was
// computed.
type PointsConfig struct {
	DiscussionCreated  int `json:"discussion_created"`
	CommentPosted      int `json:"comment_posted"`
	DiscussionAnswered int `json:"discussion_answered"`
	HelpfulComment     int `json:"helpful_comment"`
	DiscussionUpvoted  int `json:"discussion_upvoted"`
}

// Leaderboard is the assembled ranking result
type Leaderboard struct {
	GeneratedAt      time.Time      `json:"generated_at"`
	TotalUsers       int            `json:"total_users"`
	TopUsers         []RankedEntry  `json:"top_users"`
	TierDistribution map[string]int `json:"tier_distribution"`
	PointsConfig     PointsConfig   `json:"points_config"`
}

// CategoryStats holds per-category counts for the bulletin board view
type CategoryStats struct {
	Category        string `json:"category"`
	DiscussionCount int    `json:"discussion_count"`
	CommentCount    int    `json:"comment_count"`
}

// BoardStats summarizes the cached discussion set
type BoardStats struct {
	TotalDiscussions int             `json:"total_discussions"`
	TotalComments    int             `json:"total_comments"`
	Categories       []CategoryStats `json:"categories"`
	LastRefreshed    time.Time       `json:"last_refreshed"`
}
