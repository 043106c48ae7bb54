// Package report renders an assembled leaderboard and the cached discussion
// set into human-readable artifacts. It only formats data that has already
// been computed; nothing here feeds back into scoring.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hackteam-red/bbs-leaderboard/models"
	"github.com/hackteam-red/bbs-leaderboard/rating"
)

// Emoji decoration for tiers and badges lives here so the core labels stay
// plain strings.
var tierEmoji = map[string]string{
	"Legend":   "🏆",
	"Diamond":  "💎",
	"Gold":     "🥇",
	"Silver":   "🥈",
	"Bronze":   "🥉",
	"Newcomer": "🌱",
}

var badgeEmoji = map[string]string{
	rating.BadgeProblemSolver:     "🎯",
	rating.BadgeHelpful:           "⭐",
	rating.BadgeActivePoster:      "📢",
	rating.BadgeConversationalist: "💬",
	rating.BadgeHotStreak:         "🔥",
}

// tierOrder lists tiers from highest to lowest for the distribution section
var tierOrder = []string{"Legend", "Diamond", "Gold", "Silver", "Bronze", "Newcomer"}

func decorateTier(tier string) string {
	if emoji, ok := tierEmoji[tier]; ok {
		return emoji + " " + tier
	}
	return tier
}

func decorateBadge(badge string) string {
	if emoji, ok := badgeEmoji[badge]; ok {
		return emoji + " " + badge
	}
	return badge
}

// MarkdownLeaderboard renders the leaderboard as a markdown document with
// the top-users table, tier distribution, badge legend and points table.
func MarkdownLeaderboard(board models.Leaderboard) string {
	var md strings.Builder

	md.WriteString("# 🏆 BBS Leaderboard\n\n")
	fmt.Fprintf(&md, "*Last updated: %s*\n\n", board.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&md, "**Total Contributors:** %d\n\n", board.TotalUsers)
	md.WriteString("---\n\n")

	md.WriteString("## 🥇 Top Contributors\n\n")
	md.WriteString("| Rank | User | Tier | Score | Discussions | Comments | Answers | Badges |\n")
	md.WriteString("|------|------|------|-------|-------------|----------|---------|--------|\n")

	for _, user := range board.TopUsers {
		badges := "-"
		if len(user.Badges) > 0 {
			shown := user.Badges
			if len(shown) > 3 {
				shown = shown[:3]
			}
			decorated := make([]string, len(shown))
			for i, badge := range shown {
				decorated[i] = decorateBadge(badge)
			}
			badges = strings.Join(decorated, " ")
		}

		fmt.Fprintf(&md, "| %d | **@%s** | %s | %d | %d | %d | %d | %s |\n",
			user.Rank, user.Username, decorateTier(user.Tier), user.Score,
			user.Stats.Discussions, user.Stats.Comments, user.Stats.Answers, badges)
	}

	md.WriteString("\n---\n\n")

	md.WriteString("## 📊 Tier Distribution\n\n")
	for _, tier := range tierOrder {
		fmt.Fprintf(&md, "- **%s**: %d users\n", decorateTier(tier), board.TierDistribution[tier])
	}

	md.WriteString("\n---\n\n")

	md.WriteString("## 🎖️ Badge System\n\n")
	md.WriteString("- 🎯 **Problem Solver**: Provided 10+ accepted answers\n")
	md.WriteString("- ⭐ **Helpful**: Received reactions on 20+ comments\n")
	md.WriteString("- 📢 **Active Poster**: Created 50+ discussions\n")
	md.WriteString("- 💬 **Conversationalist**: Posted 100+ comments\n")
	md.WriteString("- 🔥 **Hot Streak**: 5+ activities this week\n")

	md.WriteString("\n---\n\n")

	points := board.PointsConfig
	md.WriteString("## 📈 Points System\n\n")
	fmt.Fprintf(&md, "- Create discussion: **%d points**\n", points.DiscussionCreated)
	fmt.Fprintf(&md, "- Post comment: **%d points**\n", points.CommentPosted)
	fmt.Fprintf(&md, "- Answer accepted: **%d points**\n", points.DiscussionAnswered)
	fmt.Fprintf(&md, "- Helpful comment (per reaction): **%d points**\n", points.HelpfulComment)
	fmt.Fprintf(&md, "- Discussion upvoted (per reaction): **%d point**\n", points.DiscussionUpvoted)

	return md.String()
}

// maxBoardItemsPerCategory caps how many discussions each category section
// shows on the bulletin board.
const maxBoardItemsPerCategory = 10

// MarkdownBoard renders the cached discussion set as a bulletin board view
// grouped by category.
func MarkdownBoard(discussions []models.Discussion, generatedAt time.Time) string {
	var md strings.Builder

	md.WriteString("# 📋 BBS Bulletin Board\n\n")
	fmt.Fprintf(&md, "*Last updated: %s*\n\n", generatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	md.WriteString("---\n\n")

	byCategory := make(map[string][]models.Discussion)
	for _, disc := range discussions {
		category := disc.Category
		if category == "" {
			category = "General"
		}
		byCategory[category] = append(byCategory[category], disc)
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		fmt.Fprintf(&md, "## 🔖 %s\n\n", category)

		items := byCategory[category]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
		if len(items) > maxBoardItemsPerCategory {
			items = items[:maxBoardItemsPerCategory]
		}

		for _, disc := range items {
			author := "Unknown"
			if disc.Author != nil {
				author = disc.Author.Login
			}
			fmt.Fprintf(&md, "- **[%s]** by @%s • %s • 💬 %d\n",
				disc.Title, author, disc.CreatedAt.UTC().Format("2006-01-02"), len(disc.Comments))
		}

		md.WriteString("\n")
	}

	return md.String()
}
