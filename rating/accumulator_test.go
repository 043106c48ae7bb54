package rating

import (
	"errors"
	"testing"
	"time"

	"github.com/hackteam-red/bbs-leaderboard/models"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func actor(login string) *models.Actor {
	return &models.Actor{Login: login}
}

func daysAgo(days int) time.Time {
	return testNow.AddDate(0, 0, -days)
}

func TestAccumulateSingleDiscussion(t *testing.T) {
	discussions := []models.Discussion{
		{
			ID:        "D1",
			Author:    actor("alice"),
			CreatedAt: daysAgo(30),
			Category:  "Tools",
			Reactions: 3,
		},
	}

	stats, err := Accumulate(discussions, testNow, DefaultPoints())
	if err != nil {
		t.Fatalf("Accumulate() error = %v", err)
	}

	alice, ok := stats["alice"]
	if !ok {
		t.Fatal("expected stats entry for alice")
	}

	// 10 for the discussion plus 1 per reaction
	if alice.Score != 13 {
		t.Errorf("alice.Score = %d; want 13", alice.Score)
	}
	if alice.Discussions != 1 {
		t.Errorf("alice.Discussions = %d; want 1", alice.Discussions)
	}
	if alice.ReactionsReceived != 3 {
		t.Errorf("alice.ReactionsReceived = %d; want 3", alice.ReactionsReceived)
	}
	if alice.Categories["Tools"] != 1 {
		t.Errorf("alice.Categories[Tools] = %d; want 1", alice.Categories["Tools"])
	}
	if alice.RecentActivity != 0 {
		t.Errorf("alice.RecentActivity = %d; want 0 for a 30-day-old discussion", alice.RecentActivity)
	}
}

func TestAccumulateAnswerAndHelpfulComment(t *testing.T) {
	discussions := []models.Discussion{
		{
			ID:        "D1",
			Author:    actor("alice"),
			CreatedAt: daysAgo(20),
			Answer:    &models.Answer{ID: "A1", Author: actor("bob")},
			Comments: []models.Comment{
				{ID: "C1", Author: actor("bob"), CreatedAt: daysAgo(19), Reactions: 2},
			},
		},
	}

	stats, err := Accumulate(discussions, testNow, DefaultPoints())
	if err != nil {
		t.Fatalf("Accumulate() error = %v", err)
	}

	if stats["alice"].Score != 10 {
		t.Errorf("alice.Score = %d; want 10", stats["alice"].Score)
	}

	bob := stats["bob"]
	// 15 for the accepted answer, 3 for the comment, 2x5 for comment reactions
	if bob.Score != 28 {
		t.Errorf("bob.Score = %d; want 28", bob.Score)
	}
	if bob.Answers != 1 {
		t.Errorf("bob.Answers = %d; want 1", bob.Answers)
	}
	if bob.Comments != 1 {
		t.Errorf("bob.Comments = %d; want 1", bob.Comments)
	}
	if bob.HelpfulComments != 1 {
		t.Errorf("bob.HelpfulComments = %d; want 1", bob.HelpfulComments)
	}
	if bob.ReactionsReceived != 2 {
		t.Errorf("bob.ReactionsReceived = %d; want 2", bob.ReactionsReceived)
	}
}

func TestAccumulateHelpfulCommentCountsOncePerComment(t *testing.T) {
	// one comment with many reactions scores per reaction but is a single
	// helpful comment
	discussions := []models.Discussion{
		{
			ID:        "D1",
			Author:    actor("alice"),
			CreatedAt: daysAgo(10),
			Comments: []models.Comment{
				{ID: "C1", Author: actor("bob"), CreatedAt: daysAgo(10), Reactions: 4},
				{ID: "C2", Author: actor("bob"), CreatedAt: daysAgo(9), Reactions: 0},
			},
		},
	}

	stats, err := Accumulate(discussions, testNow, DefaultPoints())
	if err != nil {
		t.Fatalf("Accumulate() error = %v", err)
	}

	bob := stats["bob"]
	if bob.HelpfulComments != 1 {
		t.Errorf("bob.HelpfulComments = %d; want 1", bob.HelpfulComments)
	}
	// 2 comments x3 + 4 reactions x5
	if bob.Score != 26 {
		t.Errorf("bob.Score = %d; want 26", bob.Score)
	}
}

func TestAccumulateSelfAnsweredDiscussion(t *testing.T) {
	// answer points apply even when the answer author is the discussion author
	discussions := []models.Discussion{
		{
			ID:        "D1",
			Author:    actor("alice"),
			CreatedAt: daysAgo(10),
			Answer:    &models.Answer{ID: "A1", Author: actor("alice")},
		},
	}

	stats, err := Accumulate(discussions, testNow, DefaultPoints())
	if err != nil {
		t.Fatalf("Accumulate() error = %v", err)
	}

	if stats["alice"].Score != 25 {
		t.Errorf("alice.Score = %d; want 25", stats["alice"].Score)
	}
	if stats["alice"].Answers != 1 {
		t.Errorf("alice.Answers = %d; want 1", stats["alice"].Answers)
	}
}

func TestAccumulateMissingAuthors(t *testing.T) {
	discussions := []models.Discussion{
		{
			ID:        "D1",
			Author:    nil, // deleted account
			CreatedAt: daysAgo(5),
			Reactions: 7, // lost, not attributed to anyone
			Comments: []models.Comment{
				{ID: "C1", Author: nil, CreatedAt: daysAgo(4), Reactions: 3},
				{ID: "C2", Author: actor("carol"), CreatedAt: daysAgo(4)},
			},
		},
	}

	stats, err := Accumulate(discussions, testNow, DefaultPoints())
	if err != nil {
		t.Fatalf("Accumulate() error = %v", err)
	}

	if len(stats) != 1 {
		t.Fatalf("len(stats) = %d; want 1 (only carol)", len(stats))
	}
	if stats["carol"].Score != 3 {
		t.Errorf("carol.Score = %d; want 3", stats["carol"].Score)
	}
}

func TestAccumulateRecencyWindow(t *testing.T) {
	discussions := []models.Discussion{
		{ID: "D1", Author: actor("dave"), CreatedAt: daysAgo(6)},
		{ID: "D2", Author: actor("dave"), CreatedAt: daysAgo(8)},
		{
			ID:        "D3",
			Author:    actor("erin"),
			CreatedAt: daysAgo(30),
			Comments: []models.Comment{
				{ID: "C1", Author: actor("dave"), CreatedAt: daysAgo(1)},
			},
		},
	}

	stats, err := Accumulate(discussions, testNow, DefaultPoints())
	if err != nil {
		t.Fatalf("Accumulate() error = %v", err)
	}

	// the 6-day-old discussion and the 1-day-old comment fall inside the
	// 7-day window, the 8-day-old discussion does not
	if stats["dave"].RecentActivity != 2 {
		t.Errorf("dave.RecentActivity = %d; want 2", stats["dave"].RecentActivity)
	}
	if stats["erin"].RecentActivity != 0 {
		t.Errorf("erin.RecentActivity = %d; want 0", stats["erin"].RecentActivity)
	}
}

func TestAccumulateFirstLastSeen(t *testing.T) {
	discussions := []models.Discussion{
		{
			ID:        "D1",
			Author:    actor("frank"),
			CreatedAt: daysAgo(10),
			Comments: []models.Comment{
				{ID: "C1", Author: actor("frank"), CreatedAt: daysAgo(2)},
			},
		},
		{ID: "D2", Author: actor("frank"), CreatedAt: daysAgo(40)},
		// grace only appears as an answer author, which must not set her
		// first/last seen
		{
			ID:        "D3",
			Author:    actor("frank"),
			CreatedAt: daysAgo(20),
			Answer:    &models.Answer{ID: "A1", Author: actor("grace")},
		},
	}

	stats, err := Accumulate(discussions, testNow, DefaultPoints())
	if err != nil {
		t.Fatalf("Accumulate() error = %v", err)
	}

	frank := stats["frank"]
	if frank.FirstSeen == nil || !frank.FirstSeen.Equal(daysAgo(40)) {
		t.Errorf("frank.FirstSeen = %v; want %v", frank.FirstSeen, daysAgo(40))
	}
	if frank.LastSeen == nil || !frank.LastSeen.Equal(daysAgo(2)) {
		t.Errorf("frank.LastSeen = %v; want %v", frank.LastSeen, daysAgo(2))
	}

	grace := stats["grace"]
	if grace.FirstSeen != nil || grace.LastSeen != nil {
		t.Errorf("grace first/last seen = %v/%v; want nil/nil for answer-only activity", grace.FirstSeen, grace.LastSeen)
	}
}

func TestAccumulateCategoryTracking(t *testing.T) {
	discussions := []models.Discussion{
		{ID: "D1", Author: actor("hank"), CreatedAt: daysAgo(3), Category: "Jobs"},
		{ID: "D2", Author: actor("hank"), CreatedAt: daysAgo(2), Category: ""},
		{
			ID:        "D3",
			Author:    actor("hank"),
			CreatedAt: daysAgo(1),
			Category:  "Jobs",
			Comments: []models.Comment{
				// comments never touch the category histogram
				{ID: "C1", Author: actor("hank"), CreatedAt: daysAgo(1)},
			},
		},
	}

	stats, err := Accumulate(discussions, testNow, DefaultPoints())
	if err != nil {
		t.Fatalf("Accumulate() error = %v", err)
	}

	categories := stats["hank"].Categories
	if categories["Jobs"] != 2 {
		t.Errorf("Categories[Jobs] = %d; want 2", categories["Jobs"])
	}
	if categories["General"] != 1 {
		t.Errorf("Categories[General] = %d; want 1", categories["General"])
	}
	if len(categories) != 2 {
		t.Errorf("len(Categories) = %d; want 2", len(categories))
	}
}

func TestAccumulateMalformedTimestamps(t *testing.T) {
	tests := []struct {
		name        string
		discussions []models.Discussion
	}{
		{
			name: "discussion without creation timestamp",
			discussions: []models.Discussion{
				{ID: "D1", Author: actor("alice")},
			},
		},
		{
			name: "comment without creation timestamp",
			discussions: []models.Discussion{
				{
					ID:        "D1",
					Author:    actor("alice"),
					CreatedAt: daysAgo(1),
					Comments:  []models.Comment{{ID: "C1", Author: actor("bob")}},
				},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Accumulate(tc.discussions, testNow, DefaultPoints())
			if !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("Accumulate() error = %v; want ErrMalformedRecord", err)
			}
		})
	}
}

func TestAccumulateDiscussionCountMatchesAuthoredRecords(t *testing.T) {
	discussions := []models.Discussion{
		{ID: "D1", Author: actor("alice"), CreatedAt: daysAgo(1)},
		{ID: "D2", Author: actor("bob"), CreatedAt: daysAgo(2)},
		{ID: "D3", Author: nil, CreatedAt: daysAgo(3)},
		{ID: "D4", Author: actor("alice"), CreatedAt: daysAgo(4)},
	}

	stats, err := Accumulate(discussions, testNow, DefaultPoints())
	if err != nil {
		t.Fatalf("Accumulate() error = %v", err)
	}

	total := 0
	for _, user := range stats {
		total += user.Discussions
	}

	// three of four records have an author
	if total != 3 {
		t.Errorf("sum of per-user discussion counts = %d; want 3", total)
	}
}

func TestAccumulateCustomPoints(t *testing.T) {
	points := models.PointsConfig{
		DiscussionCreated:  2,
		CommentPosted:      1,
		DiscussionAnswered: 4,
		HelpfulComment:     3,
		DiscussionUpvoted:  2,
	}

	discussions := []models.Discussion{
		{
			ID:        "D1",
			Author:    actor("alice"),
			CreatedAt: daysAgo(1),
			Reactions: 5,
		},
	}

	stats, err := Accumulate(discussions, testNow, points)
	if err != nil {
		t.Fatalf("Accumulate() error = %v", err)
	}

	// 2 for creating plus 5x2 for reactions
	if stats["alice"].Score != 12 {
		t.Errorf("alice.Score = %d; want 12", stats["alice"].Score)
	}
}
