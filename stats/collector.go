package stats

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hackteam-red/bbs-leaderboard/db"
	"github.com/hackteam-red/bbs-leaderboard/models"
	"github.com/hackteam-red/bbs-leaderboard/rating"
	"github.com/hackteam-red/bbs-leaderboard/report"
)

// DiscussionSource delivers the complete discussion collection or fails.
// The collector never receives a partial dataset.
type DiscussionSource interface {
	FetchAllDiscussions(ctx context.Context) ([]models.Discussion, error)
}

// Collector runs the refresh cycle: fetch all discussions, accumulate user
// statistics, rank, assemble the leaderboard, cache the discussion set and
// write report artifacts. The latest successful leaderboard stays available
// while a refresh is in flight or after one fails.
type Collector struct {
	source          DiscussionSource
	database        *db.Database
	org             string
	repo            string
	points          models.PointsConfig
	topUsersLimit   int
	refreshInterval time.Duration
	outputDir       string
	log             *logrus.Logger

	mutex       sync.RWMutex
	leaderboard models.Leaderboard
	hasData     bool
}

// NewCollector creates a new collector
func NewCollector(
	source DiscussionSource,
	database *db.Database,
	org string,
	repo string,
	points models.PointsConfig,
	topUsersLimit int,
	refreshInterval int,
	outputDir string,
	log *logrus.Logger,
) *Collector {
	if topUsersLimit <= 0 {
		topUsersLimit = rating.DefaultTopUsersLimit
	}
	return &Collector{
		source:          source,
		database:        database,
		org:             org,
		repo:            repo,
		points:          points,
		topUsersLimit:   topUsersLimit,
		refreshInterval: time.Duration(refreshInterval) * time.Second,
		outputDir:       outputDir,
		log:             log,
	}
}

// Start runs an immediate refresh and then refreshes on the configured
// interval until the context is cancelled.
func (c *Collector) Start(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		c.log.WithError(err).Error("Initial leaderboard refresh failed")
	}

	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.log.WithError(err).Error("Leaderboard refresh failed")
			}
		}
	}
}

// Refresh runs one complete fetch-and-rank pass. Any failure aborts the
// pass before the previous leaderboard is touched, so consumers never see a
// board built from partial data.
func (c *Collector) Refresh(ctx context.Context) error {
	started := time.Now()
	c.log.WithFields(logrus.Fields{
		"org":  c.org,
		"repo": c.repo,
	}).Info("Refreshing leaderboard")

	discussions, err := c.source.FetchAllDiscussions(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch discussions: %w", err)
	}

	now := time.Now().UTC()
	userStats, err := rating.Accumulate(discussions, now, c.points)
	if err != nil {
		return fmt.Errorf("failed to accumulate statistics: %w", err)
	}

	rankings := rating.Rank(userStats)
	leaderboard := rating.BuildLeaderboard(rankings, c.topUsersLimit, now, c.points)

	c.mutex.Lock()
	c.leaderboard = leaderboard
	c.hasData = true
	c.mutex.Unlock()

	if err := c.database.ReplaceDiscussions(discussions, now); err != nil {
		return fmt.Errorf("failed to cache discussions: %w", err)
	}

	if c.outputDir != "" {
		newestFirst := sortNewestFirst(discussions)
		if err := report.WriteArtifacts(c.outputDir, c.org, c.repo, leaderboard, newestFirst, c.log); err != nil {
			return fmt.Errorf("failed to write artifacts: %w", err)
		}
	}

	c.log.WithFields(logrus.Fields{
		"discussion_count": len(discussions),
		"user_count":       leaderboard.TotalUsers,
		"duration":         time.Since(started).String(),
	}).Info("Leaderboard refreshed")

	return nil
}

// GetLeaderboard returns a copy of the latest leaderboard. The second return
// is false until the first successful refresh.
func (c *Collector) GetLeaderboard() (models.Leaderboard, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.leaderboard, c.hasData
}

// GetEntryForUser looks up one user's entry among the exposed top users
func (c *Collector) GetEntryForUser(username string) (models.RankedEntry, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	for _, entry := range c.leaderboard.TopUsers {
		if entry.Username == username {
			return entry, true
		}
	}
	return models.RankedEntry{}, false
}

func sortNewestFirst(discussions []models.Discussion) []models.Discussion {
	sorted := make([]models.Discussion, len(discussions))
	copy(sorted, discussions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}
