package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/hackteam-red/bbs-leaderboard/models"
)

// WriteArtifacts writes the rendered leaderboard and board artifacts into
// outputDir: leaderboard.json, LEADERBOARD.md, BOARD.md and bbs-feed.xml.
// A failed write aborts with the files written so far left in place.
func WriteArtifacts(outputDir, org, repo string, board models.Leaderboard, discussions []models.Discussion, log *logrus.Logger) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeJSON(filepath.Join(outputDir, "leaderboard.json"), board); err != nil {
		return err
	}

	md := MarkdownLeaderboard(board)
	if err := os.WriteFile(filepath.Join(outputDir, "LEADERBOARD.md"), []byte(md), 0644); err != nil {
		return fmt.Errorf("failed to write LEADERBOARD.md: %w", err)
	}

	boardMD := MarkdownBoard(discussions, board.GeneratedAt)
	if err := os.WriteFile(filepath.Join(outputDir, "BOARD.md"), []byte(boardMD), 0644); err != nil {
		return fmt.Errorf("failed to write BOARD.md: %w", err)
	}

	feed, err := RSSFeed(org, repo, discussions)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "bbs-feed.xml"), []byte(feed), 0644); err != nil {
		return fmt.Errorf("failed to write bbs-feed.xml: %w", err)
	}

	log.WithFields(logrus.Fields{
		"output_dir":  outputDir,
		"total_users": board.TotalUsers,
	}).Info("Wrote leaderboard artifacts")

	return nil
}

func writeJSON(path string, board models.Leaderboard) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(board); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	return nil
}
