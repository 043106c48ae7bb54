package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/hackteam-red/bbs-leaderboard/models"
)

// Database caches the most recent complete discussion set. The cache is
// replaced wholesale on every successful refresh; it backs the bulletin
// board views, not leaderboard history.
type Database struct {
	db    *sql.DB
	mutex sync.RWMutex
	log   *logrus.Logger
}

// NewDatabase creates a new SQLite database connection
func NewDatabase(dbPath string, log *logrus.Logger) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{
		db:  db,
		log: log,
	}

	if err := database.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return database, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.db.Close()
}

// initTables creates the necessary tables if they don't exist
func (d *Database) initTables() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	// note: in an ideal world, this would be a migration that we could just run once per environment (ie dev, staging, prod)
	query := `
	CREATE TABLE IF NOT EXISTS discussions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT,
		created_at TIMESTAMP NOT NULL,
		category TEXT NOT NULL,
		reactions INTEGER NOT NULL,
		answer_id TEXT,
		answer_author TEXT
	);
	CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		discussion_id TEXT NOT NULL REFERENCES discussions(id),
		author TEXT,
		created_at TIMESTAMP NOT NULL,
		reactions INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS refreshes (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		refreshed_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_discussions_category ON discussions(category);
	CREATE INDEX IF NOT EXISTS idx_discussions_created ON discussions(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_comments_discussion ON comments(discussion_id);
	`

	_, err := d.db.Exec(query)
	return err
}

// ReplaceDiscussions atomically swaps the cached discussion set for a fresh
// one. A failed refresh never leaves a partial cache behind.
func (d *Database) ReplaceDiscussions(discussions []models.Discussion, refreshedAt time.Time) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM comments"); err != nil {
		return fmt.Errorf("failed to clear comments: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM discussions"); err != nil {
		return fmt.Errorf("failed to clear discussions: %w", err)
	}

	discStmt, err := tx.Prepare(`
	INSERT INTO discussions (id, title, author, created_at, category, reactions, answer_id, answer_author)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare discussion insert: %w", err)
	}
	defer discStmt.Close()

	commentStmt, err := tx.Prepare(`
	INSERT INTO comments (id, discussion_id, author, created_at, reactions)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare comment insert: %w", err)
	}
	defer commentStmt.Close()

	for _, disc := range discussions {
		category := disc.Category
		if category == "" {
			category = "General"
		}

		var answerID, answerAuthor sql.NullString
		if disc.Answer != nil {
			answerID = sql.NullString{String: disc.Answer.ID, Valid: true}
			if disc.Answer.Author != nil {
				answerAuthor = sql.NullString{String: disc.Answer.Author.Login, Valid: true}
			}
		}

		_, err := discStmt.Exec(
			disc.ID, disc.Title, actorLogin(disc.Author),
			disc.CreatedAt.UTC().Format(time.RFC3339), category,
			disc.Reactions, answerID, answerAuthor,
		)
		if err != nil {
			return fmt.Errorf("failed to insert discussion %s: %w", disc.ID, err)
		}

		for _, comment := range disc.Comments {
			_, err := commentStmt.Exec(
				comment.ID, disc.ID, actorLogin(comment.Author),
				comment.CreatedAt.UTC().Format(time.RFC3339), comment.Reactions,
			)
			if err != nil {
				return fmt.Errorf("failed to insert comment %s: %w", comment.ID, err)
			}
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO refreshes (id, refreshed_at) VALUES (1, ?)",
		refreshedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to record refresh time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache replacement: %w", err)
	}

	d.log.WithField("discussion_count", len(discussions)).Debug("Replaced cached discussion set")
	return nil
}

// GetBoardStats returns per-category counts over the cached discussion set
func (d *Database) GetBoardStats() (models.BoardStats, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	stats := models.BoardStats{Categories: make([]models.CategoryStats, 0)}

	query := `
	SELECT d.category, COUNT(DISTINCT d.id) AS discussion_count, COUNT(c.id) AS comment_count
	FROM discussions d
	LEFT JOIN comments c ON c.discussion_id = d.id
	GROUP BY d.category
	ORDER BY discussion_count DESC, d.category ASC
	`

	rows, err := d.db.Query(query)
	if err != nil {
		return stats, fmt.Errorf("failed to query category stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cat models.CategoryStats
		if err := rows.Scan(&cat.Category, &cat.DiscussionCount, &cat.CommentCount); err != nil {
			return stats, fmt.Errorf("failed to scan category stats: %w", err)
		}
		stats.TotalDiscussions += cat.DiscussionCount
		stats.TotalComments += cat.CommentCount
		stats.Categories = append(stats.Categories, cat)
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("row iteration error: %w", err)
	}

	var refreshedAt string
	err = d.db.QueryRow("SELECT refreshed_at FROM refreshes WHERE id = 1").Scan(&refreshedAt)
	switch {
	case err == sql.ErrNoRows:
		// cache never populated; leave the zero time
	case err != nil:
		return stats, fmt.Errorf("failed to query refresh time: %w", err)
	default:
		stats.LastRefreshed, _ = time.Parse(time.RFC3339, refreshedAt)
	}

	return stats, nil
}

// GetRecentDiscussions returns the newest cached discussions, without their
// comments, for the feed and board views
func (d *Database) GetRecentDiscussions(limit int) ([]models.Discussion, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	query := `
	SELECT id, title, author, created_at, category, reactions
	FROM discussions
	ORDER BY created_at DESC
	LIMIT ?
	`

	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent discussions: %w", err)
	}
	defer rows.Close()

	return scanDiscussions(rows)
}

// GetDiscussionsByCategory returns cached discussions in one category,
// newest first
func (d *Database) GetDiscussionsByCategory(category string, limit int) ([]models.Discussion, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	query := `
	SELECT id, title, author, created_at, category, reactions
	FROM discussions
	WHERE category = ?
	ORDER BY created_at DESC
	LIMIT ?
	`

	rows, err := d.db.Query(query, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query discussions for category %s: %w", category, err)
	}
	defer rows.Close()

	return scanDiscussions(rows)
}

// GetTotalDiscussions returns the number of cached discussions
func (d *Database) GetTotalDiscussions() (int, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM discussions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get total discussions: %w", err)
	}

	return count, nil
}

func scanDiscussions(rows *sql.Rows) ([]models.Discussion, error) {
	discussions := make([]models.Discussion, 0)
	for rows.Next() {
		var disc models.Discussion
		var author sql.NullString
		var createdAt string

		err := rows.Scan(&disc.ID, &disc.Title, &author, &createdAt, &disc.Category, &disc.Reactions)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discussion: %w", err)
		}

		if author.Valid && author.String != "" {
			disc.Author = &models.Actor{Login: author.String}
		}
		disc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		discussions = append(discussions, disc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return discussions, nil
}

func actorLogin(actor *models.Actor) sql.NullString {
	if actor == nil || actor.Login == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: actor.Login, Valid: true}
}
