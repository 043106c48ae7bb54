package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hackteam-red/bbs-leaderboard/models"
	"github.com/hackteam-red/bbs-leaderboard/rating"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig
	GitHub   GitHubConfig
	Points   models.PointsConfig
	Database DatabaseConfig
	Report   ReportConfig
	Server   ServerConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name    string
	Version string
}

// GitHubConfig holds GitHub API configuration
type GitHubConfig struct {
	Token                string
	Org                  string
	Repo                 string
	RefreshInterval      int // seconds between leaderboard refreshes
	MaxRequestsPerMinute int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string
}

// ReportConfig holds report rendering configuration
type ReportConfig struct {
	OutputDir     string
	TopUsersLimit int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
}

// LoadConfig loads configuration from .env file
func LoadConfig(envPath string, log *logrus.Logger) (*Config, error) {
	if envPath == "" {
		envPath = ".env"
	}

	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "BBS Leaderboard"),
			Version: getEnv("APP_VERSION", "1.0.0"),
		},
		GitHub: GitHubConfig{
			Token:                getEnv("GITHUB_TOKEN", ""),
			Org:                  getEnv("GITHUB_ORG", ""),
			Repo:                 getEnv("GITHUB_REPO", "bbs"),
			RefreshInterval:      getEnvAsInt("REFRESH_INTERVAL", 3600),
			MaxRequestsPerMinute: getEnvAsInt("GITHUB_MAX_REQUESTS_PER_MINUTE", 100),
		},
		Points: loadPoints(),
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./bbs.db"),
		},
		Report: ReportConfig{
			OutputDir:     getEnv("OUTPUT_DIR", "./output"),
			TopUsersLimit: getEnvAsInt("TOP_USERS_LIMIT", rating.DefaultTopUsersLimit),
		},
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
	}

	// validation
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	log.WithField("file", envPath).Info("Config loaded successfully")
	return config, nil
}

// loadPoints builds the scoring table from the defaults plus any POINTS_*
// overrides.
func loadPoints() models.PointsConfig {
	points := rating.DefaultPoints()
	points.DiscussionCreated = getEnvAsInt("POINTS_DISCUSSION_CREATED", points.DiscussionCreated)
	points.CommentPosted = getEnvAsInt("POINTS_COMMENT_POSTED", points.CommentPosted)
	points.DiscussionAnswered = getEnvAsInt("POINTS_DISCUSSION_ANSWERED", points.DiscussionAnswered)
	points.HelpfulComment = getEnvAsInt("POINTS_HELPFUL_COMMENT", points.HelpfulComment)
	points.DiscussionUpvoted = getEnvAsInt("POINTS_DISCUSSION_UPVOTED", points.DiscussionUpvoted)
	return points
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.GitHub.Token == "" {
		return fmt.Errorf("GITHUB_TOKEN environment variable is required")
	}
	if config.GitHub.Org == "" {
		return fmt.Errorf("GITHUB_ORG environment variable is required")
	}
	if config.GitHub.Repo == "" {
		return fmt.Errorf("GITHUB_REPO environment variable is required")
	}
	if config.GitHub.RefreshInterval < 1 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive")
	}
	if config.Report.TopUsersLimit < 1 {
		return fmt.Errorf("TOP_USERS_LIMIT must be positive")
	}

	// negative point values would break the monotonic score invariant
	points := config.Points
	for name, value := range map[string]int{
		"POINTS_DISCUSSION_CREATED":  points.DiscussionCreated,
		"POINTS_COMMENT_POSTED":      points.CommentPosted,
		"POINTS_DISCUSSION_ANSWERED": points.DiscussionAnswered,
		"POINTS_HELPFUL_COMMENT":     points.HelpfulComment,
		"POINTS_DISCUSSION_UPVOTED":  points.DiscussionUpvoted,
	} {
		if value < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}

	// if we are storing the db in a nested directory, create the directory
	dbDir := filepath.Dir(config.Database.Path)
	if dbDir != "." && dbDir != "" {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	return nil
}
