package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/hackteam-red/bbs-leaderboard/api"
	"github.com/hackteam-red/bbs-leaderboard/db"
	"github.com/hackteam-red/bbs-leaderboard/report"
	"github.com/hackteam-red/bbs-leaderboard/stats"
	"github.com/hackteam-red/bbs-leaderboard/utils"
)

func main() {
	envPath := flag.String("env", ".env", "Path to .env file")
	logLevel := flag.String("log-level", "debug", "Logging level (debug, info, warn, error)")
	once := flag.Bool("once", false, "Run a single refresh, write artifacts and exit")
	flag.Parse()

	log := setupLogger(*logLevel)
	log.Info("Starting BBS Leaderboard")

	config, err := utils.LoadConfig(*envPath, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	log.WithFields(logrus.Fields{
		"org":              config.GitHub.Org,
		"repo":             config.GitHub.Repo,
		"refresh_interval": config.GitHub.RefreshInterval,
		"server_port":      config.Server.Port,
	}).Info("Configuration loaded")

	database, err := db.NewDatabase(config.Database.Path, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close()

	githubAPI := api.NewGitHubAPI(
		config.GitHub.Token,
		config.GitHub.Org,
		config.GitHub.Repo,
		config.GitHub.MaxRequestsPerMinute,
		log,
	)

	collector := stats.NewCollector(
		githubAPI,
		database,
		config.GitHub.Org,
		config.GitHub.Repo,
		config.Points,
		config.Report.TopUsersLimit,
		config.GitHub.RefreshInterval,
		config.Report.OutputDir,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		if err := collector.Refresh(ctx); err != nil {
			log.WithError(err).Fatal("Refresh failed")
		}
		log.Info("BBS Leaderboard refresh completed")
		return
	}

	go startEchoServer(ctx, config.Server.Port, collector, database, config.GitHub.Org, config.GitHub.Repo, log)

	go func() {
		if err := collector.Start(ctx); err != nil && err != context.Canceled {
			log.WithError(err).Error("Collector stopped unexpectedly")
		}
	}()

	waitForShutdown(cancel, log)
}

// setupLogger sets up the logger with the specified log level
func setupLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// startEchoServer starts the Echo HTTP API server
func startEchoServer(ctx context.Context, port int, collector *stats.Collector, database *db.Database, org, repo string, log *logrus.Logger) {
	e := echo.New()

	// middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	rateLimiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(10),
				Burst:     20,
				ExpiresIn: 3 * time.Minute,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded, please try again later",
			})
		},
		DenyHandler: func(ctx echo.Context, identifier string, err error) error {
			return ctx.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded, please try again later",
			})
		},
	}
	e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig))

	e.GET("/api/leaderboard", func(c echo.Context) error {
		board, ok := collector.GetLeaderboard()
		if !ok {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"error": "Leaderboard not generated yet",
			})
		}
		return c.JSON(http.StatusOK, board)
	})

	e.GET("/api/leaderboard/users/:username", func(c echo.Context) error {
		username := c.Param("username")
		entry, found := collector.GetEntryForUser(username)
		if !found {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": fmt.Sprintf("No leaderboard entry for user %s", username),
			})
		}
		return c.JSON(http.StatusOK, entry)
	})

	e.GET("/api/board", func(c echo.Context) error {
		boardStats, err := database.GetBoardStats()
		if err != nil {
			log.WithError(err).Error("Failed to load board stats")
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to load board statistics",
			})
		}
		return c.JSON(http.StatusOK, boardStats)
	})

	e.GET("/feed.xml", func(c echo.Context) error {
		discussions, err := database.GetRecentDiscussions(20)
		if err != nil {
			log.WithError(err).Error("Failed to load recent discussions")
			return c.String(http.StatusInternalServerError, "failed to load feed")
		}
		feed, err := report.RSSFeed(org, repo, discussions)
		if err != nil {
			log.WithError(err).Error("Failed to render feed")
			return c.String(http.StatusInternalServerError, "failed to render feed")
		}
		return c.Blob(http.StatusOK, "application/rss+xml", []byte(feed))
	})

	// health check endpoint; useful for k8s liveliness probes but not strictly required in this case
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// start the server!
	go func() {
		serverAddr := fmt.Sprintf(":%d", port)
		log.WithField("port", port).Info("Starting API server")
		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("API server failed")
		}
	}()

	// wait for context cancellation to shut down server
	<-ctx.Done()
	log.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("API server shutdown failed")
	}
}

// waitForShutdown waits for a shutdown signal
func waitForShutdown(cancel context.CancelFunc, log *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("Shutdown signal received")

	cancel()

	time.Sleep(1 * time.Second)
	log.Info("BBS Leaderboard stopped")
}
