package report

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/hackteam-red/bbs-leaderboard/models"
)

// maxFeedItems caps the RSS feed at the newest discussions
const maxFeedItems = 20

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Author      string `xml:"author"`
	Category    string `xml:"category"`
	PubDate     string `xml:"pubDate"`
}

// RSSFeed renders the newest discussions as an RSS 2.0 document. The
// discussions are expected newest-first; the feed keeps the first 20.
func RSSFeed(org, repo string, discussions []models.Discussion) (string, error) {
	if len(discussions) > maxFeedItems {
		discussions = discussions[:maxFeedItems]
	}

	items := make([]rssItem, 0, len(discussions))
	for _, disc := range discussions {
		author := "Unknown"
		if disc.Author != nil {
			author = disc.Author.Login
		}
		category := disc.Category
		if category == "" {
			category = "General"
		}
		items = append(items, rssItem{
			Title:       disc.Title,
			Description: fmt.Sprintf("%s discussion by @%s", category, author),
			Author:      author,
			Category:    category,
			PubDate:     disc.CreatedAt.UTC().Format(time.RFC1123Z),
		})
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       fmt.Sprintf("%s BBS", org),
			Link:        fmt.Sprintf("https://github.com/%s/%s/discussions", org, repo),
			Description: "Community Bulletin Board",
			Language:    "en",
			Items:       items,
		},
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal rss feed: %w", err)
	}

	return xml.Header + string(out) + "\n", nil
}
