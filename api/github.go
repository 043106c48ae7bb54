package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/hackteam-red/bbs-leaderboard/models"
	"github.com/hackteam-red/bbs-leaderboard/rating"
)

const defaultGraphQLURL = "https://api.github.com/graphql"

// discussionsQuery walks the repository's discussions with cursor pagination,
// pulling authors, categories, accepted answers, reaction totals and the
// first page of comments for each discussion.
const discussionsQuery = `
query($org: String!, $repo: String!, $cursor: String) {
  repository(owner: $org, name: $repo) {
    discussions(first: 100, after: $cursor) {
      pageInfo {
        hasNextPage
        endCursor
      }
      nodes {
        id
        title
        createdAt
        author {
          login
        }
        category {
          name
        }
        answer {
          id
          author {
            login
          }
        }
        reactions {
          totalCount
        }
        comments(first: 100) {
          nodes {
            id
            author {
              login
            }
            createdAt
            reactions {
              totalCount
            }
          }
        }
      }
    }
  }
}
`

// GitHubAPI is a client for the GitHub GraphQL discussions API
type GitHubAPI struct {
	token       string
	org         string
	repo        string
	graphqlURL  string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	log         *logrus.Logger
}

// wire structs mirroring the GraphQL response shape; authors and answers are
// pointers because the API returns null for deleted accounts and unanswered
// discussions.

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type actorNode struct {
	Login string `json:"login"`
}

type commentNode struct {
	ID        string     `json:"id"`
	Author    *actorNode `json:"author"`
	CreatedAt string     `json:"createdAt"`
	Reactions struct {
		TotalCount int `json:"totalCount"`
	} `json:"reactions"`
}

type discussionNode struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt string     `json:"createdAt"`
	Author    *actorNode `json:"author"`
	Category  *struct {
		Name string `json:"name"`
	} `json:"category"`
	Answer *struct {
		ID     string     `json:"id"`
		Author *actorNode `json:"author"`
	} `json:"answer"`
	Reactions struct {
		TotalCount int `json:"totalCount"`
	} `json:"reactions"`
	Comments struct {
		Nodes []commentNode `json:"nodes"`
	} `json:"comments"`
}

type discussionsResponse struct {
	Data struct {
		Repository struct {
			Discussions struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Nodes []discussionNode `json:"nodes"`
			} `json:"discussions"`
		} `json:"repository"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// NewGitHubAPI creates a new GitHub GraphQL client
func NewGitHubAPI(token, org, repo string, maxRequestsPerMinute int, log *logrus.Logger) *GitHubAPI {
	// default to 100 requests per minute if unset
	if maxRequestsPerMinute <= 0 {
		maxRequestsPerMinute = 100
	}

	// use 95% of the allowed rate as a safety buffer, no burst
	targetRate := rate.Limit(float64(maxRequestsPerMinute) / 60.0 * 0.95)

	return &GitHubAPI{
		token:       token,
		org:         org,
		repo:        repo,
		graphqlURL:  defaultGraphQLURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		rateLimiter: rate.NewLimiter(targetRate, 1),
		log:         log,
	}
}

// setEndpoint overrides the GraphQL endpoint; used by tests
func (g *GitHubAPI) setEndpoint(url string) {
	g.graphqlURL = url
}

// FetchAllDiscussions walks every page of the repository's discussions and
// returns the complete collection, or an error with no partial result. Each
// page fetch depends on the cursor from the previous one, so the walk is
// strictly sequential.
func (g *GitHubAPI) FetchAllDiscussions(ctx context.Context) ([]models.Discussion, error) {
	var all []models.Discussion
	cursor := ""
	page := 0

	for {
		page++
		nodes, nextCursor, hasNext, err := g.fetchPage(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch discussions page %d: %w", page, err)
		}

		for _, node := range nodes {
			disc, err := convertDiscussion(node)
			if err != nil {
				return nil, err
			}
			all = append(all, disc)
		}

		g.log.WithFields(logrus.Fields{
			"page":          page,
			"page_count":    len(nodes),
			"total_count":   len(all),
			"next_cursor":   nextCursor,
			"has_next_page": hasNext,
		}).Info("Fetched discussions page")

		if !hasNext {
			return all, nil
		}
		cursor = nextCursor
	}
}

// fetchPage executes one GraphQL round-trip for a single page of discussions
func (g *GitHubAPI) fetchPage(ctx context.Context, cursor string) ([]discussionNode, string, bool, error) {
	if err := g.rateLimiter.Wait(ctx); err != nil {
		return nil, "", false, fmt.Errorf("rate limiter wait aborted: %w", err)
	}

	variables := map[string]any{
		"org":  g.org,
		"repo": g.repo,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}

	body, err := json.Marshal(graphqlRequest{Query: discussionsQuery, Variables: variables})
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		g.log.WithFields(logrus.Fields{
			"status_code":   resp.StatusCode,
			"response_body": string(respBody),
		}).Error("GitHub API error response")
		return nil, "", false, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var gqlResp discussionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return nil, "", false, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		return nil, "", false, fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
	}

	discussions := gqlResp.Data.Repository.Discussions
	return discussions.Nodes, discussions.PageInfo.EndCursor, discussions.PageInfo.HasNextPage, nil
}

// convertDiscussion converts a wire node to the domain model, validating
// timestamps up front so a corrupt date never reaches accumulation.
func convertDiscussion(node discussionNode) (models.Discussion, error) {
	createdAt, err := parseTimestamp(node.CreatedAt)
	if err != nil {
		return models.Discussion{}, fmt.Errorf("%w: discussion %s: %v", rating.ErrMalformedRecord, node.ID, err)
	}

	disc := models.Discussion{
		ID:        node.ID,
		Title:     node.Title,
		Author:    convertActor(node.Author),
		CreatedAt: createdAt,
		Reactions: node.Reactions.TotalCount,
		Comments:  make([]models.Comment, 0, len(node.Comments.Nodes)),
	}

	if node.Category != nil {
		disc.Category = node.Category.Name
	}

	if node.Answer != nil {
		disc.Answer = &models.Answer{
			ID:     node.Answer.ID,
			Author: convertActor(node.Answer.Author),
		}
	}

	for _, c := range node.Comments.Nodes {
		commentCreatedAt, err := parseTimestamp(c.CreatedAt)
		if err != nil {
			return models.Discussion{}, fmt.Errorf("%w: comment %s: %v", rating.ErrMalformedRecord, c.ID, err)
		}
		disc.Comments = append(disc.Comments, models.Comment{
			ID:        c.ID,
			Author:    convertActor(c.Author),
			CreatedAt: commentCreatedAt,
			Reactions: c.Reactions.TotalCount,
		})
	}

	return disc, nil
}

func convertActor(node *actorNode) *models.Actor {
	if node == nil || node.Login == "" {
		return nil
	}
	return &models.Actor{Login: node.Login}
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparsable timestamp %q: %w", value, err)
	}
	return ts, nil
}
