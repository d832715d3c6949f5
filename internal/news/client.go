package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://newsapi.org"

type Source struct {
	Name string `json:"name"`
}

type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage,omitempty"`
	PublishedAt string `json:"publishedAt"`
	Source      Source `json:"source"`
	Author      string `json:"author"`
}

type apiResponse struct {
	Status   string    `json:"status"`
	Articles []Article `json:"articles"`
}

// Client talks to NewsAPI. The base URL is swappable for tests.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
	}
}

// TopHealthHeadlines fetches the health category of top-headlines.
func (c *Client) TopHealthHeadlines(ctx context.Context, country string, pageSize int) ([]Article, error) {
	params := url.Values{
		"apiKey":   {c.apiKey},
		"category": {"health"},
		"country":  {country},
		"pageSize": {strconv.Itoa(pageSize)},
	}
	return c.fetch(ctx, "/v2/top-headlines", params)
}

// ResearchNews fetches recent medical research coverage from the everything
// endpoint, newest first.
func (c *Client) ResearchNews(ctx context.Context, pageSize int, since time.Time) ([]Article, error) {
	params := url.Values{
		"apiKey":   {c.apiKey},
		"q":        {"medical research OR clinical trial OR health study"},
		"language": {"en"},
		"sortBy":   {"publishedAt"},
		"pageSize": {strconv.Itoa(pageSize)},
		"from":     {since.Format("2006-01-02")},
	}
	return c.fetch(ctx, "/v2/everything", params)
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news api returned status %d", resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}

	return parsed.Articles, nil
}
