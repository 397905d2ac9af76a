package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"NewsQuiz/internal/domain"
	"NewsQuiz/internal/ports"
)

const (
	articlesPath = "/articles"
	maxBodySize  = 4 << 20
)

// HTTPRepository reads feed pages from the quiz content API. One request per call.
type HTTPRepository struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ ports.ContentRepository = (*HTTPRepository)(nil)

// NewHTTPRepository wires the API base URL and an HTTP client; a nil client gets a 10s timeout.
func NewHTTPRepository(baseURL string, client *http.Client, log *slog.Logger) *HTTPRepository {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPRepository{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		logger:  log,
	}
}

type pageResponse struct {
	Items      []itemResponse `json:"items"`
	NextCursor *string        `json:"nextCursor"`
	Total      int            `json:"total"`
}

type itemResponse struct {
	ID         string `json:"id"`
	Headline   string `json:"headline"`
	Article    string `json:"article"`
	IsFake     bool   `json:"isFake"`
	Category   string `json:"category"`
	CreatedAt  string `json:"createdAt"`
	FakeReason string `json:"fakeReason"`
}

// FetchPage requests a single page and maps failures onto domain.ContentError kinds.
func (r *HTTPRepository) FetchPage(ctx context.Context, params domain.FetchParams) (domain.FeedPage, error) {
	pageURL, err := buildPageURL(r.baseURL, params)
	if err != nil {
		return domain.FeedPage{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.FeedPage{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "NewsQuiz/1.0")
	if params.Language != "" {
		req.Header.Set("Accept-Language", string(params.Language))
	}

	r.debug("fetch page", "url", pageURL)

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.FeedPage{}, domain.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		var cause error
		if msg := strings.TrimSpace(string(snippet)); msg != "" {
			cause = errors.New(msg)
		}
		return domain.FeedPage{}, domain.NewFetchError(resp.StatusCode, cause)
	}

	var payload pageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&payload); err != nil {
		return domain.FeedPage{}, domain.NewFetchError(resp.StatusCode, fmt.Errorf("decode page: %w", err))
	}

	page := toFeedPage(payload)
	if len(page.Articles) == 0 {
		return domain.FeedPage{}, domain.NewNoContentError()
	}

	r.debug("page fetched", "count", len(page.Articles), "total", page.Total, "has_more", page.HasMore())
	return page, nil
}

func toFeedPage(payload pageResponse) domain.FeedPage {
	articles := make([]domain.Article, 0, len(payload.Items))
	for _, item := range payload.Items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			continue
		}
		articles = append(articles, domain.Article{
			ID:                id,
			Headline:          plainText(item.Headline),
			Body:              plainText(item.Article),
			Category:          domain.ParseCategory(item.Category),
			IsFabricated:      item.IsFake,
			CreatedAt:         parseTimestamp(item.CreatedAt),
			FabricationReason: plainText(item.FakeReason),
		})
	}

	page := domain.FeedPage{
		Articles: articles,
		Total:    payload.Total,
	}
	if payload.NextCursor != nil {
		page.NextCursor = strings.TrimSpace(*payload.NextCursor)
	}
	if page.Total < len(articles) {
		page.Total = len(articles)
	}
	return page
}

// plainText strips markup some editors leave in headlines and bodies.
func plainText(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "<") {
		return raw
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	doc.Find("script, style").Remove()
	doc.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})
	})
	doc.Find("p, div, li").Each(func(_ int, block *goquery.Selection) {
		block.AppendNodes(&html.Node{Type: html.TextNode, Data: "\n\n"})
	})

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func buildPageURL(base string, params domain.FetchParams) (string, error) {
	parsed, err := url.Parse(base + articlesPath)
	if err != nil {
		return "", fmt.Errorf("invalid content url %s: %w", base, err)
	}

	query := parsed.Query()
	if params.Language != "" {
		query.Set("language", string(params.Language))
	}
	if params.Cursor != "" {
		query.Set("cursor", params.Cursor)
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Category != "" {
		query.Set("category", string(params.Category))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (r *HTTPRepository) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
