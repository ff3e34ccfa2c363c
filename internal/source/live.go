package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"leadscout/internal/extractor"
	"leadscout/models"
)

const (
	// DefaultLimit is used when a caller does not ask for a specific number of results.
	DefaultLimit = 10
	// minPrimaryResults triggers the supplementary query when not reached.
	minPrimaryResults = 5

	defaultFirecrawlURL = "https://api.firecrawl.dev"
)

// LiveConfig configures the Firecrawl backed source.
type LiveConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Live searches the web through Firecrawl and parses each hit into a candidate.
type Live struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	extractor  *extractor.Extractor
	log        logrus.FieldLogger
}

// NewLive creates a live source. It is usable without an API key, in which
// case every search fails with ErrNotConfigured.
func NewLive(cfg LiveConfig, ext *extractor.Extractor, log logrus.FieldLogger) *Live {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultFirecrawlURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if ext == nil {
		ext = extractor.New(nil)
	}
	return &Live{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		extractor:  ext,
		log:        log,
	}
}

// Configured reports whether a provider key is present.
func (l *Live) Configured() bool {
	return l.apiKey != ""
}

type firecrawlSearchRequest struct {
	Query         string        `json:"query"`
	Limit         int           `json:"limit"`
	ScrapeOptions scrapeOptions `json:"scrapeOptions"`
}

type scrapeOptions struct {
	Formats []string `json:"formats"`
}

// firecrawlEnvelope defers decoding of each hit so one malformed result
// does not discard the rest.
type firecrawlEnvelope struct {
	Success bool              `json:"success"`
	Data    []json.RawMessage `json:"data"`
}

type firecrawlResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Markdown    string `json:"markdown"`
}

// Fetch implements Adapter.
func (l *Live) Fetch(ctx context.Context, businessType, location string, limit int) (Batch, error) {
	candidates, err := l.Search(ctx, businessType, location, limit)
	return Batch{Source: models.DataSourceLive, Candidates: candidates}, err
}

// Search runs the primary query and, when it yields fewer than five
// candidates, one supplementary query to fill up to limit.
func (l *Live) Search(ctx context.Context, businessType, location string, limit int) ([]models.BusinessCandidate, error) {
	if !l.Configured() {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := fmt.Sprintf("%s in %s reviews site:google.com/maps", businessType, location)
	results, err := l.search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	l.log.WithFields(logrus.Fields{"query": query, "results": len(results)}).Info("Firecrawl search completed")

	candidates := make([]models.BusinessCandidate, 0, limit)
	for _, r := range results {
		if c, ok := l.parseResult(r, location); ok {
			candidates = append(candidates, c)
		}
	}

	if len(candidates) < minPrimaryResults && limit-len(candidates) > 0 {
		altQuery := fmt.Sprintf("%s %s customer reviews complaints", businessType, location)
		altResults, err := l.search(ctx, altQuery, limit-len(candidates))
		if err != nil {
			l.log.WithError(err).WithField("query", altQuery).Warn("Supplementary Firecrawl search failed")
			return candidates, nil
		}
		for _, r := range altResults {
			c, ok := l.parseResult(r, location)
			if !ok || containsName(candidates, c.Name) {
				continue
			}
			candidates = append(candidates, c)
		}
	}

	return candidates, nil
}

func (l *Live) search(ctx context.Context, query string, limit int) ([]firecrawlResult, error) {
	body, err := json.Marshal(firecrawlSearchRequest{
		Query:         query,
		Limit:         limit,
		ScrapeOptions: scrapeOptions{Formats: []string{"markdown"}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("firecrawl returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out firecrawlEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	results := make([]firecrawlResult, 0, len(out.Data))
	for i, raw := range out.Data {
		var r firecrawlResult
		if err := json.Unmarshal(raw, &r); err != nil {
			l.log.WithError(err).WithFields(logrus.Fields{"query": query, "index": i}).Warn("Skipping malformed search result")
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func (l *Live) parseResult(r firecrawlResult, location string) (models.BusinessCandidate, bool) {
	content := r.Markdown
	if content == "" {
		content = r.Description
	}
	if looksLikeHTML(content) {
		text, err := htmlToText(content)
		if err != nil {
			l.log.WithError(err).WithField("url", r.URL).Debug("Could not strip HTML from result")
		} else {
			content = text
		}
	}

	c, ok := ParseCandidate(r.Title, r.URL, content, location)
	if !ok {
		return c, false
	}
	c.Reviews = l.extractor.Extract(content)
	if c.ReviewCount == 0 {
		c.ReviewCount = len(c.Reviews)
	}
	return c, true
}

func containsName(candidates []models.BusinessCandidate, name string) bool {
	for _, c := range candidates {
		if c.Name == name {
			return true
		}
	}
	return false
}
