// Package extractor pulls review-like snippets out of scraped page text.
//
// It is a best-effort heuristic: an empty result is a valid answer.
package extractor

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"leadscout/models"
)

// MaxReviews caps the number of snippets returned by Extract.
const MaxReviews = 8

// minSentenceLength is the length a sentence must exceed to be considered.
const minSentenceLength = 30

// minQuotedLength is the length a quoted or attributed match must exceed.
const minQuotedLength = 20

// NegativeKeywords are the communication-failure phrases a sentence must
// contain to be kept by the keyword pass.
var NegativeKeywords = []string{
	"never called back",
	"no response",
	"didn't return",
	"unreachable",
	"ignored",
	"missed appointment",
	"didn't show",
	"no communication",
	"wouldn't answer",
	"poor communication",
	"slow response",
	"terrible service",
	"never showed",
	"stood up",
	"ghosted",
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	starMention   = regexp.MustCompile(`(?i)(\d)\s*star`)
	quotedText    = regexp.MustCompile(`["']([^"']{20,300})["']`)
	attribution   = regexp.MustCompile(`(?i)(?:said|wrote|commented|reviewed):\s*["']?([^"'\n]{20,300})`)
)

// Extractor turns raw text into review snippets. Ratings for keyword hits
// without an explicit star mention come from the injected random source.
type Extractor struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an Extractor. A nil rng is replaced by a time-seeded one.
func New(rng *rand.Rand) *Extractor {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Extractor{rng: rng}
}

// Extract returns up to MaxReviews snippets with no duplicate text. Keyword
// matches come first, followed by quoted and attributed passages.
func (e *Extractor) Extract(rawText string) []models.ReviewSnippet {
	reviews := make([]models.ReviewSnippet, 0, MaxReviews)
	seen := make(map[string]struct{})

	add := func(text string, rating *int) {
		text = models.TruncateText(text, models.MaxReviewTextLength)
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		reviews = append(reviews, models.ReviewSnippet{Text: text, Rating: rating})
	}

	for _, sentence := range sentenceSplit.Split(rawText, -1) {
		if len(reviews) >= MaxReviews {
			break
		}
		trimmed := strings.TrimSpace(sentence)
		if len([]rune(trimmed)) <= minSentenceLength || !hasNegativeKeyword(trimmed) {
			continue
		}
		add(trimmed, e.ratingFor(trimmed))
	}

	for _, pattern := range []*regexp.Regexp{quotedText, attribution} {
		for _, m := range pattern.FindAllStringSubmatch(rawText, -1) {
			if len(reviews) >= MaxReviews {
				return reviews
			}
			text := strings.TrimSpace(m[1])
			if len([]rune(text)) <= minQuotedLength {
				continue
			}
			add(text, nil)
		}
	}

	return reviews
}

func hasNegativeKeyword(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, kw := range NegativeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ratingFor uses an explicit "<N> star" mention when it is a valid rating,
// otherwise a random 1 or 2.
func (e *Extractor) ratingFor(sentence string) *int {
	if m := starMention.FindStringSubmatch(sentence); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 5 {
			return &n
		}
	}
	e.mu.Lock()
	n := e.rng.Intn(2) + 1
	e.mu.Unlock()
	return &n
}
