package source

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadscout/models"
)

const minNameLength = 3

var (
	titleSuffixes = []*regexp.Regexp{
		regexp.MustCompile(`(?i) - Google Maps.*$`),
		regexp.MustCompile(`(?i) \| Yelp.*$`),
		regexp.MustCompile(`(?i) - Reviews.*$`),
		regexp.MustCompile(`(?i) Reviews.*$`),
	}

	phonePattern       = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	ratingPattern      = regexp.MustCompile(`(?i)(\d(?:\.\d)?)\s*(?:stars?|rating|out of 5)`)
	reviewCountPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:reviews?|ratings?)`)
	addressPattern     = regexp.MustCompile(`\d+[^,\n]+,\s*[^,\n]+,\s*[A-Z]{2}\s*\d{5}`)
	htmlTagPattern     = regexp.MustCompile(`(?i)<(?:html|body|div|p|span|br|li|ul|a|h[1-6]|table)[\s>/]`)

	aggregatorDomains = []string{"google.com", "yelp.com"}
)

// CleanName strips listing-site suffixes from a result title.
func CleanName(title string) string {
	name := title
	for _, re := range titleSuffixes {
		name = re.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(name)
}

// ParseCandidate derives a candidate from one provider hit. Reviews are left
// for the caller to fill. It reports false when the cleaned name is unusable.
func ParseCandidate(title, url, content, location string) (models.BusinessCandidate, bool) {
	name := CleanName(title)
	if len([]rune(name)) < minNameLength {
		return models.BusinessCandidate{}, false
	}

	c := models.BusinessCandidate{Name: name}

	if m := phonePattern.FindString(content); m != "" {
		c.Phone = &m
	}
	if m := ratingPattern.FindStringSubmatch(content); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 0 && v <= 5 {
			c.Rating = &v
		}
	}
	if m := reviewCountPattern.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			c.ReviewCount = n
		}
	}

	address := location
	if m := addressPattern.FindString(content); m != "" {
		address = m
	}
	c.Address = &address

	if url != "" && !isAggregator(url) {
		website := url
		c.Website = &website
	}

	return c, true
}

func isAggregator(url string) bool {
	for _, d := range aggregatorDomains {
		if strings.Contains(url, d) {
			return true
		}
	}
	return false
}

func looksLikeHTML(s string) bool {
	return htmlTagPattern.MatchString(s)
}

// htmlToText flattens markup into text, keeping block boundaries as line
// breaks so sentence splitting still works.
func htmlToText(s string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	return strings.TrimSpace(doc.Text()), nil
}
