// Package analyzer classifies a business's communication problems from its
// reviews using the chat gateway.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"leadscout/internal/aiclient"
	"leadscout/models"
)

// ErrNoReviews is returned before any gateway call when there is nothing to analyze.
var ErrNoReviews = errors.New("no business or reviews provided")

const (
	// Temperature is kept low for consistent, conservative classification.
	Temperature = 0.3

	FallbackUrgency = 5
	FallbackSummary = "Unable to analyze reviews automatically."
)

const systemPrompt = `You are an expert at analyzing business reviews to identify communication and responsiveness issues. Your job is to help sales agencies find businesses that need help with their customer communication.

Analyze the reviews and identify ANY of these communication red flags:
- Unanswered phone calls
- No callbacks or follow-ups
- Slow response times
- Missed appointments
- Poor communication about delays
- Unresponsive to emails/messages
- Difficulty reaching the business

Respond with a JSON object (no markdown, just raw JSON) with these fields:
- problemType: The main communication issue category (e.g., "No Callback", "Slow Response", "Missed Appointments", "Unreachable", "Poor Communication") or null if no issues found
- urgencyScore: A number from 1-10 indicating how urgent/severe the communication problem is (10 = extremely bad, 1 = minor issue, 5 = no clear issues)
- summary: A 1-2 sentence summary of the communication problems found (or a note if no issues)
- outreachMessage: A short, personalized cold outreach message (2-3 sentences) that an agency could send to this business, addressing their specific communication pain point. Make it helpful, not salesy.`

const verdictSchema = `{
	"type": "object",
	"required": ["urgencyScore", "summary", "outreachMessage"],
	"properties": {
		"problemType": {"type": ["string", "null"]},
		"urgencyScore": {"type": "integer", "minimum": 1, "maximum": 10},
		"summary": {"type": "string"},
		"outreachMessage": {"type": "string"}
	}
}`

var codeFence = regexp.MustCompile("```(?:json)?\n?")

// Completer is the part of the gateway client the analyzer needs.
type Completer interface {
	Complete(ctx context.Context, purpose string, messages []aiclient.Message, temperature float64) (string, error)
}

// Analyzer produces a verdict for one business at a time. It is safe for
// concurrent use.
type Analyzer struct {
	ai     Completer
	schema *gojsonschema.Schema
	log    logrus.FieldLogger
}

// New creates an Analyzer.
func New(ai Completer, log logrus.FieldLogger) (*Analyzer, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(verdictSchema))
	if err != nil {
		return nil, fmt.Errorf("compile verdict schema: %w", err)
	}
	return &Analyzer{ai: ai, schema: schema, log: log}, nil
}

// Analyze classifies the reviews. Gateway failures are returned as errors;
// an unusable model answer yields the fallback verdict instead.
func (a *Analyzer) Analyze(ctx context.Context, businessName string, reviews []models.ReviewSnippet) (models.AnalysisResult, error) {
	if len(reviews) == 0 {
		return models.AnalysisResult{}, ErrNoReviews
	}

	messages := []aiclient.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: UserPrompt(businessName, reviews)},
	}
	content, err := a.ai.Complete(ctx, "analyze_reviews", messages, Temperature)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	result, err := a.parse(content)
	if err != nil {
		a.log.WithFields(logrus.Fields{"business": businessName, "error": err}).Warn("Could not parse analysis, using fallback")
		return Fallback(businessName), nil
	}
	return result, nil
}

func (a *Analyzer) parse(content string) (models.AnalysisResult, error) {
	clean := strings.TrimSpace(codeFence.ReplaceAllString(content, ""))

	res, err := a.schema.Validate(gojsonschema.NewStringLoader(clean))
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("not JSON: %w", err)
	}
	if !res.Valid() {
		errs := make([]string, len(res.Errors()))
		for i, desc := range res.Errors() {
			errs[i] = desc.String()
		}
		return models.AnalysisResult{}, fmt.Errorf("verdict failed validation: %v", errs)
	}

	var out models.AnalysisResult
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("decode verdict: %w", err)
	}
	return out, nil
}

// UserPrompt lists the reviews the way the classifier expects them.
func UserPrompt(businessName string, reviews []models.ReviewSnippet) string {
	lines := make([]string, len(reviews))
	for i, r := range reviews {
		rating := "no rating"
		if r.Rating != nil && *r.Rating != 0 {
			rating = fmt.Sprintf("%d/5 stars", *r.Rating)
		}
		lines[i] = fmt.Sprintf("Review %d (%s): %q", i+1, rating, r.Text)
	}
	return fmt.Sprintf("Analyze these reviews for %q:\n\n%s\n\nReturn your analysis as a JSON object.",
		businessName, strings.Join(lines, "\n\n"))
}

// Fallback is the verdict used when the model's answer cannot be used.
func Fallback(businessName string) models.AnalysisResult {
	return models.AnalysisResult{
		ProblemType:  nil,
		UrgencyScore: FallbackUrgency,
		Summary:      FallbackSummary,
		OutreachMessage: fmt.Sprintf("Hi! I noticed %s has some customer feedback. "+
			"Would you be interested in discussing ways to improve your customer experience?", businessName),
	}
}
