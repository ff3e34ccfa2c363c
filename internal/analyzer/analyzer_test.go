package analyzer

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/aiclient"
	"leadscout/models"
)

type fakeCompleter struct {
	content     string
	err         error
	calls       int
	messages    []aiclient.Message
	temperature float64
}

func (f *fakeCompleter) Complete(_ context.Context, _ string, messages []aiclient.Message, temperature float64) (string, error) {
	f.calls++
	f.messages = messages
	f.temperature = temperature
	return f.content, f.err
}

func newTestAnalyzer(t *testing.T, ai Completer) *Analyzer {
	log, _ := test.NewNullLogger()
	a, err := New(ai, log)
	require.NoError(t, err)
	return a
}

func intPtr(v int) *int { return &v }

var sampleReviews = []models.ReviewSnippet{
	{Text: "Never called back after the estimate.", Rating: intPtr(1)},
	{Text: "Nice people, slow to answer.", Rating: nil},
}

func TestAnalyze_EmptyReviewsFailsBeforeNetwork(t *testing.T) {
	ai := &fakeCompleter{}

	_, err := newTestAnalyzer(t, ai).Analyze(context.Background(), "Joe's Plumbing", nil)

	assert.ErrorIs(t, err, ErrNoReviews)
	assert.Zero(t, ai.calls)
}

func TestAnalyze_ParsesVerdict(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "raw", content: `{"problemType":"No Callback","urgencyScore":8,"summary":"Calls go unanswered.","outreachMessage":"Hi Joe!"}`},
		{name: "fenced", content: "```json\n{\"problemType\":\"No Callback\",\"urgencyScore\":8,\"summary\":\"Calls go unanswered.\",\"outreachMessage\":\"Hi Joe!\"}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := &fakeCompleter{content: tt.content}

			got, err := newTestAnalyzer(t, ai).Analyze(context.Background(), "Joe's Plumbing", sampleReviews)

			require.NoError(t, err)
			require.NotNil(t, got.ProblemType)
			assert.Equal(t, "No Callback", *got.ProblemType)
			assert.Equal(t, 8, got.UrgencyScore)
			assert.Equal(t, "Calls go unanswered.", got.Summary)
			assert.Equal(t, "Hi Joe!", got.OutreachMessage)
			assert.Equal(t, Temperature, ai.temperature)
		})
	}
}

func TestAnalyze_NullProblemType(t *testing.T) {
	ai := &fakeCompleter{content: `{"problemType":null,"urgencyScore":2,"summary":"No issues.","outreachMessage":"Hello."}`}

	got, err := newTestAnalyzer(t, ai).Analyze(context.Background(), "Joe's Plumbing", sampleReviews)

	require.NoError(t, err)
	assert.Nil(t, got.ProblemType)
	assert.Equal(t, 2, got.UrgencyScore)
}

func TestAnalyze_FallbackOnUnusableAnswer(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "prose", content: "This business seems to have some issues with callbacks."},
		{name: "score out of range", content: `{"problemType":"Slow Response","urgencyScore":15,"summary":"x","outreachMessage":"y"}`},
		{name: "missing fields", content: `{"problemType":"Slow Response"}`},
		{name: "wrong type", content: `{"urgencyScore":"high","summary":"x","outreachMessage":"y"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestAnalyzer(t, &fakeCompleter{content: tt.content}).
				Analyze(context.Background(), "Joe's Plumbing", sampleReviews)

			require.NoError(t, err)
			assert.Nil(t, got.ProblemType)
			assert.Equal(t, 5, got.UrgencyScore)
			assert.Equal(t, "Unable to analyze reviews automatically.", got.Summary)
			assert.Contains(t, got.OutreachMessage, "Joe's Plumbing")
		})
	}
}

func TestAnalyze_PropagatesGatewayErrors(t *testing.T) {
	for _, want := range []error{aiclient.ErrRateLimited, aiclient.ErrQuotaExhausted, aiclient.ErrUpstream, aiclient.ErrNotConfigured} {
		_, err := newTestAnalyzer(t, &fakeCompleter{err: want}).
			Analyze(context.Background(), "Joe's Plumbing", sampleReviews)

		assert.ErrorIs(t, err, want)
	}
}

func TestUserPrompt(t *testing.T) {
	got := UserPrompt("Joe's Plumbing", sampleReviews)

	assert.Contains(t, got, `Analyze these reviews for "Joe's Plumbing":`)
	assert.Contains(t, got, `Review 1 (1/5 stars): "Never called back after the estimate."`)
	assert.Contains(t, got, `Review 2 (no rating): "Nice people, slow to answer."`)
}
