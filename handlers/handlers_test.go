package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/aiclient"
	"leadscout/internal/analyzer"
	"leadscout/internal/lock"
	"leadscout/internal/pipeline"
	"leadscout/internal/scriptgen"
	"leadscout/internal/source"
	"leadscout/internal/store/memory"
	"leadscout/internal/worker"
	"leadscout/models"
)

type fakeLive struct {
	configured bool
	candidates []models.BusinessCandidate
	err        error
}

func (f *fakeLive) Configured() bool { return f.configured }

func (f *fakeLive) Search(context.Context, string, string, int) ([]models.BusinessCandidate, error) {
	return f.candidates, f.err
}

type fakeAnalyzer struct {
	mu  sync.Mutex
	err error
}

func (f *fakeAnalyzer) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeAnalyzer) Analyze(_ context.Context, name string, reviews []models.ReviewSnippet) (models.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.AnalysisResult{}, f.err
	}
	if len(reviews) == 0 {
		return models.AnalysisResult{}, analyzer.ErrNoReviews
	}
	problem := "No Callback"
	return models.AnalysisResult{
		ProblemType:     &problem,
		UrgencyScore:    8,
		Summary:         name + " misses calls.",
		OutreachMessage: "Hi " + name,
	}, nil
}

type fakeScripts struct {
	err      error
	calls    int
	business *scriptgen.Business
	services []string
}

func (f *fakeScripts) Generate(_ context.Context, b *scriptgen.Business, services []string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if b.Name == "" {
		return "", scriptgen.ErrNoBusiness
	}
	f.business, f.services = b, services
	return "## Opening\nHi, is this " + b.Name + "?", nil
}

// inlineJobs runs each job before SubmitJob returns.
type inlineJobs struct{}

func (inlineJobs) SubmitJob(job worker.Job) error { return job.Execute(context.Background()) }

// heldJobs keeps jobs until run is called.
type heldJobs struct{ jobs []worker.Job }

func (h *heldJobs) SubmitJob(job worker.Job) error {
	h.jobs = append(h.jobs, job)
	return nil
}

func (h *heldJobs) run(t *testing.T) {
	for _, j := range h.jobs {
		require.NoError(t, j.Execute(context.Background()))
	}
	h.jobs = nil
}

type fullJobs struct{}

func (fullJobs) SubmitJob(worker.Job) error { return worker.ErrQueueFull }

type fixture struct {
	app      *fiber.App
	handler  *ApplicationHandler
	store    *memory.Store
	live     *fakeLive
	analyzer *fakeAnalyzer
	scripts  *fakeScripts
}

func newFixture(t *testing.T, jobs JobSubmitter) *fixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	st := memory.New()
	an := &fakeAnalyzer{}
	src := source.NewFallback(nil, source.NewSynthetic(rand.New(rand.NewSource(42))), log)
	orch := pipeline.New(st, src, an, lock.NewMemory(), pipeline.NewTracker(), pipeline.Options{}, log)

	f := &fixture{
		store:    st,
		live:     &fakeLive{configured: true},
		analyzer: an,
		scripts:  &fakeScripts{},
	}
	f.handler = NewApplicationHandler(f.live, an, f.scripts, orch, jobs, st, log)
	f.handler.now = func() time.Time { return time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC) }

	f.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	f.handler.RegisterRoutes(f.app)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, body []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body, v), string(body))
}

func (f *fixture) startSearch(t *testing.T, userID string) models.SearchJob {
	t.Helper()
	resp, body := f.do(t, "POST", "/api/v1/searches", fiber.Map{
		"user_id":       userID,
		"business_type": "plumber",
		"location":      "Austin, TX",
		"radius":        10,
	})
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode, string(body))
	var env envelope
	decode(t, body, &env)
	var search models.SearchJob
	decode(t, env.Data, &search)
	return search
}

const userA = "7f1c2a8e-3b4d-4c5e-9f60-718293a4b5c6"

func TestSearchBusinesses(t *testing.T) {
	f := newFixture(t, inlineJobs{})
	name := "Joe's Plumbing"
	f.live.candidates = []models.BusinessCandidate{{Name: name, Reviews: []models.ReviewSnippet{}}}

	resp, body := f.do(t, "POST", "/functions/v1/search-businesses", fiber.Map{"businessType": "plumber", "location": "Austin"})
	assert.Equal(t, 200, resp.StatusCode)
	var out SearchBusinessesResponse
	decode(t, body, &out)
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.TotalResults)
	assert.Equal(t, name, out.Businesses[0].Name)
}

func TestSearchBusinessesErrors(t *testing.T) {
	tests := []struct {
		name   string
		live   fakeLive
		body   fiber.Map
		status int
		msg    string
	}{
		{"missing location", fakeLive{configured: true}, fiber.Map{"businessType": "plumber"}, 400, msgSearchInputRequired},
		{"blank type", fakeLive{configured: true}, fiber.Map{"businessType": "  ", "location": "Austin"}, 400, msgSearchInputRequired},
		{"not configured", fakeLive{}, fiber.Map{"businessType": "plumber", "location": "Austin"}, 500, msgFirecrawlMissing},
		{"provider failed", fakeLive{configured: true, err: source.ErrProviderFailed}, fiber.Map{"businessType": "plumber", "location": "Austin"}, 500, msgSearchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, inlineJobs{})
			*f.live = tt.live
			resp, body := f.do(t, "POST", "/functions/v1/search-businesses", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.JSONEq(t, `{"success":false,"error":"`+tt.msg+`"}`, string(body))
		})
	}
}

func TestFunctionPreflight(t *testing.T) {
	f := newFixture(t, inlineJobs{})
	for _, path := range []string{"/functions/v1/search-businesses", "/functions/v1/analyze-reviews", "/functions/v1/generate-cold-script"} {
		req := httptest.NewRequest("OPTIONS", path, nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		resp, err := f.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode, path)
		assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
		assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowHeaders), "x-client-info")
	}
}

func TestAnalyzeReviews(t *testing.T) {
	f := newFixture(t, inlineJobs{})
	resp, body := f.do(t, "POST", "/functions/v1/analyze-reviews", fiber.Map{
		"business": fiber.Map{"name": "Acme", "reviews": []fiber.Map{{"text": "Never called me back.", "rating": 1}}},
	})
	require.Equal(t, 200, resp.StatusCode, string(body))
	var out AnalyzeReviewsResponse
	decode(t, body, &out)
	assert.Equal(t, 8, out.Analysis.UrgencyScore)
	assert.Equal(t, "Hi Acme", out.Analysis.OutreachMessage)
}

func TestAnalyzeReviewsErrors(t *testing.T) {
	valid := fiber.Map{"business": fiber.Map{"name": "Acme", "reviews": []fiber.Map{{"text": "Slow."}}}}
	tests := []struct {
		name   string
		body   interface{}
		err    error
		status int
		msg    string
	}{
		{"no business", fiber.Map{}, nil, 400, msgNoReviews},
		{"empty reviews", fiber.Map{"business": fiber.Map{"name": "Acme", "reviews": []fiber.Map{}}}, nil, 400, msgNoReviews},
		{"not configured", valid, aiclient.ErrNotConfigured, 500, msgAIMissing},
		{"rate limited", valid, &aiclient.StatusError{StatusCode: 429}, 429, msgRateLimited},
		{"credits", valid, &aiclient.StatusError{StatusCode: 402}, 402, msgCreditsExhausted},
		{"upstream", valid, &aiclient.StatusError{StatusCode: 503}, 500, msgAnalysisFailed},
		{"empty answer", valid, aiclient.ErrEmptyResponse, 500, msgNoAnalysis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, inlineJobs{})
			f.analyzer.fail(tt.err)
			resp, body := f.do(t, "POST", "/functions/v1/analyze-reviews", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.JSONEq(t, `{"error":"`+tt.msg+`"}`, string(body))
		})
	}
}

func TestGenerateColdScript(t *testing.T) {
	f := newFixture(t, inlineJobs{})
	resp, body := f.do(t, "POST", "/functions/v1/generate-cold-script", fiber.Map{
		"business":     fiber.Map{"name": "Acme Roofing", "problemType": "Slow Response"},
		"userServices": []string{" Call answering ", ""},
	})
	require.Equal(t, 200, resp.StatusCode, string(body))
	var out GenerateScriptResponse
	decode(t, body, &out)
	assert.Contains(t, out.Script, "Acme Roofing")
	assert.Equal(t, []string{"Call answering"}, f.scripts.services)
	require.NotNil(t, f.scripts.business.ProblemType)
	assert.Equal(t, "Slow Response", *f.scripts.business.ProblemType)
}

func TestGenerateColdScriptErrors(t *testing.T) {
	valid := fiber.Map{"business": fiber.Map{"name": "Acme"}}
	tests := []struct {
		name   string
		body   interface{}
		err    error
		status int
		msg    string
	}{
		{"no business", fiber.Map{"userServices": []string{"SEO"}}, nil, 400, msgBusinessRequired},
		{"no name", fiber.Map{"business": fiber.Map{}}, nil, 400, msgBusinessRequired},
		{"empty script", valid, scriptgen.ErrNoScript, 500, msgNoScript},
		{"rate limited", valid, aiclient.ErrRateLimited, 429, msgRateLimited},
		{"credits", valid, aiclient.ErrQuotaExhausted, 402, msgCreditsExhausted},
		{"not configured", valid, aiclient.ErrNotConfigured, 500, msgAIMissing},
		{"other", valid, errors.New("connection reset"), 500, msgScriptFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, inlineJobs{})
			f.scripts.err = tt.err
			resp, body := f.do(t, "POST", "/functions/v1/generate-cold-script", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.JSONEq(t, `{"error":"`+tt.msg+`"}`, string(body))
		})
	}
}

func TestGenerateColdScriptValidatesBusinessName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		f := newFixture(t, inlineJobs{})
		resp, body := f.do(t, "POST", "/functions/v1/generate-cold-script", fiber.Map{
			"business": fiber.Map{"name": name, "phone": "555-0100"},
		})
		assert.Equal(t, 400, resp.StatusCode, "name %q", name)
		assert.JSONEq(t, `{"error":"`+msgBusinessRequired+`"}`, string(body))
		assert.Zero(t, f.scripts.calls, "generator must not run for name %q", name)
	}

	f := newFixture(t, inlineJobs{})
	resp, body := f.do(t, "POST", "/functions/v1/generate-cold-script", fiber.Map{
		"business": fiber.Map{"name": "  Acme   Roofing "},
	})
	require.Equal(t, 200, resp.StatusCode, string(body))
	assert.Equal(t, "Acme Roofing", f.scripts.business.Name)
}

func TestSearchLifecycle(t *testing.T) {
	f := newFixture(t, inlineJobs{})
	search := f.startSearch(t, userA)
	assert.Equal(t, "plumber", search.BusinessType)

	resp, body := f.do(t, "GET", "/api/v1/searches/"+search.ID.String(), nil)
	require.Equal(t, 200, resp.StatusCode)
	var env envelope
	decode(t, body, &env)
	var detail SearchDetail
	decode(t, env.Data, &detail)
	assert.Equal(t, models.SearchStatusCompleted, detail.Search.Status)
	require.NotNil(t, detail.Search.DataSource)
	assert.Equal(t, models.DataSourceSynthetic, *detail.Search.DataSource)
	assert.Equal(t, 100, detail.Progress.Percent)

	resp, body = f.do(t, "GET", "/api/v1/searches?user_id="+userA, nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(t, body, &env)
	var searches []models.SearchJob
	decode(t, env.Data, &searches)
	require.Len(t, searches, 1)
	assert.Equal(t, search.ID, searches[0].ID)

	resp, body = f.do(t, "GET", "/api/v1/searches/"+search.ID.String()+"/leads?urgency=high&sort=rating-desc", nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(t, body, &env)
	var leads []models.Business
	decode(t, env.Data, &leads)
	assert.Len(t, leads, pipeline.DefaultResultLimit)
	for i, b := range leads {
		require.NotNil(t, b.Analysis, b.Name)
		assert.Equal(t, models.UrgencyHigh, b.Analysis.Band())
		assert.NotEmpty(t, b.Reviews)
		if i > 0 {
			assert.GreaterOrEqual(t, ratingOf(leads[i-1]), ratingOf(b))
		}
	}

	resp, body = f.do(t, "GET", "/api/v1/searches/"+search.ID.String()+"/leads?urgency=low", nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(t, body, &env)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestSearchExport(t *testing.T) {
	f := newFixture(t, inlineJobs{})
	search := f.startSearch(t, userA)

	resp, body := f.do(t, "GET", "/api/v1/searches/"+search.ID.String()+"/export", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "leadscout-plumber-Austin--TX-2026-05-04.csv")
	lines := bytes.Split(bytes.TrimSpace(body), []byte("\n"))
	assert.Len(t, lines, pipeline.DefaultResultLimit+1)
	assert.True(t, bytes.HasPrefix(lines[0], []byte("Business Name,Address,Phone")))
}

func TestSearchExportHonoursLeadFilters(t *testing.T) {
	f := newFixture(t, inlineJobs{})
	search := f.startSearch(t, userA)
	base := "/api/v1/searches/" + search.ID.String() + "/export"

	resp, body := f.do(t, "GET", base+"?urgency=high&sort=rating-asc", nil)
	require.Equal(t, 200, resp.StatusCode, string(body))
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, pipeline.DefaultResultLimit+1)
	ratingCol := 4
	require.Equal(t, "Rating", records[0][ratingCol])
	prev := -1.0
	for _, rec := range records[1:] {
		rating, err := strconv.ParseFloat(rec[ratingCol], 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rating, prev)
		prev = rating
	}

	resp, body = f.do(t, "GET", base+"?urgency=low", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	var env envelope
	decode(t, body, &env)
	assert.Equal(t, "No data to export", env.Message)

	resp, _ = f.do(t, "GET", base+"?sort=newest", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSearchDuplicateRejectedWhileRunning(t *testing.T) {
	held := &heldJobs{}
	f := newFixture(t, held)
	first := f.startSearch(t, userA)

	resp, body := f.do(t, "POST", "/api/v1/searches", fiber.Map{
		"user_id": userA, "business_type": " PLUMBER ", "location": "austin,  tx", "radius": 10,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, string(body))

	resp, body = f.do(t, "POST", "/api/v1/searches", fiber.Map{
		"user_id": userA, "business_type": "plumber", "location": "Dallas, TX", "radius": 10,
	})
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode, string(body))

	resp, body = f.do(t, "GET", "/api/v1/searches/"+first.ID.String(), nil)
	require.Equal(t, 200, resp.StatusCode)
	var env envelope
	decode(t, body, &env)
	var detail SearchDetail
	decode(t, env.Data, &detail)
	assert.Equal(t, models.SearchStatusProcessing, detail.Search.Status)
	assert.Equal(t, pipeline.StepCreated, detail.Progress.Step)
	assert.Equal(t, 10, detail.Progress.Percent)

	held.run(t)
	f.startSearch(t, userA)
}

func TestSearchQueueFullReleasesFingerprint(t *testing.T) {
	f := newFixture(t, fullJobs{})
	req := fiber.Map{"user_id": userA, "business_type": "roofer", "location": "Denver", "radius": 5}

	resp, _ := f.do(t, "POST", "/api/v1/searches", req)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	f.handler.Jobs = inlineJobs{}
	resp, body := f.do(t, "POST", "/api/v1/searches", req)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode, string(body))
}

func TestSearchValidationAndLookup(t *testing.T) {
	f := newFixture(t, inlineJobs{})

	resp, body := f.do(t, "POST", "/api/v1/searches", fiber.Map{"business_type": "plumber", "location": "Austin"})
	assert.Equal(t, 400, resp.StatusCode)
	assert.Contains(t, string(body), "UserID")

	resp, body = f.do(t, "GET", "/api/v1/searches/not-a-uuid", nil)
	assert.Equal(t, 400, resp.StatusCode)
	assert.JSONEq(t, `{"status":"error","message":"Invalid search ID format"}`, string(body))

	resp, body = f.do(t, "GET", "/api/v1/searches/"+userA, nil)
	assert.Equal(t, 404, resp.StatusCode)
	assert.JSONEq(t, `{"status":"error","message":"Search not found"}`, string(body))

	resp, _ = f.do(t, "GET", "/api/v1/searches?user_id=nope", nil)
	assert.Equal(t, 400, resp.StatusCode)

	resp, _ = f.do(t, "GET", "/api/v1/searches/"+userA+"/leads?sort=name", nil)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestLeadLifecycle(t *testing.T) {
	f := newFixture(t, inlineJobs{})
	search := f.startSearch(t, userA)
	businesses, err := f.store.ListBusinesses(context.Background(), search.ID)
	require.NoError(t, err)
	target := businesses[0]

	resp, body := f.do(t, "POST", "/api/v1/leads", fiber.Map{"user_id": userA, "business_id": target.ID, "notes": "  call Monday "})
	require.Equal(t, 201, resp.StatusCode, string(body))
	var env envelope
	decode(t, body, &env)
	var lead models.SavedLead
	decode(t, env.Data, &lead)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
	require.NotNil(t, lead.Notes)
	assert.Equal(t, "call Monday", *lead.Notes)
	leadPath := "/api/v1/leads/" + lead.ID.String()

	resp, _ = f.do(t, "POST", "/api/v1/leads", fiber.Map{"user_id": userA, "business_id": target.ID})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = f.do(t, "POST", "/api/v1/leads", fiber.Map{"user_id": userA, "business_id": search.ID})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = f.do(t, "PATCH", leadPath, fiber.Map{"status": "contacted"})
	require.Equal(t, 200, resp.StatusCode, string(body))
	decode(t, body, &env)
	decode(t, env.Data, &lead)
	assert.Equal(t, models.LeadStatusContacted, lead.Status)
	require.NotNil(t, lead.ContactedAt)
	assert.True(t, lead.ContactedAt.Equal(time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)))

	resp, _ = f.do(t, "PATCH", leadPath, fiber.Map{"status": "won"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = f.do(t, "PATCH", leadPath, fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(t, "GET", "/api/v1/leads?user_id="+userA+"&status=contacted", nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(t, body, &env)
	var leads []models.SavedLead
	decode(t, env.Data, &leads)
	require.Len(t, leads, 1)
	require.NotNil(t, leads[0].Business)
	assert.Equal(t, target.Name, leads[0].Business.Name)

	resp, body = f.do(t, "GET", "/api/v1/leads?user_id="+userA+"&status=new", nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(t, body, &env)
	assert.JSONEq(t, `[]`, string(env.Data))

	resp, body = f.do(t, "PATCH", leadPath, fiber.Map{"status": "new"})
	require.Equal(t, 200, resp.StatusCode)
	decode(t, body, &env)
	var reopened models.SavedLead
	decode(t, env.Data, &reopened)
	assert.Equal(t, models.LeadStatusNew, reopened.Status)
	assert.Nil(t, reopened.ContactedAt)

	resp, _ = f.do(t, "DELETE", leadPath, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp, body = f.do(t, "GET", leadPath, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"status":"error","message":"Lead not found"}`, string(body))
	resp, _ = f.do(t, "DELETE", leadPath, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLeadScriptUsesProfileServices(t *testing.T) {
	f := newFixture(t, inlineJobs{})
	search := f.startSearch(t, userA)
	businesses, err := f.store.ListBusinesses(context.Background(), search.ID)
	require.NoError(t, err)

	resp, body := f.do(t, "GET", "/api/v1/profiles/"+userA+"/services", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"status":"success","data":[]}`, string(body))

	resp, body = f.do(t, "PUT", "/api/v1/profiles/"+userA+"/services", fiber.Map{"services": []string{" Missed-call text back ", "", "Reputation management"}})
	require.Equal(t, 200, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"status":"success","data":["Missed-call text back","Reputation management"]}`, string(body))

	resp, body = f.do(t, "POST", "/api/v1/leads", fiber.Map{"user_id": userA, "business_id": businesses[0].ID})
	require.Equal(t, 201, resp.StatusCode, string(body))
	var env envelope
	decode(t, body, &env)
	var lead models.SavedLead
	decode(t, env.Data, &lead)

	resp, body = f.do(t, "POST", "/api/v1/leads/"+lead.ID.String()+"/script", nil)
	require.Equal(t, 200, resp.StatusCode, string(body))
	decode(t, body, &env)
	decode(t, env.Data, &lead)
	require.NotNil(t, lead.ColdCallScript)
	assert.Contains(t, *lead.ColdCallScript, businesses[0].Name)

	assert.Equal(t, []string{"Missed-call text back", "Reputation management"}, f.scripts.services)
	require.NotNil(t, f.scripts.business.ProblemType)
	assert.Equal(t, "No Callback", *f.scripts.business.ProblemType)
	require.NotNil(t, f.scripts.business.Summary)

	stored, err := f.store.GetLead(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.ColdCallScript, stored.ColdCallScript)

	f.scripts.err = aiclient.ErrQuotaExhausted
	resp, body = f.do(t, "POST", "/api/v1/leads/"+lead.ID.String()+"/script", nil)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
	assert.JSONEq(t, `{"status":"error","message":"`+msgCreditsExhausted+`"}`, string(body))
}

func TestProfileServicesValidation(t *testing.T) {
	f := newFixture(t, inlineJobs{})
	resp, _ := f.do(t, "PUT", "/api/v1/profiles/nope/services", fiber.Map{"services": []string{}})
	assert.Equal(t, 400, resp.StatusCode)

	many := make([]string, maxServices+1)
	for i := range many {
		many[i] = "svc"
	}
	resp, _ = f.do(t, "PUT", "/api/v1/profiles/"+userA+"/services", fiber.Map{"services": many})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, inlineJobs{})
	resp, body := f.do(t, "GET", "/health", nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), `"ok"`)
}
