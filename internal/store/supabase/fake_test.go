package supabase

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"
)

// newREST points a bare PostgREST client at url + "/rest/v1".
func newREST(url, serviceKey string, log logrus.FieldLogger) (*Store, error) {
	client := postgrest.NewClient(url+"/rest/v1", "", map[string]string{
		"apikey":        serviceKey,
		"Authorization": fmt.Sprintf("Bearer %s", serviceKey),
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("failed to initialize PostgREST client: %w", client.ClientError)
	}
	return New(client, log), nil
}

// fakePostgrest serves the subset of PostgREST the store uses: eq and in
// filters, single-column ordering, limit, bulk insert, upsert, patch and
// delete.
type fakePostgrest struct {
	mu      sync.Mutex
	tables  map[string][]map[string]interface{}
	unique  map[string][][]string
	failing map[string]int // "METHOD table" -> status
	calls   []string
}

func newFakePostgrest(t *testing.T) (*fakePostgrest, *httptest.Server) {
	f := &fakePostgrest{
		tables: make(map[string][]map[string]interface{}),
		unique: map[string][][]string{
			"searches":    {{"id"}},
			"businesses":  {{"id"}},
			"reviews":     {{"id"}},
			"analyses":    {{"id"}, {"business_id"}},
			"saved_leads": {{"id"}, {"user_id", "business_id"}},
			"profiles":    {{"id"}},
		},
		failing: make(map[string]int),
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakePostgrest) fail(method, table string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[method+" "+table] = status
}

func (f *fakePostgrest) rows(table string) []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]interface{}(nil), f.tables[table]...)
}

// reverse flips a table's physical row order, the way Postgres may return
// heap rows in any order when the sort key ties.
func (f *fakePostgrest) reverse(table string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.tables[table]
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": msg})
}

func writeRows(w http.ResponseWriter, status int, rows []map[string]interface{}) {
	if rows == nil {
		rows = []map[string]interface{}{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rows)
}

func str(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func (f *fakePostgrest) matches(row map[string]interface{}, query map[string][]string) bool {
	for key, values := range query {
		switch key {
		case "select", "order", "limit", "offset", "on_conflict":
			continue
		}
		for _, v := range values {
			got := str(row[key])
			switch {
			case strings.HasPrefix(v, "eq."):
				if got != strings.TrimPrefix(v, "eq.") {
					return false
				}
			case strings.HasPrefix(v, "in.("):
				set := strings.Split(strings.TrimSuffix(strings.TrimPrefix(v, "in.("), ")"), ",")
				found := false
				for _, s := range set {
					if strings.Trim(s, `"`) == got {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
		}
	}
	return true
}

func (f *fakePostgrest) conflict(table string, row map[string]interface{}, rows []map[string]interface{}) (int, bool) {
	for _, cols := range f.unique[table] {
		for i, existing := range rows {
			same := true
			for _, c := range cols {
				if str(existing[c]) != str(row[c]) {
					same = false
					break
				}
			}
			if same {
				return i, true
			}
		}
	}
	return -1, false
}

func (f *fakePostgrest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	f.calls = append(f.calls, r.Method+" "+table)
	if status, ok := f.failing[r.Method+" "+table]; ok {
		writeError(w, status, "XX000", "injected failure")
		return
	}
	query := r.URL.Query()
	prefer := r.Header.Get("Prefer")
	representation := strings.Contains(prefer, "return=representation")

	switch r.Method {
	case http.MethodGet:
		var out []map[string]interface{}
		for _, row := range f.tables[table] {
			if f.matches(row, query) {
				out = append(out, row)
			}
		}
		if order := query.Get("order"); order != "" {
			parts := strings.Split(order, ".")
			col, desc := parts[0], len(parts) > 1 && parts[1] == "desc"
			sort.SliceStable(out, func(i, j int) bool {
				a, b := out[i][col], out[j][col]
				if fa, ok := a.(float64); ok {
					if fb, ok := b.(float64); ok {
						if desc {
							return fa > fb
						}
						return fa < fb
					}
				}
				if desc {
					return str(a) > str(b)
				}
				return str(a) < str(b)
			})
		}
		if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit < len(out) {
			out = out[:limit]
		}
		writeRows(w, http.StatusOK, out)

	case http.MethodPost:
		var body interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "PGRST102", err.Error())
			return
		}
		var incoming []map[string]interface{}
		switch b := body.(type) {
		case []interface{}:
			for _, item := range b {
				incoming = append(incoming, item.(map[string]interface{}))
			}
		case map[string]interface{}:
			incoming = append(incoming, b)
		}
		merge := strings.Contains(prefer, "resolution=merge-duplicates")
		next := append([]map[string]interface{}(nil), f.tables[table]...)
		for _, row := range incoming {
			if i, dup := f.conflict(table, row, next); dup {
				if !merge {
					writeError(w, http.StatusConflict, "23505", "duplicate key value violates unique constraint")
					return
				}
				for k, v := range row {
					next[i][k] = v
				}
				continue
			}
			next = append(next, row)
		}
		f.tables[table] = next
		if representation {
			writeRows(w, http.StatusCreated, incoming)
			return
		}
		w.WriteHeader(http.StatusCreated)

	case http.MethodPatch:
		var patch map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "PGRST102", err.Error())
			return
		}
		var out []map[string]interface{}
		for _, row := range f.tables[table] {
			if !f.matches(row, query) {
				continue
			}
			for k, v := range patch {
				row[k] = v
			}
			out = append(out, row)
		}
		if representation {
			writeRows(w, http.StatusOK, out)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		var kept, removed []map[string]interface{}
		for _, row := range f.tables[table] {
			if f.matches(row, query) {
				removed = append(removed, row)
			} else {
				kept = append(kept, row)
			}
		}
		f.tables[table] = kept
		if representation {
			writeRows(w, http.StatusOK, removed)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "PGRST000", "method not allowed")
	}
}
