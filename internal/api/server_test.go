package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/service"
	"github.com/nhle/planit/tests/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorInfo      `json:"error"`
}

func newTestServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	st := testutil.NewTestStore(t)
	clock := testutil.NewClock(2025, time.January, 8, 9)
	srv := NewServer(
		service.NewTaskService(st, clock, nil),
		service.NewGroupService(st, nil),
		Options{Token: token, CORSOrigin: "http://localhost:5173"},
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (*http.Response, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

const gymBody = `{"title":"Gym","repeatFrequency":"WEEKLY","repeatDays":"MON,WED","startDate":"2025-01-06"}`

func TestHealth(t *testing.T) {
	ts := newTestServer(t, "")
	resp, env := do(t, ts, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
}

func TestTaskCRUD(t *testing.T) {
	ts := newTestServer(t, "")

	resp, env := do(t, ts, http.MethodPost, "/api/tasks", `{"title":"Dentist","deadline":"2025-01-20","priority":"HIGH"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeData[model.Task](t, env)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "2025-01-20", created.Deadline.String())

	resp, env = do(t, ts, http.MethodGet, "/api/tasks/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Dentist", decodeData[model.Task](t, env).Title)

	resp, env = do(t, ts, http.MethodPut, "/api/tasks/"+created.ID, `{"title":"Dentist appointment","priority":"LOW"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeData[model.Task](t, env)
	assert.Equal(t, "Dentist appointment", updated.Title)
	assert.Equal(t, model.PriorityLow, updated.Priority)

	resp, env = do(t, ts, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeData[struct {
		Tasks []model.Task `json:"tasks"`
		Total int          `json:"total"`
	}](t, env)
	assert.Equal(t, 1, list.Total)

	resp, _ = do(t, ts, http.MethodDelete, "/api/tasks/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = do(t, ts, http.MethodGet, "/api/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, codeNotFound, env.Error.Code)
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t, "")
	_, env := do(t, ts, http.MethodPost, "/api/tasks", `{"title":"Laundry"}`)
	oneOff := decodeData[model.Task](t, env)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"blank title", http.MethodPost, "/api/tasks", `{"title":"  "}`, http.StatusBadRequest, codeValidation},
		{"malformed json", http.MethodPost, "/api/tasks", `{"title":`, http.StatusBadRequest, codeInvalidJSON},
		{"malformed body date", http.MethodPost, "/api/tasks", `{"title":"x","deadline":"2025-02-30"}`, http.StatusBadRequest, codeInvalidJSON},
		{"bad done filter", http.MethodGet, "/api/tasks?done=maybe", "", http.StatusBadRequest, codeInvalidArgument},
		{"malformed path date", http.MethodPost, "/api/tasks/" + oneOff.ID + "/occurrences/2025-13-01/complete", "", http.StatusBadRequest, codeInvalidArgument},
		{"malformed agenda date", http.MethodGet, "/api/agenda/tomorrow", "", http.StatusBadRequest, codeInvalidArgument},
		{"malformed query date", http.MethodGet, "/api/tasks/" + oneOff.ID + "/occurrences?from=01/02/2025", "", http.StatusBadRequest, codeInvalidArgument},
		{"not recurring", http.MethodPost, "/api/tasks/" + oneOff.ID + "/occurrences/2025-01-08/exclude", "", http.StatusBadRequest, codeValidation},
		{"unknown task", http.MethodPut, "/api/tasks/nope/done", "", http.StatusNotFound, codeNotFound},
		{"unknown group", http.MethodPut, "/api/groups/99", `{"name":"x"}`, http.StatusNotFound, codeNotFound},
		{"bad group id", http.MethodDelete, "/api/groups/abc", "", http.StatusBadRequest, codeInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := do(t, ts, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestRecurringTaskFlow(t *testing.T) {
	ts := newTestServer(t, "")

	resp, env := do(t, ts, http.MethodPost, "/api/tasks", gymBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	gym := decodeData[model.Task](t, env)
	require.NotNil(t, gym.NextOccurrence)
	assert.Equal(t, "2025-01-08", gym.NextOccurrence.String())

	resp, env = do(t, ts, http.MethodPut, "/api/tasks/"+gym.ID+"/done", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2025-01-13", decodeData[model.Task](t, env).NextOccurrence.String())

	resp, env = do(t, ts, http.MethodPost, "/api/tasks/"+gym.ID+"/occurrences/2025-01-13/exclude", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2025-01-15", decodeData[model.Task](t, env).NextOccurrence.String())

	resp, env = do(t, ts, http.MethodGet, "/api/tasks/"+gym.ID+"/occurrences?from=2025-01-06&to=2025-01-15", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	occ := decodeData[[]service.Occurrence](t, env)
	require.Len(t, occ, 3)
	assert.Equal(t, "2025-01-06", occ[0].Date.String())
	assert.Equal(t, "2025-01-08", occ[1].Date.String())
	assert.True(t, occ[1].Completed)
	assert.Equal(t, "2025-01-15", occ[2].Date.String())

	resp, env = do(t, ts, http.MethodPost, "/api/tasks/"+gym.ID+"/occurrences/2025-01-14/complete", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, codeValidation, env.Error.Code)

	resp, env = do(t, ts, http.MethodPost, "/api/tasks/"+gym.ID+"/cutoff/2025-01-15", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cut := decodeData[model.Task](t, env)
	assert.Equal(t, "2025-01-14", cut.RepeatUntil.String())
	assert.Nil(t, cut.NextOccurrence)

	resp, env = do(t, ts, http.MethodPut, "/api/tasks/"+gym.ID+"/undone", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2025-01-08", decodeData[model.Task](t, env).NextOccurrence.String())
}

func TestAgendaAndDashboard(t *testing.T) {
	ts := newTestServer(t, "")
	do(t, ts, http.MethodPost, "/api/tasks", gymBody)
	do(t, ts, http.MethodPost, "/api/tasks", `{"title":"Taxes","deadline":"2025-01-02"}`)

	resp, env := do(t, ts, http.MethodGet, "/api/agenda/2025-01-08", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	agenda := decodeData[struct {
		Date  string       `json:"date"`
		Tasks []model.Task `json:"tasks"`
	}](t, env)
	assert.Equal(t, "2025-01-08", agenda.Date)
	require.Len(t, agenda.Tasks, 1)
	assert.Equal(t, "Gym", agenda.Tasks[0].Title)

	resp, env = do(t, ts, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dash := decodeData[dashboardResponse](t, env)
	assert.Equal(t, 2, dash.Total)
	assert.Equal(t, 1, dash.Overdue)
	assert.Equal(t, 1, dash.DueToday)
	assert.Equal(t, 50, dash.PercentOverdue)
}

func TestArchiveAndClearCompleted(t *testing.T) {
	ts := newTestServer(t, "")
	_, env := do(t, ts, http.MethodPost, "/api/tasks", `{"title":"Old"}`)
	old := decodeData[model.Task](t, env)
	_, env = do(t, ts, http.MethodPost, "/api/tasks", `{"title":"Finished"}`)
	finished := decodeData[model.Task](t, env)

	resp, _ := do(t, ts, http.MethodPost, "/api/tasks/"+old.ID+"/archive", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, env = do(t, ts, http.MethodGet, "/api/archive", "")
	archived := decodeData[[]model.Task](t, env)
	require.Len(t, archived, 1)
	assert.Equal(t, old.ID, archived[0].ID)

	do(t, ts, http.MethodPut, "/api/tasks/"+finished.ID+"/done", "")
	resp, env = do(t, ts, http.MethodDelete, "/api/tasks/completed", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]int{"deleted": 1}, decodeData[map[string]int](t, env))
}

func TestGroups(t *testing.T) {
	ts := newTestServer(t, "")

	resp, env := do(t, ts, http.MethodPost, "/api/groups", `{"id":77,"name":" Home "}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	g := decodeData[model.Group](t, env)
	assert.NotEqual(t, int64(77), g.ID)
	assert.Equal(t, "Home", g.Name)

	resp, env = do(t, ts, http.MethodPut, "/api/groups/"+jsonInt(g.ID), `{"name":"House"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "House", decodeData[model.Group](t, env).Name)

	_, env = do(t, ts, http.MethodGet, "/api/groups", "")
	assert.Len(t, decodeData[[]model.Group](t, env), 1)

	resp, _ = do(t, ts, http.MethodDelete, "/api/groups/"+jsonInt(g.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, env = do(t, ts, http.MethodGet, "/api/groups", "")
	assert.Empty(t, decodeData[[]model.Group](t, env))
}

func TestCalendarExport(t *testing.T) {
	ts := newTestServer(t, "")
	do(t, ts, http.MethodPost, "/api/tasks", gymBody)

	resp, err := ts.Client().Get(ts.URL + "/api/calendar.ics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/calendar; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "BEGIN:VTODO")
	assert.Contains(t, string(body), "SUMMARY:Gym")
	assert.Contains(t, string(body), "RRULE:")
}

func TestBearerAuth(t *testing.T) {
	ts := newTestServer(t, "s3cret")

	resp, env := do(t, ts, http.MethodGet, "/api/tasks", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, codeUnauthorized, env.Error.Code)

	resp, _ = do(t, ts, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health stays public")

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, "s3cret")

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/tasks/abc", nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRecoverPanic(t *testing.T) {
	srv := NewServer(nil, nil, Options{})
	h := chain(func(http.ResponseWriter, *http.Request) { panic("boom") }, srv.recoverPanic)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), codeInternal)
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
