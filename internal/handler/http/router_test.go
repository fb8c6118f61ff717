package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lucidata/hr-core-go/internal/app"
	"github.com/lucidata/hr-core-go/internal/config"
	"github.com/lucidata/hr-core-go/internal/domain/user"
	"github.com/lucidata/hr-core-go/internal/pkg/database"
	"github.com/lucidata/hr-core-go/internal/pkg/jwt"
	"github.com/lucidata/hr-core-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *chi.Mux
	jwt    *jwt.JWTService
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	db, err := database.NewSQLiteDB(filepath.Join(dir, "hr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.MigrateSQLite(context.Background(), db))

	files, err := storage.NewLocalStorage(filepath.Join(dir, "uploads"), "http://localhost/uploads")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Documents.WarnDays = 30
	cfg.Audit.Actor = "HR Admin"

	services := app.NewServices(cfg, app.SQLiteRepositories(db), files)
	t.Cleanup(services.Stop)

	jwtService, err := jwt.NewJWTService("test-secret", "1h")
	require.NoError(t, err)

	router := NewRouter(RouterConfig{Env: "test", AllowedOrigins: []string{"*"}}, jwtService, Handlers{
		Employee:     NewEmployeeHandler(services.Employee),
		Document:     NewDocumentHandler(services.Document),
		Workflow:     NewWorkflowHandler(services.Workflow),
		Feedback:     NewFeedbackHandler(services.Feedback),
		Admin:        NewAdminHandler(services.Audit, services.SettingsSvc),
		Notification: NewNotificationHandler(services.Notification),
		SelfService:  NewSelfServiceHandler(services.Document, services.Workflow),
	})
	return &testServer{router: router, jwt: jwtService}
}

func (s *testServer) token(t *testing.T, role user.Role, employeeID string) string {
	t.Helper()
	var emp *string
	if employeeID != "" {
		emp = &employeeID
	}
	tok, _, err := s.jwt.GenerateToken(string(role)+"@lucidata.io", role, emp, "")
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) (int, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func (s *testServer) createEmployee(t *testing.T, admin, first string, managerID *string) string {
	t.Helper()
	body := map[string]interface{}{
		"first_name":    first,
		"last_name":     "Test",
		"email_company": first + "@lucidata.io",
		"department":    "Engineering",
		"role":          "Engineer",
	}
	if managerID != nil {
		body["manager_id"] = *managerID
	}
	code, env := s.do(t, http.MethodPost, "/api/v1/employees/", admin, body)
	require.Equal(t, http.StatusCreated, code, env.Error)
	var out struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &out)
	return out.ID
}

func TestRouter_Authentication(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/api/v1/employees/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = s.do(t, http.MethodGet, "/api/v1/employees/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/employees/", s.token(t, user.RoleEmployee, ""), nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/me/documents", s.token(t, user.RoleEmployee, ""), nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouter_EmployeesAndValidation(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, user.RoleHRAdmin, "")

	ceo := s.createEmployee(t, admin, "ana", nil)
	s.createEmployee(t, admin, "bogdan", &ceo)

	code, env := s.do(t, http.MethodPost, "/api/v1/employees/", admin, map[string]interface{}{
		"first_name": "", "last_name": "X", "email_company": "nope", "role": "x",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error.Details, "first_name")
	assert.Contains(t, env.Error.Details, "email_company")

	code, _ = s.do(t, http.MethodPost, "/api/v1/employees/", admin, map[string]interface{}{
		"first_name": "Dup", "last_name": "X", "email_company": "ana@lucidata.io", "role": "x",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/employees/"+ceo, admin, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/employees/org-chart", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var chart struct {
		Roots []struct {
			ID      string        `json:"id"`
			Reports []interface{} `json:"reports"`
		} `json:"roots"`
	}
	decodeData(t, env, &chart)
	require.Len(t, chart.Roots, 1)
	assert.Equal(t, ceo, chart.Roots[0].ID)
	assert.Len(t, chart.Roots[0].Reports, 1)

	code, env = s.do(t, http.MethodGet, "/api/v1/employees/?search=bog", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var list []map[string]interface{}
	decodeData(t, env, &list)
	assert.Len(t, list, 1)
}

func TestRouter_DocumentsExpiring(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, user.RoleHRAdmin, "")
	owner := s.createEmployee(t, admin, "carmen", nil)
	today := time.Now().UTC()

	create := func(name string, expiresIn int) {
		code, env := s.do(t, http.MethodPost, "/api/v1/documents/", admin, map[string]interface{}{
			"employee_id": owner,
			"category":    "contract",
			"file_name":   name,
			"issue_date":  today.AddDate(-1, 0, 0).Format("2006-01-02"),
			"expiry_date": today.AddDate(0, 0, expiresIn).Format("2006-01-02"),
		})
		require.Equal(t, http.StatusCreated, code, env.Error)
	}
	create("soon.pdf", 10)
	create("later.pdf", 200)

	code, env := s.do(t, http.MethodPost, "/api/v1/documents/", admin, map[string]interface{}{
		"employee_id": owner,
		"category":    "contract",
		"file_name":   "bad.pdf",
		"issue_date":  "2025-01-01",
		"expiry_date": "2024-01-01",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error.Details, "expiry_date")

	code, env = s.do(t, http.MethodGet, "/api/v1/documents/expiring", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var expiring []struct {
		FileName string `json:"file_name"`
		Status   string `json:"status"`
	}
	decodeData(t, env, &expiring)
	require.Len(t, expiring, 1)
	assert.Equal(t, "soon.pdf", expiring[0].FileName)
	assert.Equal(t, "Warning", expiring[0].Status)

	code, env = s.do(t, http.MethodGet, "/api/v1/documents/?status=OK", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var ok []map[string]interface{}
	decodeData(t, env, &ok)
	require.Len(t, ok, 1)
	assert.Equal(t, "later.pdf", ok[0]["file_name"])

	// the owner sees their own documents through self service
	code, env = s.do(t, http.MethodGet, "/api/v1/me/documents", s.token(t, user.RoleEmployee, owner), nil)
	require.Equal(t, http.StatusOK, code)
	var mine []map[string]interface{}
	decodeData(t, env, &mine)
	assert.Len(t, mine, 2)

	// a lower threshold turns the Warning document back to OK on read
	code, _ = s.do(t, http.MethodPut, "/api/v1/settings/", admin, map[string]interface{}{"warn_days": 7})
	require.Equal(t, http.StatusOK, code)
	code, env = s.do(t, http.MethodGet, "/api/v1/documents/expiring", admin, nil)
	require.Equal(t, http.StatusOK, code)
	decodeData(t, env, &expiring)
	assert.Empty(t, expiring)
}

func TestRouter_WorkflowApproval(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, user.RoleHRAdmin, "")
	requester := s.createEmployee(t, admin, "dan", nil)
	employeeTok := s.token(t, user.RoleEmployee, requester)
	managerTok := s.token(t, user.RoleManager, "")
	hrTok := s.token(t, user.RoleHR, "")
	financeTok := s.token(t, user.RoleFinance, "")

	code, env := s.do(t, http.MethodPost, "/api/v1/me/workflows", employeeTok, map[string]interface{}{
		"type":   "leave",
		"reason": "Family trip",
		"days":   3,
		"submit": true,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var req struct {
		ID          string `json:"id"`
		RequesterID string `json:"requester_id"`
		Status      string `json:"status"`
		NextStep    string `json:"next_step"`
		Version     int    `json:"version"`
	}
	decodeData(t, env, &req)
	assert.Equal(t, requester, req.RequesterID)
	assert.Equal(t, "Pending", req.Status)
	assert.Equal(t, "Manager", req.NextStep)
	path := "/api/v1/workflows/" + req.ID

	// wrong role for the step
	code, _ = s.do(t, http.MethodPost, path+"/decisions", hrTok, map[string]interface{}{"step": "Manager", "decision": "Approved"})
	assert.Equal(t, http.StatusForbidden, code)

	// out of sequence
	code, env = s.do(t, http.MethodPost, path+"/decisions", hrTok, map[string]interface{}{"step": "HR", "decision": "Approved"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, env.Error.Message, "next step is Manager")

	code, env = s.do(t, http.MethodPost, path+"/decisions", managerTok, map[string]interface{}{
		"step": "Manager", "decision": "Approved", "version": req.Version,
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	stale := req.Version
	decodeData(t, env, &req)
	assert.Equal(t, "HR", req.NextStep)

	// a client still holding the old version is refused
	code, _ = s.do(t, http.MethodPost, path+"/comments", hrTok, map[string]interface{}{"text": "checking", "version": stale})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(t, http.MethodPost, path+"/comments", hrTok, map[string]interface{}{"text": "checking"})
	require.Equal(t, http.StatusCreated, code)

	code, _ = s.do(t, http.MethodPost, path+"/decisions", hrTok, map[string]interface{}{"step": "HR", "decision": "Approved"})
	require.Equal(t, http.StatusOK, code)
	code, env = s.do(t, http.MethodPost, path+"/decisions", financeTok, map[string]interface{}{"step": "Finance", "decision": "Approved"})
	require.Equal(t, http.StatusOK, code)
	decodeData(t, env, &req)
	assert.Equal(t, "Approved", req.Status)
	assert.Equal(t, "Done", req.NextStep)

	// terminal requests refuse further decisions and deletion
	code, _ = s.do(t, http.MethodPost, path+"/decisions", admin, map[string]interface{}{"step": "Finance", "decision": "Rejected"})
	assert.Equal(t, http.StatusConflict, code)
	code, _ = s.do(t, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/me/workflows", employeeTok, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []map[string]interface{}
	decodeData(t, env, &mine)
	assert.Len(t, mine, 1)

	code, env = s.do(t, http.MethodGet, "/api/v1/audit?entity_type=workflow", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var entries []struct {
		Actor  string `json:"actor"`
		Action string `json:"action"`
	}
	decodeData(t, env, &entries)
	assert.Len(t, entries, 5)
	actors := map[string]bool{}
	for _, e := range entries {
		actors[e.Actor] = true
	}
	assert.True(t, actors["finance@lucidata.io"])
	assert.True(t, actors["manager@lucidata.io"])
}

func TestRouter_WorkflowAttachment(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, user.RoleHRAdmin, "")
	requester := s.createEmployee(t, admin, "elena", nil)
	employeeTok := s.token(t, user.RoleEmployee, requester)

	code, env := s.do(t, http.MethodPost, "/api/v1/me/workflows", employeeTok, map[string]interface{}{
		"type": "equipment", "reason": "Laptop",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var req struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &req)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "quote.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 quote"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("version", "1"))
	require.NoError(t, mw.Close())

	httpReq := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/workflows/%s/attachments", req.ID), &body)
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	code, env = s.send(t, httpReq, employeeTok)
	require.Equal(t, http.StatusCreated, code, env.Error)

	var out struct {
		Version     int `json:"version"`
		Attachments []struct {
			FileName string `json:"file_name"`
		} `json:"attachments"`
	}
	decodeData(t, env, &out)
	assert.Equal(t, 2, out.Version)
	require.Len(t, out.Attachments, 1)
	assert.Equal(t, "quote.pdf", out.Attachments[0].FileName)

	// another employee may not submit this request
	other := s.token(t, user.RoleEmployee, "0190f7a4-7c1e-7000-8000-00000000abcd")
	code, _ = s.do(t, http.MethodPost, "/api/v1/workflows/"+req.ID+"/submit", other, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/workflows/"+req.ID+"/submit", employeeTok, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_FeedbackDashboard(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, user.RoleHRAdmin, "")

	code, env := s.do(t, http.MethodPost, "/api/v1/feedback/", s.token(t, user.RoleEmployee, ""), map[string]interface{}{
		"text": "More remote days please", "department": "Sales",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var fb struct {
		ID        string `json:"id"`
		Anonymous bool   `json:"anonymous"`
	}
	decodeData(t, env, &fb)
	assert.True(t, fb.Anonymous)

	code, _ = s.do(t, http.MethodPut, "/api/v1/feedback/"+fb.ID+"/analysis", admin, map[string]interface{}{"score": 0.4, "label": "Positive"})
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/feedback/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var dash struct {
		Total    int `json:"total"`
		Analyzed int `json:"analyzed"`
	}
	decodeData(t, env, &dash)
	assert.Equal(t, 1, dash.Total)
	assert.Equal(t, 1, dash.Analyzed)
}
