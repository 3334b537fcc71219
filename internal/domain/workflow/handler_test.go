package workflow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/auth"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/validate"
)

func newTestHandler(repo *mockRepo, ad *mockAudit) (*Handler, *echo.Echo) {
	h := NewHandler(NewService(repo, ad))
	e := echo.New()
	e.Validator = validate.New()
	return h, e
}

func contextWithIdentity(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, id auth.Identity) echo.Context {
	req = req.WithContext(auth.WithIdentity(req.Context(), id))
	return e.NewContext(req, rec)
}

func TestHandler_GetStats(t *testing.T) {
	h, e := newTestHandler(seededRepo(), &mockAudit{completedToday: 2})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/workflow/stats", nil)
	rec := httptest.NewRecorder()
	c := contextWithIdentity(e, req, rec, adminIdentity(5))

	if err := h.GetStats(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if stats.CompletedToday != 2 {
		t.Errorf("completedToday = %d, want 2", stats.CompletedToday)
	}
	if !stats.Estimated {
		t.Error("stats payload must be marked estimated")
	}
}

func TestHandler_ListTasks(t *testing.T) {
	h, e := newTestHandler(seededRepo(), &mockAudit{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/workflow/tasks?priority=high", nil)
	rec := httptest.NewRecorder()
	c := contextWithIdentity(e, req, rec, adminIdentity(5))

	if err := h.ListTasks(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Tasks []*Task `json:"tasks"`
		Total int     `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Total != 1 {
		t.Fatalf("total = %d, want 1 (only the org task is high priority)", body.Total)
	}
	if body.Tasks[0].Type != KindOrgApproval {
		t.Errorf("task type = %s, want %s", body.Tasks[0].Type, KindOrgApproval)
	}
}

func TestHandler_ApproveTask(t *testing.T) {
	repo := seededRepo()
	ad := &mockAudit{}
	h, e := newTestHandler(repo, ad)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"role":"nurse"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := contextWithIdentity(e, req, rec, adminIdentity(5))
	c.SetParamNames("taskId")
	c.SetParamValues("2")

	if err := h.ApproveTask(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if repo.activatedUsers[2] != "nurse" {
		t.Errorf("activated role = %q, want nurse", repo.activatedUsers[2])
	}
}

func TestHandler_ApproveTask_InvalidRole(t *testing.T) {
	h, e := newTestHandler(seededRepo(), &mockAudit{})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"role":"wizard"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := contextWithIdentity(e, req, rec, adminIdentity(5))
	c.SetParamNames("taskId")
	c.SetParamValues("1")

	err := h.ApproveTask(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandler_ApproveTask_BadTaskID(t *testing.T) {
	h, e := newTestHandler(seededRepo(), &mockAudit{})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := contextWithIdentity(e, req, rec, adminIdentity(5))
	c.SetParamNames("taskId")
	c.SetParamValues("not-a-number")

	err := h.ApproveTask(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandler_RejectTask(t *testing.T) {
	repo := seededRepo()
	ad := &mockAudit{}
	h, e := newTestHandler(repo, ad)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"incomplete application"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := contextWithIdentity(e, req, rec, adminIdentity(5))
	c.SetParamNames("taskId")
	c.SetParamValues("100005")

	if err := h.RejectTask(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["reason"] != "incomplete application" {
		t.Errorf("reason = %v", body["reason"])
	}
	if len(repo.activatedOrgs) != 0 {
		t.Error("reject must not activate anything")
	}
	if len(ad.entries) != 1 {
		t.Errorf("audit entries = %d, want 1", len(ad.entries))
	}
}

func TestRegisterRoutes_RequiresAdminRole(t *testing.T) {
	h, e := newTestHandler(seededRepo(), &mockAudit{})
	api := e.Group("/api/v1/admin")
	h.RegisterRoutes(api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/workflow/stats", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(),
		auth.Identity{UserID: 3, OrgID: 5, Role: auth.RoleNurse}))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for nurse, got %d", rec.Code)
	}
}
