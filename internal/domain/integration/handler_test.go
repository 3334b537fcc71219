package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/lacson1/bluequeehealthcare-sub014/internal/domain/patient"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/integrations"
)

type mockPatients struct {
	patients map[int64]*patient.Patient
}

func (m *mockPatients) GetByID(_ context.Context, id int64) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type mockDelegate struct {
	calls []string
	fail  bool
}

func (m *mockDelegate) result(name string, id int64) (*integrations.Result, error) {
	m.calls = append(m.calls, name)
	if m.fail {
		return nil, errors.New("upstream exploded")
	}
	return &integrations.Result{Integration: name, Status: "ok"}, nil
}

func (m *mockDelegate) SyncLabResults(_ context.Context, id int64) (*integrations.Result, error) {
	return m.result("lab-sync", id)
}

func (m *mockDelegate) SendPrescription(_ context.Context, id int64) (*integrations.Result, error) {
	return m.result("e-prescribe", id)
}

func (m *mockDelegate) VerifyInsurance(_ context.Context, id int64) (*integrations.Result, error) {
	return m.result("verify-insurance", id)
}

func (m *mockDelegate) CreateTelemedicineSession(_ context.Context, id int64) (*integrations.Result, error) {
	return m.result("telemedicine", id)
}

func newTestHandler(d *mockDelegate) (*Handler, *echo.Echo) {
	patients := &mockPatients{patients: map[int64]*patient.Patient{
		7: {ID: 7, OrganizationID: 5, FirstName: "Ana", LastName: "Silva"},
	}}
	return NewHandler(patients, d), echo.New()
}

func TestHandler_ExportPatient(t *testing.T) {
	h, e := newTestHandler(&mockDelegate{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("patientId")
	c.SetParamValues("7")

	if err := h.ExportPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resource map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resource)
	if resource["resourceType"] != "Patient" {
		t.Errorf("resourceType = %v, want Patient", resource["resourceType"])
	}
}

func TestHandler_ExportPatient_NotFound(t *testing.T) {
	h, e := newTestHandler(&mockDelegate{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("patientId")
	c.SetParamValues("404")

	if err := h.ExportPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	var outcome map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &outcome)
	if outcome["resourceType"] != "OperationOutcome" {
		t.Errorf("resourceType = %v, want OperationOutcome", outcome["resourceType"])
	}
}

func TestHandler_ImportPatient_NotImplemented(t *testing.T) {
	h, e := newTestHandler(&mockDelegate{})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("patientId")
	c.SetParamValues("7")

	if err := h.ImportPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("expected 501, got %d", rec.Code)
	}
}

func TestHandler_LabSync_RequiresPatientID(t *testing.T) {
	d := &mockDelegate{}
	h, e := newTestHandler(d)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.LabSync(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
	if len(d.calls) != 0 {
		t.Error("delegate must not be called without patientId")
	}
}

func TestHandler_LabSync_BodyID(t *testing.T) {
	d := &mockDelegate{}
	h, e := newTestHandler(d)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"patientId":7}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.LabSync(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if len(d.calls) != 1 || d.calls[0] != "lab-sync" {
		t.Errorf("calls = %v", d.calls)
	}
}

func TestHandler_EPrescribe_PathID(t *testing.T) {
	d := &mockDelegate{}
	h, e := newTestHandler(d)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("prescriptionId")
	c.SetParamValues("31")

	if err := h.EPrescribe(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if len(d.calls) != 1 || d.calls[0] != "e-prescribe" {
		t.Errorf("calls = %v", d.calls)
	}
}

func TestHandler_DelegateFailureIsGeneric500(t *testing.T) {
	d := &mockDelegate{fail: true}
	h, e := newTestHandler(d)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"patientId":7}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.VerifyInsurance(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
	if msg, _ := httpErr.Message.(string); strings.Contains(msg, "exploded") {
		t.Error("upstream error text must not leak")
	}
}
