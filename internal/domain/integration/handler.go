package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/lacson1/bluequeehealthcare-sub014/internal/domain/patient"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/fhir"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/integrations"
)

// Delegate is the outbound integration surface the dispatcher forwards to.
// Implemented by integrations.Client.
type Delegate interface {
	SyncLabResults(ctx context.Context, patientID int64) (*integrations.Result, error)
	SendPrescription(ctx context.Context, prescriptionID int64) (*integrations.Result, error)
	VerifyInsurance(ctx context.Context, patientID int64) (*integrations.Result, error)
	CreateTelemedicineSession(ctx context.Context, appointmentID int64) (*integrations.Result, error)
}

// Handler is a thin dispatcher: resolve the identifying parameter from the
// path or the body, forward to the delegate, and normalize any failure to
// a generic 500.
type Handler struct {
	patients patient.Repository
	delegate Delegate
}

func NewHandler(patients patient.Repository, delegate Delegate) *Handler {
	return &Handler{patients: patients, delegate: delegate}
}

func (h *Handler) RegisterRoutes(api *echo.Group, fhirGroup *echo.Group) {
	fhirGroup.GET("/patient/:patientId", h.ExportPatient)
	// Duplicate registration of the export path as a POST; intentionally
	// unimplemented.
	fhirGroup.POST("/patient/:patientId", h.ImportPatient)

	g := api.Group("/integrations")
	g.POST("/lab-sync", h.LabSync)
	g.POST("/e-prescribe", h.EPrescribe)
	g.POST("/e-prescribe/:prescriptionId", h.EPrescribe)
	g.POST("/verify-insurance", h.VerifyInsurance)
	g.POST("/verify-insurance/:patientId", h.VerifyInsurance)
	g.POST("/telemedicine", h.Telemedicine)
	g.POST("/telemedicine/:appointmentId", h.Telemedicine)
}

func (h *Handler) ExportPatient(c echo.Context) error {
	patientID, err := strconv.ParseInt(c.Param("patientId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome("invalid patient id"))
	}

	p, err := h.patients.GetByID(c.Request().Context(), patientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, fhir.NotFoundOutcome("Patient", patientID))
		}
		return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome("integration error"))
	}
	return c.JSON(http.StatusOK, p.ToFHIR())
}

func (h *Handler) ImportPatient(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented,
		fhir.NotSupportedOutcome("Patient import is not implemented"))
}

func (h *Handler) LabSync(c echo.Context) error {
	// Body-only variant: patientId must be present in the payload.
	patientID, err := bodyID(c, "patientId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.dispatch(c, func(ctx context.Context) (*integrations.Result, error) {
		return h.delegate.SyncLabResults(ctx, patientID)
	})
}

func (h *Handler) EPrescribe(c echo.Context) error {
	prescriptionID, err := resolveID(c, "prescriptionId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.dispatch(c, func(ctx context.Context) (*integrations.Result, error) {
		return h.delegate.SendPrescription(ctx, prescriptionID)
	})
}

func (h *Handler) VerifyInsurance(c echo.Context) error {
	patientID, err := resolveID(c, "patientId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.dispatch(c, func(ctx context.Context) (*integrations.Result, error) {
		return h.delegate.VerifyInsurance(ctx, patientID)
	})
}

func (h *Handler) Telemedicine(c echo.Context) error {
	appointmentID, err := resolveID(c, "appointmentId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.dispatch(c, func(ctx context.Context) (*integrations.Result, error) {
		return h.delegate.CreateTelemedicineSession(ctx, appointmentID)
	})
}

func (h *Handler) dispatch(c echo.Context, call func(context.Context) (*integrations.Result, error)) error {
	result, err := call(c.Request().Context())
	if err != nil {
		// No partial-failure detail leaves this boundary.
		return echo.NewHTTPError(http.StatusInternalServerError, "integration error")
	}
	return c.JSON(http.StatusOK, result)
}

// resolveID takes the identifier from the URL when present, otherwise from
// the request body.
func resolveID(c echo.Context, name string) (int64, error) {
	if raw := c.Param(name); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s", name)
		}
		return id, nil
	}
	return bodyID(c, name)
}

func bodyID(c echo.Context, name string) (int64, error) {
	var body map[string]interface{}
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%s is required", name)
	}
	switch v := body[name].(type) {
	case float64:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s", name)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("%s is required", name)
	}
}
