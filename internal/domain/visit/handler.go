package visit

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/auth"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/validate"
	"github.com/lacson1/bluequeehealthcare-sub014/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	pv := api.Group("/patients/:patientId/visits", auth.RequireOrg())
	pv.POST("", h.Create)
	pv.GET("", h.ListByPatient)
	pv.GET("/:visitId", h.Get)
	pv.PATCH("/:visitId", h.Update)
	pv.POST("/:visitId/finalize", h.Finalize, auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))

	vs := api.Group("/visits", auth.RequireOrg())
	vs.GET("", h.List)
	vs.GET("/:id/prescriptions", h.Prescriptions)
}

// createRequest is the wire shape for new visits. The vitals and the
// follow-up date are loosely typed so empty strings can be normalized to
// absent before persistence.
type createRequest struct {
	VisitDate      string      `json:"visitDate" validate:"omitempty"`
	ChiefComplaint string      `json:"chiefComplaint" validate:"required,max=1000"`
	Diagnosis      *string     `json:"diagnosis" validate:"omitempty,max=2000"`
	TreatmentPlan  *string     `json:"treatmentPlan" validate:"omitempty,max=2000"`
	Notes          *string     `json:"notes" validate:"omitempty,max=4000"`
	HeartRate      interface{} `json:"heartRate"`
	Temperature    interface{} `json:"temperature"`
	Weight         interface{} `json:"weight"`
	FollowUpDate   interface{} `json:"followUpDate"`
}

func (h *Handler) Create(c echo.Context) error {
	patientID, err := paramID(c, "patientId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation failed",
			"details": validate.Details(err),
		})
	}

	v := &Visit{
		Complaint: req.ChiefComplaint,
		Diagnosis: req.Diagnosis,
		Treatment: req.TreatmentPlan,
		Notes:     req.Notes,
	}
	if req.VisitDate != "" {
		t, _, err := dateField("visitDate", req.VisitDate)
		if err != nil {
			return fieldError(c, "visitDate", err)
		}
		if t != nil {
			v.VisitDate = *t
		}
	}
	if v.HeartRate, _, err = intField("heartRate", req.HeartRate); err != nil {
		return fieldError(c, "heartRate", err)
	}
	if v.Temperature, _, err = floatField("temperature", req.Temperature); err != nil {
		return fieldError(c, "temperature", err)
	}
	if v.Weight, _, err = floatField("weight", req.Weight); err != nil {
		return fieldError(c, "weight", err)
	}
	if v.FollowUpDate, _, err = dateField("followUpDate", req.FollowUpDate); err != nil {
		return fieldError(c, "followUpDate", err)
	}

	id, _ := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), id, patientID, v); err != nil {
		// Storage errors here include the underlying message in the
		// response body. Known hardening gap, kept deliberately.
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":  "failed to create visit",
			"detail": err.Error(),
		})
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := paramID(c, "patientId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	id, _ := auth.IdentityFromContext(c.Request().Context())
	visits, err := h.svc.ListByPatient(c.Request().Context(), id, patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list visits")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"visits": visits,
		"total":  len(visits),
	})
}

func (h *Handler) Get(c echo.Context) error {
	patientID, visitID, err := visitParams(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, _ := auth.IdentityFromContext(c.Request().Context())
	v, err := h.svc.Get(c.Request().Context(), id, patientID, visitID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "visit not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load visit")
	}
	return c.JSON(http.StatusOK, v)
}

type patchRequest struct {
	VisitDate      *string     `json:"visitDate"`
	ChiefComplaint *string     `json:"chiefComplaint" validate:"omitempty,max=1000"`
	Diagnosis      *string     `json:"diagnosis" validate:"omitempty,max=2000"`
	TreatmentPlan  *string     `json:"treatmentPlan" validate:"omitempty,max=2000"`
	Notes          *string     `json:"notes" validate:"omitempty,max=4000"`
	HeartRate      interface{} `json:"heartRate"`
	Temperature    interface{} `json:"temperature"`
	Weight         interface{} `json:"weight"`
	FollowUpDate   interface{} `json:"followUpDate"`
}

func (h *Handler) Update(c echo.Context) error {
	patientID, visitID, err := visitParams(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req patchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation failed",
			"details": validate.Details(err),
		})
	}

	p := Patch{
		Complaint: req.ChiefComplaint,
		Diagnosis: req.Diagnosis,
		Treatment: req.TreatmentPlan,
		Notes:     req.Notes,
	}
	if req.VisitDate != nil {
		t, _, err := dateField("visitDate", *req.VisitDate)
		if err != nil {
			return fieldError(c, "visitDate", err)
		}
		p.VisitDate = t
	}
	if p.HeartRate, p.HeartRateSet, err = intField("heartRate", req.HeartRate); err != nil {
		return fieldError(c, "heartRate", err)
	}
	if p.Temperature, p.TemperatureSet, err = floatField("temperature", req.Temperature); err != nil {
		return fieldError(c, "temperature", err)
	}
	if p.Weight, p.WeightSet, err = floatField("weight", req.Weight); err != nil {
		return fieldError(c, "weight", err)
	}
	if p.FollowUpDate, p.FollowUpDateSet, err = dateField("followUpDate", req.FollowUpDate); err != nil {
		return fieldError(c, "followUpDate", err)
	}
	if p.Empty() {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	id, _ := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Update(c.Request().Context(), id, patientID, visitID, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "visit not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update visit")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "visit updated"})
}

func (h *Handler) Finalize(c echo.Context) error {
	patientID, visitID, err := visitParams(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, _ := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Finalize(c.Request().Context(), id, patientID, visitID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "visit not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to finalize visit")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "visit finalized",
		"status":  StatusFinal,
	})
}

func (h *Handler) List(c echo.Context) error {
	id, _ := auth.IdentityFromContext(c.Request().Context())

	f := Filter{Status: c.QueryParam("status")}
	if v := c.QueryParam("patientId"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patientId")
		}
		f.PatientID = n
	}
	if v := c.QueryParam("doctorId"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctorId")
		}
		f.DoctorID = n
	}

	pg := pagination.FromContext(c)
	visits, total, err := h.svc.List(c.Request().Context(), id, f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list visits")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(visits, total, pg.Limit, pg.Offset))
}

func (h *Handler) Prescriptions(c echo.Context) error {
	visitID, err := paramID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid visit id")
	}

	id, _ := auth.IdentityFromContext(c.Request().Context())
	prescriptions, err := h.svc.Prescriptions(c.Request().Context(), id, visitID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list prescriptions")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"prescriptions": prescriptions,
		"total":         len(prescriptions),
	})
}

func paramID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func visitParams(c echo.Context) (patientID, visitID int64, err error) {
	patientID, err = paramID(c, "patientId")
	if err != nil {
		return 0, 0, errors.New("invalid patient id")
	}
	visitID, err = paramID(c, "visitId")
	if err != nil {
		return 0, 0, errors.New("invalid visit id")
	}
	return patientID, visitID, nil
}

func fieldError(c echo.Context, field string, err error) error {
	return c.JSON(http.StatusBadRequest, map[string]interface{}{
		"error": "validation failed",
		"details": []validate.FieldError{
			{Field: field, Rule: "format", Message: err.Error()},
		},
	})
}
