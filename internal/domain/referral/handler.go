package referral

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
	g := api.Group("/referrals", auth.RequireOrg())
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))
}

type createRequest struct {
	PatientID int64  `json:"patientId" validate:"required,gt=0"`
	ToRole    string `json:"toRole" validate:"required,oneof=superadmin admin doctor nurse user"`
	Reason    string `json:"reason" validate:"required,max=500"`
	Notes     string `json:"notes" validate:"omitempty,max=2000"`
}

func (h *Handler) Create(c echo.Context) error {
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

	ref := &Referral{
		PatientID: req.PatientID,
		ToRole:    req.ToRole,
		Reason:    req.Reason,
	}
	if req.Notes != "" {
		ref.Notes = &req.Notes
	}

	id, _ := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), id, ref); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create referral")
	}
	return c.JSON(http.StatusCreated, ref)
}

func (h *Handler) List(c echo.Context) error {
	id, _ := auth.IdentityFromContext(c.Request().Context())

	f := Filter{
		ToRole: c.QueryParam("toRole"),
		Status: c.QueryParam("status"),
	}
	if v := c.QueryParam("fromUserId"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid fromUserId")
		}
		f.FromUserID = n
	}
	if v := c.QueryParam("patientId"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patientId")
		}
		f.PatientID = n
	}
	if f.Status != "" {
		if _, ok := ParseStatus(f.Status); !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
		}
	}

	pg := pagination.FromContext(c)
	referrals, total, err := h.svc.List(c.Request().Context(), id, f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list referrals")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(referrals, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	referralID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	id, _ := auth.IdentityFromContext(c.Request().Context())
	ref, err := h.svc.Get(c.Request().Context(), id, referralID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "referral not found")
		case errors.Is(err, ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load referral")
		}
	}
	return c.JSON(http.StatusOK, ref)
}

type updateRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=pending accepted rejected completed"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
}

func (h *Handler) Update(c echo.Context) error {
	referralID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation failed",
			"details": validate.Details(err),
		})
	}
	if req.Status == nil && req.Notes == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	p := Patch{Notes: req.Notes}
	if req.Status != nil {
		status, ok := ParseStatus(*req.Status)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		p.Status = &status
	}

	id, _ := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Update(c.Request().Context(), id, referralID, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "referral not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update referral")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "referral updated"})
}

func (h *Handler) Delete(c echo.Context) error {
	referralID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	id, _ := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), id, referralID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "referral not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete referral")
	}
	return c.NoContent(http.StatusNoContent)
}
