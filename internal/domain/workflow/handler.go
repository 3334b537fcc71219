package workflow

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/auth"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/validate"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/workflow", auth.RequireRole(auth.RoleAdmin, auth.RoleSuperAdmin))
	g.GET("/stats", h.GetStats)
	g.GET("/tasks", h.ListTasks)
	g.POST("/tasks/:taskId/approve", h.ApproveTask)
	g.POST("/tasks/:taskId/reject", h.RejectTask)
}

func (h *Handler) GetStats(c echo.Context) error {
	id, _ := auth.IdentityFromContext(c.Request().Context())
	stats, err := h.svc.Stats(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load workflow stats")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListTasks(c echo.Context) error {
	id, _ := auth.IdentityFromContext(c.Request().Context())
	filter := TaskFilter{
		Type:     c.QueryParam("type"),
		Priority: c.QueryParam("priority"),
		Status:   c.QueryParam("status"),
	}
	tasks, err := h.svc.ListTasks(c.Request().Context(), id, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list workflow tasks")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"total": len(tasks),
	})
}

type approveRequest struct {
	Role string `json:"role" validate:"omitempty,max=32"`
}

func (h *Handler) ApproveTask(c echo.Context) error {
	taskID, err := strconv.ParseInt(c.Param("taskId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}

	var req approveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation failed",
			"details": validate.Details(err),
		})
	}

	id, _ := auth.IdentityFromContext(c.Request().Context())
	result, err := h.svc.Approve(c.Request().Context(), id, taskID, req.Role)
	if err != nil {
		var roleErr *InvalidRoleError
		if errors.As(err, &roleErr) {
			return echo.NewHTTPError(http.StatusBadRequest, roleErr.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to approve task")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "task approved",
		"task":    result,
	})
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

func (h *Handler) RejectTask(c echo.Context) error {
	taskID, err := strconv.ParseInt(c.Param("taskId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}

	var req rejectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation failed",
			"details": validate.Details(err),
		})
	}

	id, _ := auth.IdentityFromContext(c.Request().Context())
	h.svc.Reject(c.Request().Context(), id, taskID, req.Reason)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "task rejected",
		"taskId":  taskID,
		"reason":  req.Reason,
	})
}
