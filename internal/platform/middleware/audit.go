package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/auth"
)

// AccessEntry captures a single record access: who touched what, when, from
// where, and how.
type AccessEntry struct {
	UserID     int64
	OrgID      int64
	Role       string
	Resource   string
	PatientID  int64
	Action     string // read, create, update, delete
	IPAddress  string
	Path       string
	Method     string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// AccessRecorder persists access entries. The middleware falls back to
// structured logging alone when no recorder is provided, so tests and
// minimal deployments can run without a database.
type AccessRecorder interface {
	RecordAccess(entry AccessEntry) error
}

// AccessRecorderFunc is a function adapter for AccessRecorder.
type AccessRecorderFunc func(entry AccessEntry) error

func (f AccessRecorderFunc) RecordAccess(entry AccessEntry) error {
	return f(entry)
}

// Audit returns middleware that logs every access to patient-facing routes.
// Health checks and other non-API paths are skipped. The handler runs first
// so the response status is captured.
func Audit(logger zerolog.Logger, recorders ...AccessRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !isAuditablePath(path) {
				return next(c)
			}

			err := next(c)

			entry := AccessEntry{
				Timestamp:  time.Now().UTC(),
				Path:       path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				StatusCode: c.Response().Status,
				Action:     httpMethodToAction(req.Method),
				Resource:   extractResource(path),
				PatientID:  extractPatientID(c),
			}

			// Auth middleware swaps the request to attach the identity, so
			// read it back off the context after the handler has run.
			if id, ok := auth.IdentityFromContext(c.Request().Context()); ok {
				entry.UserID = id.UserID
				entry.OrgID = id.OrgID
				entry.Role = id.Role.String()
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record access entry")
				}
			}

			logger.Info().
				Str("type", "record_access").
				Str("request_id", entry.RequestID).
				Int64("user_id", entry.UserID).
				Int64("org_id", entry.OrgID).
				Str("role", entry.Role).
				Str("resource", entry.Resource).
				Int64("patient_id", entry.PatientID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("record_access")

			return err
		}
	}
}

// isAuditablePath returns true if the path is under /api/v1/ or /fhir/.
func isAuditablePath(path string) bool {
	return strings.HasPrefix(path, "/api/v1/") || strings.HasPrefix(path, "/fhir/")
}

// httpMethodToAction maps HTTP methods to access actions.
func httpMethodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// extractResource parses the resource segment from a URL path.
//
//	/api/v1/referrals/5          -> referrals
//	/api/v1/patients/7/visits    -> patients
//	/fhir/patient/7              -> patient
func extractResource(path string) string {
	var segments []string
	if strings.HasPrefix(path, "/api/v1/") {
		segments = strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	} else if strings.HasPrefix(path, "/fhir/") {
		segments = strings.Split(strings.TrimPrefix(path, "/fhir/"), "/")
	}
	if len(segments) > 0 && segments[0] != "" {
		return segments[0]
	}
	return "unknown"
}

// extractPatientID finds a numeric patient identifier in the request path or
// query, returning 0 when none is present.
func extractPatientID(c echo.Context) int64 {
	path := c.Request().URL.Path

	for _, prefix := range []string{"/api/v1/patients/", "/fhir/patient/"} {
		if strings.HasPrefix(path, prefix) {
			segments := strings.Split(strings.TrimPrefix(path, prefix), "/")
			if len(segments) > 0 {
				if id, err := strconv.ParseInt(segments[0], 10, 64); err == nil {
					return id
				}
			}
		}
	}

	if patient := c.QueryParam("patientId"); patient != "" {
		if id, err := strconv.ParseInt(patient, 10, 64); err == nil {
			return id
		}
	}

	return 0
}
