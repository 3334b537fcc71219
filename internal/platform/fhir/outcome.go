package fhir

import "fmt"

// OperationOutcome severity levels per FHIR R4.
const (
	IssueSeverityError       = "error"
	IssueSeverityInformation = "information"
)

// OperationOutcome issue type codes per FHIR R4.
const (
	IssueTypeProcessing   = "processing"
	IssueTypeNotFound     = "not-found"
	IssueTypeNotSupported = "not-supported"
)

// OperationOutcome is the FHIR error/information envelope returned by the
// FHIR-facing routes.
type OperationOutcome struct {
	ResourceType string                  `json:"resourceType"`
	Issue        []OperationOutcomeIssue `json:"issue"`
}

type OperationOutcomeIssue struct {
	Severity    string `json:"severity"`
	Code        string `json:"code"`
	Diagnostics string `json:"diagnostics,omitempty"`
}

// NewOperationOutcome creates an OperationOutcome with a single issue.
func NewOperationOutcome(severity, code, diagnostics string) *OperationOutcome {
	return &OperationOutcome{
		ResourceType: "OperationOutcome",
		Issue: []OperationOutcomeIssue{
			{Severity: severity, Code: code, Diagnostics: diagnostics},
		},
	}
}

// ErrorOutcome creates a generic processing-error OperationOutcome.
func ErrorOutcome(message string) *OperationOutcome {
	return NewOperationOutcome(IssueSeverityError, IssueTypeProcessing, message)
}

// NotFoundOutcome creates a not-found OperationOutcome for a resource id.
func NotFoundOutcome(resourceType string, id int64) *OperationOutcome {
	return NewOperationOutcome(
		IssueSeverityError,
		IssueTypeNotFound,
		fmt.Sprintf("%s/%d not found", resourceType, id),
	)
}

// NotSupportedOutcome creates a not-supported OperationOutcome, used by
// routes that are intentionally unimplemented.
func NotSupportedOutcome(message string) *OperationOutcome {
	return NewOperationOutcome(IssueSeverityError, IssueTypeNotSupported, message)
}
