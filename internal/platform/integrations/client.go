// Package integrations holds the outbound HTTP clients for the third-party
// healthcare systems the dispatcher delegates to: lab result sync,
// e-prescribing, insurance eligibility verification, and telemedicine
// session provisioning.
package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Config carries the upstream endpoint URLs. An empty URL marks that
// integration as not configured.
type Config struct {
	LabSyncURL         string
	EPrescribeURL      string
	InsuranceVerifyURL string
	TelemedicineURL    string
}

// Client performs the outbound integration calls. All methods post JSON and
// treat any non-2xx upstream response as an error; callers normalize those
// errors to a generic 500.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the normalized response from an upstream integration call.
type Result struct {
	Integration string          `json:"integration"`
	Status      string          `json:"status"`
	Detail      json.RawMessage `json:"detail,omitempty"`
}

// SyncLabResults asks the lab system to push pending results for a patient.
func (c *Client) SyncLabResults(ctx context.Context, patientID int64) (*Result, error) {
	return c.post(ctx, "lab-sync", c.cfg.LabSyncURL, map[string]interface{}{
		"patientId": patientID,
	})
}

// SendPrescription transmits a prescription to the e-prescribing network.
func (c *Client) SendPrescription(ctx context.Context, prescriptionID int64) (*Result, error) {
	return c.post(ctx, "e-prescribe", c.cfg.EPrescribeURL, map[string]interface{}{
		"prescriptionId": prescriptionID,
	})
}

// VerifyInsurance runs an eligibility check for a patient.
func (c *Client) VerifyInsurance(ctx context.Context, patientID int64) (*Result, error) {
	return c.post(ctx, "verify-insurance", c.cfg.InsuranceVerifyURL, map[string]interface{}{
		"patientId": patientID,
	})
}

// CreateTelemedicineSession provisions a video session for an appointment.
func (c *Client) CreateTelemedicineSession(ctx context.Context, appointmentID int64) (*Result, error) {
	return c.post(ctx, "telemedicine", c.cfg.TelemedicineURL, map[string]interface{}{
		"appointmentId": appointmentID,
	})
}

func (c *Client) post(ctx context.Context, name, url string, payload map[string]interface{}) (*Result, error) {
	if url == "" {
		return nil, fmt.Errorf("integration %s is not configured", name)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("integration", name).Msg("integration call failed")
		return nil, fmt.Errorf("call %s: %w", name, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	c.logger.Info().
		Str("integration", name).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("integration call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned status %d", name, resp.StatusCode)
	}

	return &Result{
		Integration: name,
		Status:      "ok",
		Detail:      normalizeDetail(respBody),
	}, nil
}

// normalizeDetail keeps JSON upstream bodies as-is and wraps anything else
// (plain-text acks are common for webhook-style endpoints) as a JSON string,
// so marshaling the Result never fails.
func normalizeDetail(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return json.RawMessage(quoted)
}
