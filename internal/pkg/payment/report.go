package payment

import (
	"context"
	"fmt"
)

// Validation report statuses.
const (
	StatusNotConfigured      = "not_configured"
	StatusConnected          = "connected"
	StatusInvalidCredentials = "invalid_credentials"
	StatusError              = "error"
)

// CredentialValidator is implemented by the provider validators.
type CredentialValidator interface {
	Validate(ctx context.Context) (CredentialCheckResult, error)
	Presence() CredentialPresence
}

// ValidationReport is the JSON body of the credential validation endpoints.
type ValidationReport struct {
	Configured      bool   `json:"configured"`
	Status          string `json:"status"`
	Environment     string `json:"environment,omitempty"`
	HasClientID     bool   `json:"hasClientId"`
	HasClientSecret bool   `json:"hasClientSecret"`
	HasWebhookID    bool   `json:"hasWebhookId"`
	Message         string `json:"message"`
}

// NewValidationReport turns a check result into the response body.
func NewValidationReport(providerName string, res CredentialCheckResult, presence CredentialPresence) ValidationReport {
	report := ValidationReport{
		HasClientID:     presence.ClientID,
		HasClientSecret: presence.ClientSecret,
		HasWebhookID:    presence.WebhookID,
	}

	switch r := res.(type) {
	case NotConfigured:
		report.Status = StatusNotConfigured
		report.Message = fmt.Sprintf("%s credentials are not configured on the server.", providerName)
	case Invalid:
		report.Configured = true
		report.Status = StatusInvalidCredentials
		report.Message = fmt.Sprintf("%s rejected the credentials: %s", providerName, r.Detail)
	case Valid:
		report.Configured = true
		report.Status = StatusConnected
		report.Environment = string(r.Environment)
		report.Message = fmt.Sprintf("%s connected (%s).", providerName, r.Environment)
	default:
		report.Configured = presence.ClientID && presence.ClientSecret
		report.Status = StatusError
		report.Message = fmt.Sprintf("%s credential check failed unexpectedly.", providerName)
	}
	return report
}

// ErrorReport is the body returned when validation failed internally.
func ErrorReport(providerName string, presence CredentialPresence) ValidationReport {
	return NewValidationReport(providerName, nil, presence)
}
