package dto

import (
	"fmt"
	"time"

	"arthastra/internal/domain/alert"
)

// CreateAlertRequest covers the system-originated alert types exposed over
// HTTP (welcome, system). Detection alerts come from the batch jobs only.
type CreateAlertRequest struct {
	UserID   int64          `json:"userId"`
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Severity string         `json:"severity,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	DedupKey string         `json:"dedupKey,omitempty"`
}

func (r *CreateAlertRequest) Validate() error {
	if r.UserID <= 0 {
		return fmt.Errorf("userId must be a positive integer")
	}
	if !alert.Type(r.Type).Valid() {
		return fmt.Errorf("unknown alert type %q", r.Type)
	}
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.Severity != "" && !alert.Severity(r.Severity).Valid() {
		return fmt.Errorf("unknown severity %q", r.Severity)
	}
	return nil
}

func (r *CreateAlertRequest) ToDomain() alert.Alert {
	severity := alert.Severity(r.Severity)
	if r.Severity == "" {
		severity = alert.SeverityInfo
	}
	return alert.Alert{
		UserID:   r.UserID,
		Type:     alert.Type(r.Type),
		Title:    r.Title,
		Message:  r.Message,
		Severity: severity,
		Metadata: r.Metadata,
		DedupKey: r.DedupKey,
	}
}

type AlertResponse struct {
	ID        string         `json:"id"`
	UserID    int64          `json:"userId"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"`
	Read      bool           `json:"read"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func NewAlertResponse(a *alert.Alert) AlertResponse {
	return AlertResponse{
		ID:        a.ID.String(),
		UserID:    a.UserID,
		Type:      string(a.Type),
		Title:     a.Title,
		Message:   a.Message,
		Severity:  string(a.Severity),
		Read:      a.Read,
		Metadata:  a.Metadata,
		CreatedAt: a.CreatedAt,
	}
}

type AlertListResponse struct {
	Alerts []AlertResponse `json:"alerts"`
}

func NewAlertListResponse(alerts []alert.Alert) AlertListResponse {
	resp := AlertListResponse{Alerts: make([]AlertResponse, len(alerts))}
	for i := range alerts {
		resp.Alerts[i] = NewAlertResponse(&alerts[i])
	}
	return resp
}
