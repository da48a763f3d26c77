package leadapi

import (
	"encoding/json"
	"time"
)

const CodeNetworkError = "NETWORK_ERROR"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Response é o formato uniforme devolvido pelo Client, inclusive em falha.
type Response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  []FieldError    `json:"errors,omitempty"`
	Code    string          `json:"code,omitempty"`

	// RetryAfter vem no corpo das respostas 429
	RetryAfter int `json:"retryAfter,omitempty"`
	// StatusCode é 0 quando nenhuma resposta HTTP chegou
	StatusCode int `json:"-"`

	hasRetryAfter bool
}

// DecodeData decodifica o campo data em v.
func (r *Response) DecodeData(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

type LeadInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	WhatsApp    string `json:"whatsapp,omitempty"`
	Role        string `json:"role,omitempty"`
	LGPDConsent bool   `json:"lgpd_consent"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
}

type LeadResult struct {
	LeadID        string `json:"leadId"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	IsExisting    bool   `json:"isExisting"`
	Field         string `json:"field,omitempty"`
	ExistingEmail string `json:"existingEmail,omitempty"`
}

type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	WhatsApp    string    `json:"whatsapp,omitempty"`
	Role        string    `json:"role,omitempty"`
	LGPDConsent bool      `json:"lgpd_consent"`
	UTMSource   string    `json:"utm_source,omitempty"`
	UTMMedium   string    `json:"utm_medium,omitempty"`
	UTMCampaign string    `json:"utm_campaign,omitempty"`
	UTMContent  string    `json:"utm_content,omitempty"`
	UTMTerm     string    `json:"utm_term,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type LeadPage struct {
	Leads      []Lead `json:"leads"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

type ListParams struct {
	Page    int
	Limit   int
	OrderBy string
	Order   string
}

type Stats struct {
	TotalLeads int            `json:"totalLeads"`
	TodayLeads int            `json:"todayLeads"`
	WeekLeads  int            `json:"weekLeads"`
	UTMSources map[string]int `json:"utmSources"`
}

type EmailCheck struct {
	Exists bool   `json:"exists"`
	Email  string `json:"email"`
}

type WhatsAppCheck struct {
	Exists        bool   `json:"exists"`
	WhatsApp      string `json:"whatsapp"`
	ExistingEmail string `json:"existingEmail,omitempty"`
}

type ServiceHealth struct {
	TotalLeads int       `json:"totalLeads"`
	Timestamp  time.Time `json:"timestamp"`
}
