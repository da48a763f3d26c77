package usecase

import (
	"net/url"
	"time"
)

type CreateLeadInput struct {
	Body      map[string]any
	Query     url.Values
	IP        string
	UserAgent string
	Referrer  string
}

type CreateLeadOutput struct {
	LeadID     string `json:"leadId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	IsExisting bool   `json:"isExisting"`
	Field      string `json:"field,omitempty"`
}

type EmailCheckOutput struct {
	Exists bool   `json:"exists"`
	Email  string `json:"email"`
}

type WhatsAppCheckOutput struct {
	Exists        bool   `json:"exists"`
	WhatsApp      string `json:"whatsapp"`
	ExistingEmail string `json:"existingEmail,omitempty"`
}

type HealthOutput struct {
	TotalLeads int       `json:"totalLeads"`
	Timestamp  time.Time `json:"timestamp"`
}
