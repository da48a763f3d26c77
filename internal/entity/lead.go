package entity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrLeadNotFound      = errors.New("lead not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateWhatsApp = errors.New("whatsapp already exists")
)

// Lead é o registro capturado pelo formulário público.
// Os campos de atribuição (IP, user agent, referrer e UTM) só são gravados na criação.
type Lead struct {
	ID          string
	Name        string
	Email       string
	WhatsApp    string
	Role        string
	LGPDConsent bool

	IPAddress string
	UserAgent string
	Referrer  string

	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	UTMContent  string
	UTMTerm     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicLead é a serialização devolvida para quem chama a API.
// IP, user agent e referrer nunca saem daqui.
type PublicLead struct {
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

func (l *Lead) Public() PublicLead {
	return PublicLead{
		ID:          l.ID,
		Name:        l.Name,
		Email:       l.Email,
		WhatsApp:    l.WhatsApp,
		Role:        l.Role,
		LGPDConsent: l.LGPDConsent,
		UTMSource:   l.UTMSource,
		UTMMedium:   l.UTMMedium,
		UTMCampaign: l.UTMCampaign,
		UTMContent:  l.UTMContent,
		UTMTerm:     l.UTMTerm,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// LeadPatch carrega apenas os campos enviados num update.
// Ponteiro nil = campo ausente; ponteiro para "" = limpar o campo opcional.
type LeadPatch struct {
	Name        *string
	Email       *string
	WhatsApp    *string
	Role        *string
	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
	UTMContent  *string
	UTMTerm     *string
}

func (p LeadPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.WhatsApp == nil && p.Role == nil &&
		p.UTMSource == nil && p.UTMMedium == nil && p.UTMCampaign == nil &&
		p.UTMContent == nil && p.UTMTerm == nil
}

// Apply copia o patch para o lead. Não toca em atribuição nem em timestamps.
func (p LeadPatch) Apply(l *Lead) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&l.Name, p.Name)
	set(&l.Email, p.Email)
	set(&l.WhatsApp, p.WhatsApp)
	set(&l.Role, p.Role)
	set(&l.UTMSource, p.UTMSource)
	set(&l.UTMMedium, p.UTMMedium)
	set(&l.UTMCampaign, p.UTMCampaign)
	set(&l.UTMContent, p.UTMContent)
	set(&l.UTMTerm, p.UTMTerm)
}

const (
	OrderByCreatedAt = "created_at"
	OrderByName      = "name"
	OrderByEmail     = "email"
	OrderByUpdatedAt = "updated_at"
)

type ListQuery struct {
	Page    int
	Limit   int
	OrderBy string
	Order   string // asc | desc
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type LeadPage struct {
	Leads      []PublicLead `json:"leads"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"totalPages"`
}

type LeadStats struct {
	TotalLeads int            `json:"totalLeads"`
	TodayLeads int            `json:"todayLeads"`
	WeekLeads  int            `json:"weekLeads"`
	UTMSources map[string]int `json:"utmSources"`
}

// LeadRepositoryInterface é o contrato do gateway de persistência.
// Insert devolve ErrDuplicateEmail/ErrDuplicateWhatsApp quando a constraint única do banco dispara.
// FindBy* devolvem ErrLeadNotFound quando não há registro.
type LeadRepositoryInterface interface {
	Insert(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	FindByWhatsApp(ctx context.Context, whatsapp string) (*Lead, error)
	Update(ctx context.Context, id string, patch LeadPatch) (*Lead, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q ListQuery) ([]Lead, int, error)
	Count(ctx context.Context, since time.Time) (int, error)
	CountByUTMSource(ctx context.Context) (map[string]int, error)
}
