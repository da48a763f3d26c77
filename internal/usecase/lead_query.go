package usecase

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// LeadQueryUseCase concentra as leituras do painel e as checagens públicas.
type LeadQueryUseCase struct {
	Repo entity.LeadRepositoryInterface
	Now  func() time.Time
}

func NewLeadQueryUseCase(repo entity.LeadRepositoryInterface) *LeadQueryUseCase {
	return &LeadQueryUseCase{Repo: repo, Now: time.Now}
}

func (uc *LeadQueryUseCase) Get(ctx context.Context, id string) (*entity.Lead, error) {
	return findLead(ctx, uc.Repo, id)
}

func (uc *LeadQueryUseCase) List(ctx context.Context, values url.Values) (*entity.LeadPage, error) {
	q, verrs := ValidateListQuery(values)
	if len(verrs) > 0 {
		de := newValidationError(verrs)
		de.Message = "Parâmetros de consulta inválidos"
		return nil, de
	}

	leads, total, err := uc.Repo.List(ctx, q)
	if err != nil {
		return nil, newDatabaseError("listar leads", err)
	}

	page := &entity.LeadPage{
		Leads:      make([]entity.PublicLead, 0, len(leads)),
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: (total + q.Limit - 1) / q.Limit,
	}
	for i := range leads {
		page.Leads = append(page.Leads, leads[i].Public())
	}
	return page, nil
}

// Stats: hoje conta a partir da meia-noite UTC; semana são os últimos 7 dias corridos.
func (uc *LeadQueryUseCase) Stats(ctx context.Context) (*entity.LeadStats, error) {
	now := uc.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	total, err := uc.Repo.Count(ctx, time.Time{})
	if err != nil {
		return nil, newDatabaseError("contar leads", err)
	}
	today, err := uc.Repo.Count(ctx, midnight)
	if err != nil {
		return nil, newDatabaseError("contar leads de hoje", err)
	}
	week, err := uc.Repo.Count(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, newDatabaseError("contar leads da semana", err)
	}
	sources, err := uc.Repo.CountByUTMSource(ctx)
	if err != nil {
		return nil, newDatabaseError("agrupar utm_source", err)
	}

	return &entity.LeadStats{
		TotalLeads: total,
		TodayLeads: today,
		WeekLeads:  week,
		UTMSources: sources,
	}, nil
}

func (uc *LeadQueryUseCase) CheckEmail(ctx context.Context, email string) (*EmailCheckOutput, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, newValidationError([]ValidationError{{Field: "email", Message: "Email é obrigatório", Code: "required"}})
	}
	if err := validate.Var(email, "email,max=255"); err != nil {
		return nil, newValidationError([]ValidationError{{Field: "email", Message: "Email deve ter um formato válido", Code: "email"}})
	}

	_, err := uc.Repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return &EmailCheckOutput{Exists: true, Email: email}, nil
	case errors.Is(err, entity.ErrLeadNotFound):
		return &EmailCheckOutput{Exists: false, Email: email}, nil
	}
	return nil, newDatabaseError("verificar email", err)
}

func (uc *LeadQueryUseCase) CheckWhatsApp(ctx context.Context, whatsapp string) (*WhatsAppCheckOutput, error) {
	whatsapp = NormalizeWhatsApp(whatsapp)
	if whatsapp == "" {
		return nil, newValidationError([]ValidationError{{Field: "whatsapp", Message: "WhatsApp é obrigatório", Code: "required"}})
	}
	if err := validate.Var(whatsapp, "max=20,br_whatsapp"); err != nil {
		return nil, newValidationError([]ValidationError{{
			Field:   "whatsapp",
			Message: "WhatsApp deve ter um formato válido (ex: (11) 99999-9999)",
			Code:    "pattern",
		}})
	}

	lead, err := uc.Repo.FindByWhatsApp(ctx, whatsapp)
	switch {
	case err == nil:
		return &WhatsAppCheckOutput{Exists: true, WhatsApp: whatsapp, ExistingEmail: lead.Email}, nil
	case errors.Is(err, entity.ErrLeadNotFound):
		return &WhatsAppCheckOutput{Exists: false, WhatsApp: whatsapp}, nil
	}
	return nil, newDatabaseError("verificar whatsapp", err)
}

// Health confirma que o gateway responde.
func (uc *LeadQueryUseCase) Health(ctx context.Context) (*HealthOutput, error) {
	total, err := uc.Repo.Count(ctx, time.Time{})
	if err != nil {
		return nil, newDatabaseError("contar leads", err)
	}
	return &HealthOutput{TotalLeads: total, Timestamp: uc.Now().UTC()}, nil
}
