package usecase

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

type CreateLeadUseCase struct {
	Repo          entity.LeadRepositoryInterface
	Dedup         *Deduplicator
	Events        LeadEventPublisher
	Metrics       LeadMetrics
	ExistingEmail ExistingEmailMode
}

func NewCreateLeadUseCase(
	repo entity.LeadRepositoryInterface,
	events LeadEventPublisher,
	metrics LeadMetrics,
	existingEmail ExistingEmailMode,
) *CreateLeadUseCase {
	if events == nil {
		events = noopPublisher{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &CreateLeadUseCase{
		Repo:          repo,
		Dedup:         NewDeduplicator(repo),
		Events:        events,
		Metrics:       metrics,
		ExistingEmail: existingEmail,
	}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*CreateLeadOutput, error) {
	// 1. Validação
	validated, verrs := ValidateCreateLead(input.Body)
	if len(verrs) > 0 {
		return nil, newValidationError(verrs)
	}

	// 2. Atribuição (IP, user agent, referrer e UTM)
	lead := &entity.Lead{
		Name:        validated.Name,
		Email:       validated.Email,
		WhatsApp:    validated.WhatsApp,
		Role:        validated.Role,
		LGPDConsent: validated.LGPDConsent,
		IPAddress:   input.IP,
		UserAgent:   input.UserAgent,
		Referrer:    input.Referrer,
	}
	applyUTM(lead, validated.UTM, input.Query)

	// 3. Deduplicação
	disp, err := uc.Dedup.Classify(ctx, lead.Email, lead.WhatsApp)
	if err != nil {
		return nil, err
	}

	switch disp.Kind {
	case DispositionExistingByEmail:
		return uc.existing(disp.Existing)
	case DispositionConflictByPhone:
		uc.Metrics.RecordLeadDisposition(disp.Kind.String())
		log.Printf("⚠️ [LEAD] WhatsApp %s já pertence ao lead %s", lead.WhatsApp, disp.Existing.ID)
		return nil, newPhoneConflictError(disp.Existing)
	}

	// 4. Persistência. A constraint única decide quando duas submissões correm em paralelo.
	if err := uc.Repo.Insert(ctx, lead); err != nil {
		return uc.resolveInsertError(ctx, lead, err)
	}

	uc.Metrics.RecordLeadDisposition(DispositionNew.String())
	log.Printf("✅ [LEAD] Lead criado: %s (%s) ip=%s", lead.ID, lead.Email, lead.IPAddress)

	// 5. Evento. Falha aqui não desfaz o cadastro.
	event := queue.NewLeadCapturedEvent(lead)
	if err := uc.Events.PublishLeadCaptured(ctx, event); err != nil {
		log.Printf("⚠️ [LEAD] Lead %s salvo, mas falha ao publicar evento: %v", lead.ID, err)
	}

	return &CreateLeadOutput{
		LeadID:     lead.ID,
		Email:      lead.Email,
		Name:       lead.Name,
		IsExisting: false,
	}, nil
}

func (uc *CreateLeadUseCase) existing(lead *entity.Lead) (*CreateLeadOutput, error) {
	uc.Metrics.RecordLeadDisposition(DispositionExistingByEmail.String())
	log.Printf("ℹ️ [LEAD] Email já cadastrado, devolvendo lead %s", lead.ID)

	if uc.ExistingEmail == ExistingEmailConflict {
		return nil, &DomainError{
			Kind:    KindConflict,
			Code:    CodeEmailExists,
			Message: "Lead já existe",
			Data: map[string]any{
				"leadId":     lead.ID,
				"isExisting": true,
				"field":      "email",
			},
		}
	}

	return &CreateLeadOutput{
		LeadID:     lead.ID,
		Email:      lead.Email,
		Name:       lead.Name,
		IsExisting: true,
		Field:      "email",
	}, nil
}

func (uc *CreateLeadUseCase) resolveInsertError(ctx context.Context, lead *entity.Lead, err error) (*CreateLeadOutput, error) {
	switch {
	case errors.Is(err, entity.ErrDuplicateEmail):
		winner, ferr := uc.Repo.FindByEmail(ctx, lead.Email)
		if ferr != nil {
			return nil, newDatabaseError("reler lead por email", ferr)
		}
		return uc.existing(winner)

	case errors.Is(err, entity.ErrDuplicateWhatsApp):
		uc.Metrics.RecordLeadDisposition(DispositionConflictByPhone.String())
		owner, ferr := uc.Repo.FindByWhatsApp(ctx, lead.WhatsApp)
		if ferr != nil {
			owner = nil
		}
		return nil, newPhoneConflictError(owner)
	}

	return nil, newDatabaseError("inserir lead", err)
}

const maxUTMLength = 100

// truncateRunes corta em n caracteres, nunca no meio de um caractere multibyte.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// applyUTM usa os valores do corpo e, na falta deles, os da query string.
func applyUTM(lead *entity.Lead, body UTMParams, query url.Values) {
	pick := func(v, key string) string {
		if v != "" {
			return v
		}
		return truncateRunes(strings.TrimSpace(query.Get(key)), maxUTMLength)
	}
	lead.UTMSource = pick(body.Source, "utm_source")
	lead.UTMMedium = pick(body.Medium, "utm_medium")
	lead.UTMCampaign = pick(body.Campaign, "utm_campaign")
	lead.UTMContent = pick(body.Content, "utm_content")
	lead.UTMTerm = pick(body.Term, "utm_term")
}
