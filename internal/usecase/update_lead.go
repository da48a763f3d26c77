package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type UpdateLeadUseCase struct {
	Repo  entity.LeadRepositoryInterface
	Dedup *Deduplicator
}

func NewUpdateLeadUseCase(repo entity.LeadRepositoryInterface) *UpdateLeadUseCase {
	return &UpdateLeadUseCase{
		Repo:  repo,
		Dedup: NewDeduplicator(repo),
	}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, id string, body map[string]any) (*entity.Lead, error) {
	current, err := findLead(ctx, uc.Repo, id)
	if err != nil {
		return nil, err
	}

	patch, verrs := ValidateUpdateLead(body)
	if len(verrs) > 0 {
		return nil, newValidationError(verrs)
	}

	// Só confere unicidade do que realmente mudou
	var email, whatsapp string
	if patch.Email != nil && *patch.Email != current.Email {
		email = *patch.Email
	}
	if patch.WhatsApp != nil && *patch.WhatsApp != "" && *patch.WhatsApp != current.WhatsApp {
		whatsapp = *patch.WhatsApp
	}
	if err := uc.Dedup.CheckUpdate(ctx, id, email, whatsapp); err != nil {
		return nil, err
	}

	updated, err := uc.Repo.Update(ctx, id, *patch)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrLeadNotFound):
			return nil, newNotFoundError(id)
		case errors.Is(err, entity.ErrDuplicateEmail):
			return nil, newEmailInUseError(nil)
		case errors.Is(err, entity.ErrDuplicateWhatsApp):
			return nil, newWhatsAppInUseError(nil)
		}
		return nil, newDatabaseError("atualizar lead", err)
	}

	log.Printf("✏️ [LEAD] Lead %s atualizado", id)
	return updated, nil
}

func findLead(ctx context.Context, repo entity.LeadRepositoryInterface, id string) (*entity.Lead, error) {
	lead, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, newNotFoundError(id)
		}
		return nil, newDatabaseError("buscar lead", err)
	}
	return lead, nil
}
