package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type DeleteLeadUseCase struct {
	Repo entity.LeadRepositoryInterface
}

func NewDeleteLeadUseCase(repo entity.LeadRepositoryInterface) *DeleteLeadUseCase {
	return &DeleteLeadUseCase{Repo: repo}
}

// Execute remove o lead de vez (não há soft delete).
func (uc *DeleteLeadUseCase) Execute(ctx context.Context, id string) error {
	if _, err := findLead(ctx, uc.Repo, id); err != nil {
		return err
	}

	if err := uc.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return newNotFoundError(id)
		}
		return newDatabaseError("remover lead", err)
	}

	log.Printf("🗑️ [LEAD] Lead %s removido", id)
	return nil
}
