package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type DispositionKind int

const (
	DispositionNew DispositionKind = iota
	DispositionExistingByEmail
	DispositionConflictByPhone
)

func (k DispositionKind) String() string {
	switch k {
	case DispositionExistingByEmail:
		return "existing_email"
	case DispositionConflictByPhone:
		return "conflict_whatsapp"
	default:
		return "new"
	}
}

// Disposition é o resultado da classificação. Existing vem preenchido
// para ExistingByEmail (o lead do email) e ConflictByPhone (o dono do telefone).
type Disposition struct {
	Kind     DispositionKind
	Existing *entity.Lead
}

// Deduplicator decide se uma submissão é nova, repetida ou conflitante.
// A constraint única do banco continua sendo a garantia final; isto aqui só antecipa a resposta.
type Deduplicator struct {
	Repo entity.LeadRepositoryInterface
}

func NewDeduplicator(repo entity.LeadRepositoryInterface) *Deduplicator {
	return &Deduplicator{Repo: repo}
}

// Classify espera email e whatsapp já normalizados. Email tem precedência sobre telefone.
func (d *Deduplicator) Classify(ctx context.Context, email, whatsapp string) (Disposition, error) {
	existing, err := d.Repo.FindByEmail(ctx, email)
	if err == nil {
		return Disposition{Kind: DispositionExistingByEmail, Existing: existing}, nil
	}
	if !errors.Is(err, entity.ErrLeadNotFound) {
		return Disposition{}, newDatabaseError("buscar lead por email", err)
	}

	if whatsapp == "" {
		return Disposition{Kind: DispositionNew}, nil
	}

	owner, err := d.Repo.FindByWhatsApp(ctx, whatsapp)
	if err == nil {
		return Disposition{Kind: DispositionConflictByPhone, Existing: owner}, nil
	}
	if !errors.Is(err, entity.ErrLeadNotFound) {
		return Disposition{}, newDatabaseError("buscar lead por whatsapp", err)
	}

	return Disposition{Kind: DispositionNew}, nil
}

// CheckUpdate verifica email e whatsapp contra os leads diferentes de id.
// Valores vazios não são verificados.
func (d *Deduplicator) CheckUpdate(ctx context.Context, id, email, whatsapp string) error {
	if email != "" {
		other, err := d.Repo.FindByEmail(ctx, email)
		switch {
		case err == nil && other.ID != id:
			return newEmailInUseError(other)
		case err != nil && !errors.Is(err, entity.ErrLeadNotFound):
			return newDatabaseError("buscar lead por email", err)
		}
	}

	if whatsapp != "" {
		other, err := d.Repo.FindByWhatsApp(ctx, whatsapp)
		switch {
		case err == nil && other.ID != id:
			return newWhatsAppInUseError(other)
		case err != nil && !errors.Is(err, entity.ErrLeadNotFound):
			return newDatabaseError("buscar lead por whatsapp", err)
		}
	}

	return nil
}

func newEmailInUseError(other *entity.Lead) *DomainError {
	data := map[string]any{"field": "email"}
	if other != nil {
		data["leadId"] = other.ID
	}
	return &DomainError{
		Kind:    KindConflict,
		Code:    CodeDuplicateData,
		Message: "Este email já está sendo usado por outro lead",
		Data:    data,
	}
}

func newWhatsAppInUseError(other *entity.Lead) *DomainError {
	data := map[string]any{"field": "whatsapp"}
	if other != nil {
		data["leadId"] = other.ID
		data["existingEmail"] = other.Email
	}
	return &DomainError{
		Kind:    KindConflict,
		Code:    CodeDuplicateData,
		Message: "Este WhatsApp já está sendo usado por outro lead",
		Data:    data,
	}
}

func newPhoneConflictError(owner *entity.Lead) *DomainError {
	data := map[string]any{"field": "whatsapp"}
	if owner != nil {
		data["leadId"] = owner.ID
		data["existingEmail"] = owner.Email
	}
	return &DomainError{
		Kind:    KindConflict,
		Code:    CodeDuplicateData,
		Message: "WhatsApp já cadastrado",
		Data:    data,
	}
}
