package usecase

import (
	"context"

	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// LeadEventPublisher publica o evento de lead novo (RabbitMQ em produção).
type LeadEventPublisher interface {
	PublishLeadCaptured(ctx context.Context, event queue.LeadCapturedEvent) error
}

// LeadMetrics recebe a disposição de cada submissão processada.
type LeadMetrics interface {
	RecordLeadDisposition(disposition string)
}

// ExistingEmailMode define a resposta para email já cadastrado na criação.
type ExistingEmailMode string

const (
	// ExistingEmailSuccess devolve 200 com isExisting=true e o funil segue normalmente.
	ExistingEmailSuccess ExistingEmailMode = "success"
	// ExistingEmailConflict devolve 409 com o id do lead existente.
	ExistingEmailConflict ExistingEmailMode = "conflict"
)

func ParseExistingEmailMode(s string) ExistingEmailMode {
	if ExistingEmailMode(s) == ExistingEmailConflict {
		return ExistingEmailConflict
	}
	return ExistingEmailSuccess
}

type noopPublisher struct{}

func (noopPublisher) PublishLeadCaptured(context.Context, queue.LeadCapturedEvent) error { return nil }

type noopMetrics struct{}

func (noopMetrics) RecordLeadDisposition(string) {}
