package ratelimit

import "time"

// Policy é uma faixa de limite: no máximo Max requisições por IP a cada Window.
type Policy struct {
	Name    string
	Window  time.Duration
	Max     int
	Code    string
	Message string
}

const (
	PolicyLeadCreation = "lead_creation"
	PolicyLeadLookup   = "lead_lookup"
	PolicyAdminQuery   = "admin_query"
	PolicyGlobal       = "global"
)

func LeadCreationPolicy() Policy {
	return Policy{
		Name:    PolicyLeadCreation,
		Window:  15 * time.Minute,
		Max:     5,
		Code:    "TOO_MANY_LEAD_ATTEMPTS",
		Message: "Muitas tentativas de cadastro. Aguarde alguns minutos antes de tentar novamente.",
	}
}

func LeadLookupPolicy() Policy {
	return Policy{
		Name:    PolicyLeadLookup,
		Window:  5 * time.Minute,
		Max:     20,
		Code:    "TOO_MANY_EMAIL_CHECKS",
		Message: "Muitas verificações de email. Aguarde alguns minutos.",
	}
}

func AdminQueryPolicy() Policy {
	return Policy{
		Name:    PolicyAdminQuery,
		Window:  15 * time.Minute,
		Max:     200,
		Code:    "TOO_MANY_ADMIN_QUERIES",
		Message: "Muitas consultas administrativas.",
	}
}

func GlobalPolicy() Policy {
	return Policy{
		Name:    PolicyGlobal,
		Window:  15 * time.Minute,
		Max:     1000,
		Code:    "GLOBAL_RATE_LIMIT_EXCEEDED",
		Message: "Limite de requisições excedido.",
	}
}

// WithLimits devolve uma cópia com janela/teto sobrescritos. Zero mantém o valor atual.
func (p Policy) WithLimits(window time.Duration, max int) Policy {
	if window > 0 {
		p.Window = window
	}
	if max > 0 {
		p.Max = max
	}
	return p
}
