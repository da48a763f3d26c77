package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/ligue-leads/internal/ratelimit"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type LeadHandler struct {
	create     *usecase.CreateLeadUseCase
	update     *usecase.UpdateLeadUseCase
	remove     *usecase.DeleteLeadUseCase
	query      *usecase.LeadQueryUseCase
	production bool

	// ClientIP resolve o IP gravado no lead; o padrão confia em um proxy.
	ClientIP ratelimit.KeyFunc
}

func NewLeadHandler(
	create *usecase.CreateLeadUseCase,
	update *usecase.UpdateLeadUseCase,
	remove *usecase.DeleteLeadUseCase,
	query *usecase.LeadQueryUseCase,
	production bool,
) *LeadHandler {
	return &LeadHandler{
		create:     create,
		update:     update,
		remove:     remove,
		query:      query,
		production: production,
		ClientIP:   ratelimit.ClientIP,
	}
}

// CaptureLead: POST /api/leads
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	out, err := h.create.Execute(r.Context(), usecase.CreateLeadInput{
		Body:      body,
		Query:     r.URL.Query(),
		IP:        h.ClientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	})
	if err != nil {
		writeError(w, r, err, h.production)
		return
	}

	if out.IsExisting {
		writeJSON(w, http.StatusOK, Response{Success: true, Message: "Lead já existe", Data: out})
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: "Lead criado com sucesso", Data: out})
}

// ListLeads: GET /api/leads
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	page, err := h.query.List(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.production)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Leads recuperados com sucesso", Data: page})
}

func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.query.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.production)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Lead encontrado", Data: lead.Public()})
}

func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	lead, err := h.update.Execute(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		writeError(w, r, err, h.production)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Lead atualizado com sucesso", Data: lead.Public()})
}

func (h *LeadHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	if err := h.remove.Execute(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, h.production)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Lead deletado com sucesso"})
}

func (h *LeadHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	out, err := h.query.CheckEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err, h.production)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Verificação de email concluída", Data: out})
}

func (h *LeadHandler) CheckWhatsApp(w http.ResponseWriter, r *http.Request) {
	out, err := h.query.CheckWhatsApp(r.Context(), r.URL.Query().Get("whatsapp"))
	if err != nil {
		writeError(w, r, err, h.production)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Verificação de WhatsApp concluída", Data: out})
}

func (h *LeadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.query.Stats(r.Context())
	if err != nil {
		writeError(w, r, err, h.production)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Estatísticas do dashboard recuperadas com sucesso", Data: stats})
}

// ServiceHealth: GET /api/leads/health/check
func (h *LeadHandler) ServiceHealth(w http.ResponseWriter, r *http.Request) {
	out, err := h.query.Health(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Message: "Serviço de leads indisponível",
			Code:    CodeServiceUnavailable,
		})
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Serviço de leads funcionando", Data: out})
}

func clientIP(r *http.Request) string {
	return ratelimit.ClientIP(r)
}
