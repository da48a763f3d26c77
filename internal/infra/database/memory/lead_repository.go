package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/ligue-leads/internal/entity"
)

// LeadRepository guarda leads em memória com as mesmas regras de unicidade do Postgres.
// Usado no modo degradado (sem DATABASE_URL) e nos testes.
type LeadRepository struct {
	mu    sync.RWMutex
	leads map[string]*entity.Lead
	now   func() time.Time
}

func NewLeadRepository() *LeadRepository {
	return &LeadRepository{
		leads: make(map[string]*entity.Lead),
		now:   time.Now,
	}
}

func NewLeadRepositoryWithClock(now func() time.Time) *LeadRepository {
	r := NewLeadRepository()
	r.now = now
	return r
}

func (r *LeadRepository) Insert(_ context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique("", lead.Email, lead.WhatsApp); err != nil {
		return err
	}

	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	now := r.now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	stored := *lead
	r.leads[lead.ID] = &stored
	return nil
}

func (r *LeadRepository) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *LeadRepository) FindByEmail(_ context.Context, email string) (*entity.Lead, error) {
	return r.findBy(func(l *entity.Lead) bool { return l.Email == email })
}

func (r *LeadRepository) FindByWhatsApp(_ context.Context, whatsapp string) (*entity.Lead, error) {
	if whatsapp == "" {
		return nil, entity.ErrLeadNotFound
	}
	return r.findBy(func(l *entity.Lead) bool { return l.WhatsApp == whatsapp })
}

func (r *LeadRepository) findBy(match func(*entity.Lead) bool) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.leads {
		if match(l) {
			cp := *l
			return &cp, nil
		}
	}
	return nil, entity.ErrLeadNotFound
}

func (r *LeadRepository) Update(_ context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}

	next := *l
	patch.Apply(&next)
	if err := r.checkUnique(id, next.Email, next.WhatsApp); err != nil {
		return nil, err
	}
	next.UpdatedAt = r.now().UTC()

	r.leads[id] = &next
	cp := next
	return &cp, nil
}

func (r *LeadRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leads[id]; !ok {
		return entity.ErrLeadNotFound
	}
	delete(r.leads, id)
	return nil
}

func (r *LeadRepository) List(_ context.Context, q entity.ListQuery) ([]entity.Lead, int, error) {
	r.mu.RLock()
	all := make([]entity.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		all = append(all, *l)
	}
	r.mu.RUnlock()

	cmp := compareFunc(q.OrderBy)
	desc := strings.EqualFold(q.Order, "desc")
	// Mesmo desempate do Postgres: coluna na direção pedida, depois id crescente.
	sort.Slice(all, func(i, j int) bool {
		c := cmp(all[i], all[j])
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	start := min(q.Offset(), total)
	end := min(start+q.Limit, total)
	return all[start:end], total, nil
}

func compareFunc(orderBy string) func(a, b entity.Lead) int {
	switch orderBy {
	case entity.OrderByName:
		return func(a, b entity.Lead) int { return strings.Compare(a.Name, b.Name) }
	case entity.OrderByEmail:
		return func(a, b entity.Lead) int { return strings.Compare(a.Email, b.Email) }
	case entity.OrderByUpdatedAt:
		return func(a, b entity.Lead) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	default:
		return func(a, b entity.Lead) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

func (r *LeadRepository) Count(_ context.Context, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if since.IsZero() {
		return len(r.leads), nil
	}
	n := 0
	for _, l := range r.leads {
		if !l.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *LeadRepository) CountByUTMSource(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int)
	for _, l := range r.leads {
		if l.UTMSource != "" {
			out[l.UTMSource]++
		}
	}
	return out, nil
}

// checkUnique deve ser chamado com o lock de escrita.
func (r *LeadRepository) checkUnique(selfID, email, whatsapp string) error {
	for id, l := range r.leads {
		if id == selfID {
			continue
		}
		if l.Email == email {
			return entity.ErrDuplicateEmail
		}
		if whatsapp != "" && l.WhatsApp == whatsapp {
			return entity.ErrDuplicateWhatsApp
		}
	}
	return nil
}
