package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/xavierca1/ligue-leads/internal/entity"
)

type LeadRepository struct {
	DB *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

type leadRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	WhatsApp    *string   `db:"whatsapp"`
	Role        *string   `db:"role"`
	LGPDConsent bool      `db:"lgpd_consent"`
	IPAddress   *string   `db:"ip_address"`
	UserAgent   *string   `db:"user_agent"`
	Referrer    *string   `db:"referrer"`
	UTMSource   *string   `db:"utm_source"`
	UTMMedium   *string   `db:"utm_medium"`
	UTMCampaign *string   `db:"utm_campaign"`
	UTMContent  *string   `db:"utm_content"`
	UTMTerm     *string   `db:"utm_term"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r leadRow) toEntity() *entity.Lead {
	return &entity.Lead{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		WhatsApp:    deref(r.WhatsApp),
		Role:        deref(r.Role),
		LGPDConsent: r.LGPDConsent,
		IPAddress:   deref(r.IPAddress),
		UserAgent:   deref(r.UserAgent),
		Referrer:    deref(r.Referrer),
		UTMSource:   deref(r.UTMSource),
		UTMMedium:   deref(r.UTMMedium),
		UTMCampaign: deref(r.UTMCampaign),
		UTMContent:  deref(r.UTMContent),
		UTMTerm:     deref(r.UTMTerm),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromEntity(l *entity.Lead) leadRow {
	return leadRow{
		ID:          l.ID,
		Name:        l.Name,
		Email:       l.Email,
		WhatsApp:    nullString(l.WhatsApp),
		Role:        nullString(l.Role),
		LGPDConsent: l.LGPDConsent,
		IPAddress:   nullString(l.IPAddress),
		UserAgent:   nullString(l.UserAgent),
		Referrer:    nullString(l.Referrer),
		UTMSource:   nullString(l.UTMSource),
		UTMMedium:   nullString(l.UTMMedium),
		UTMCampaign: nullString(l.UTMCampaign),
		UTMContent:  nullString(l.UTMContent),
		UTMTerm:     nullString(l.UTMTerm),
	}
}

const leadColumns = `id, name, email, whatsapp, role, lgpd_consent, ip_address, user_agent, referrer,
	utm_source, utm_medium, utm_campaign, utm_content, utm_term, created_at, updated_at`

const insertLeadQuery = `
	INSERT INTO leads (id, name, email, whatsapp, role, lgpd_consent, ip_address, user_agent, referrer,
		utm_source, utm_medium, utm_campaign, utm_content, utm_term, created_at, updated_at)
	VALUES (:id, :name, :email, :whatsapp, :role, :lgpd_consent, :ip_address, :user_agent, :referrer,
		:utm_source, :utm_medium, :utm_campaign, :utm_content, :utm_term, NOW(), NOW())
	RETURNING created_at, updated_at
`

// Insert gera o id e grava o lead. Violação de unicidade vira ErrDuplicateEmail/ErrDuplicateWhatsApp.
func (r *LeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}

	rows, err := r.DB.NamedQueryContext(ctx, insertLeadQuery, fromEntity(lead))
	if err != nil {
		return mapUniqueViolation(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return mapUniqueViolation(err)
		}
		return errors.New("insert sem retorno")
	}
	return rows.Scan(&lead.CreatedAt, &lead.UpdatedAt)
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	// id fora do formato UUID faria o Postgres devolver erro de tipo
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrLeadNotFound
	}
	return r.findOne(ctx, "id", id)
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	return r.findOne(ctx, "email", email)
}

func (r *LeadRepository) FindByWhatsApp(ctx context.Context, whatsapp string) (*entity.Lead, error) {
	return r.findOne(ctx, "whatsapp", whatsapp)
}

func (r *LeadRepository) findOne(ctx context.Context, column, value string) (*entity.Lead, error) {
	var row leadRow
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s = $1 LIMIT 1`, leadColumns, column)

	if err := r.DB.GetContext(ctx, &row, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, err
	}
	return row.toEntity(), nil
}

// Update aplica só os campos presentes no patch e sempre renova updated_at.
// String vazia em campo opcional grava NULL.
func (r *LeadRepository) Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrLeadNotFound
	}

	sets := []string{"updated_at = NOW()"}
	args := []any{}
	add := func(column string, v *string, nullable bool) {
		if v == nil {
			return
		}
		args = append(args, *v)
		if nullable {
			args[len(args)-1] = nullString(*v)
		}
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	add("name", patch.Name, false)
	add("email", patch.Email, false)
	add("whatsapp", patch.WhatsApp, true)
	add("role", patch.Role, true)
	add("utm_source", patch.UTMSource, true)
	add("utm_medium", patch.UTMMedium, true)
	add("utm_campaign", patch.UTMCampaign, true)
	add("utm_content", patch.UTMContent, true)
	add("utm_term", patch.UTMTerm, true)

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), leadColumns)

	var row leadRow
	if err := r.DB.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, mapUniqueViolation(err)
	}
	return row.toEntity(), nil
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return entity.ErrLeadNotFound
	}

	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

var orderColumns = map[string]string{
	entity.OrderByCreatedAt: "created_at",
	entity.OrderByName:      "name",
	entity.OrderByEmail:     "email",
	entity.OrderByUpdatedAt: "updated_at",
}

func (r *LeadRepository) List(ctx context.Context, q entity.ListQuery) ([]entity.Lead, int, error) {
	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM leads`); err != nil {
		return nil, 0, err
	}

	column, ok := orderColumns[q.OrderBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(q.Order, "asc") {
		direction = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM leads ORDER BY %s %s, id LIMIT $1 OFFSET $2`, leadColumns, column, direction)

	var rows []leadRow
	if err := r.DB.SelectContext(ctx, &rows, query, q.Limit, q.Offset()); err != nil {
		return nil, 0, err
	}

	leads := make([]entity.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, *row.toEntity())
	}
	return leads, total, nil
}

// Count conta leads criados a partir de since. Zero conta todos.
func (r *LeadRepository) Count(ctx context.Context, since time.Time) (int, error) {
	var n int
	if since.IsZero() {
		err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM leads`)
		return n, err
	}
	err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM leads WHERE created_at >= $1`, since)
	return n, err
}

func (r *LeadRepository) CountByUTMSource(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Source string `db:"utm_source"`
		Total  int    `db:"total"`
	}
	err := r.DB.SelectContext(ctx, &rows, `
		SELECT utm_source, COUNT(*) AS total
		FROM leads
		WHERE utm_source IS NOT NULL AND utm_source <> ''
		GROUP BY utm_source
	`)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Source] = row.Total
	}
	return out, nil
}

// mapUniqueViolation traduz o 23505 do Postgres para os erros de domínio pela constraint.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if pqErr.Constraint == ConstraintWhatsApp {
			return fmt.Errorf("%w: %s", entity.ErrDuplicateWhatsApp, pqErr.Message)
		}
		return fmt.Errorf("%w: %s", entity.ErrDuplicateEmail, pqErr.Message)
	}
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
