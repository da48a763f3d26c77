package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-leads/internal/entity"
)

func TestMapUniqueViolation(t *testing.T) {
	emailErr := mapUniqueViolation(&pq.Error{Code: "23505", Constraint: ConstraintEmail, Message: "duplicate key"})
	assert.ErrorIs(t, emailErr, entity.ErrDuplicateEmail)

	phoneErr := mapUniqueViolation(&pq.Error{Code: "23505", Constraint: ConstraintWhatsApp, Message: "duplicate key"})
	assert.ErrorIs(t, phoneErr, entity.ErrDuplicateWhatsApp)

	other := &pq.Error{Code: "23502", Message: "not null"}
	assert.Equal(t, error(other), mapUniqueViolation(other))

	plain := errors.New("boom")
	assert.Equal(t, plain, mapUniqueViolation(plain))
}

func TestRowConversionKeepsOptionalFieldsNull(t *testing.T) {
	row := fromEntity(&entity.Lead{ID: "id", Name: "A", Email: "a@example.com", UTMSource: "google"})

	assert.Nil(t, row.WhatsApp)
	assert.Nil(t, row.Role)
	require.NotNil(t, row.UTMSource)
	assert.Equal(t, "google", *row.UTMSource)

	back := row.toEntity()
	assert.Equal(t, "", back.WhatsApp)
	assert.Equal(t, "google", back.UTMSource)
}

// Integração: só roda com TEST_DATABASE_URL apontando para um Postgres descartável.
func TestLeadRepositoryIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL não definida")
	}

	ctx := context.Background()
	db, err := NewDBConnection(ctx, dsn, PoolConfig{})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, EnsureSchema(ctx, db))

	repo := NewLeadRepository(db)
	suffix := uuid.NewString()[:8]
	email := "it-" + suffix + "@example.com"

	lead := &entity.Lead{Name: "Integração", Email: email, LGPDConsent: true}
	require.NoError(t, repo.Insert(ctx, lead))
	defer repo.Delete(ctx, lead.ID)

	err = repo.Insert(ctx, &entity.Lead{Name: "Dup", Email: email, LGPDConsent: true})
	assert.ErrorIs(t, err, entity.ErrDuplicateEmail)

	found, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, lead.ID, found.ID)

	role := "Diretora"
	updated, err := repo.Update(ctx, lead.ID, entity.LeadPatch{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Diretora", updated.Role)
	assert.False(t, updated.UpdatedAt.Before(found.UpdatedAt))

	n, err := repo.Count(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	_, err = repo.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}
