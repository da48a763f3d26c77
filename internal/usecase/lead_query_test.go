package usecase

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/database/memory"
)

func TestLeadQueryGetIsIdempotent(t *testing.T) {
	repo := memory.NewLeadRepository()
	a := seedLead(t, repo, "Lead A", "a@example.com", "")
	uc := NewLeadQueryUseCase(repo)

	first, err := uc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	second, err := uc.Get(context.Background(), a.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Public(), second.Public())
}

func TestLeadQueryGetNotFound(t *testing.T) {
	_, err := NewLeadQueryUseCase(memory.NewLeadRepository()).Get(context.Background(), "nope")

	de, ok := AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, de.Kind)
}

func TestLeadQueryListPaginates(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo := memory.NewLeadRepositoryWithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	for i := 1; i <= 5; i++ {
		seedLead(t, repo, fmt.Sprintf("Lead %d", i), fmt.Sprintf("lead%d@example.com", i), "")
	}
	uc := NewLeadQueryUseCase(repo)

	page, err := uc.List(context.Background(), url.Values{"page": {"2"}, "limit": {"2"}})

	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Leads, 2)
	// desc por created_at: 5,4 | 3,2 | 1
	assert.Equal(t, "lead3@example.com", page.Leads[0].Email)
	assert.Equal(t, "lead2@example.com", page.Leads[1].Email)
}

func TestLeadQueryListInvalidParams(t *testing.T) {
	_, err := NewLeadQueryUseCase(memory.NewLeadRepository()).List(context.Background(), url.Values{"limit": {"1000"}})

	de, ok := AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, de.Kind)
	assert.Equal(t, "Parâmetros de consulta inválidos", de.Message)
}

func TestLeadQueryStatsWindows(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	repo := new(MockLeadRepository)
	repo.On("Count", mock.Anything, time.Time{}).Return(42, nil)
	repo.On("Count", mock.Anything, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)).Return(3, nil)
	repo.On("Count", mock.Anything, now.Add(-7*24*time.Hour)).Return(11, nil)
	repo.On("CountByUTMSource", mock.Anything).Return(map[string]int{"google": 7, "facebook": 2}, nil)

	uc := NewLeadQueryUseCase(repo)
	uc.Now = func() time.Time { return now }

	stats, err := uc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &entity.LeadStats{
		TotalLeads: 42,
		TodayLeads: 3,
		WeekLeads:  11,
		UTMSources: map[string]int{"google": 7, "facebook": 2},
	}, stats)
	repo.AssertExpectations(t)
}

func TestLeadQueryCheckEmail(t *testing.T) {
	repo := memory.NewLeadRepository()
	seedLead(t, repo, "Lead A", "a@example.com", "")
	uc := NewLeadQueryUseCase(repo)

	out, err := uc.CheckEmail(context.Background(), " A@EXAMPLE.com ")
	require.NoError(t, err)
	assert.True(t, out.Exists)
	assert.Equal(t, "a@example.com", out.Email)

	out, err = uc.CheckEmail(context.Background(), "b@example.com")
	require.NoError(t, err)
	assert.False(t, out.Exists)

	_, err = uc.CheckEmail(context.Background(), "")
	de, ok := AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "required", de.Fields[0].Code)

	_, err = uc.CheckEmail(context.Background(), "nope")
	de, ok = AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "email", de.Fields[0].Code)
}

func TestLeadQueryCheckWhatsApp(t *testing.T) {
	repo := memory.NewLeadRepository()
	seedLead(t, repo, "Lead A", "a@example.com", "(11) 98888-7777")
	uc := NewLeadQueryUseCase(repo)

	out, err := uc.CheckWhatsApp(context.Background(), "(11)988887777")
	require.NoError(t, err)
	assert.True(t, out.Exists)
	assert.Equal(t, "a@example.com", out.ExistingEmail)

	_, err = uc.CheckWhatsApp(context.Background(), "123")
	de, ok := AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "pattern", de.Fields[0].Code)
}

func TestLeadQueryHealth(t *testing.T) {
	repo := memory.NewLeadRepository()
	seedLead(t, repo, "Lead A", "a@example.com", "")

	out, err := NewLeadQueryUseCase(repo).Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, out.TotalLeads)
	assert.False(t, out.Timestamp.IsZero())
}
