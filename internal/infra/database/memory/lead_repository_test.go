package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-leads/internal/entity"
)

func TestInsertEnforcesUniqueness(t *testing.T) {
	repo := NewLeadRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &entity.Lead{Name: "A", Email: "a@example.com", WhatsApp: "(11) 98888-7777"}))
	require.NoError(t, repo.Insert(ctx, &entity.Lead{Name: "B", Email: "b@example.com"}))
	require.NoError(t, repo.Insert(ctx, &entity.Lead{Name: "C", Email: "c@example.com"}))

	err := repo.Insert(ctx, &entity.Lead{Name: "D", Email: "a@example.com"})
	assert.ErrorIs(t, err, entity.ErrDuplicateEmail)

	err = repo.Insert(ctx, &entity.Lead{Name: "E", Email: "e@example.com", WhatsApp: "(11) 98888-7777"})
	assert.ErrorIs(t, err, entity.ErrDuplicateWhatsApp)

	n, _ := repo.Count(ctx, time.Time{})
	assert.Equal(t, 3, n)
}

func TestUpdateTouchesUpdatedAtOnly(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	repo := NewLeadRepositoryWithClock(func() time.Time { return now })
	ctx := context.Background()

	l := &entity.Lead{Name: "A", Email: "a@example.com", IPAddress: "1.2.3.4"}
	require.NoError(t, repo.Insert(ctx, l))

	now = now.Add(time.Hour)
	name := "A2"
	updated, err := repo.Update(ctx, l.ID, entity.LeadPatch{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Name)
	assert.Equal(t, "1.2.3.4", updated.IPAddress)
	assert.Equal(t, l.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
}

func TestUpdateRejectsDuplicateOfOtherLead(t *testing.T) {
	repo := NewLeadRepository()
	ctx := context.Background()
	a := &entity.Lead{Name: "A", Email: "a@example.com"}
	require.NoError(t, repo.Insert(ctx, a))
	require.NoError(t, repo.Insert(ctx, &entity.Lead{Name: "B", Email: "b@example.com"}))

	email := "b@example.com"
	_, err := repo.Update(ctx, a.ID, entity.LeadPatch{Email: &email})
	assert.ErrorIs(t, err, entity.ErrDuplicateEmail)

	same := "a@example.com"
	_, err = repo.Update(ctx, a.ID, entity.LeadPatch{Email: &same})
	assert.NoError(t, err)
}

func TestReturnedLeadsAreCopies(t *testing.T) {
	repo := NewLeadRepository()
	ctx := context.Background()
	l := &entity.Lead{Name: "A", Email: "a@example.com"}
	require.NoError(t, repo.Insert(ctx, l))

	got, _ := repo.FindByID(ctx, l.ID)
	got.Name = "mexido"

	again, _ := repo.FindByID(ctx, l.ID)
	assert.Equal(t, "A", again.Name)
}

func TestListOrderingAndCounts(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	repo := NewLeadRepositoryWithClock(func() time.Time {
		i++
		return base.Add(time.Duration(i) * 24 * time.Hour)
	})
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &entity.Lead{Name: "Carla", Email: "c@example.com", UTMSource: "google"}))
	require.NoError(t, repo.Insert(ctx, &entity.Lead{Name: "Ana", Email: "a@example.com", UTMSource: "google"}))
	require.NoError(t, repo.Insert(ctx, &entity.Lead{Name: "Bruno", Email: "b@example.com"}))

	leads, total, err := repo.List(ctx, entity.ListQuery{Page: 1, Limit: 10, OrderBy: entity.OrderByName, Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"Ana", "Bruno", "Carla"}, []string{leads[0].Name, leads[1].Name, leads[2].Name})

	leads, _, _ = repo.List(ctx, entity.ListQuery{Page: 2, Limit: 2, OrderBy: entity.OrderByCreatedAt, Order: "desc"})
	require.Len(t, leads, 1)
	assert.Equal(t, "Carla", leads[0].Name)

	n, _ := repo.Count(ctx, base.Add(48*time.Hour))
	assert.Equal(t, 2, n)

	sources, _ := repo.CountByUTMSource(ctx)
	assert.Equal(t, map[string]int{"google": 2}, sources)
}

func TestListBreaksTiesByID(t *testing.T) {
	same := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewLeadRepositoryWithClock(func() time.Time { return same })
	ctx := context.Background()

	ids := []string{"c", "a", "e", "b", "d"}
	for _, id := range ids {
		require.NoError(t, repo.Insert(ctx, &entity.Lead{ID: id, Name: "L" + id, Email: id + "@example.com"}))
	}

	for i := 0; i < 20; i++ {
		var got []string
		for page := 1; page <= 3; page++ {
			leads, _, err := repo.List(ctx, entity.ListQuery{Page: page, Limit: 2, OrderBy: entity.OrderByCreatedAt, Order: "desc"})
			require.NoError(t, err)
			for _, l := range leads {
				got = append(got, l.ID)
			}
		}
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, got)
	}
}

func TestDeleteUnknown(t *testing.T) {
	assert.ErrorIs(t, NewLeadRepository().Delete(context.Background(), "x"), entity.ErrLeadNotFound)
}
