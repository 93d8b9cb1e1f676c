package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campaign-service/internal/models"
	"campaign-service/internal/storage"
)

func applyCampaignMigration(t *testing.T, st *Storage) {
	t.Helper()
	_, err := st.db.Exec(context.Background(), readMigration(t, "3_init_campaigns.up.sql"))
	require.NoError(t, err, "apply 3_init_campaigns.up.sql")
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedCampaign(t *testing.T, st *Storage, name string, start, end time.Time, active bool) *models.Campaign {
	t.Helper()
	c := &models.Campaign{
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Budget:    100,
		IsActive:  active,
	}
	require.NoError(t, st.SaveCampaign(context.Background(), c))
	return c
}

func TestIntegration_SaveCampaign_And_GetByID_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()
	applyCampaignMigration(t, st)

	ctx := context.Background()
	c := &models.Campaign{
		Name:        "Summer Sale",
		Description: "seasonal discounts",
		StartDate:   date(2026, time.June, 1),
		EndDate:     date(2026, time.August, 31),
		Budget:      1500.25,
		IsActive:    true,
	}
	require.NoError(t, st.SaveCampaign(ctx, c))
	require.NotZero(t, c.ID)

	got, err := st.CampaignByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.Name, got.Name)
	require.Equal(t, c.Description, got.Description)
	require.True(t, c.StartDate.Equal(got.StartDate.UTC()))
	require.True(t, c.EndDate.Equal(got.EndDate.UTC()))
	require.Equal(t, c.Budget, got.Budget)
	require.True(t, got.IsActive)
}

func TestIntegration_SaveCampaign_CheckConstraints(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()
	applyCampaignMigration(t, st)

	ctx := context.Background()

	// end_date < start_date нарушает campaigns_dates_check.
	err := st.SaveCampaign(ctx, &models.Campaign{
		Name:      "bad dates",
		StartDate: date(2026, time.June, 10),
		EndDate:   date(2026, time.June, 1),
		Budget:    10,
	})
	require.Error(t, err)

	// Нулевой бюджет нарушает campaigns_budget_check.
	err = st.SaveCampaign(ctx, &models.Campaign{
		Name:      "bad budget",
		StartDate: date(2026, time.June, 1),
		EndDate:   date(2026, time.June, 10),
		Budget:    0,
	})
	require.Error(t, err)
}

func TestIntegration_CampaignByID_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()
	applyCampaignMigration(t, st)

	_, err := st.CampaignByID(context.Background(), 424242)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_Campaigns_FilterAndPagination(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()
	applyCampaignMigration(t, st)

	ctx := context.Background()

	january := seedCampaign(t, st, "january", date(2026, time.January, 1), date(2026, time.January, 31), true)
	spring := seedCampaign(t, st, "spring", date(2026, time.March, 1), date(2026, time.May, 31), false)
	summer := seedCampaign(t, st, "summer", date(2026, time.June, 1), date(2026, time.August, 31), true)

	// Без фильтра — все, по ID.
	all, err := st.Campaigns(ctx, storage.CampaignFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, january.ID, all[0].ID)

	// is_active = true.
	active := true
	got, err := st.Campaigns(ctx, storage.CampaignFilter{Limit: 10, IsActive: &active})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Окно дат: пересечение с [апрель, июль] — spring и summer.
	from := date(2026, time.April, 1)
	to := date(2026, time.July, 1)
	got, err = st.Campaigns(ctx, storage.CampaignFilter{Limit: 10, StartDate: &from, EndDate: &to})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, spring.ID, got[0].ID)
	require.Equal(t, summer.ID, got[1].ID)

	// Только StartDate: кампании, не закончившиеся к этой дате.
	got, err = st.Campaigns(ctx, storage.CampaignFilter{Limit: 10, StartDate: &from})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Пагинация.
	page, err := st.Campaigns(ctx, storage.CampaignFilter{Limit: 2, Offset: 0})
	require.NoError(t, err)
	require.Len(t, page, 2)

	page, err = st.Campaigns(ctx, storage.CampaignFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)

	// Count учитывает фильтр, но не пагинацию.
	total, err := st.CountCampaigns(ctx, storage.CampaignFilter{Limit: 1, IsActive: &active})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
}

func TestIntegration_UpdateCampaign_OK_And_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()
	applyCampaignMigration(t, st)

	ctx := context.Background()
	c := seedCampaign(t, st, "to-update", date(2026, time.June, 1), date(2026, time.June, 30), false)

	c.Name = "updated"
	c.Budget = 999
	c.IsActive = true
	require.NoError(t, st.UpdateCampaign(ctx, c))

	got, err := st.CampaignByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "updated", got.Name)
	require.Equal(t, float64(999), got.Budget)
	require.True(t, got.IsActive)

	ghost := *c
	ghost.ID = 999999
	err = st.UpdateCampaign(ctx, &ghost)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_DeleteCampaign_OK_And_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()
	applyCampaignMigration(t, st)

	ctx := context.Background()
	c := seedCampaign(t, st, "to-delete", date(2026, time.June, 1), date(2026, time.June, 30), true)

	require.NoError(t, st.DeleteCampaign(ctx, c.ID))

	_, err := st.CampaignByID(ctx, c.ID)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrNotFound)

	err = st.DeleteCampaign(ctx, c.ID)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
