package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"campaign-service/internal/models"
	"campaign-service/internal/storage"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validCampaign() models.Campaign {
	return models.Campaign{
		Name:        "Summer Sale",
		Description: "seasonal discounts",
		StartDate:   day(2026, time.June, 1),
		EndDate:     day(2026, time.August, 31),
		Budget:      1000.50,
		IsActive:    true,
	}
}

func TestCreateCampaign_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().SaveCampaign(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, c *models.Campaign) error {
			c.ID = 11
			return nil
		})

	got, err := svc.CreateCampaign(context.Background(), validCampaign())
	require.NoError(t, err)
	require.Equal(t, int64(11), got.ID)
}

func TestCreateCampaign_TruncatesDatesToDay(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	c := validCampaign()
	c.StartDate = time.Date(2026, time.June, 1, 15, 4, 5, 0, time.UTC)
	c.EndDate = time.Date(2026, time.August, 31, 23, 59, 59, 0, time.UTC)

	st.EXPECT().SaveCampaign(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, saved *models.Campaign) error {
			require.Equal(t, day(2026, time.June, 1), saved.StartDate)
			require.Equal(t, day(2026, time.August, 31), saved.EndDate)
			return nil
		})

	_, err := svc.CreateCampaign(context.Background(), c)
	require.NoError(t, err)
}

func TestCreateCampaign_Validation(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()

	c := validCampaign()
	c.Name = ""
	_, err := svc.CreateCampaign(ctx, c)
	require.ErrorIs(t, err, ErrInvalidCampaign)

	c = validCampaign()
	c.Name = string(make([]byte, campaignNameMaxLen+1))
	_, err = svc.CreateCampaign(ctx, c)
	require.ErrorIs(t, err, ErrInvalidCampaign)

	c = validCampaign()
	c.Budget = 0
	_, err = svc.CreateCampaign(ctx, c)
	require.ErrorIs(t, err, ErrInvalidCampaign)

	c = validCampaign()
	c.Budget = -5
	_, err = svc.CreateCampaign(ctx, c)
	require.ErrorIs(t, err, ErrInvalidCampaign)

	c = validCampaign()
	c.StartDate = time.Time{}
	_, err = svc.CreateCampaign(ctx, c)
	require.ErrorIs(t, err, ErrInvalidCampaign)

	c = validCampaign()
	c.StartDate, c.EndDate = c.EndDate, c.StartDate
	_, err = svc.CreateCampaign(ctx, c)
	require.ErrorIs(t, err, ErrInvalidCampaign)
}

func TestCreateCampaign_SingleDayAllowed(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	c := validCampaign()
	c.EndDate = c.StartDate

	st.EXPECT().SaveCampaign(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.CreateCampaign(context.Background(), c)
	require.NoError(t, err)
}

func TestCampaignByID_NotFound(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().CampaignByID(gomock.Any(), int64(404)).Return(nil, storage.ErrNotFound)

	_, err := svc.CampaignByID(context.Background(), 404)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListCampaigns_DefaultsAndClamp(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()

	// Нулевой limit заменяется дефолтом.
	st.EXPECT().Campaigns(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, f storage.CampaignFilter) ([]models.Campaign, error) {
			require.Equal(t, campaignListLimit, f.Limit)
			return nil, nil
		})
	st.EXPECT().CountCampaigns(gomock.Any(), gomock.Any()).Return(int64(0), nil)

	page, err := svc.ListCampaigns(ctx, storage.CampaignFilter{})
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.Zero(t, page.Total)

	// Слишком большой limit обрезается до максимума.
	st.EXPECT().Campaigns(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, f storage.CampaignFilter) ([]models.Campaign, error) {
			require.Equal(t, campaignListMaximum, f.Limit)
			return nil, nil
		})
	st.EXPECT().CountCampaigns(gomock.Any(), gomock.Any()).Return(int64(0), nil)

	_, err = svc.ListCampaigns(ctx, storage.CampaignFilter{Limit: 10_000})
	require.NoError(t, err)
}

func TestListCampaigns_ReturnsPageWithTotal(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	items := []models.Campaign{validCampaign(), validCampaign()}

	st.EXPECT().Campaigns(gomock.Any(), gomock.Any()).Return(items, nil)
	st.EXPECT().CountCampaigns(gomock.Any(), gomock.Any()).Return(int64(25), nil)

	page, err := svc.ListCampaigns(context.Background(), storage.CampaignFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, int64(25), page.Total)
}

func TestUpdateCampaign_Partial(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	existing := validCampaign()
	existing.ID = 11

	st.EXPECT().CampaignByID(gomock.Any(), int64(11)).DoAndReturn(
		func(_ context.Context, _ int64) (*models.Campaign, error) {
			cp := existing
			return &cp, nil
		})
	st.EXPECT().UpdateCampaign(gomock.Any(), gomock.Any()).Return(nil)

	budget := 2000.0
	got, err := svc.UpdateCampaign(context.Background(), 11, CampaignUpdate{Budget: &budget})
	require.NoError(t, err)
	require.Equal(t, budget, got.Budget)
	// Остальные поля не тронуты.
	require.Equal(t, existing.Name, got.Name)
	require.Equal(t, existing.StartDate, got.StartDate)
}

func TestUpdateCampaign_ResultRevalidated(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	existing := validCampaign()
	existing.ID = 11

	st.EXPECT().CampaignByID(gomock.Any(), int64(11)).DoAndReturn(
		func(_ context.Context, _ int64) (*models.Campaign, error) {
			cp := existing
			return &cp, nil
		})

	// Новый end_date раньше существующего start_date.
	end := day(2026, time.January, 1)
	_, err := svc.UpdateCampaign(context.Background(), 11, CampaignUpdate{EndDate: &end})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidCampaign)
}

func TestUpdateCampaign_NotFound(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().CampaignByID(gomock.Any(), int64(404)).Return(nil, storage.ErrNotFound)

	_, err := svc.UpdateCampaign(context.Background(), 404, CampaignUpdate{})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCampaign(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().DeleteCampaign(gomock.Any(), int64(11)).Return(nil)
	require.NoError(t, svc.DeleteCampaign(context.Background(), 11))

	st.EXPECT().DeleteCampaign(gomock.Any(), int64(404)).Return(storage.ErrNotFound)
	err := svc.DeleteCampaign(context.Background(), 404)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCampaign_StorageErrorPropagated(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().DeleteCampaign(gomock.Any(), int64(11)).Return(errors.New("db down"))
	require.Error(t, svc.DeleteCampaign(context.Background(), 11))
}
