package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campaign-service/internal/models"
	"campaign-service/internal/pkg/log"
	"campaign-service/internal/storage"
)

const (
	campaignNameMaxLen  = 255
	campaignListLimit   = 100
	campaignListMaximum = 1000
)

// CampaignUpdate — частичное обновление кампании; nil-поле не меняется.
type CampaignUpdate struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *float64
	IsActive    *bool
}

// CampaignPage — страница списка кампаний с общим количеством.
type CampaignPage struct {
	Items []models.Campaign
	Total int64
}

// CreateCampaign создает новую кампанию.
func (s *Service) CreateCampaign(ctx context.Context, campaign models.Campaign) (*models.Campaign, error) {
	const op = "service.campaigns.CreateCampaign"

	if err := validateCampaign(&campaign); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.SaveCampaign(ctx, &campaign); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("campaign_created",
		slog.Int64("campaign_id", campaign.ID),
		slog.String("name", campaign.Name),
	)

	return &campaign, nil
}

// CampaignByID находит кампанию по ID.
func (s *Service) CampaignByID(ctx context.Context, id int64) (*models.Campaign, error) {
	const op = "service.campaigns.CampaignByID"

	campaign, err := s.storage.CampaignByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return campaign, nil
}

// ListCampaigns возвращает страницу кампаний и общее число записей по фильтру.
func (s *Service) ListCampaigns(ctx context.Context, filter storage.CampaignFilter) (*CampaignPage, error) {
	const op = "service.campaigns.ListCampaigns"

	if filter.Limit <= 0 {
		filter.Limit = campaignListLimit
	}
	if filter.Limit > campaignListMaximum {
		filter.Limit = campaignListMaximum
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, err := s.storage.Campaigns(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	total, err := s.storage.CountCampaigns(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &CampaignPage{Items: items, Total: total}, nil
}

// UpdateCampaign частично обновляет кампанию; результат заново валидируется.
func (s *Service) UpdateCampaign(ctx context.Context, id int64, upd CampaignUpdate) (*models.Campaign, error) {
	const op = "service.campaigns.UpdateCampaign"

	campaign, err := s.storage.CampaignByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if upd.Name != nil {
		campaign.Name = *upd.Name
	}
	if upd.Description != nil {
		campaign.Description = *upd.Description
	}
	if upd.StartDate != nil {
		campaign.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		campaign.EndDate = *upd.EndDate
	}
	if upd.Budget != nil {
		campaign.Budget = *upd.Budget
	}
	if upd.IsActive != nil {
		campaign.IsActive = *upd.IsActive
	}

	if err := validateCampaign(campaign); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdateCampaign(ctx, campaign); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return campaign, nil
}

// DeleteCampaign удаляет кампанию по ID.
func (s *Service) DeleteCampaign(ctx context.Context, id int64) error {
	const op = "service.campaigns.DeleteCampaign"

	if err := s.storage.DeleteCampaign(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("campaign_deleted", slog.Int64("campaign_id", id))

	return nil
}

// validateCampaign проверяет инварианты кампании и нормализует даты до дня.
func validateCampaign(c *models.Campaign) error {
	const op = "service.campaigns.validateCampaign"

	if c.Name == "" || len(c.Name) > campaignNameMaxLen {
		return fmt.Errorf("%s: %w: name must be 1..%d characters", op, ErrInvalidCampaign, campaignNameMaxLen)
	}

	if c.Budget <= 0 {
		return fmt.Errorf("%s: %w: budget must be positive", op, ErrInvalidCampaign)
	}

	c.StartDate = truncateToDay(c.StartDate)
	c.EndDate = truncateToDay(c.EndDate)

	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("%s: %w: start_date and end_date are required", op, ErrInvalidCampaign)
	}

	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%s: %w: end_date must not be before start_date", op, ErrInvalidCampaign)
	}

	return nil
}

func truncateToDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}

	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
