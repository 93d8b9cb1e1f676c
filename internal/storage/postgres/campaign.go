package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"campaign-service/internal/models"
	"campaign-service/internal/storage"

	"github.com/jackc/pgx/v5"
)

// SaveCampaign создает новую кампанию в БД и заполняет campaign.ID.
func (s *Storage) SaveCampaign(ctx context.Context, campaign *models.Campaign) error {
	const op = "storage.postgres.SaveCampaign"

	query := `
		INSERT INTO campaigns(name, description, start_date, end_date, budget, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := s.db.QueryRow(ctx, query,
		campaign.Name,
		campaign.Description,
		campaign.StartDate,
		campaign.EndDate,
		campaign.Budget,
		campaign.IsActive,
	).Scan(&campaign.ID)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CampaignByID находит кампанию по ID.
func (s *Storage) CampaignByID(ctx context.Context, id int64) (*models.Campaign, error) {
	const op = "storage.postgres.CampaignByID"

	query := `
		SELECT id, name, description, start_date, end_date, budget, is_active
		FROM campaigns
		WHERE id = $1
	`

	var c models.Campaign
	err := s.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.StartDate,
		&c.EndDate,
		&c.Budget,
		&c.IsActive,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &c, nil
}

// campaignFilterSQL собирает WHERE-условия и аргументы по фильтру.
// Заданные обе даты трактуются как пересечение с окном [start, end];
// одиночная дата — как «кампания ещё не закончилась» / «уже началась».
func campaignFilterSQL(filter storage.CampaignFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.IsActive != nil {
		conds = append(conds, "is_active = "+arg(*filter.IsActive))
	}

	switch {
	case filter.StartDate != nil && filter.EndDate != nil:
		conds = append(conds, "start_date <= "+arg(*filter.EndDate))
		conds = append(conds, "end_date >= "+arg(*filter.StartDate))
	case filter.StartDate != nil:
		conds = append(conds, "end_date >= "+arg(*filter.StartDate))
	case filter.EndDate != nil:
		conds = append(conds, "start_date <= "+arg(*filter.EndDate))
	}

	if len(conds) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// Campaigns возвращает страницу кампаний по фильтру, отсортированную по ID.
func (s *Storage) Campaigns(ctx context.Context, filter storage.CampaignFilter) ([]models.Campaign, error) {
	const op = "storage.postgres.Campaigns"

	where, args := campaignFilterSQL(filter)

	query := `
		SELECT id, name, description, start_date, end_date, budget, is_active
		FROM campaigns` + where + `
		ORDER BY id
		LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.StartDate, &c.EndDate, &c.Budget, &c.IsActive); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// CountCampaigns возвращает общее число кампаний по фильтру (без limit/offset).
func (s *Storage) CountCampaigns(ctx context.Context, filter storage.CampaignFilter) (int64, error) {
	const op = "storage.postgres.CountCampaigns"

	where, args := campaignFilterSQL(filter)

	var total int64
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM campaigns`+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}

// UpdateCampaign перезаписывает поля кампании.
func (s *Storage) UpdateCampaign(ctx context.Context, campaign *models.Campaign) error {
	const op = "storage.postgres.UpdateCampaign"

	query := `
		UPDATE campaigns
		SET name = $2, description = $3, start_date = $4, end_date = $5, budget = $6, is_active = $7
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query,
		campaign.ID,
		campaign.Name,
		campaign.Description,
		campaign.StartDate,
		campaign.EndDate,
		campaign.Budget,
		campaign.IsActive,
	)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteCampaign удаляет кампанию по ID.
func (s *Storage) DeleteCampaign(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteCampaign"

	cmdTag, err := s.db.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
