package storage

import (
	"context"
	"errors"
	"time"

	"campaign-service/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/токен/кампания).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/refresh-token).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создает нового пользователя и заполняет user.ID.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id int64) (*models.User, error)
	// UpdateUser перезаписывает изменяемые поля пользователя.
	UpdateUser(ctx context.Context, user *models.User) error
	// DeleteUser удаляет пользователя по ID.
	DeleteUser(ctx context.Context, id int64) error
}

// RefreshTokenStorage выполняет операции над refresh-токенами.
type RefreshTokenStorage interface {
	// SaveRefreshToken сохраняет новый refresh-токен и заполняет token.ID.
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	// RefreshTokenByHash находит refresh-токен по его хэшу.
	RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	// RevokeRefreshTokenIfActive атомарно отзывает токен, если он ещё не отозван.
	// Возвращает:
	//   (true, nil)  — токен был активен и отозван сейчас;
	//   (false, nil) — токен существует, но уже был отозван;
	//   (false, ErrNotFound) — токен не найден.
	RevokeRefreshTokenIfActive(ctx context.Context, hash string) (bool, error)
	// PurgeRefreshTokens удаляет все просроченные и отозванные токены.
	PurgeRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// CampaignFilter — фильтры выборки кампаний.
// Nil-поле означает «фильтр не задан». Даты трактуются как пересечение
// отрезка [StartDate, EndDate] кампании с заданным окном.
type CampaignFilter struct {
	Limit     int
	Offset    int
	IsActive  *bool
	StartDate *time.Time
	EndDate   *time.Time
}

// CampaignStorage выполняет операции над кампаниями.
type CampaignStorage interface {
	// SaveCampaign создает новую кампанию и заполняет campaign.ID.
	SaveCampaign(ctx context.Context, campaign *models.Campaign) error
	// CampaignByID находит кампанию по ID.
	CampaignByID(ctx context.Context, id int64) (*models.Campaign, error)
	// Campaigns возвращает страницу кампаний по фильтру.
	Campaigns(ctx context.Context, filter CampaignFilter) ([]models.Campaign, error)
	// CountCampaigns возвращает общее число кампаний по фильтру (без limit/offset).
	CountCampaigns(ctx context.Context, filter CampaignFilter) (int64, error)
	// UpdateCampaign перезаписывает поля кампании.
	UpdateCampaign(ctx context.Context, campaign *models.Campaign) error
	// DeleteCampaign удаляет кампанию по ID.
	DeleteCampaign(ctx context.Context, id int64) error
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	RefreshTokenStorage
	CampaignStorage
	Close()
}
