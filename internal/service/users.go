package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campaign-service/internal/models"
	"campaign-service/internal/pkg/log"
	"campaign-service/internal/pkg/redact"
	"campaign-service/internal/storage"
)

// UserUpdate — частичное обновление пользователя; nil-поле не меняется.
type UserUpdate struct {
	Email       *string
	Password    *string
	IsActive    *bool
	IsSuperuser *bool
}

// CreateUser регистрирует нового пользователя.
func (s *Service) CreateUser(ctx context.Context, email, password string, isSuperuser bool) (*models.User, error) {
	const op = "service.users.CreateUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Email:        normEmail,
		PasswordHash: hashed,
		IsActive:     true,
		IsSuperuser:  isSuperuser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_created",
		slog.Int64("user_id", user.ID),
		slog.String("email", redact.Email(user.Email)),
	)

	return user, nil
}

// UserByID находит пользователя по ID.
func (s *Service) UserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "service.users.UserByID"

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UserByEmail находит пользователя по email (после нормализации).
func (s *Service) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "service.users.UserByEmail"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateUser частично обновляет пользователя.
// Новый пароль проходит ту же политику сложности, что и при регистрации.
func (s *Service) UpdateUser(ctx context.Context, id int64, upd UserUpdate) (*models.User, error) {
	const op = "service.users.UpdateUser"

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if upd.Email != nil {
		normEmail, err := validateEmail(*upd.Email)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
		}
		user.Email = normEmail
	}

	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		hashed, err := hashPassword(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.PasswordHash = hashed
	}

	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}

	if upd.IsSuperuser != nil {
		user.IsSuperuser = *upd.IsSuperuser
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// DeleteUser удаляет пользователя по ID.
// Связанные refresh-токены удаляются каскадно на уровне схемы.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	const op = "service.users.DeleteUser"

	if err := s.storage.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_deleted", slog.Int64("user_id", id))

	return nil
}

// EnsureSuperuser идемпотентно создаёт первого суперпользователя из конфигурации.
// Пустой email или пароль — сид пропускается без ошибки.
func (s *Service) EnsureSuperuser(ctx context.Context, email, password string) error {
	const op = "service.users.EnsureSuperuser"

	lg := log.From(ctx)

	if email == "" || password == "" {
		lg.Info("superuser_seed_skipped", slog.String("op", op))
		return nil
	}

	normEmail, err := validateEmail(email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	_, err = s.storage.UserByEmail(ctx, normEmail)
	if err == nil {
		lg.Info("superuser_exists", slog.String("email", redact.Email(normEmail)))
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.CreateUser(ctx, normEmail, password, true); err != nil {
		// Гонка с параллельным стартом второй реплики — не ошибка.
		if errors.Is(err, ErrEmailTaken) {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("superuser_created", slog.String("email", redact.Email(normEmail)))

	return nil
}
