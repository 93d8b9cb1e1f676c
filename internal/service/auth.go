package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"campaign-service/internal/models"
	"campaign-service/internal/pkg/log"
	"campaign-service/internal/pkg/redact"
	"campaign-service/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

// Login выполняет вход по email+пароль и возвращает новую пару токенов.
// Несуществующий email и неверный пароль неразличимы для клиента.
func (s *Service) Login(ctx context.Context, email, password string) (*models.TokenPair, *models.User, error) {
	const op = "service.auth.Login"

	lg := log.From(ctx)

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(password) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("login_user_not_found",
				slog.String("op", op),
				slog.String("email", redact.Email(normEmail)),
			)
			return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		lg.Warn("login_bad_password",
			slog.String("op", op),
			slog.String("email", redact.Email(normEmail)),
		)
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !user.IsActive {
		lg.Warn("login_inactive_user",
			slog.String("op", op),
			slog.String("email", redact.Email(normEmail)),
		)
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInactiveUser)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, user, nil
}

// Refresh обновляет пару токенов по refresh-токену (ротация).
// Предъявленный токен становится одноразовым: он отзывается до выпуска нового.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, *models.User, error) {
	const op = "service.auth.Refresh"

	lg := log.From(ctx)

	token, err := s.validateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	hash := hashRefreshToken(refreshToken)

	user, err := s.storage.UserByID(ctx, token.UserID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if user == nil || !user.IsActive {
		// Токен привязан к мёртвой учётке — отзываем его независимо
		// от исхода операции, это защитное действие.
		if _, rerr := s.storage.RevokeRefreshTokenIfActive(ctx, hash); rerr != nil {
			lg.Error("refresh_defensive_revoke_failed",
				slog.String("op", op),
				slog.String("err", rerr.Error()),
			)
		}
		s.cacheMarkRevoked(ctx, hash)

		lg.Warn("refresh_user_gone_or_inactive",
			slog.String("op", op),
			slog.Int64("user_id", token.UserID),
		)
		return nil, nil, fmt.Errorf("%s: %w", op, ErrUserNotActive)
	}

	// Ротация: условный UPDATE гарантирует, что из двух конкурентных
	// refresh с одним токеном выигрывает ровно один.
	revoked, err := s.storage.RevokeRefreshTokenIfActive(ctx, hash)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		// Сбой отзыва старого токена не блокирует выпуск нового:
		// строка доживёт до фоновой очистки.
		lg.Error("refresh_rotate_revoke_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	} else if err == nil && !revoked {
		lg.Warn("refresh_lost_rotation_race",
			slog.String("op", op),
			slog.Int64("user_id", token.UserID),
		)
		return nil, nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}
	s.cacheMarkRevoked(ctx, hash)

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("refresh_rotated",
		slog.Int64("user_id", user.ID),
	)

	return pair, user, nil
}

// Logout отзывает refresh-токен.
// Операция идемпотентна и никогда не возвращает ошибку клиентского класса:
// неизвестный или уже отозванный токен — no-op, сбой записи только логируется
// (access-токен всё равно истечёт сам).
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	const op = "service.auth.Logout"

	lg := log.From(ctx)

	hash := hashRefreshToken(refreshToken)

	revoked, err := s.storage.RevokeRefreshTokenIfActive(ctx, hash)
	switch {
	case err != nil && errors.Is(err, storage.ErrNotFound):
		lg.Warn("logout_unknown_token", slog.String("op", op))
	case err != nil:
		lg.Error("logout_revoke_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	case !revoked:
		lg.Warn("logout_already_revoked", slog.String("op", op))
	default:
		s.cacheMarkRevoked(ctx, hash)
		lg.Info("logout_ok", slog.String("op", op))
	}
}

// AuthenticateAccess проверяет access-токен и резолвит пользователя по subject.
// Любой сбой — отсутствие subject, битый токен, неизвестный пользователь —
// возвращается как ErrInvalidToken; детали причин клиенту не сообщаются.
// Проверка is_active здесь сознательно не выполняется: деактивация вступает
// в силу на ближайшей ротации, а не на каждом запросе.
func (s *Service) AuthenticateAccess(ctx context.Context, accessToken string) (*models.User, error) {
	const op = "service.auth.AuthenticateAccess"

	_, email, err := s.decodeAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	user, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// issueTokenPair выпускает новую пару access+refresh токенов.
func (s *Service) issueTokenPair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	const op = "service.auth.issueTokenPair"

	now := time.Now().UTC()

	accessToken, err := s.generateAccessToken(ctx, user, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	plain, err := s.generateRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    plain,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, nil
}

// validateRefreshToken валидирует refresh-токен.
// В отличие от access-токена причины здесь различимы (revoked/expired):
// оба состояния относятся к выданным сервером токенам, канал перебора
// клиенту это не открывает.
func (s *Service) validateRefreshToken(ctx context.Context, plain string) (*models.RefreshToken, error) {
	const op = "service.auth.validateRefreshToken"

	lg := log.From(ctx)

	hash := hashRefreshToken(plain)

	// Быстрый отказ по кэшу; промах или ошибка кэша — идём в БД.
	if s.rcache != nil {
		entry, ok, err := s.rcache.Get(ctx, hash)
		if err != nil {
			lg.Warn("refresh_cache_get_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		} else if ok && entry.Revoked {
			lg.Warn("refresh_revoked_cached",
				slog.String("op", op),
				slog.Int64("user_id", entry.UserID),
			)
			return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
		}
	}

	token, err := s.storage.RefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("refresh_lookup_not_found",
				slog.String("op", op),
			)
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		lg.Error("refresh_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if token.RevokedAt != nil {
		lg.Warn("refresh_revoked",
			slog.String("op", op),
			slog.Int64("user_id", token.UserID),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	if !time.Now().UTC().Before(token.ExpiresAt) {
		lg.Warn("refresh_expired",
			slog.String("op", op),
			slog.Int64("user_id", token.UserID),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
	}

	return token, nil
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
// Битый хэш паникой/ошибкой не проявляется — просто false.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет минимальные требования к паролю.
// Политика по умолчанию: длина >= 8, хотя бы одна строчная, заглавная, цифра и спецсимвол.
func validatePassword(pw string) error {
	const op = "service.auth.validatePassword"

	if len(pw) == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	if len([]rune(pw)) < 8 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !(hasLower && hasUpper && hasDigit && hasSpecial) {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
