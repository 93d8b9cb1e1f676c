package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campaign-service/internal/cache"
	"campaign-service/internal/models"
	"campaign-service/internal/pkg/log"
	"campaign-service/internal/storage"

	"github.com/golang-jwt/jwt/v5"
)

type accessClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// generateAccessToken генерирует access-токен.
// Claims: sub=email, user_id, exp=now+TTL, плюс iat/iss/aud.
func (s *Service) generateAccessToken(ctx context.Context, user *models.User, now time.Time) (string, error) {
	const op = "service.token.generateAccessToken"

	lg := log.From(ctx)

	claims := accessClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
			Subject:   user.Email,
			Audience:  jwt.ClaimStrings(s.cfg.Audience),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		lg.Error("access_token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%s: %w", op, ErrTokenEncode)
	}

	return signed, nil
}

// decodeAccessToken валидирует access-токен и возвращает user_id и subject (email).
// Любой сбой — подпись, формат, истёкший exp — схлопывается в ErrInvalidToken:
// клиенту не сообщается, какая именно проверка не прошла.
func (s *Service) decodeAccessToken(tokenStr string) (int64, string, error) {
	const op = "service.token.decodeAccessToken"

	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != s.method.Alg() {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience...),
	)

	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return 0, "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Subject == "" {
		return 0, "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims.UserID, claims.Subject, nil
}

// newRefreshTokenValue генерирует непрозрачное значение refresh-токена:
// 32 случайных байта (CSPRNG) в base64url без паддинга — 256 бит энтропии.
func newRefreshTokenValue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// hashRefreshToken — ключ хранения: base64url(sha256(plain)).
func hashRefreshToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// generateRefreshToken создает и сохраняет новый refresh-токен,
// возвращая его plain-значение.
func (s *Service) generateRefreshToken(ctx context.Context, userID int64) (string, error) {
	const (
		op          = "service.token.generateRefreshToken"
		maxAttempts = 5
	)

	lg := log.From(ctx)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		plain, err := newRefreshTokenValue()
		if err != nil {
			lg.Error("refresh_rand_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			return "", fmt.Errorf("%s: %w", op, err)
		}

		hash := hashRefreshToken(plain)

		now := time.Now().UTC()
		token := &models.RefreshToken{
			TokenHash: hash,
			UserID:    userID,
			CreatedAt: now,
			ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
		}

		if err := s.storage.SaveRefreshToken(ctx, token); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				// Редкая коллизия — пробуем сгенерировать заново.
				continue
			}

			lg.Error("save_refresh_token_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			return "", fmt.Errorf("%s: %w", op, ErrSaveRefreshToken)
		}

		s.cacheSet(ctx, hash, &cache.RefreshEntry{
			UserID:    userID,
			ExpiresAt: token.ExpiresAt,
		})

		return plain, nil
	}

	lg.Error("refresh_collision_exceeded",
		slog.String("op", op),
	)

	return "", fmt.Errorf("%s: %w", op, ErrRefreshTokenCollision)
}

// cacheSet кладёт запись в кэш (best-effort, ошибки только логируются).
func (s *Service) cacheSet(ctx context.Context, hash string, e *cache.RefreshEntry) {
	if s.rcache == nil {
		return
	}

	ttl := time.Until(e.ExpiresAt)
	if ttl <= 0 {
		return
	}

	if err := s.rcache.Set(ctx, hash, e, ttl); err != nil {
		log.From(ctx).Warn("refresh_cache_set_failed", slog.String("err", err.Error()))
	}
}

// cacheMarkRevoked помечает запись отозванной (best-effort).
func (s *Service) cacheMarkRevoked(ctx context.Context, hash string) {
	if s.rcache == nil {
		return
	}

	if err := s.rcache.MarkRevoked(ctx, hash); err != nil {
		log.From(ctx).Warn("refresh_cache_revoke_failed", slog.String("err", err.Error()))
	}
}
