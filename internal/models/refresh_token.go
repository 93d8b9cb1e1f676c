package models

import "time"

// RefreshToken — запись refresh-токена для управления сессиями.
//
// Описание:
//   - TokenHash — base64url(sha256(plain)); сам секрет в БД не хранится;
//   - RevokedAt — момент отзыва (nil, пока токен активен); однажды
//     выставленное значение не изменяется, повторный отзыв — no-op;
//   - удаление строк выполняет только фоновая очистка просроченных/отозванных.
type RefreshToken struct {
	ID        int64
	TokenHash string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

/// Valid сообщает, действителен ли токен на момент now:
// не отозван и срок действия не истёк.
func (t *RefreshToken) Valid(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
