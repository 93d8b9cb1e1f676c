package models

import "time"

// User - модель пользователя в системе.
//
// Email хранится в нормализованном виде (lowercase) и уникален.
// PasswordHash - bcrypt-хэш, наружу никогда не отдаётся.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
