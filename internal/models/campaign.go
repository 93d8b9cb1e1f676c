package models

import "time"

// Campaign - рекламная кампания.
//
// StartDate/EndDate — календарные даты (время обнуляется при сохранении),
// EndDate не может быть раньше StartDate. Budget строго положителен.
type Campaign struct {
	ID          int64
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Budget      float64
	IsActive    bool
}
