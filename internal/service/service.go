// service содержит бизнес-логику campaign-service:
// аутентификацию пользователей (вход, ротация refresh-токенов, выход),
// выпуск/проверку токенов и CRUD-операции над пользователями и кампаниями
// через интерфейсы из пакета storage.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.Storage) потокобезопасно.
//   - Ошибки возвращаются сентинелами и далее маппятся HTTP-слоем
//     на статусы (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"
	"fmt"

	"campaign-service/internal/cache"
	"campaign-service/internal/config"
	"campaign-service/internal/storage"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// Сообщение для обоих случаев одно, чтобы исключить перебор email. HTTP 401.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrInactiveUser — учётная запись существует, но деактивирована.
	// Отдельный класс ошибки (authorization, не authentication). HTTP 403.
	ErrInactiveUser = errors.New("inactive user")

	// ErrInvalidToken — токен (access/refresh) некорректен по формату/подписи
	// или отсутствует в хранилище. HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия refresh-токена истёк. HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — refresh-токен отозван (logout/ротация/компрометация)
	// и недействителен независимо от срока. HTTP 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrUserNotActive — владелец предъявленного refresh-токена не найден
	// или деактивирован; сам токен при этом отзывается. HTTP 401.
	ErrUserNotActive = errors.New("user not found or inactive")

	// ErrSaveRefreshToken — не удалось сохранить свежевыпущенный refresh-токен.
	// Фатально для операции выпуска; по контракту оригинальной системы
	// маппится в 401, а не в 500.
	ErrSaveRefreshToken = errors.New("could not save refresh token")

	// ErrTokenEncode — внутренний сбой кодека при подписи access-токена.
	// Наружу в сыром виде не отдаётся. HTTP 401 с общим сообщением.
	ErrTokenEncode = errors.New("could not create access token")

	// ErrRefreshTokenCollision — исчерпаны попытки сгенерировать уникальный
	// refresh-токен (крайне редкие коллизии хэша в БД). HTTP 500.
	ErrRefreshTokenCollision = errors.New("refresh token collision")

	// ErrEmailTaken — e-mail уже занят другим пользователем. HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidEmail — e-mail имеет некорректный формат. HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политикам сложности. HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrInvalidCampaign — кампания не проходит валидацию
	// (пустое/длинное имя, неположительный бюджет, end < start). HTTP 400.
	ErrInvalidCampaign = errors.New("invalid campaign")

	// ErrNotFound — запрошенная сущность не найдена. HTTP 404.
	ErrNotFound = errors.New("not found")
)

// Service описывает бизнес-логику campaign-service.
type Service struct {
	storage storage.Storage
	cfg     config.AuthConfig
	method  jwt.SigningMethod
	rcache  cache.RefreshCache // может быть nil, если кэш не сконфигурирован
}

// New создаёт новый экземпляр Service.
// Возвращает ошибку, если алгоритм подписи из конфигурации не поддерживается.
func New(storage storage.Storage, cfg config.AuthConfig) (*Service, error) {
	method, err := signingMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	return &Service{
		storage: storage,
		cfg:     cfg,
		method:  method,
	}, nil
}

// SetRefreshCache устанавливает кэш refresh-токенов (опционально).
func (s *Service) SetRefreshCache(c cache.RefreshCache) {
	s.rcache = c
}

// signingMethod резолвит имя алгоритма в jwt.SigningMethod.
// Поддерживается только HMAC-семейство: секрет у нас симметричный.
func signingMethod(name string) (jwt.SigningMethod, error) {
	switch name {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", name)
	}
}
