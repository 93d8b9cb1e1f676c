package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"campaign-service/internal/models"
	"campaign-service/internal/storage"
)

func TestCreateUser_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.User) error {
			u.ID = 7
			return nil
		})

	user, err := svc.CreateUser(context.Background(), "  New@Example.com ", "Abcdef1!", false)
	require.NoError(t, err)
	require.Equal(t, int64(7), user.ID)
	require.Equal(t, "new@example.com", user.Email)
	require.True(t, user.IsActive)
	require.False(t, user.IsSuperuser)
	require.NotEqual(t, "Abcdef1!", user.PasswordHash)
	require.True(t, checkPassword(user.PasswordHash, "Abcdef1!"))
}

func TestCreateUser_Validation(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.CreateUser(context.Background(), "bad-email", "Abcdef1!", false)
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.CreateUser(context.Background(), "u@e.com", "", false)
	require.ErrorIs(t, err, ErrEmptyPassword)

	_, err = svc.CreateUser(context.Background(), "u@e.com", "weak", false)
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestCreateUser_EmailTaken(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyExists)

	_, err := svc.CreateUser(context.Background(), "u@e.com", "Abcdef1!", false)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserByID_NotFoundMapped(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByID(gomock.Any(), int64(1)).Return(nil, storage.ErrNotFound)

	_, err := svc.UserByID(context.Background(), 1)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserByEmail_NormalizesBeforeLookup(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{ID: 3, Email: "u@e.com"}
	st.EXPECT().UserByEmail(gomock.Any(), "u@e.com").Return(user, nil)

	got, err := svc.UserByEmail(context.Background(), " U@E.com ")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestUpdateUser_PartialFields(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	existing := &models.User{ID: 5, Email: "old@e.com", PasswordHash: "old-hash", IsActive: true}

	st.EXPECT().UserByID(gomock.Any(), int64(5)).Return(existing, nil)
	st.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.User) error {
			require.Equal(t, "new@e.com", u.Email)
			// Пароль не передавали — хэш не тронут.
			require.Equal(t, "old-hash", u.PasswordHash)
			require.False(t, u.IsActive)
			return nil
		})

	email := "New@E.com"
	inactive := false
	got, err := svc.UpdateUser(context.Background(), 5, UserUpdate{Email: &email, IsActive: &inactive})
	require.NoError(t, err)
	require.Equal(t, "new@e.com", got.Email)
}

func TestUpdateUser_PasswordPolicyEnforced(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	existing := &models.User{ID: 5, Email: "u@e.com"}
	st.EXPECT().UserByID(gomock.Any(), int64(5)).Return(existing, nil)

	weak := "weak"
	_, err := svc.UpdateUser(context.Background(), 5, UserUpdate{Password: &weak})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestUpdateUser_EmailConflictMapped(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	existing := &models.User{ID: 5, Email: "u@e.com"}
	st.EXPECT().UserByID(gomock.Any(), int64(5)).Return(existing, nil)
	st.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyExists)

	email := "taken@e.com"
	_, err := svc.UpdateUser(context.Background(), 5, UserUpdate{Email: &email})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().DeleteUser(gomock.Any(), int64(5)).Return(nil)
	require.NoError(t, svc.DeleteUser(context.Background(), 5))

	st.EXPECT().DeleteUser(gomock.Any(), int64(6)).Return(storage.ErrNotFound)
	err := svc.DeleteUser(context.Background(), 6)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureSuperuser_SkipsOnEmptyConfig(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	require.NoError(t, svc.EnsureSuperuser(context.Background(), "", ""))
	require.NoError(t, svc.EnsureSuperuser(context.Background(), "admin@e.com", ""))
}

func TestEnsureSuperuser_CreatesOnce(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Нет в БД — создаётся суперпользователем.
	st.EXPECT().UserByEmail(gomock.Any(), "admin@e.com").Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.User) error {
			require.True(t, u.IsSuperuser)
			require.True(t, u.IsActive)
			u.ID = 1
			return nil
		})

	require.NoError(t, svc.EnsureSuperuser(context.Background(), "Admin@E.com", "Abcdef1!"))

	// Уже существует — no-op.
	st.EXPECT().UserByEmail(gomock.Any(), "admin@e.com").
		Return(&models.User{ID: 1, Email: "admin@e.com"}, nil)

	require.NoError(t, svc.EnsureSuperuser(context.Background(), "admin@e.com", "Abcdef1!"))
}

func TestEnsureSuperuser_ToleratesCreateRace(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Между проверкой и вставкой другая реплика успела создать учётку.
	st.EXPECT().UserByEmail(gomock.Any(), "admin@e.com").Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyExists)

	require.NoError(t, svc.EnsureSuperuser(context.Background(), "admin@e.com", "Abcdef1!"))
}

func TestEnsureSuperuser_LookupErrorPropagated(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByEmail(gomock.Any(), "admin@e.com").Return(nil, errors.New("db down"))

	require.Error(t, svc.EnsureSuperuser(context.Background(), "admin@e.com", "Abcdef1!"))
}
