package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/service"
	"github.com/novaacademy/aula-virtual/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Create(t *testing.T) {
	env := newTestEnv(t)
	userService := env.services.User
	ctx := context.Background()

	valid := func() domain.UserInput {
		return domain.UserInput{
			Name:     ptr("José Pérez"),
			Email:    ptr("Jose.Perez@Example.com"),
			Password: ptr("secret123"),
			Role:     ptr(domain.RoleStudent),
		}
	}

	tests := []struct {
		name    string
		input   func() domain.UserInput
		setup   func()
		wantErr error
		check   func(t *testing.T, u *domain.User)
	}{
		{
			name:  "generates a nova id and normalizes the email",
			input: valid,
			check: func(t *testing.T, u *domain.User) {
				assert.Equal(t, "jose.perez@example.com", u.Email)
				assert.True(t, strings.HasPrefix(u.NovaID, "jose"), u.NovaID)
				assert.LessOrEqual(t, len(u.NovaID), 30)
				assert.Empty(t, u.EnrolledCourseIDs)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")))
			},
		},
		{
			name: "keeps a chosen nova id",
			input: func() domain.UserInput {
				in := valid()
				in.NovaID = ptr("pepe.dev")
				return in
			},
			check: func(t *testing.T, u *domain.User) {
				assert.Equal(t, "pepe.dev", u.NovaID)
			},
		},
		{
			name:  "duplicate email",
			input: valid,
			setup: func() {
				testutil.NewUserBuilder().WithEmail("jose.perez@example.com").Build(t, env.db.DB)
			},
			wantErr: domain.ErrEmailExists,
		},
		{
			name: "taken nova id",
			input: func() domain.UserInput {
				in := valid()
				in.NovaID = ptr("taken.id")
				return in
			},
			setup: func() {
				u, _ := testutil.NewUserBuilder().Build(t, env.db.DB)
				env.db.DB.Model(u).Update("nova_id", "taken.id")
			},
			wantErr: domain.ErrNovaIDExists,
		},
		{
			name: "missing role",
			input: func() domain.UserInput {
				in := valid()
				in.Role = nil
				return in
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "short password",
			input: func() domain.UserInput {
				in := valid()
				in.Password = ptr("123")
				return in
			},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.db.Truncate(t)
			if tt.setup != nil {
				tt.setup()
			}

			user, err := userService.Create(ctx, tt.input())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, user)
		})
	}
}

func TestUserService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	userService := env.services.User
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithRole(domain.RoleStudent).Build(t, env.db.DB)
	other, _ := testutil.NewUserBuilder().WithEmail("other@example.com").Build(t, env.db.DB)

	updated, err := userService.Update(ctx, user.ID, domain.UserInput{
		Name:        ptr("Nuevo Nombre"),
		CountryCode: ptr("+51"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Nuevo Nombre", updated.Name)
	assert.Equal(t, "+51", updated.CountryCode)
	assert.Equal(t, user.Email, updated.Email)

	_, err = userService.Update(ctx, user.ID, domain.UserInput{Email: ptr(other.Email)})
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	_, err = userService.Update(ctx, user.ID, domain.UserInput{CountryCode: ptr("51")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = userService.Update(ctx, uuid.New(), domain.UserInput{Name: ptr("Nadie")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	deleted, err := userService.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, deleted.ID)

	_, err = userService.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserService_RoleChangeAndDeleteEndSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	login := func(t *testing.T, email, password string) string {
		result, err := env.services.Auth.Login(ctx, service.LoginInput{Email: email, Password: password})
		require.NoError(t, err)
		// The first check puts the session in the cache.
		_, err = env.services.Auth.ValidateToken(ctx, result.Token)
		require.NoError(t, err)
		return result.Token
	}

	tests := []struct {
		name       string
		change     func(t *testing.T, id uuid.UUID)
		wantRevoke bool
	}{
		{
			name: "profile edit keeps sessions",
			change: func(t *testing.T, id uuid.UUID) {
				_, err := env.services.User.Update(ctx, id, domain.UserInput{Name: ptr("Otro Nombre"), Role: ptr(domain.RoleStudent)})
				require.NoError(t, err)
			},
		},
		{
			name: "promotion to admin",
			change: func(t *testing.T, id uuid.UUID) {
				_, err := env.services.User.Update(ctx, id, domain.UserInput{Role: ptr(domain.RoleAdmin)})
				require.NoError(t, err)
			},
			wantRevoke: true,
		},
		{
			name: "delete",
			change: func(t *testing.T, id uuid.UUID) {
				_, err := env.services.User.Delete(ctx, id)
				require.NoError(t, err)
			},
			wantRevoke: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, password := testutil.NewUserBuilder().WithRole(domain.RoleStudent).Build(t, env.db.DB)
			first := login(t, user.Email, password)
			second := login(t, user.Email, password)

			tt.change(t, user.ID)

			for _, token := range []string{first, second} {
				_, err := env.services.Auth.ValidateToken(ctx, token)
				if tt.wantRevoke {
					assert.ErrorIs(t, err, domain.ErrSessionExpired)
				} else {
					assert.NoError(t, err)
				}
			}
		})
	}
}

func TestUserService_ListByRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	testutil.NewUserBuilder().WithRole(domain.RoleTeacher).Build(t, env.db.DB)
	testutil.NewUserBuilder().WithRole(domain.RoleStudent).Build(t, env.db.DB)
	testutil.NewUserBuilder().WithRole(domain.RoleStudent).Build(t, env.db.DB)

	all, err := env.services.User.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	students, err := env.services.User.List(ctx, domain.RoleStudent)
	require.NoError(t, err)
	assert.Len(t, students, 2)

	_, err = env.services.User.List(ctx, domain.Role("guest"))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestUserService_Enroll(t *testing.T) {
	env := newTestEnv(t)
	userService := env.services.User
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, env.db.DB)
	course := testutil.NewCourseBuilder().Build(t, env.db.DB)

	ids, err := userService.Enroll(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{course.ID}, ids)

	ids, err = userService.Enroll(ctx, user.ID, course.ID)
	require.NoError(t, err, "enrolling twice is a no-op")
	assert.Equal(t, []uuid.UUID{course.ID}, ids)

	_, err = userService.Enroll(ctx, user.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUnknownCourse)

	_, err = userService.Enroll(ctx, uuid.New(), course.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	found, err := userService.GetByNovaID(ctx, user.NovaID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{course.ID}, found.EnrolledCourseIDs)
}

func TestUserService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, env.db.DB)

	err := env.services.User.ChangePassword(ctx, user.ID, "12345")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, env.services.User.ChangePassword(ctx, user.ID, "brand-new-pass"))

	_, err = env.services.Auth.Login(ctx, service.LoginInput{Email: user.Email, Password: "brand-new-pass"})
	assert.NoError(t, err)
}

func TestUserService_UpdateAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, env.db.DB)
	png := []byte("\x89PNG\r\n\x1a\n" + "first")

	first, err := env.services.User.UpdateAvatar(ctx, user.ID, "image/png", png)
	require.NoError(t, err)
	require.NotNil(t, first.AvatarURL)
	assert.True(t, strings.HasPrefix(*first.AvatarURL, "http://files.test/avatars/"+user.ID.String()))
	assert.Equal(t, 1, env.storage.Len())

	second, err := env.services.User.UpdateAvatar(ctx, user.ID, "image/jpeg", []byte("\xff\xd8\xff second"))
	require.NoError(t, err)
	assert.NotEqual(t, *first.AvatarURL, *second.AvatarURL)
	assert.Equal(t, 1, env.storage.Len(), "previous avatar is removed")

	_, err = env.services.User.UpdateAvatar(ctx, user.ID, "application/pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, service.ErrUnsupportedAvatar)
}
