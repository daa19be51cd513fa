package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"agroshop/internal/domain/model"
	"agroshop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type stubHasher struct{}

func (stubHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

type stubVerifier struct{ ok bool }

func (v stubVerifier) Verify(plain string, hashed string) bool { return v.ok }

type stubIDGen struct{}

func (stubIDGen) NewID() string { return "id-123" }

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

type stubIssuer struct{ err error }

func (i stubIssuer) Issue(userID string, role model.Role, now time.Time) (string, time.Time, error) {
	if i.err != nil {
		return "", time.Time{}, i.err
	}
	return "token-" + userID, now.Add(15 * time.Minute), nil
}

// =====================
// Register
// =====================

func TestRegisterUser_Success(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "farmer@example.com").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	uc := NewRegisterUserUsecase(repo, stubHasher{}, stubIDGen{}, stubClock{now})

	out, err := uc.Execute(context.Background(), RegisterUserInput{
		Email:    "farmer@example.com",
		Password: "long-enough-password",
	})
	assert.NoError(t, err)

	assert.Equal(t, "id-123", out.User.ID)
	assert.Equal(t, model.RoleUser, out.User.Role)
	assert.True(t, out.User.IsActive)

	//レスポンスにハッシュを載せない
	assert.Empty(t, out.User.PasswordHash)
}

func TestRegisterUser_InvalidEmail(t *testing.T) {
	uc := NewRegisterUserUsecase(new(UserRepoMock), stubHasher{}, stubIDGen{}, stubClock{time.Now()})

	_, err := uc.Execute(context.Background(), RegisterUserInput{Email: "not-an-email", Password: "long-enough-password"})
	assert.ErrorIs(t, err, ErrInvalidEmailFormat)
}

func TestRegisterUser_ShortPassword(t *testing.T) {
	uc := NewRegisterUserUsecase(new(UserRepoMock), stubHasher{}, stubIDGen{}, stubClock{time.Now()})

	_, err := uc.Execute(context.Background(), RegisterUserInput{Email: "farmer@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterUser_WeakPassword(t *testing.T) {
	uc := NewRegisterUserUsecase(new(UserRepoMock), stubHasher{}, stubIDGen{}, stubClock{time.Now()})

	_, err := uc.Execute(context.Background(), RegisterUserInput{Email: "farmer@example.com", Password: "123456789012"})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "farmer@example.com").Return(&model.User{ID: "existing"}, nil)

	uc := NewRegisterUserUsecase(repo, stubHasher{}, stubIDGen{}, stubClock{time.Now()})

	_, err := uc.Execute(context.Background(), RegisterUserInput{Email: "farmer@example.com", Password: "long-enough-password"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =====================
// Login
// =====================

func TestLogin_Success(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	user := &model.User{ID: "id-123", Email: "farmer@example.com", PasswordHash: "hashed", Role: model.RoleUser, IsActive: true}

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "farmer@example.com").Return(user, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	uc := NewLoginUsecase(repo, stubVerifier{ok: true}, stubIssuer{}, stubClock{now})

	out, err := uc.Execute(context.Background(), LoginInput{Email: "farmer@example.com", Password: "whatever"})
	assert.NoError(t, err)

	assert.Equal(t, "token-id-123", out.Token.AccessToken)
	assert.Equal(t, int(15*time.Minute/time.Second), out.Token.ExpiresIn)
	assert.Empty(t, out.User.PasswordHash)

	//最終ログイン時刻が更新される
	assert.NotNil(t, user.LastLoginAt)
	assert.Equal(t, now, *user.LastLoginAt)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrUserNotFound)

	uc := NewLoginUsecase(repo, stubVerifier{ok: true}, stubIssuer{}, stubClock{time.Now()})

	//存在しないメールでも「どちらが違うか」は教えない
	_, err := uc.Execute(context.Background(), LoginInput{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_WrongPassword(t *testing.T) {
	user := &model.User{ID: "id-123", Email: "farmer@example.com", PasswordHash: "hashed", IsActive: true}

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "farmer@example.com").Return(user, nil)

	uc := NewLoginUsecase(repo, stubVerifier{ok: false}, stubIssuer{}, stubClock{time.Now()})

	_, err := uc.Execute(context.Background(), LoginInput{Email: "farmer@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	user := &model.User{ID: "id-123", Email: "farmer@example.com", PasswordHash: "hashed", IsActive: false}

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "farmer@example.com").Return(user, nil)

	uc := NewLoginUsecase(repo, stubVerifier{ok: true}, stubIssuer{}, stubClock{time.Now()})

	_, err := uc.Execute(context.Background(), LoginInput{Email: "farmer@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestLogin_IssuerFailure(t *testing.T) {
	user := &model.User{ID: "id-123", Email: "farmer@example.com", PasswordHash: "hashed", IsActive: true}

	repo := new(UserRepoMock)
	repo.On("FindByEmail", mock.Anything, "farmer@example.com").Return(user, nil)

	issueErr := errors.New("sign failed")
	uc := NewLoginUsecase(repo, stubVerifier{ok: true}, stubIssuer{err: issueErr}, stubClock{time.Now()})

	_, err := uc.Execute(context.Background(), LoginInput{Email: "farmer@example.com", Password: "x"})
	assert.ErrorIs(t, err, issueErr)
}

// bcryptの実物どうしの整合
func TestBcrypt_HashAndVerify(t *testing.T) {
	hasher := NewBcryptPasswordHasher(4)
	verifier := NewBcryptPasswordVerifier()

	hashed, err := hasher.Hash("long-enough-password")
	assert.NoError(t, err)

	assert.True(t, verifier.Verify("long-enough-password", hashed))
	assert.False(t, verifier.Verify("different-password", hashed))
}
