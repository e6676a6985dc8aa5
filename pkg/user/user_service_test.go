package user

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/pkg/jwt"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*entities.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*entities.User{}}
}

func (f *fakeUserRepository) RegisterUser(_ context.Context, user *entities.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID.String()] = &cp
	return nil
}

func (f *fakeUserRepository) GetUserByID(_ context.Context, id string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepository) GetUserByEmail(_ context.Context, email string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserRepository) UpdateUser(_ context.Context, user *entities.User, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[user.ID.String()]
	if !ok || stored.Version != user.Version {
		return domain.ErrVersionConflict
	}
	for k, v := range fields {
		switch k {
		case "name":
			stored.Name = v.(string)
		case "phone":
			stored.Phone = v.(string)
		case "address":
			stored.Address = v.(string)
		case "password":
			stored.Password = v.(string)
		case "is_verified":
			stored.IsVerified = v.(bool)
		case "status":
			stored.Status = v.(string)
		}
	}
	stored.Version++
	return nil
}

func (f *fakeUserRepository) GetUserStatus(ctx context.Context, id string) (string, error) {
	u, err := f.GetUserByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Status, nil
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) SendMail(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type fakeGoogle struct {
	info *domain.GoogleUserInfo
}

func (g *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example/auth?state=" + state
}

func (g *fakeGoogle) FetchUser(context.Context, string) (*domain.GoogleUserInfo, error) {
	return g.info, nil
}

func newTestService(t *testing.T) (UserService, *fakeUserRepository, *fakeMailer, *fakeGoogle) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := newFakeUserRepository()
	mailer := &fakeMailer{}
	google := &fakeGoogle{}
	svc := NewUserService(repo, jwt.NewJWTService("secret"), nil, mailer, google, "http://localhost:8080", logger)
	return svc, repo, mailer, google
}

func registerRequest(role string) domain.RegisterRequest {
	return domain.RegisterRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "password123",
		Role:     role,
	}
}

func TestRegister(t *testing.T) {
	svc, _, mailer, _ := newTestService(t)

	res, err := svc.Register(context.Background(), registerRequest(domain.RoleBuyer))
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusActive, res.Status)
	assert.Equal(t, domain.AuthProviderLocal, res.AuthProvider)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "asha@example.com", mailer.sent[0].to)

	_, err = svc.Register(context.Background(), registerRequest(domain.RoleBuyer))
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterFarmerStartsPending(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	res, err := svc.Register(context.Background(), registerRequest(domain.RoleFarmer))
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusPending, res.Status)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), registerRequest(domain.RoleAdmin))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestLogin(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest(domain.RoleFarmer))
	require.NoError(t, err)

	res, err := svc.Login(ctx, domain.LoginRequest{Email: "ASHA@example.com", Password: "password123"})
	require.NoError(t, err, "pending users may log in")
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, domain.RoleFarmer, res.Role)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "asha@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrCredentialsNotMatched)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrCredentialsNotMatched)

	repo.users[registered.ID].Status = domain.UserStatusBlocked
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "asha@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrAccountBlocked)
}

func TestVerifyEmail(t *testing.T) {
	svc, repo, mailer, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest(domain.RoleBuyer))
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	body := mailer.sent[0].body
	start := strings.Index(body, "token=") + len("token=")
	end := strings.Index(body[start:], `"`)
	token := body[start : start+end]

	require.NoError(t, svc.VerifyEmail(ctx, token))
	assert.True(t, repo.users[registered.ID].IsVerified)

	assert.ErrorIs(t, svc.VerifyEmail(ctx, token), domain.ErrAlreadyVerified)
}

func TestResetPasswordRejectsVerificationToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest(domain.RoleBuyer))
	require.NoError(t, err)

	token, err := jwt.NewJWTService("secret").GenerateTemporaryToken(map[string]any{
		"user_id": registered.ID,
		"purpose": purposeVerify,
	}, resetTokenDuration)
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, domain.ResetPasswordRequest{Token: token, NewPassword: "another-pass"})
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestGoogleCallbackCreatesAccountWithRequestedRole(t *testing.T) {
	svc, repo, _, google := newTestService(t)
	ctx := context.Background()

	url, err := svc.GoogleLoginURL(ctx, domain.RoleFarmer)
	require.NoError(t, err)
	state := url[strings.Index(url, "state=")+len("state="):]

	google.info = &domain.GoogleUserInfo{Email: "ravi@example.com", VerifiedEmail: true, Name: "Ravi"}
	res, err := svc.GoogleCallback(ctx, "code", state)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFarmer, res.Role)
	assert.Equal(t, domain.AuthProviderGoogle, res.User.AuthProvider)
	assert.Len(t, repo.users, 1)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "ravi@example.com", Password: "anything"})
	assert.ErrorIs(t, err, domain.ErrPasswordLoginDisabled)
}

func TestGoogleCallbackRejectsForgedState(t *testing.T) {
	svc, _, _, google := newTestService(t)
	google.info = &domain.GoogleUserInfo{Email: "ravi@example.com", VerifiedEmail: true}

	_, err := svc.GoogleCallback(context.Background(), "code", "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidOAuthState)
}
