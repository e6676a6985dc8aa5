package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/internal/utils/mailing"
	"AgriWaste-Marketplace/internal/utils/storage"
	"AgriWaste-Marketplace/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	verifyTokenDuration = 24 * time.Hour
	resetTokenDuration  = 30 * time.Minute
	oauthStateDuration  = 10 * time.Minute

	purposeVerify = "verify_email"
	purposeReset  = "reset_password"
	purposeOAuth  = "oauth_state"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		GetUserByID(ctx context.Context, userID string) (domain.UserResponse, error)
		UpdateUser(ctx context.Context, req domain.UpdateUserRequest, userID string) (domain.UserResponse, error)
		SendVerificationEmail(ctx context.Context, req domain.SendVerificationRequest) error
		VerifyEmail(ctx context.Context, token string) error
		ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
		GoogleLoginURL(ctx context.Context, role string) (string, error)
		GoogleCallback(ctx context.Context, code, state string) (domain.LoginResponse, error)
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		s3             storage.AwsS3
		mailer         mailing.Mailer
		google         GoogleProvider
		appURL         string
		log            *logrus.Logger
	}
)

func NewUserService(
	userRepository UserRepository,
	jwtService jwt.JWTService,
	s3 storage.AwsS3,
	mailer mailing.Mailer,
	google GoogleProvider,
	appURL string,
	logger *logrus.Logger,
) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		s3:             s3,
		mailer:         mailer,
		google:         google,
		appURL:         appURL,
		log:            logger,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error) {
	if req.Role != domain.RoleFarmer && req.Role != domain.RoleBuyer {
		return domain.UserResponse{}, domain.ErrInvalidRole
	}

	exists, err := s.userRepository.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return domain.UserResponse{}, err
	}
	if exists {
		return domain.UserResponse{}, domain.ErrEmailAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserResponse{}, err
	}

	user := &entities.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Password:     string(hashed),
		Phone:        req.Phone,
		Address:      req.Address,
		Role:         req.Role,
		Status:       domain.InitialUserStatus(req.Role),
		AuthProvider: domain.AuthProviderLocal,
		Version:      1,
	}
	if err := s.userRepository.RegisterUser(ctx, user); err != nil {
		return domain.UserResponse{}, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID.String(), "role": user.Role}).Info("user registered")

	if err := s.sendVerification(ctx, user); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID.String()).Warn("failed to send verification email")
	}

	return ToUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrCredentialsNotMatched
		}
		return domain.LoginResponse{}, err
	}

	if user.AuthProvider != domain.AuthProviderLocal || user.Password == "" {
		return domain.LoginResponse{}, domain.ErrPasswordLoginDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrCredentialsNotMatched
	}

	return s.issueSession(user)
}

func (s *userService) issueSession(user *entities.User) (domain.LoginResponse, error) {
	if user.Status == domain.UserStatusBlocked {
		return domain.LoginResponse{}, domain.ErrAccountBlocked
	}

	token, err := s.jwtService.GenerateTokenUser(user.ID.String(), user.Role)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		Token: token,
		Role:  user.Role,
		User:  ToUserResponse(user),
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.UserResponse{}, err
	}
	return ToUserResponse(user), nil
}

func (s *userService) UpdateUser(ctx context.Context, req domain.UpdateUserRequest, userID string) (domain.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.UserResponse{}, err
	}

	fields := map[string]any{}
	if req.Name != "" {
		fields["name"] = req.Name
		user.Name = req.Name
	}
	if req.Phone != "" {
		fields["phone"] = req.Phone
		user.Phone = req.Phone
	}
	if req.Address != "" {
		fields["address"] = req.Address
		user.Address = req.Address
	}

	if req.ProfilePicture != nil {
		var objectKey string
		existingKey := s.s3.GetObjectKeyFromLink(user.ProfilePicture)
		if existingKey != "" {
			objectKey, err = s.s3.UpdateFile(existingKey, req.ProfilePicture, storage.AllowImage...)
		} else {
			objectKey, err = s.s3.UploadFile("profile-"+user.ID.String(), req.ProfilePicture, "profiles", storage.AllowImage...)
		}
		if err != nil {
			return domain.UserResponse{}, err
		}
		user.ProfilePicture = s.s3.GetPublicLinkKey(objectKey)
		fields["profile_picture"] = user.ProfilePicture
	}

	if len(fields) == 0 {
		return ToUserResponse(user), nil
	}
	if err := s.userRepository.UpdateUser(ctx, user, fields); err != nil {
		return domain.UserResponse{}, err
	}
	user.Version++

	return ToUserResponse(user), nil
}

func (s *userService) SendVerificationEmail(ctx context.Context, req domain.SendVerificationRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if user.IsVerified {
		return domain.ErrAlreadyVerified
	}
	return s.sendVerification(ctx, user)
}

func (s *userService) sendVerification(ctx context.Context, user *entities.User) error {
	token, err := s.jwtService.GenerateTemporaryToken(map[string]any{
		"user_id": user.ID.String(),
		"purpose": purposeVerify,
	}, verifyTokenDuration)
	if err != nil {
		return err
	}

	subject, body := mailing.VerificationEmail(s.appURL, user.Name, token)
	return s.mailer.SendMail(ctx, user.Email, subject, body)
}

func (s *userService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.claimUserID(token, purposeVerify)
	if err != nil {
		return err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return domain.ErrAlreadyVerified
	}

	return s.userRepository.UpdateUser(ctx, user, map[string]any{"is_verified": true})
}

func (s *userService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if user.AuthProvider != domain.AuthProviderLocal {
		return domain.ErrPasswordLoginDisabled
	}

	token, err := s.jwtService.GenerateTemporaryToken(map[string]any{
		"user_id": user.ID.String(),
		"purpose": purposeReset,
	}, resetTokenDuration)
	if err != nil {
		return err
	}

	subject, body := mailing.ResetPasswordEmail(s.appURL, user.Name, token)
	return s.mailer.SendMail(ctx, user.Email, subject, body)
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	userID, err := s.claimUserID(req.Token, purposeReset)
	if err != nil {
		return err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.userRepository.UpdateUser(ctx, user, map[string]any{"password": string(hashed)})
}

// GoogleLoginURL carries the requested role through the OAuth round trip in
// a signed state token.
func (s *userService) GoogleLoginURL(_ context.Context, role string) (string, error) {
	if role != domain.RoleFarmer && role != domain.RoleBuyer {
		return "", domain.ErrInvalidRole
	}

	state, err := s.jwtService.GenerateTemporaryToken(map[string]any{
		"role":    role,
		"nonce":   uuid.NewString(),
		"purpose": purposeOAuth,
	}, oauthStateDuration)
	if err != nil {
		return "", fmt.Errorf("failed to generate state for google login: %w", err)
	}

	return s.google.AuthCodeURL(state), nil
}

func (s *userService) GoogleCallback(ctx context.Context, code, state string) (domain.LoginResponse, error) {
	claims, err := s.jwtService.ValidateTemporaryToken(state)
	if err != nil || claims["purpose"] != purposeOAuth {
		return domain.LoginResponse{}, domain.ErrInvalidOAuthState
	}
	role, _ := claims["role"].(string)

	info, err := s.google.FetchUser(ctx, code)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if !info.VerifiedEmail {
		return domain.LoginResponse{}, domain.ErrGoogleEmailNotVerified
	}

	user, err := s.userRepository.GetUserByEmail(ctx, info.Email)
	if err == nil {
		return s.issueSession(user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.LoginResponse{}, err
	}

	if role != domain.RoleFarmer && role != domain.RoleBuyer {
		return domain.LoginResponse{}, domain.ErrInvalidRole
	}
	user = &entities.User{
		ID:             uuid.New(),
		Name:           info.Name,
		Email:          strings.ToLower(info.Email),
		ProfilePicture: info.Picture,
		Role:           role,
		Status:         domain.InitialUserStatus(role),
		AuthProvider:   domain.AuthProviderGoogle,
		IsVerified:     true,
		Version:        1,
	}
	if err := s.userRepository.RegisterUser(ctx, user); err != nil {
		return domain.LoginResponse{}, err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID.String(), "role": role}).Info("user registered with google")

	return s.issueSession(user)
}

func (s *userService) claimUserID(token, purpose string) (string, error) {
	claims, err := s.jwtService.ValidateTemporaryToken(token)
	if err != nil {
		return "", err
	}
	if claims["purpose"] != purpose {
		return "", domain.ErrTokenInvalid
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", domain.ErrTokenInvalid
	}
	return userID, nil
}

func (s *userService) getUser(ctx context.Context, userID string) (*entities.User, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func ToUserResponse(user *entities.User) domain.UserResponse {
	return domain.UserResponse{
		ID:             user.ID.String(),
		Name:           user.Name,
		Email:          user.Email,
		Phone:          user.Phone,
		Address:        user.Address,
		ProfilePicture: user.ProfilePicture,
		Role:           user.Role,
		Status:         user.Status,
		AuthProvider:   user.AuthProvider,
		IsVerified:     user.IsVerified,
		CreatedAt:      user.CreatedAt,
	}
}
