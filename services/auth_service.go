package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net/url"
	"strings"
	"time"
	"unicode"

	"journal-api/config"
	"journal-api/models"
	"journal-api/repositories"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	UpdateProfile(ctx context.Context, actor models.CurrentUser, req models.UpdateProfileRequest) (*models.User, error)
	ListUsers(ctx context.Context, actor models.CurrentUser, role models.UserRole) ([]models.User, error)
	RequestPasswordReset(ctx context.Context, req models.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
}

type authService struct {
	userRepo  repositories.UserRepository
	resetRepo repositories.PasswordResetRepository
	mailer    Mailer
	baseURL   string
	now       func() time.Time
}

// NewAuthService wires the user store with the reset-token store and the
// mailer that delivers reset links to baseURL.
func NewAuthService(userRepo repositories.UserRepository, resetRepo repositories.PasswordResetRepository, mailer Mailer, baseURL string) AuthService {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	return &authService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		mailer:    mailer,
		baseURL:   baseURL,
		now:       time.Now,
	}
}

// CheckPasswordPolicy requires at least 8 characters mixing upper and lower
// case letters, digits and symbols, and rejects a password equal to the name.
func CheckPasswordPolicy(password, name string) error {
	if len(password) < 8 {
		return models.ValidationError("password must be at least 8 characters")
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return models.ValidationError("password must contain upper and lower case letters, a digit and a symbol")
	}
	if name != "" && strings.EqualFold(password, name) {
		return models.ValidationError("password must not match the name")
	}
	return nil
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existingUser != nil {
		return nil, models.ValidationError("user already exists")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := CheckPasswordPolicy(req.Password, req.Name); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hashedPassword),
		Role:     models.RoleAuthor,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ValidationError("user already exists")
		}
		return nil, err
	}

	token, err := GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotAuthorizedError("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, models.NotAuthorizedError("invalid credentials")
	}

	token, err := GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NotFoundError("user not found")
	}
	return user, err
}

func (s *authService) UpdateProfile(ctx context.Context, actor models.CurrentUser, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, "user")
	}

	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&user.Name, req.Name)
	set(&user.FirstName, req.FirstName)
	set(&user.LastName, req.LastName)
	set(&user.Affiliation, req.Affiliation)
	set(&user.ORCID, req.ORCID)

	if req.Password != "" {
		if err := CheckPasswordPolicy(req.Password, user.Name); err != nil {
			return nil, err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context, actor models.CurrentUser, role models.UserRole) ([]models.User, error) {
	if err := requireAdmin(actor, "list users"); err != nil {
		return nil, err
	}
	if role != "" && !role.Valid() {
		return nil, models.ValidationError("invalid role %q", role)
	}
	return s.userRepo.List(ctx, role)
}

// RequestPasswordReset emails a single-use reset link. Unknown addresses get
// the same silent success so the endpoint does not reveal who is registered.
func (s *authService) RequestPasswordReset(ctx context.Context, req models.ForgotPasswordRequest) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if s.mailer == nil {
		return errors.New("password reset mail is not configured")
	}

	rawToken := uuid.NewString()
	hashed, err := bcrypt.GenerateFromPassword([]byte(rawToken), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.resetRepo.RevokeForUser(ctx, user.ID); err != nil {
		return err
	}
	now := s.now()
	reset := &models.PasswordReset{UserID: user.ID, TokenHash: string(hashed), ExpiresAt: now.Add(models.PasswordResetTTL)}
	if err := s.resetRepo.Create(ctx, reset); err != nil {
		return err
	}

	link, err := s.resetURL(rawToken)
	if err != nil {
		return err
	}
	body := fmt.Sprintf(
		`<p>Dear %s,</p><p>We received a request to reset your password. The link below expires in %d minutes.</p><p><a href="%s">%s</a></p><p>If you did not ask for this, you can ignore this email.</p>`,
		html.EscapeString(user.Name), int(models.PasswordResetTTL/time.Minute), html.EscapeString(link), html.EscapeString(link),
	)
	if err := s.mailer.SendMail([]string{user.Email}, "Password reset", body); err != nil {
		log.Printf("user %d: reset email failed: %v", user.ID, err)
		return err
	}
	log.Printf("user %d: password reset requested", user.ID)
	return nil
}

// ResetPassword redeems an emailed token. Every outstanding token of the user
// is revoked once the new password is stored.
func (s *authService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return models.ValidationError("passwords do not match")
	}

	active, err := s.resetRepo.GetActive(ctx, s.now())
	if err != nil {
		return err
	}
	var match *models.PasswordReset
	for i := range active {
		if bcrypt.CompareHashAndPassword([]byte(active[i].TokenHash), []byte(req.Token)) == nil {
			match = &active[i]
			break
		}
	}
	if match == nil {
		return models.ValidationError("invalid or expired token")
	}

	user, err := s.userRepo.GetByID(ctx, match.UserID)
	if err != nil {
		return notFound(err, "user")
	}
	if err := CheckPasswordPolicy(req.NewPassword, user.Name); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	if err := s.resetRepo.RevokeForUser(ctx, user.ID); err != nil {
		return err
	}
	log.Printf("user %d: password reset", user.ID)
	return nil
}

func (s *authService) resetURL(token string) (string, error) {
	parsed, err := url.Parse(s.baseURL)
	if err != nil {
		return "", err
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/reset-password"
	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// GenerateToken signs the claims the auth middleware reads back.
func GenerateToken(user *models.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     now.Add(config.JWTExpiration).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret)
}
