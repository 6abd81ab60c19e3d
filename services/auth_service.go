package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	IssueToken(user *models.User) (string, error)
}

type AuthService struct {
	users  UserAccountStore
	tokens TokenIssuer
}

func NewAuthService(users UserAccountStore, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a buyer account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return nil, utils.BadRequest("Invalid email address")
	}
	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return nil, utils.BadRequest("Invalid phone number")
	}
	if len(req.Password) < 8 {
		return nil, utils.BadRequest("Password must be at least 8 characters")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, utils.BadRequest("A user with this email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Password:  string(hashed),
		Role:      models.RoleUser,
		Phone:     phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, utils.BadRequest("A user with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.signIn(user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, utils.BadRequest("Please provide email and password!")
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.Unauthorized("Incorrect email or password")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, utils.Unauthorized("Incorrect email or password")
	}
	if !user.IsActive {
		return nil, utils.Unauthorized("Your account has been deactivated")
	}

	return s.signIn(user)
}

// IssueToken signs a token for an account created elsewhere, such as vendor
// onboarding.
func (s *AuthService) IssueToken(user *models.User) (*models.AuthResponse, error) {
	return s.signIn(user)
}

func (s *AuthService) signIn(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.IssueToken(user)
	if err != nil {
		log.Printf("Error generating token for %s: %v", user.Email, err)
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("User not found")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *AuthService) UpdateFCMToken(ctx context.Context, id primitive.ObjectID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return utils.BadRequest("FCM token is required")
	}
	if err := s.users.UpdateFCMToken(ctx, id, token); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.NotFound("User not found")
		}
		return fmt.Errorf("update fcm token: %w", err)
	}
	return nil
}
