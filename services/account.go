package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"devconnector/models"
	"devconnector/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs the credential returned by register and login.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AccountService struct {
	users  repository.UserRepo
	tokens TokenIssuer
	cost   int
}

func NewAccountService(users repository.UserRepo, tokens TokenIssuer) *AccountService {
	return &AccountService{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *AccountService) WithHashCost(cost int) *AccountService {
	s.cost = cost
	return s
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return "", err
	}
	email := in.Email

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     in.Name,
		Email:    email,
		Password: string(hashed),
		Avatar:   Gravatar(email),
		Date:     time.Now().UTC(),
	}
	err = s.users.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrConflict) {
		return "", &ValidationError{Fields: []FieldError{{Msg: "User already exists", Param: "email"}}}
	}
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	return s.issue(user.ID)
}

func (s *AccountService) Login(ctx context.Context, in LoginInput) (string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return "", err
	}
	email := in.Email

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", newError(ErrInvalidCredentials, "Invalid Credentials")
	}
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return "", newError(ErrInvalidCredentials, "Invalid Credentials")
	}
	return s.issue(user.ID)
}

// CurrentUser loads the actor; the password hash never leaves the models package in JSON.
func (s *AccountService) CurrentUser(ctx context.Context, actor string) (*models.User, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetUserByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *AccountService) issue(id primitive.ObjectID) (string, error) {
	token, err := s.tokens.Issue(id.Hex())
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// normalizeEmail trims and lower-cases an address before it is validated or stored.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Gravatar builds the avatar URL for email: 200px, pg rated, mystery-man fallback.
func Gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}
