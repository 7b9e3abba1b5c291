package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sparradar/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// tokenLifetime bounds how long an issued session token stays valid
const tokenLifetime = 30 * time.Minute

// SessionClaims is the JWT payload of an authenticated session
type SessionClaims struct {
	UserID uint   `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// RegisterRequest carries the fields of a registration call
type RegisterRequest struct {
	Gender    string
	FirstName string
	LastName  string
	Email     string
	ZipCode   string
	City      string
	Address   string
	Password  string
}

// AuthService handles account registration and session issuance.
// Passwords are stored as bcrypt hashes; sessions are signed JWTs.
type AuthService struct {
	users  domain.UserRepository
	secret []byte
}

// NewAuthService creates an auth service signing tokens with the given secret
func NewAuthService(users domain.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(jwtSecret),
	}
}

// Register creates a new account with a hashed password
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Gender:      req.Gender,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		ZipCode:     req.ZipCode,
		City:        req.City,
		Address:     req.Address,
		Password:    string(hash),
		LastLoginAt: time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[AUTH] Registered user %d (%s)", user.ID, user.Email)
	return user, nil
}

// Login verifies credentials, records the login time and issues a
// session token. Unknown emails and wrong passwords are not
// distinguished in the returned error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("signing token: %w", err)
	}

	user.LastLoginAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		log.Printf("[AUTH] Failed to record login time for user %d: %v", user.ID, err)
	}

	return user, token, nil
}

// VerifyToken parses and validates a session token
func (s *AuthService) VerifyToken(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	claims := SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
