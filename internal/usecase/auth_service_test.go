package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/sparradar/backend/internal/domain"
)

// memoryUserRepo is an in-memory UserRepository keyed by email.
type memoryUserRepo struct {
	users  map[string]*domain.User
	nextID uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User), nextID: 1}
}

func (r *memoryUserRepo) Create(ctx context.Context, user *domain.User) error {
	if _, exists := r.users[user.Email]; exists {
		return domain.ErrEmailTaken
	}
	user.ID = r.nextID
	r.nextID++
	stored := *user
	r.users[user.Email] = &stored
	return nil
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	found := *user
	return &found, nil
}

func (r *memoryUserRepo) Update(ctx context.Context, user *domain.User) error {
	stored := *user
	r.users[user.Email] = &stored
	return nil
}

func registerTestUser(t *testing.T, service *AuthService) *domain.User {
	t.Helper()
	user, err := service.Register(context.Background(), RegisterRequest{
		Gender:    "female",
		FirstName: "Anna",
		LastName:  "Schmidt",
		Email:     "anna@example.com",
		ZipCode:   "10115",
		City:      "Berlin",
		Address:   "Invalidenstr. 1",
		Password:  "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return user
}

func TestAuthService_Register(t *testing.T) {
	t.Run("stores a hashed password", func(t *testing.T) {
		repo := newMemoryUserRepo()
		service := NewAuthService(repo, "test-secret")

		user := registerTestUser(t, service)
		if user.ID == 0 {
			t.Error("registered user has no ID")
		}
		if user.Password == "correct-horse" {
			t.Error("password stored in plaintext")
		}
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		repo := newMemoryUserRepo()
		service := NewAuthService(repo, "test-secret")
		registerTestUser(t, service)

		_, err := service.Register(context.Background(), RegisterRequest{
			Email:    "anna@example.com",
			Password: "another",
		})
		if !errors.Is(err, domain.ErrEmailTaken) {
			t.Errorf("Register() error = %v, want ErrEmailTaken", err)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("issues a verifiable token", func(t *testing.T) {
		repo := newMemoryUserRepo()
		service := NewAuthService(repo, "test-secret")
		registered := registerTestUser(t, service)

		user, token, err := service.Login(context.Background(), "anna@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if user.ID != registered.ID {
			t.Errorf("user ID = %d, want %d", user.ID, registered.ID)
		}
		if token == "" {
			t.Fatal("Login() returned empty token")
		}

		claims, err := service.VerifyToken(token)
		if err != nil {
			t.Fatalf("VerifyToken() error = %v", err)
		}
		if claims.UserID != registered.ID || claims.Email != "anna@example.com" {
			t.Errorf("claims = %+v, want the logged-in user", claims)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := newMemoryUserRepo()
		service := NewAuthService(repo, "test-secret")
		registerTestUser(t, service)

		_, _, err := service.Login(context.Background(), "anna@example.com", "wrong")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := newMemoryUserRepo()
		service := NewAuthService(repo, "test-secret")

		_, _, err := service.Login(context.Background(), "nobody@example.com", "whatever")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestAuthService_VerifyToken(t *testing.T) {
	t.Run("rejects garbage", func(t *testing.T) {
		service := NewAuthService(newMemoryUserRepo(), "test-secret")
		if _, err := service.VerifyToken("not.a.token"); err == nil {
			t.Error("VerifyToken() accepted garbage")
		}
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		repo := newMemoryUserRepo()
		issuer := NewAuthService(repo, "secret-one")
		registerTestUser(t, issuer)
		_, token, err := issuer.Login(context.Background(), "anna@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		verifier := NewAuthService(repo, "secret-two")
		if _, err := verifier.VerifyToken(token); err == nil {
			t.Error("VerifyToken() accepted a foreign signature")
		}
	})
}
