package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace-backend/internal/domain"
	tokenrepo "marketplace-backend/internal/repository/token"
)

// memoryRepo is a lightweight in-memory user repository for tests.
type memoryRepo struct {
	byEmail map[string]domain.User
}

type memoryTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: make(map[string]domain.User)}
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[string]tokenrepo.Token)}
}

func (r *memoryRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	if _, exists := r.byEmail[u.Email]; exists {
		return nil, domain.ErrAlreadyExists
	}
	clone := u
	if clone.ID == "" {
		clone.ID = "user-" + u.Email
	}
	r.byEmail[clone.Email] = clone
	return &clone, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.byEmail[email]; ok {
		clone := u
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryTokenRepo) Create(_ context.Context, token tokenrepo.Token) error {
	if _, exists := r.tokens[token.Token]; exists {
		return domain.ErrAlreadyExists
	}
	r.tokens[token.Token] = token
	return nil
}

func (r *memoryTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := t
	return &clone, nil
}

func (r *memoryTokenRepo) Delete(_ context.Context, token string) error {
	if _, ok := r.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func TestSignupAndLogin(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo())
	ctx := context.Background()

	u, err := svc.Signup(ctx, SignupInput{
		Email:    "User@Example.com",
		Password: "longenough",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if u.Email != "user@example.com" {
		t.Fatalf("expected normalized email, got %s", u.Email)
	}
	if u.Role != domain.RoleCustomer {
		t.Fatalf("signup must always produce a customer, got %s", u.Role)
	}

	got, token, err := svc.Login(ctx, "user@example.com", "longenough")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || got.ID != u.ID {
		t.Fatalf("unexpected login result user=%+v token=%q", got, token)
	}

	resolved, err := svc.LookupByToken(ctx, token)
	if err != nil {
		t.Fatalf("lookup by token: %v", err)
	}
	if resolved.ID != u.ID {
		t.Fatalf("token resolved to wrong user %+v", resolved)
	}
}

func TestSignup_Validation(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo())
	ctx := context.Background()

	var validationErr *domain.ValidationError
	if _, err := svc.Signup(ctx, SignupInput{Password: "longenough"}); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for missing email, got %v", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Email: "u@example.com", Password: "short"}); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "u@example.com", Password: "longenough"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Email: "u@example.com", Password: "longenough"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "u@example.com", Password: "longenough"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, _, err := svc.Login(ctx, "u@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "missing@example.com", "longenough"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for missing user, got %v", err)
	}
}

func TestLookupByToken_ExpiredToken(t *testing.T) {
	tokens := newMemoryTokenRepo()
	svc := New(newMemoryRepo(), tokens)
	ctx := context.Background()

	u, err := svc.Signup(ctx, SignupInput{Email: "u@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	tokens.tokens["stale"] = tokenrepo.Token{
		Token:     "stale",
		UserID:    u.ID,
		Kind:      "access",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	if _, err := svc.LookupByToken(ctx, "stale"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
	if _, ok := tokens.tokens["stale"]; ok {
		t.Fatalf("expired token should have been deleted")
	}
}

func TestLookupByToken_UnknownToken(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo())
	if _, err := svc.LookupByToken(context.Background(), "nope"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
