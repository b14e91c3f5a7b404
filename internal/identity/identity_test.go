package identity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/b1naryth1ef/heracles/internal/config"
	"github.com/b1naryth1ef/heracles/internal/db"
	"github.com/b1naryth1ef/heracles/internal/models"
	"github.com/b1naryth1ef/heracles/internal/security"
)

var testSessionCfg = config.SessionConfig{Secret: "test-secret", Expiry: time.Hour}

func setupResolver(t *testing.T) (*gorm.DB, *Resolver, models.User) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "heracles-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	user := models.User{Username: "alice", Password: "hash"}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}

	return conn, NewResolver(conn, testSessionCfg), user
}

func createToken(t *testing.T, conn *gorm.DB, userID uint64, flags models.Bits) models.Token {
	t.Helper()
	secret, err := security.GenerateTokenSecret()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	token := models.Token{UserID: userID, Name: "test", Secret: secret, Flags: flags}
	if errCreate := conn.Create(&token).Error; errCreate != nil {
		t.Fatalf("create token: %v", errCreate)
	}
	return token
}

func TestResolveCookie_SessionLifecycle(t *testing.T) {
	conn, resolver, user := setupResolver(t)
	ctx := context.Background()

	cookieValue, err := IssueSession(ctx, conn, testSessionCfg, user.ID)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	ident, err := resolver.ResolveCookie(ctx, cookieValue)
	if err != nil {
		t.Fatalf("resolve cookie: %v", err)
	}
	if ident.User.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, ident.User.ID)
	}
	if ident.Scope != ScopeFull {
		t.Fatalf("expected full scope for session identity")
	}
	if ident.SessionID == "" {
		t.Fatalf("expected session id on cookie identity")
	}

	if errRevoke := RevokeSession(ctx, conn, ident.SessionID); errRevoke != nil {
		t.Fatalf("revoke session: %v", errRevoke)
	}
	if _, errResolve := resolver.ResolveCookie(ctx, cookieValue); !errors.Is(errResolve, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after revoke, got %v", errResolve)
	}
}

func TestResolveCookie_BadSignature(t *testing.T) {
	conn, resolver, user := setupResolver(t)
	ctx := context.Background()

	otherCfg := config.SessionConfig{Secret: "other-secret", Expiry: time.Hour}
	cookieValue, err := IssueSession(ctx, conn, otherCfg, user.ID)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	if _, errResolve := resolver.ResolveCookie(ctx, cookieValue); !errors.Is(errResolve, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for foreign signature, got %v", errResolve)
	}
}

func TestResolveBearer_Scopes(t *testing.T) {
	conn, resolver, user := setupResolver(t)
	ctx := context.Background()

	apiToken := createToken(t, conn, user.ID, models.Bits(0).Set(models.TokenFlagAPI))
	validateToken := createToken(t, conn, user.ID, 0)

	ident, err := resolver.ResolveBearer(ctx, apiToken.Secret)
	if err != nil {
		t.Fatalf("resolve api token: %v", err)
	}
	if ident.Scope != ScopeFull {
		t.Fatalf("expected full scope for api token")
	}
	if ident.SessionID != "" {
		t.Fatalf("expected no session id on token identity")
	}

	ident, err = resolver.ResolveBearer(ctx, validateToken.Secret)
	if err != nil {
		t.Fatalf("resolve validate-only token: %v", err)
	}
	if ident.Scope != ScopeValidateOnly {
		t.Fatalf("expected validate-only scope for flags=0 token")
	}
}

func TestResolveBearer_AcceptsBearerPrefix(t *testing.T) {
	conn, resolver, user := setupResolver(t)
	ctx := context.Background()

	token := createToken(t, conn, user.ID, models.Bits(0).Set(models.TokenFlagAPI))

	ident, err := resolver.ResolveBearer(ctx, "Bearer "+token.Secret)
	if err != nil {
		t.Fatalf("resolve with prefix: %v", err)
	}
	if ident.User.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, ident.User.ID)
	}
}

func TestResolveBearer_UnknownSecret(t *testing.T) {
	_, resolver, _ := setupResolver(t)

	if _, err := resolver.ResolveBearer(context.Background(), "no-such-secret"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := resolver.ResolveBearer(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty header, got %v", err)
	}
}
