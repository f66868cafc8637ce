package auth_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	"github.com/streamhub/streamhub/auth"
)

// testTokenConfig implements auth.Config with fixed values.
type testTokenConfig struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func (c testTokenConfig) GetAccessTokenSecret() string { return "test-access-secret-0123456789" }

func (c testTokenConfig) GetRefreshTokenSecret() string { return "test-refresh-secret-9876543210" }

func (c testTokenConfig) GetIssuer() string { return "test-issuer" }

func (c testTokenConfig) GetAccessTokenTTL() time.Duration {
	if c.accessTTL != 0 {
		return c.accessTTL
	}
	return 15 * time.Minute
}

func (c testTokenConfig) GetRefreshTokenTTL() time.Duration {
	if c.refreshTTL != 0 {
		return c.refreshTTL
	}
	return 240 * time.Hour
}

// MockUsers implements auth.Users. The embedded interface covers the
// generic repository surface; anything a test actually calls is mocked
// explicitly below.
type MockUsers struct {
	mock.Mock
	auth.Users
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, tx, user)
	created, _ := args.Get(0).(*auth.User)
	return created, args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByLogin(ctx context.Context, username, email string) (*auth.User, error) {
	args := m.Called(ctx, username, email)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUsers) StoreRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUsers) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) SaveWatchHistory(ctx context.Context, id uuid.UUID, history []string) error {
	args := m.Called(ctx, id, history)
	return args.Error(0)
}

// mockRepoManager wires a MockUsers behind the RepositoryManager surface.
// RunInTx hands the callback a zero transaction; the mocked repositories
// never touch it.
type mockRepoManager struct {
	users *MockUsers
}

func newMockRepoManager() *mockRepoManager {
	return &mockRepoManager{users: &MockUsers{}}
}

func (m *mockRepoManager) Validate() error { return nil }
func (m *mockRepoManager) MustValidate()   {}

func (m *mockRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *mockRepoManager) Users() auth.Users { return m.users }
