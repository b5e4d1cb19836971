package grpc

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

// memAccounts is an in-memory account store that doubles as the auth core's
// user lookup.
type memAccounts struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*models.User
	passwords services.PasswordHashing
	failMe    error
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[uuid.UUID]*models.User{}}
}

func (m *memAccounts) FindByUsername(_ context.Context, name string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.UserName == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memAccounts) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memAccounts) Register(ctx context.Context, username, email, password string) (*services.Profile, error) {
	if len(username) < 3 {
		return nil, common.ErrInvalidInput
	}
	if existing, _ := m.FindByUsername(ctx, username); existing != nil {
		return nil, &users.ConflictError{Field: "username"}
	}
	hash, err := m.passwords.HashNewPassword(ctx, password)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: uuid.New(), UserName: username, Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	m.byID[u.ID] = u
	return &services.Profile{ID: u.ID, UserName: u.UserName, Email: u.Email}, nil
}

func (m *memAccounts) Me(ctx context.Context, id uuid.UUID) (*services.Profile, error) {
	if m.failMe != nil {
		return nil, m.failMe
	}
	u, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, common.ErrNotAuthorized
	}
	p := &services.Profile{ID: u.ID, UserName: u.UserName, Email: u.Email, FullName: u.FullName, Bio: u.Bio}
	if u.AvatarKey != nil {
		p.AvatarURL = "https://s3.local/get/" + *u.AvatarKey
	}
	return p, nil
}

func (m *memAccounts) UpdateProfile(_ context.Context, id uuid.UUID, upd models.ProfileUpdate) (*services.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrNotAuthorized
	}
	if upd.FullName != nil {
		u.FullName = upd.FullName
	}
	if upd.Bio != nil {
		u.Bio = upd.Bio
	}
	return &services.Profile{ID: u.ID, UserName: u.UserName, Email: u.Email, FullName: u.FullName, Bio: u.Bio}, nil
}

func (m *memAccounts) RequestAvatarUpload(_ context.Context, id uuid.UUID) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return "", "", common.ErrNotAuthorized
	}
	key := services.NewAvatarKey(id)
	u.AvatarKey = &key
	return key, "https://s3.local/put/" + key, nil
}

func (m *memAccounts) delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.byID {
		if u.UserName == name {
			delete(m.byID, id)
		}
	}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stack struct {
	client   rpc.AuthServiceClient
	conn     *grpc.ClientConn
	accounts *memAccounts
	clock    *testClock
}

// startStack serves a GRPCServer backed by the real auth core over bufconn.
func startStack(t *testing.T, interceptors ...grpc.UnaryServerInterceptor) *stack {
	t.Helper()

	secrets, err := auth.NewSecrets("pepper", "signing")
	if err != nil {
		t.Fatalf("NewSecrets: %v", err)
	}
	runner := auth.NewRunner(4)
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	accounts := newMemAccounts()

	core := auth.NewService(accounts,
		auth.NewArgon2Hasher(secrets, auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}, runner),
		auth.NewTokenService(secrets, runner, auth.WithClock(clock.Now)),
		logging.Nop{},
	)
	accounts.passwords = core

	srv := NewGRPCServer("bufnet", logging.Nop{}, core, accounts, interceptors...)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	return &stack{client: rpc.NewAuthServiceClient(conn), conn: conn, accounts: accounts, clock: clock}
}
