package identity_test

import (
	"context"
	"sync"

	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/mock"
)

// TestIdentity is a simple Identity implementation for tests.
type TestIdentity struct {
	subject string
	name    string
	email   string
}

func (t TestIdentity) Subject() string     { return t.subject }
func (t TestIdentity) DisplayName() string { return t.name }
func (t TestIdentity) Email() string       { return t.email }

// MockProvider implements identity.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateAccount(ctx context.Context, email, password string) (identity.Identity, error) {
	args := m.Called(ctx, email, password)
	id, _ := args.Get(0).(identity.Identity)
	return id, args.Error(1)
}

func (m *MockProvider) Authenticate(ctx context.Context, email, password string) (identity.Identity, error) {
	args := m.Called(ctx, email, password)
	id, _ := args.Get(0).(identity.Identity)
	return id, args.Error(1)
}

func (m *MockProvider) InvalidateSession(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockProvider) UpdateDisplayName(ctx context.Context, id identity.Identity, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockProvider) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockProvider) OnSessionChange(fn func(identity.Identity)) identity.Unsubscribe {
	args := m.Called(fn)
	unsub, _ := args.Get(0).(identity.Unsubscribe)
	if unsub == nil {
		return func() {}
	}
	return unsub
}

// MockProfileStore implements identity.ProfileStore.
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) WriteProfile(ctx context.Context, profile *identity.UserProfile) (*identity.UserProfile, error) {
	args := m.Called(ctx, profile)
	p, _ := args.Get(0).(*identity.UserProfile)
	return p, args.Error(1)
}

func (m *MockProfileStore) ReadProfile(ctx context.Context, subjectID string) (*identity.UserProfile, error) {
	args := m.Called(ctx, subjectID)
	p, _ := args.Get(0).(*identity.UserProfile)
	return p, args.Error(1)
}

// stubProvider is a hand-rolled provider whose session-change stream tests
// drive directly.
type stubProvider struct {
	mu       sync.Mutex
	callback func(identity.Identity)
	detached bool
}

func (s *stubProvider) CreateAccount(ctx context.Context, email, password string) (identity.Identity, error) {
	return nil, nil
}

func (s *stubProvider) Authenticate(ctx context.Context, email, password string) (identity.Identity, error) {
	return nil, nil
}

func (s *stubProvider) InvalidateSession(ctx context.Context) error { return nil }

func (s *stubProvider) UpdateDisplayName(ctx context.Context, id identity.Identity, name string) error {
	return nil
}

func (s *stubProvider) RequestPasswordReset(ctx context.Context, email string) error { return nil }

func (s *stubProvider) OnSessionChange(fn func(identity.Identity)) identity.Unsubscribe {
	s.mu.Lock()
	s.callback = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.detached = true
		s.callback = nil
		s.mu.Unlock()
	}
}

func (s *stubProvider) emit(id identity.Identity) {
	s.mu.Lock()
	fn := s.callback
	s.mu.Unlock()
	if fn != nil {
		fn(id)
	}
}

func (s *stubProvider) isDetached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detached
}
