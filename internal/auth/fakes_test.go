package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/branchd-dev/authgate/internal/models"
)

var errBackendDown = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

// fakeSessionStore is an in-memory SessionStore with switchable failures
type fakeSessionStore struct {
	mu      sync.Mutex
	records map[string]SessionRecord
	down    bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{records: make(map[string]SessionRecord)}
}

func (f *fakeSessionStore) Save(ctx context.Context, record SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errBackendDown
	}
	f.records[record.ID] = record
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, id string) (SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return SessionRecord{}, errBackendDown
	}
	record, ok := f.records[id]
	if !ok {
		return SessionRecord{}, ErrSessionNotFound
	}
	return record, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errBackendDown
	}
	delete(f.records, id)
	return nil
}

func (f *fakeSessionStore) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

// fakeCredentialStore serves users from a map keyed by email
type fakeCredentialStore struct {
	users map[string]*models.User
	down  bool
}

func (f *fakeCredentialStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.down {
		return nil, errBackendDown
	}
	user, ok := f.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func newSeededCredentialStore(h *Hasher) *fakeCredentialStore {
	jeremy, _ := h.Hash("johnson123")
	kelly, _ := h.Hash("bryant123")
	return &fakeCredentialStore{users: map[string]*models.User{
		"jeremy@jeremy.com": {BaseModel: models.BaseModel{ID: "01JEREMY"}, Email: "jeremy@jeremy.com", PasswordHash: jeremy},
		"kelly@kelly.com":   {BaseModel: models.BaseModel{ID: "01KELLY"}, Email: "kelly@kelly.com", PasswordHash: kelly, IsAdmin: true},
	}}
}
