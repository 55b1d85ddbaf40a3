package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"synaphack/platform/internal/auth"
)

// TokenKeeper persists the session token between processes, playing the role
// a browser's local storage does for the web client.
type TokenKeeper interface {
	Load() (string, bool)
	Save(token string) error
	Clear() error
}

// Backend adapts auth.Service to the Authenticator interface and manages the
// persisted token the boot-time restore reads.
type Backend struct {
	svc    *auth.Service
	keeper TokenKeeper

	mu    sync.Mutex
	token string
}

func NewBackend(svc *auth.Service, keeper TokenKeeper) (*Backend, error) {
	if svc == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if keeper == nil {
		keeper = NewMemoryTokenKeeper()
	}
	return &Backend{svc: svc, keeper: keeper}, nil
}

func (b *Backend) Login(email, password string) (Identity, error) {
	sess, err := b.svc.Login(email, password)
	if err != nil {
		return Identity{}, err
	}
	return b.adopt(sess)
}

func (b *Backend) Register(profile Profile) (Identity, error) {
	sess, err := b.svc.Register(auth.RegisterProfile{
		Email:    profile.Email,
		Name:     profile.Name,
		Password: profile.Password,
		Role:     profile.Role,
	})
	if err != nil {
		return Identity{}, err
	}
	return b.adopt(sess)
}

// Restore validates the persisted token, if one exists. An expired or revoked
// token is cleared and reported as "no session", not as an error.
func (b *Backend) Restore() (Identity, bool, error) {
	token, ok := b.keeper.Load()
	if !ok || strings.TrimSpace(token) == "" {
		return Identity{}, false, nil
	}

	sess, err := b.svc.ValidateToken(token)
	if err != nil {
		_ = b.keeper.Clear()
		return Identity{}, false, nil
	}

	b.mu.Lock()
	b.token = token
	b.mu.Unlock()
	return identityOf(sess), true, nil
}

// Attach wires the backend to a store so that a logout transition revokes the
// server-side session and discards the persisted token.
func (b *Backend) Attach(store *Store) func() {
	return store.Subscribe(func(snap Snapshot) {
		if !snap.Loading && snap.Identity == nil {
			b.Discard()
		}
	})
}

// Discard revokes the current session token and forgets it. Safe to call when
// no token is held.
func (b *Backend) Discard() {
	b.mu.Lock()
	token := b.token
	b.token = ""
	b.mu.Unlock()

	if token != "" {
		_ = b.svc.Logout(token)
	}
	_ = b.keeper.Clear()
}

func (b *Backend) adopt(sess auth.Session) (Identity, error) {
	b.mu.Lock()
	b.token = sess.Token
	b.mu.Unlock()

	if err := b.keeper.Save(sess.Token); err != nil {
		return Identity{}, fmt.Errorf("persist session token: %w", err)
	}
	return identityOf(sess), nil
}

func identityOf(sess auth.Session) Identity {
	return Identity{
		ID:    sess.UserID,
		Name:  sess.Name,
		Email: sess.Email,
		Role:  sess.Role,
	}
}

type MemoryTokenKeeper struct {
	mu    sync.Mutex
	token string
	has   bool
}

func NewMemoryTokenKeeper() *MemoryTokenKeeper {
	return &MemoryTokenKeeper{}
}

func (k *MemoryTokenKeeper) Load() (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.token, k.has
}

func (k *MemoryTokenKeeper) Save(token string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.token = token
	k.has = true
	return nil
}

func (k *MemoryTokenKeeper) Clear() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.token = ""
	k.has = false
	return nil
}

// FileTokenKeeper stores the token on disk so a restarted client can restore
// its session.
type FileTokenKeeper struct {
	path string
}

func NewFileTokenKeeper(path string) (*FileTokenKeeper, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("token file path is required")
	}
	return &FileTokenKeeper{path: path}, nil
}

func (k *FileTokenKeeper) Load() (string, bool) {
	b, err := os.ReadFile(k.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(b))
	return token, token != ""
}

func (k *FileTokenKeeper) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(k.path), 0o755); err != nil {
		return fmt.Errorf("mkdir token dir: %w", err)
	}
	if err := os.WriteFile(k.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (k *FileTokenKeeper) Clear() error {
	if err := os.Remove(k.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
