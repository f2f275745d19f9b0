package oauth

import (
	"sync"
	"time"

	"github.com/haileyok/cimd/oauth/constants"
)

// Grant is the data associated with a redeemed authorization code.
type Grant struct {
	ClientID    string
	RedirectURI string
	State       string
}

type codeEntry struct {
	grant     Grant
	createdAt time.Time
}

// CodeStore holds pending authorization codes in memory. Codes live for
// constants.CodeLifetime and are deleted on first redemption, so a code is
// single use even under concurrent redemption attempts. Nothing survives a
// process restart, which is all a demonstration server needs.
type CodeStore struct {
	mu    sync.Mutex
	codes map[string]codeEntry

	ttl time.Duration
	now func() time.Time

	stopCleanup chan struct{}
}

func NewCodeStore() *CodeStore {
	return &CodeStore{
		codes: map[string]codeEntry{},
		ttl:   constants.CodeLifetime,
		now:   time.Now,
	}
}

// Issue mints a fresh code for the given grant and stores it keyed by the
// code value. The returned code is the only handle to the entry.
func (s *CodeStore) Issue(clientID, redirectURI, state string) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[code] = codeEntry{
		grant: Grant{
			ClientID:    clientID,
			RedirectURI: redirectURI,
			State:       state,
		},
		createdAt: s.now(),
	}

	return code, nil
}

// Redeem looks up a code and deletes it in one step. Exactly one caller can
// ever get the grant back; everyone else sees ErrCodeNotFound. A code past
// its lifetime fails with ErrCodeExpired and is removed, regardless of
// whether the cleanup routine got to it first.
func (s *CodeStore) Redeem(code string) (*Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[code]
	if !ok {
		return nil, ErrCodeNotFound
	}

	delete(s.codes, code)

	if s.now().Sub(entry.createdAt) > s.ttl {
		return nil, ErrCodeExpired
	}

	grant := entry.grant
	return &grant, nil
}

// StartCleanup begins periodically purging expired codes. Redemption checks
// expiry itself, so this only bounds memory growth from codes that are never
// redeemed.
func (s *CodeStore) StartCleanup(interval time.Duration) {
	s.stopCleanup = make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.purgeExpired()
			case <-s.stopCleanup:
				return
			}
		}
	}()
}

func (s *CodeStore) StopCleanup() {
	if s.stopCleanup != nil {
		close(s.stopCleanup)
		s.stopCleanup = nil
	}
}

func (s *CodeStore) purgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for code, entry := range s.codes {
		if s.now().Sub(entry.createdAt) > s.ttl {
			delete(s.codes, code)
		}
	}
}
