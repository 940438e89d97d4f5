package user

import (
	"context"
	"sync"

	"github.com/trezcool/darasa/core"
)

// Session owns the authenticated-session state: the current user and the
// bearer credential. Both are mirrored to the keystore synchronously on every
// change; the dispatcher reads the credential from the keystore on the very
// next call.
//
// The session is created on successful login and destroyed on logout or when
// the server rejects the credential on the current-user fetch.
type Session struct {
	mu         sync.Mutex
	current    *User
	credential string
	loading    bool
	err        error
	seq        uint64
	listeners  []func()

	api  core.API
	keys core.Keystore
	log  core.Logger
}

func NewSession(api core.API, keys core.Keystore, log core.Logger) *Session {
	return &Session{api: api, keys: keys, log: log}
}

// Hydrate seeds the session from the keystore. Bootstrap only; a fulfilled
// fetch always overwrites hydrated state and re-writes storage.
func (s *Session) Hydrate() {
	var (
		token string
		usr   User
	)
	tokOK, err := s.keys.Get(core.KeyAccessToken, &token)
	if err != nil {
		s.log.Error("hydrating credential", err)
		return
	}
	usrOK, err := s.keys.Get(core.KeyUser, &usr)
	if err != nil {
		s.log.Error("hydrating user", err)
		return
	}

	s.mu.Lock()
	if tokOK {
		s.credential = token
	}
	if usrOK {
		s.current = &usr
	}
	s.mu.Unlock()
	s.notify()
}

// Login authenticates against POST /user/login and mirrors the returned
// credential and user to the keystore.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	creds.Username = core.CleanString(creds.Username, true /* lower */)
	if err := core.CheckStruct(creds); err != nil {
		s.reject(s.begin(), err)
		return err
	}

	seq := s.begin()
	var payload struct {
		AccessToken string `json:"accessToken"`
		User        User   `json:"user"`
	}
	if err := s.api.Post(ctx, "/user/login", creds, &payload); err != nil {
		s.reject(seq, err)
		return err
	}

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return nil
	}
	s.loading = false
	s.credential = payload.AccessToken
	s.current = &payload.User
	s.mu.Unlock()
	s.mirror(payload.AccessToken, payload.User)
	s.notify()
	return nil
}

// FetchCurrent refreshes the current user from GET /user/currentUser. The
// credential is not re-sent explicitly; the dispatcher reads it from the
// keystore. A 401-class rejection destroys the session.
func (s *Session) FetchCurrent(ctx context.Context) error {
	seq := s.begin()
	var usr User
	if err := s.api.Get(ctx, "/user/currentUser", nil, &usr); err != nil {
		if core.IsUnauthorized(err) {
			s.destroy()
		}
		s.reject(seq, err)
		return err
	}

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return nil
	}
	s.loading = false
	s.current = &usr
	cred := s.credential
	s.mu.Unlock()
	s.mirror(cred, usr)
	s.notify()
	return nil
}

// Logout destroys the session locally; the backend keeps no session state.
func (s *Session) Logout() {
	s.destroy()
	s.notify()
}

func (s *Session) Current() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return User{}, false
	}
	return *s.current, true
}

func (s *Session) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential != ""
}

// Expired reports whether the held credential carries an exceeded expiry
// claim. Absence of a credential counts as expired.
func (s *Session) Expired() bool {
	cred := s.Credential()
	if cred == "" {
		return true
	}
	claims, err := ParseClaims(cred)
	if err != nil {
		return true
	}
	return claims.Expired()
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) Subscribe(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Session) begin() uint64 {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.loading = true
	s.err = nil
	s.mu.Unlock()
	s.notify()
	return seq
}

func (s *Session) reject(seq uint64, err error) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.loading = false
	s.err = err
	s.mu.Unlock()
	s.notify()
}

func (s *Session) destroy() {
	s.mu.Lock()
	s.current = nil
	s.credential = ""
	s.mu.Unlock()
	if err := s.keys.Delete(core.KeyAccessToken); err != nil {
		s.log.Error("deleting credential", err)
	}
	if err := s.keys.Delete(core.KeyUser); err != nil {
		s.log.Error("deleting user", err)
	}
}

// mirror writes the session snapshot to the keystore, synchronously with the
// state change.
func (s *Session) mirror(cred string, usr User) {
	if err := s.keys.Set(core.KeyAccessToken, cred); err != nil {
		s.log.Error("mirroring credential", err)
	}
	if err := s.keys.Set(core.KeyUser, usr); err != nil {
		s.log.Error("mirroring user", err)
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
