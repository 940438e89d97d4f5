package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/role"
	"github.com/trezcool/darasa/core/user"
	inmemks "github.com/trezcool/darasa/storage/keyval/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

func seedAdmin(b *testutil.Backend) user.User {
	return b.AddUser(user.User{
		ID:       "u1",
		Name:     "Jo Admin",
		Username: "jo",
		Email:    "jo@test.test",
		IsActive: true,
		Roles:    []role.Value{role.SuperAdmin},
	}, "s3cret!pwd")
}

func TestSession_login(t *testing.T) {
	b := testutil.NewBackend(t)
	usr := seedAdmin(b)
	keys := inmemks.New()
	sess := user.NewSession(b.Client(t, keys), keys, testutil.NewLogger(t))
	ctx := context.Background()

	// invalid credentials reject with the server's message
	err := sess.Login(ctx, user.Credentials{Username: "jo", Password: "nope"})
	if err == nil {
		t.Fatal("Login() error = nil, want rejection")
	}
	if want := "invalid credentials"; err.Error() != want {
		t.Errorf("Login() error = %q, want %q", err.Error(), want)
	}
	if sess.Authenticated() {
		t.Error("Authenticated() = true after failed login")
	}

	// blank input is guarded client-side
	err = sess.Login(ctx, user.Credentials{Username: "  ", Password: ""})
	if !core.IsValidationError(err) {
		t.Errorf("Login() error = %v, want validation error", err)
	}

	// valid credentials establish the session and mirror it to the keystore
	if err = sess.Login(ctx, user.Credentials{Username: "JO", Password: "s3cret!pwd"}); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if !sess.Authenticated() {
		t.Fatal("Authenticated() = false after login")
	}
	if err = sess.Err(); err != nil {
		t.Errorf("Err() = %v after fulfilled login, want nil", err)
	}

	var storedTok string
	if ok, _ := keys.Get(core.KeyAccessToken, &storedTok); !ok || storedTok != sess.Credential() {
		t.Errorf("keystore accessToken = %q, want %q", storedTok, sess.Credential())
	}
	var storedUsr user.User
	if ok, _ := keys.Get(core.KeyUser, &storedUsr); !ok || storedUsr.ID != usr.ID {
		t.Errorf("keystore user = %+v, want id %s", storedUsr, usr.ID)
	}

	// a subsequent current-user fetch succeeds without re-sending credentials:
	// the dispatcher reads the token from storage
	if err = sess.FetchCurrent(ctx); err != nil {
		t.Fatalf("FetchCurrent() failed: %v", err)
	}
	if current, ok := sess.Current(); !ok || current.Username != "jo" {
		t.Errorf("Current() = %+v, want username jo", current)
	}
}

func TestSession_rejectedCredentialDestroysSession(t *testing.T) {
	b := testutil.NewBackend(t)
	seedAdmin(b)
	keys := inmemks.New()
	sess := user.NewSession(b.Client(t, keys), keys, testutil.NewLogger(t))

	// plant a garbage credential, as if the server had rotated its key
	if err := keys.Set(core.KeyAccessToken, "garbage-token"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	sess.Hydrate()
	if !sess.Authenticated() {
		t.Fatal("Authenticated() = false after hydration")
	}

	err := sess.FetchCurrent(context.Background())
	if !core.IsUnauthorized(err) {
		t.Fatalf("FetchCurrent() error = %v, want unauthorized", err)
	}
	if sess.Authenticated() {
		t.Error("Authenticated() = true after credential rejection")
	}
	var tok string
	if ok, _ := keys.Get(core.KeyAccessToken, &tok); ok {
		t.Error("keystore accessToken survived credential rejection")
	}
}

func TestSession_hydrate(t *testing.T) {
	b := testutil.NewBackend(t)
	usr := seedAdmin(b)
	keys := inmemks.New()

	if err := keys.Set(core.KeyAccessToken, b.Token(t, usr)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := keys.Set(core.KeyUser, usr); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	sess := user.NewSession(b.Client(t, keys), keys, testutil.NewLogger(t))
	sess.Hydrate()
	if !sess.Authenticated() {
		t.Error("Authenticated() = false after hydration")
	}
	if current, ok := sess.Current(); !ok || current.ID != usr.ID {
		t.Errorf("Current() = %+v, want id %s", current, usr.ID)
	}

	// a corrupt stored user is treated as absence, not an error
	keys2 := inmemks.New()
	keys2.SetRaw(core.KeyUser, []byte(`{not json`))
	sess2 := user.NewSession(b.Client(t, keys2), keys2, testutil.NewLogger(t))
	sess2.Hydrate()
	if _, ok := sess2.Current(); ok {
		t.Error("Current() found from a corrupt stored value")
	}
}

func TestSession_subscribe(t *testing.T) {
	b := testutil.NewBackend(t)
	seedAdmin(b)
	keys := inmemks.New()
	sess := user.NewSession(b.Client(t, keys), keys, testutil.NewLogger(t))

	var calls int
	sess.Subscribe(func() { calls++ })

	// begin + settle
	if err := sess.Login(context.Background(), user.Credentials{Username: "jo", Password: "s3cret!pwd"}); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("listener ran %d times after login, want 2", calls)
	}

	sess.Logout()
	if calls != 3 {
		t.Errorf("listener ran %d times after logout, want 3", calls)
	}
}

func TestSession_expired(t *testing.T) {
	keys := inmemks.New()
	sess := user.NewSession(nil, keys, testutil.NewLogger(t))

	if !sess.Expired() {
		t.Error("Expired() = false with no credential")
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	})
	tok, err := expired.SignedString([]byte("whatever"))
	if err != nil {
		t.Fatalf("signing token failed: %v", err)
	}
	if err = keys.Set(core.KeyAccessToken, tok); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	sess.Hydrate()
	if !sess.Expired() {
		t.Error("Expired() = false with an exceeded expiry claim")
	}
}

func TestParseClaims(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &user.Claims{
		StandardClaims: jwt.StandardClaims{Subject: "u1", ExpiresAt: time.Now().Add(time.Hour).Unix()},
		Username:       "jo",
		Roles:          []role.Value{role.SuperAdmin},
	})
	signed, err := tok.SignedString([]byte("any-key"))
	if err != nil {
		t.Fatalf("signing token failed: %v", err)
	}

	claims, err := user.ParseClaims(signed)
	if err != nil {
		t.Fatalf("ParseClaims() failed: %v", err)
	}
	if claims.Username != "jo" || claims.Subject != "u1" {
		t.Errorf("ParseClaims() = %+v, want subject u1 / username jo", claims)
	}
	if claims.Expired() {
		t.Error("Expired() = true for a fresh token")
	}

	if _, err = user.ParseClaims("lmaooolol"); err == nil {
		t.Error("ParseClaims() error = nil for garbage input")
	}
}
