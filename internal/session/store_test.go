package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/five82/galley/internal/api"
	"github.com/five82/galley/internal/storage"
)

type fakeAuth struct {
	resp api.LoginResponse
	err  error
}

func (f fakeAuth) Login(context.Context, string, string) (api.LoginResponse, error) {
	return f.resp, f.err
}

type failingKV struct {
	*storage.Memory
	failKey string
}

func (f failingKV) Set(key, value string) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.Memory.Set(key, value)
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return tok
}

func drain(s *Store) []Event {
	var out []Event
	for {
		select {
		case ev := <-s.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestHydrate_RestoresOnceAndEndsInitializing(t *testing.T) {
	kv := storage.NewMemory()
	_ = kv.Set(TokenKey, "tok")
	_ = kv.Set(UserKey, `{"name":"Ann","email":"ann@example.com"}`)

	s := New(kv, fakeAuth{}, nil)
	if !s.State().Initializing {
		t.Fatalf("new store should be initializing")
	}
	s.Hydrate()
	st := s.State()
	if st.Initializing || st.Token != "tok" || st.User == nil || st.User.Name != "Ann" {
		t.Fatalf("State = %#v, want restored Ann session", st)
	}

	_ = kv.Set(TokenKey, "other")
	s.Hydrate()
	if s.Token() != "tok" {
		t.Fatalf("second Hydrate changed token to %q", s.Token())
	}
}

func TestHydrate_CorruptUserKeepsTokenAndUsesClaims(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"sub": "bo@example.com", "name": "Bo"})
	kv := storage.NewMemory()
	_ = kv.Set(TokenKey, tok)
	_ = kv.Set(UserKey, "{not json")

	s := New(kv, fakeAuth{}, nil)
	s.Hydrate()
	st := s.State()
	if st.Token != tok {
		t.Fatalf("Token = %q, want restored token", st.Token)
	}
	if st.User == nil || st.User.Email != "bo@example.com" || st.User.Name != "Bo" {
		t.Fatalf("User = %#v, want rebuilt from claims", st.User)
	}
	if _, ok, _ := kv.Get(UserKey); ok {
		t.Fatalf("corrupt user payload was not removed")
	}
}

func TestHydrate_OpaqueTokenWithoutUser(t *testing.T) {
	kv := storage.NewMemory()
	_ = kv.Set(TokenKey, "opaque")

	s := New(kv, fakeAuth{}, nil)
	s.Hydrate()
	st := s.State()
	if st.Token != "opaque" || st.User == nil || st.User.Name != "" || st.User.Email != "" {
		t.Fatalf("User = %#v, want empty non-nil user", st.User)
	}
}

func TestHydrate_UserWithoutTokenIsDiscarded(t *testing.T) {
	kv := storage.NewMemory()
	_ = kv.Set(UserKey, `{"name":"Ann"}`)

	s := New(kv, fakeAuth{}, nil)
	s.Hydrate()
	st := s.State()
	if st.Token != "" || st.User != nil || st.Initializing {
		t.Fatalf("State = %#v, want signed out and initialized", st)
	}
	if kv.Keys() != 0 {
		t.Fatalf("orphan user still persisted")
	}
}

func TestLogin_PersistsAndPublishes(t *testing.T) {
	kv := storage.NewMemory()
	s := New(kv, fakeAuth{resp: api.LoginResponse{Token: "jwt", Name: "Ann"}}, nil)
	s.Hydrate()

	if err := s.Login(context.Background(), " ann@example.com ", "pw"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	st := s.State()
	if st.Token != "jwt" || st.User == nil || st.User.Email != "ann@example.com" {
		t.Fatalf("State = %#v, want Ann signed in", st)
	}
	if v, _, _ := kv.Get(TokenKey); v != "jwt" {
		t.Fatalf("persisted token = %q, want jwt", v)
	}
	if v, _, _ := kv.Get(UserKey); v != `{"name":"Ann","email":"ann@example.com"}` {
		t.Fatalf("persisted user = %q", v)
	}
	events := drain(s)
	if len(events) != 1 || events[0].Kind != EventLoggedIn {
		t.Fatalf("events = %#v, want one login", events)
	}
}

func TestLogin_FailuresLeaveSessionUntouched(t *testing.T) {
	kv := storage.NewMemory()
	s := New(kv, fakeAuth{resp: api.LoginResponse{Name: "Ann"}}, nil)
	s.Hydrate()

	if err := s.Login(context.Background(), "a@b", "pw"); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("Login err = %v, want ErrTokenMissing", err)
	}
	if s.Token() != "" || kv.Keys() != 0 {
		t.Fatalf("failed login changed state")
	}

	boom := errors.New("invalid credentials")
	s.auth = fakeAuth{err: boom}
	if err := s.Login(context.Background(), "a@b", "pw"); !errors.Is(err, boom) {
		t.Fatalf("Login err = %v, want %v", err, boom)
	}

	mem := storage.NewMemory()
	s = New(failingKV{Memory: mem, failKey: UserKey}, fakeAuth{resp: api.LoginResponse{Token: "t"}}, nil)
	s.Hydrate()
	if err := s.Login(context.Background(), "a@b", "pw"); err == nil {
		t.Fatalf("Login succeeded despite storage failure")
	}
	if s.Token() != "" || mem.Keys() != 0 {
		t.Fatalf("partial persist leaked: token=%q keys=%d", s.Token(), mem.Keys())
	}
	if len(drain(s)) != 0 {
		t.Fatalf("failed login published an event")
	}
}

func TestLogout_ClearsEverything(t *testing.T) {
	kv := storage.NewMemory()
	s := New(kv, fakeAuth{resp: api.LoginResponse{Token: "jwt"}}, nil)
	s.Hydrate()
	if err := s.Login(context.Background(), "a@b", "pw"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	drain(s)

	s.Logout()
	if st := s.State(); st.Token != "" || st.User != nil {
		t.Fatalf("State = %#v, want signed out", st)
	}
	if kv.Keys() != 0 {
		t.Fatalf("persisted keys = %d, want 0", kv.Keys())
	}
	events := drain(s)
	if len(events) != 1 || events[0].Kind != EventLoggedOut {
		t.Fatalf("events = %#v, want one logout", events)
	}
}

func TestRejected_OnlyCurrentTokenExpiresOnce(t *testing.T) {
	kv := storage.NewMemory()
	s := New(kv, fakeAuth{resp: api.LoginResponse{Token: "new"}}, nil)
	s.Hydrate()
	if err := s.Login(context.Background(), "a@b", "pw"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	drain(s)

	s.Rejected("")
	s.Rejected("old")
	if s.Token() != "new" {
		t.Fatalf("stale rejection logged the user out")
	}

	s.Rejected("new")
	s.Rejected("new")
	if s.Token() != "" || kv.Keys() != 0 {
		t.Fatalf("current-token rejection did not log out")
	}
	events := drain(s)
	if len(events) != 1 || events[0].Kind != EventExpired || events[0].Message != ExpiredMessage {
		t.Fatalf("events = %#v, want exactly one expiry", events)
	}
}

func TestExpiry_ReadsClaimWithoutVerifying(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signedToken(t, jwt.MapClaims{"exp": exp.Unix()})
	kv := storage.NewMemory()
	_ = kv.Set(TokenKey, tok)

	s := New(kv, fakeAuth{}, nil)
	if _, ok := s.Expiry(); ok {
		t.Fatalf("Expiry before hydrate should be unknown")
	}
	s.Hydrate()
	got, ok := s.Expiry()
	if !ok || !got.Equal(exp) {
		t.Fatalf("Expiry = %v, %v; want %v", got, ok, exp)
	}
}
