package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/repository/repotest"
)

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (m *memoryRevocations) RevokeToken(_ context.Context, id string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[id] = ttl
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[id]
	return ok, nil
}

func newTestService(t *testing.T) (*Service, *memoryRevocations) {
	t.Helper()
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	rev := &memoryRevocations{revoked: make(map[string]time.Duration)}
	svc := NewService(repotest.NewStore().Accounts(), issuer, rev, zap.NewNop())

	require.NoError(t, svc.EnsureAccount(context.Background(), "Admin@Lumina.co", "s3cret", domain.RoleAdmin))
	require.NoError(t, svc.EnsureAccount(context.Background(), "tutor@lumina.co", "pw", domain.RoleTutor))
	return svc, rev
}

func TestCapabilityFor(t *testing.T) {
	assert.Equal(t, Capability{CanManageSlots: true, CanAdminister: true}, CapabilityFor(domain.RoleAdmin))
	assert.Equal(t, Capability{CanManageSlots: true}, CapabilityFor(domain.RoleTutor))
	assert.Equal(t, Capability{}, CapabilityFor("guest"))
}

func TestService_SignInAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)

	var events []bool
	svc.Subscribe(func(p Principal, in bool) { events = append(events, in) })

	token, err := svc.SignIn(context.Background(), " admin@lumina.co ", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.Equal(t, domain.RoleAdmin, token.Principal.Role)
	assert.True(t, token.Principal.Capability.CanAdminister)

	p, err := svc.Authenticate(context.Background(), token.Value)
	require.NoError(t, err)
	assert.Equal(t, "admin@lumina.co", p.Email)
	assert.Equal(t, []bool{true}, events)
}

func TestService_SignIn_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService(t)

	testCases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "admin@lumina.co", password: "nope"},
		{name: "unknown email", email: "who@lumina.co", password: "s3cret"},
		{name: "empty", email: "", password: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SignIn(context.Background(), tc.email, tc.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestService_SignOutRevokes(t *testing.T) {
	svc, rev := newTestService(t)
	token, err := svc.SignIn(context.Background(), "tutor@lumina.co", "pw")
	require.NoError(t, err)

	var signedOut bool
	svc.Subscribe(func(p Principal, in bool) { signedOut = !in })

	require.NoError(t, svc.SignOut(context.Background(), token.Value))
	assert.True(t, signedOut)
	assert.Len(t, rev.revoked, 1)

	_, err = svc.Authenticate(context.Background(), token.Value)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestService_Unsubscribe(t *testing.T) {
	svc, _ := newTestService(t)
	calls := 0
	unsub := svc.Subscribe(func(Principal, bool) { calls++ })
	unsub()

	_, err := svc.SignIn(context.Background(), "tutor@lumina.co", "pw")
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestTokenIssuer_RejectsForeignTokens(t *testing.T) {
	a, err := NewTokenIssuer("secret-a", time.Hour)
	require.NoError(t, err)
	b, err := NewTokenIssuer("secret-b", time.Hour)
	require.NoError(t, err)

	raw, _, err := a.Issue(&domain.Account{ID: "1", Email: "x@y.z", Role: domain.RoleTutor})
	require.NoError(t, err)

	_, err = b.Parse(raw)
	assert.Error(t, err)

	_, err = NewTokenIssuer("", time.Hour)
	assert.Error(t, err)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Minute)
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	issuer.now = func() time.Time { return past }
	raw, _, err := issuer.Issue(&domain.Account{ID: "1", Role: domain.RoleTutor})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(raw)
	assert.Error(t, err)
}

func TestService_EnsureAccountIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.EnsureAccount(context.Background(), "admin@lumina.co", "other", domain.RoleAdmin))

	_, err := svc.SignIn(context.Background(), "admin@lumina.co", "s3cret")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.EnsureAccount(context.Background(), "", "x", domain.RoleAdmin), domain.ErrMissingField)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t)
	tutorToken, err := svc.SignIn(context.Background(), "tutor@lumina.co", "pw")
	require.NoError(t, err)
	adminToken, err := svc.SignIn(context.Background(), "admin@lumina.co", "s3cret")
	require.NoError(t, err)

	r := gin.New()
	authed := r.Group("/", svc.Middleware())
	authed.GET("/portal", Require(CanManageSlots), func(c *gin.Context) { c.Status(http.StatusOK) })
	authed.GET("/admin", Require(CanAdminister), func(c *gin.Context) { c.Status(http.StatusOK) })

	testCases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "no header", path: "/portal", header: "", want: http.StatusUnauthorized},
		{name: "garbage token", path: "/portal", header: "Bearer abc", want: http.StatusUnauthorized},
		{name: "tutor on portal", path: "/portal", header: "Bearer " + tutorToken.Value, want: http.StatusOK},
		{name: "tutor on admin", path: "/admin", header: "Bearer " + tutorToken.Value, want: http.StatusForbidden},
		{name: "admin on admin", path: "/admin", header: "Bearer " + adminToken.Value, want: http.StatusOK},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestBearerToken(t *testing.T) {
	raw, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", raw)

	_, ok = BearerToken("Basic xyz")
	assert.False(t, ok)
	_, ok = BearerToken("Bearer   ")
	assert.False(t, ok)
}
