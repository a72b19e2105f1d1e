package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestResolve(t *testing.T) {
	r := NewJWTResolver(secret)
	accountID := uuid.Must(uuid.NewV4())

	token, err := r.Issue(accountID, false, time.Hour)
	require.NoError(t, err)
	identity, err := r.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, identity.AccountID)
	assert.False(t, identity.Admin)

	admin, err := r.Issue(uuid.Nil, true, 0)
	require.NoError(t, err)
	identity, err = r.Resolve(admin)
	require.NoError(t, err)
	assert.True(t, identity.Admin)
	assert.Equal(t, uuid.Nil, identity.AccountID)
}

func TestResolve_Rejects(t *testing.T) {
	r := NewJWTResolver(secret)
	accountID := uuid.Must(uuid.NewV4())

	expired, err := r.Issue(accountID, false, time.Minute)
	require.NoError(t, err)

	otherSecret, err := NewJWTResolver("other").Issue(accountID, false, 0)
	require.NoError(t, err)

	noSubject, err := r.Issue(uuid.Nil, false, 0)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "42"}).SignedString([]byte(secret))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: accountID.String()}).SignedString([]byte(secret))
	require.NoError(t, err)

	later := NewJWTResolver(secret)
	later.now = func() time.Time { return time.Now().Add(time.Hour) }

	tests := []struct {
		name     string
		resolver *JWTResolver
		token    string
	}{
		{"expired", later, expired},
		{"wrong secret", r, otherSecret},
		{"missing subject", r, noSubject},
		{"subject not a uuid", r, badSubject},
		{"unexpected algorithm", r, wrongAlg},
		{"garbage", r, "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.resolver.Resolve(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

type whoAmIOutput struct {
	Body struct {
		AccountID string `json:"accountId"`
		Admin     bool   `json:"admin"`
	}
}

func TestMiddleware(t *testing.T) {
	r := NewJWTResolver(secret)
	_, api := humatest.New(t)
	api.UseMiddleware(Middleware(api, r))

	handler := func(ctx context.Context, _ *struct{}) (*whoAmIOutput, error) {
		out := &whoAmIOutput{}
		if identity, ok := FromContext(ctx); ok {
			out.Body.AccountID = identity.AccountID.String()
			out.Body.Admin = identity.Admin
		}
		return out, nil
	}
	huma.Register(api, huma.Operation{
		OperationID: "public",
		Method:      http.MethodGet,
		Path:        "/public",
	}, handler)
	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/me",
		Security:    []map[string][]string{{SecurityScheme: {}}},
	}, handler)
	huma.Register(api, huma.Operation{
		OperationID: "admin",
		Method:      http.MethodGet,
		Path:        "/admin",
		Security:    []map[string][]string{{SecurityScheme: {RoleAdmin}}},
	}, handler)

	accountID := uuid.Must(uuid.NewV4())
	user, err := r.Issue(accountID, false, time.Hour)
	require.NoError(t, err)
	admin, err := r.Issue(uuid.Nil, true, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header []any
		status int
	}{
		{"public without token", "/public", nil, http.StatusOK},
		{"missing token", "/me", nil, http.StatusUnauthorized},
		{"not bearer", "/me", []any{"Authorization: Basic abc"}, http.StatusUnauthorized},
		{"invalid token", "/me", []any{"Authorization: Bearer nope"}, http.StatusUnauthorized},
		{"valid token", "/me", []any{"Authorization: Bearer " + user}, http.StatusOK},
		{"user on admin route", "/admin", []any{"Authorization: Bearer " + user}, http.StatusForbidden},
		{"admin on admin route", "/admin", []any{"Authorization: Bearer " + admin}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.Get(tt.path, tt.header...)
			assert.Equal(t, tt.status, resp.Code)
		})
	}

	resp := api.Get("/me", "Authorization: Bearer "+user)
	assert.Contains(t, resp.Body.String(), accountID.String())
}
