package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"spotcircle/internal/domain"
	"spotcircle/internal/repository"
	"spotcircle/internal/repository/sqlite"
	"spotcircle/internal/service"
)

const testSecret = "test-secret"

type testServer struct {
	router *gin.Engine
	users  repository.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	inviteRepo := sqlite.NewInviteRepository(db)
	spotRepo := sqlite.NewSpotRepository(db)
	voteRepo := sqlite.NewVoteRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, inviteRepo.Init(ctx))
	require.NoError(t, spotRepo.Init(ctx))
	require.NoError(t, voteRepo.Init(ctx))

	clock := service.SystemClock()
	users := service.NewUserService(userRepo, inviteRepo, clock, testSecret, time.Hour)
	admin := service.NewAdminService(userRepo, inviteRepo, spotRepo, clock, 5*time.Hour)
	spots := service.NewSpotService(spotRepo, nil, "", "")
	voting := service.NewVotingService(voteRepo, userRepo, clock, 24*time.Hour, time.Hour)

	router := gin.New()
	NewHandler(users, admin, spots, voting, testSecret, "http://localhost:3000").RegisterRoutes(router)

	return &testServer{router: router, users: userRepo}
}

func (s *testServer) seedUser(t *testing.T, username string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     "@" + username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		IsApproved:   true,
	}
	require.NoError(t, s.users.Create(context.Background(), user))
	return user
}

func (s *testServer) token(t *testing.T, user *domain.User) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"email":    user.Email,
		"username": user.Username,
		"role":     string(user.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/auth/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGates(t *testing.T) {
	srv := newTestServer(t)
	member := srv.seedUser(t, "member", domain.RoleUser)
	admin := srv.seedUser(t, "admin", domain.RoleAdmin)
	super := srv.seedUser(t, "super", domain.RoleSuperAdmin)

	rec := srv.do(t, http.MethodGet, "/api/admin/users", srv.token(t, member), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "plain member cannot use admin routes")

	rec = srv.do(t, http.MethodGet, "/api/admin/users", srv.token(t, admin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/voting/active", srv.token(t, admin), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "admin cannot use voting routes")

	rec = srv.do(t, http.MethodGet, "/api/voting/active", srv.token(t, super), nil)
	assert.Equal(t, http.StatusOK, rec.Code, "superadmin routes are role-gated, not flat-denied")
}

func TestRegisterAndLoginFlow(t *testing.T) {
	srv := newTestServer(t)
	boss := srv.seedUser(t, "boss", domain.RoleSuperAdmin)

	rec := srv.do(t, http.MethodPost, "/api/admin/invites", srv.token(t, boss), gin.H{
		"email": "newbie@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	invite := decode[InviteResponse](t, rec)
	assert.Contains(t, invite.Link, invite.Code)

	rec = srv.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username":    "@newbie",
		"email":       "newbie@example.com",
		"password":    "hunter2hunter2",
		"invite_code": invite.Code,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "newbie@example.com",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "login is blocked until approval")

	rec = srv.do(t, http.MethodGet, "/api/admin/users/pending", srv.token(t, boss), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[[]UserResponse](t, rec)
	require.Len(t, pending, 1)

	rec = srv.do(t, http.MethodPatch, "/api/admin/users/"+pending[0].ID+"/approve", srv.token(t, boss), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "newbie@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	login := decode[map[string]json.RawMessage](t, rec)
	var token string
	require.NoError(t, json.Unmarshal(login["access_token"], &token))

	rec = srv.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[UserResponse](t, rec)
	assert.Equal(t, "@newbie", profile.Username)
}

func TestVotingFlow(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.seedUser(t, "alice", domain.RoleSuperAdmin)
	bob := srv.seedUser(t, "bob", domain.RoleSuperAdmin)
	carol := srv.seedUser(t, "carol", domain.RoleSuperAdmin)

	rec := srv.do(t, http.MethodPost, "/api/voting", srv.token(t, alice), gin.H{
		"target_user_id": bob.ID,
		"type":           "REMOVE_SUPERADMIN",
		"reason":         "gone quiet",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	vote := decode[VoteResponse](t, rec)
	assert.Equal(t, "ACTIVE", vote.Status)
	assert.Equal(t, 2, vote.RequiredVotes)

	rec = srv.do(t, http.MethodPost, "/api/voting", srv.token(t, carol), gin.H{
		"target_user_id": bob.ID,
		"type":           "REMOVE_SUPERADMIN",
	})
	assert.Equal(t, http.StatusConflict, rec.Code, "duplicate active vote")

	rec = srv.do(t, http.MethodPost, "/api/voting/"+vote.ID+"/cast", srv.token(t, bob), gin.H{
		"decision": "REJECT",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code, "target cannot vote")

	rec = srv.do(t, http.MethodPost, "/api/voting/"+vote.ID+"/cast", srv.token(t, alice), gin.H{
		"decision": "APPROVE",
		"comment":  "seen enough",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/voting/"+vote.ID+"/cast", srv.token(t, alice), gin.H{
		"decision": "APPROVE",
	})
	assert.Equal(t, http.StatusConflict, rec.Code, "one ballot per voter")

	rec = srv.do(t, http.MethodPost, "/api/voting/"+vote.ID+"/cast", srv.token(t, carol), gin.H{
		"decision": "APPROVE",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resolved := decode[VoteResponse](t, rec)
	assert.Equal(t, "APPROVED", resolved.Status)
	assert.Equal(t, 2, resolved.ApproveCount)
	require.Len(t, resolved.Participants, 2)
	require.Len(t, resolved.Comments, 1)

	demoted, err := srv.users.GetByID(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, demoted.Role)

	rec = srv.do(t, http.MethodGet, "/api/voting/history", srv.token(t, alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]VoteResponse](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, vote.ID, history[0].ID)

	rec = srv.do(t, http.MethodGet, "/api/voting/active", srv.token(t, alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	active := decode[[]VoteResponse](t, rec)
	assert.Empty(t, active)
}
