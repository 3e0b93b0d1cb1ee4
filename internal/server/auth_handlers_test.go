package server

import (
	"net/http"
	"testing"
	"time"

	"clubhub/internal/middleware"
	"clubhub/internal/models"
	"clubhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSignup(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
		expectedRole   string
		redirect       string
	}{
		{
			name:           "Student by default",
			body:           map[string]string{"email": " Ana@UCMerced.edu ", "password": "password123"},
			expectedStatus: http.StatusCreated,
			expectedRole:   "student",
			redirect:       "/student/dashboard",
		},
		{
			name:           "Club account",
			body:           map[string]string{"email": "chess@ucmerced.edu", "password": "password123", "role": "club"},
			expectedStatus: http.StatusCreated,
			expectedRole:   "club",
			redirect:       "/club/dashboard",
		},
		{
			name:           "Duplicate email",
			body:           map[string]string{"email": "ana@ucmerced.edu", "password": "password123"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Admin role refused",
			body:           map[string]string{"email": "boss@ucmerced.edu", "password": "password123", "role": "admin"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown role",
			body:           map[string]string{"email": "x@ucmerced.edu", "password": "password123", "role": "dean"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Weak password",
			body:           map[string]string{"email": "y@ucmerced.edu", "password": "short"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Bad email",
			body:           map[string]string{"email": "not-an-email", "password": "password123"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(http.MethodPost, "/api/auth/signup", "", tt.body)
			assert.Equal(t, tt.expectedStatus, status)
			if tt.expectedStatus != http.StatusCreated {
				assert.NotEmpty(t, body["error"])
				return
			}
			assert.NotEmpty(t, body["token"])
			assert.Equal(t, tt.redirect, body["redirect"])
			user := body["user"].(map[string]any)
			assert.Equal(t, tt.expectedRole, user["role"])
			assert.NotContains(t, user, "password")
		})
	}

	var ana models.User
	require.NoError(t, env.db.Where("email = ?", "ana@ucmerced.edu").First(&ana).Error)
	assert.NotEqual(t, "password123", ana.Password)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, "")
	status, _ := env.do(http.MethodPost, "/api/auth/signup", "",
		map[string]string{"email": "admin@ucmerced.edu", "password": "password123"})
	require.Equal(t, http.StatusCreated, status)
	require.NoError(t, env.db.Model(&models.User{}).
		Where("email = ?", "admin@ucmerced.edu").Update("role", models.RoleAdmin).Error)

	status, body := env.do(http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "ADMIN@ucmerced.edu", "password": "password123"})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "/admin/dashboard", body["redirect"])

	status, body = env.do(http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "admin@ucmerced.edu", "password": "wrongpass1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", body["error"])

	status, body = env.do(http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "ghost@ucmerced.edu", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", body["error"], "unknown emails look like bad passwords")
}

func TestLogin_UnknownEmailStillComparesHash(t *testing.T) {
	env := newTestEnv(t, "")
	status, _ := env.do(http.MethodPost, "/api/auth/signup", "",
		map[string]string{"email": "known@ucmerced.edu", "password": "password123"})
	require.Equal(t, http.StatusCreated, status)

	var compared [][]byte
	comparePassword = func(hash, password []byte) error {
		compared = append(compared, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}
	t.Cleanup(func() { comparePassword = bcrypt.CompareHashAndPassword })

	status, _ = env.do(http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "ghost@ucmerced.edu", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = env.do(http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "known@ucmerced.edu", "password": "wrongpass1"})
	assert.Equal(t, http.StatusUnauthorized, status)

	require.Len(t, compared, 2, "both failures pay for a bcrypt compare")
	assert.Equal(t, dummyHash(), compared[0])
	cost, err := bcrypt.Cost(compared[0])
	require.NoError(t, err)
	known, err := bcrypt.Cost(compared[1])
	require.NoError(t, err)
	assert.Equal(t, known, cost)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t, "")
	user := testutil.CreateUser(t, env.db, "s@ucmerced.edu", models.RoleStudent)
	token := env.token(user)

	status, _ := env.do(http.MethodGet, "/api/student/clubs", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "You have been logged out.", noticeMessage(body))

	status, body = env.do(http.MethodGet, "/api/student/clubs", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token has been revoked", body["error"])
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, "")
	user := testutil.CreateUser(t, env.db, "s@ucmerced.edu", models.RoleStudent)
	gone := testutil.CreateUser(t, env.db, "gone@ucmerced.edu", models.RoleStudent)
	goneToken := env.token(gone)
	require.NoError(t, env.db.Delete(&models.User{}, gone.ID).Error)

	expired, err := middleware.GenerateToken(testSecret, user.ID, -time.Hour)
	require.NoError(t, err)
	foreign, err := middleware.GenerateToken("some-other-secret-12345678901234567890", user.ID, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"valid", env.token(user), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"expired", expired, http.StatusUnauthorized},
		{"wrong secret", foreign, http.StatusUnauthorized},
		{"garbage", "not.a.token", http.StatusUnauthorized},
		{"deleted account", goneToken, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(http.MethodGet, "/api/student/my-clubs", tt.token, nil)
			assert.Equal(t, tt.status, status)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "/login", body["redirect"])
			}
		})
	}
}

func TestRoleIsReadFreshEachRequest(t *testing.T) {
	env := newTestEnv(t, "")
	user := testutil.CreateUser(t, env.db, "s@ucmerced.edu", models.RoleStudent)
	token := env.token(user)

	status, body := env.do(http.MethodGet, "/api/admin/dashboard", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "/", body["redirect"])

	require.NoError(t, env.db.Model(user).Update("role", models.RoleAdmin).Error)

	status, _ = env.do(http.MethodGet, "/api/admin/dashboard", token, nil)
	assert.Equal(t, http.StatusOK, status, "the same token picks up the new role")
}
