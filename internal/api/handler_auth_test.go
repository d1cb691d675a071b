package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevator-maintenance-backend/internal/model"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("Alice", "alice@example.com", "secret1", model.RoleTech)
	r := env.router(nil)

	t.Run("valid credentials return a token", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{
			"email":    "alice@example.com",
			"password": "secret1",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decodeBody(t, w)
		token, ok := body["token"].(string)
		require.True(t, ok)
		claims, err := env.auth.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, model.RoleTech, claims.Role)

		userBody := body["user"].(map[string]any)
		assert.Equal(t, "Alice", userBody["name"])
		assert.NotContains(t, userBody, "password")
	})

	t.Run("email match is case-insensitive", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{
			"email":    "ALICE@Example.com",
			"password": "secret1",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong password and unknown email answer identically", func(t *testing.T) {
		wrongPassword := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{
			"email":    "alice@example.com",
			"password": "wrong",
		})
		unknownEmail := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{
			"email":    "nobody@example.com",
			"password": "secret1",
		})
		assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
		assert.Equal(t, http.StatusBadRequest, unknownEmail.Code)
		assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	})

	t.Run("missing fields are a 400", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{"email": "alice@example.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("Admin", "admin@example.com", "secret1", model.RoleAdmin)
	r := env.router(asCaller(admin))

	t.Run("creates a technician account", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/register", gin.H{
			"name":     "Bob",
			"email":    "Bob@Example.com",
			"password": "secret1",
			"role":     "tech",
			"phone":    "+49 170 1234567",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		body := decodeBody(t, w)
		assert.Equal(t, "Bob", body["name"])
		assert.Equal(t, "bob@example.com", body["email"], "stored lower-cased")

		// The new account can log in right away.
		login := doJSON(env.router(nil), http.MethodPost, "/api/auth/login", gin.H{
			"email":    "bob@example.com",
			"password": "secret1",
		})
		assert.Equal(t, http.StatusOK, login.Code)
	})

	t.Run("duplicate email is a 409", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/register", gin.H{
			"name":     "Impostor",
			"email":    "admin@example.com",
			"password": "secret1",
			"role":     "tech",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid input is a 400", func(t *testing.T) {
		for name, body := range map[string]gin.H{
			"short name":     {"name": "B", "email": "b@example.com", "password": "secret1", "role": "tech"},
			"bad role":       {"name": "Bob", "email": "b@example.com", "password": "secret1", "role": "manager"},
			"short password": {"name": "Bob", "email": "b@example.com", "password": "12345", "role": "tech"},
			"bad email":      {"name": "Bob", "email": "not-an-email", "password": "secret1", "role": "tech"},
		} {
			w := doJSON(r, http.MethodPost, "/api/auth/register", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, name)
		}
	})
}

func TestUserEndpoints(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser("Admin", "admin@example.com", "secret1", model.RoleAdmin)
	tech := env.createUser("Alice", "alice@example.com", "secret1", model.RoleTech)
	r := env.router(asCaller(admin))

	t.Run("list is ordered by name and hides passwords", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/users", nil)
		require.Equal(t, http.StatusOK, w.Code)

		users := decodeList(t, w)
		require.Len(t, users, 2)
		assert.Equal(t, "Admin", users[0]["name"])
		assert.Equal(t, "Alice", users[1]["name"])
		assert.NotContains(t, users[0], "password")
	})

	t.Run("get by id", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/users/%d", tech.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Alice", decodeBody(t, w)["name"])

		w = doJSON(r, http.MethodGet, "/api/users/9999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("admins cannot delete themselves", func(t *testing.T) {
		w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete another account", func(t *testing.T) {
		w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/users/%d", tech.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/users/%d", tech.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
