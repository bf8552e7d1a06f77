package role

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NordCoder/session-gateway/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRoles struct {
	roles []user.Role
	err   error
}

func (s stubRoles) GetByID(_ context.Context, id string) (*user.Role, error) {
	for _, r := range s.roles {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, user.ErrRoleNotFound
}

func (s stubRoles) List(context.Context) ([]user.Role, error) { return s.roles, s.err }

func serve(t *testing.T, repo user.RoleRepo) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(repo, nil).Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/roles", nil))
	return w
}

func TestList(t *testing.T) {
	w := serve(t, stubRoles{roles: []user.Role{
		{ID: "r1", Name: "ADMINISTRATOR", Permissions: []user.Permission{user.PermissionCreate, user.PermissionDelete}},
		{ID: "r2", Name: "READER", Permissions: []user.Permission{user.PermissionRead}},
	}})
	require.Equal(t, http.StatusOK, w.Code)

	var got []user.Role
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "ADMINISTRATOR", got[0].Name)
	assert.Equal(t, []user.Permission{user.PermissionRead}, got[1].Permissions)
}

func TestList_StoreFailure(t *testing.T) {
	w := serve(t, stubRoles{err: errors.New("db down")})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Unexpected error"}`, w.Body.String())
}
