package forge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/forge-hq/forge/internal/forge/config"
	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func signUpRequest(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSignUpDisabled(t *testing.T) {
	s := testServices(t)
	prev := cfg
	cfg = &config.Config{SecretKey: "test-secret", BcryptCost: bcrypt.MinCost}
	defer func() { cfg = prev }()

	a := &Authentication{db: s.db, secret: []byte(cfg.SecretKey)}

	c, rec := signUpRequest(`{"email":"novo@forji.com","password":"senha123"}`)
	require.NoError(t, a.signUp(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var count int64
	require.NoError(t, s.db.Model(&dao.User{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestSignUpCreatesUserAndWorkspace(t *testing.T) {
	s := testServices(t)
	prev := cfg
	cfg = &config.Config{SecretKey: "test-secret", BcryptCost: bcrypt.MinCost, SignUpEnable: true}
	defer func() { cfg = prev }()

	a := &Authentication{db: s.db, secret: []byte(cfg.SecretKey)}

	c, rec := signUpRequest(`{"email":"novo@forji.com","password":"senha123","name":"Novo Usuario"}`)
	require.NoError(t, a.signUp(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var user dao.User
	require.NoError(t, s.db.Where("email = ?", "novo@forji.com").First(&user).Error)
	assert.True(t, user.CheckPassword("senha123"))

	// персональное пространство с членством OWNER
	var member dao.WorkspaceMember
	require.NoError(t, s.db.Where("member_id = ?", user.ID).First(&member).Error)
	assert.Equal(t, types.WorkspaceRoleOwner, member.Role)

	// повторная регистрация с тем же email отклоняется
	c, rec = signUpRequest(`{"email":"novo@forji.com","password":"senha123"}`)
	require.NoError(t, a.signUp(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
