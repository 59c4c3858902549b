// Аутентификация и авторизация пользователей Forge.
//
// Основные возможности:
//   - Вход по email и паролю с выдачей JWT (access + refresh).
//   - Регистрация с созданием персонального пространства одной транзакцией.
//   - Автоматическое продление access токена по refresh токену.
//   - Отзыв токенов при выходе через менеджер сессий.
package forge

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/forge-hq/forge/internal/forge/apierrors"
	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/forge-hq/forge/internal/forge/sessions"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Authentication struct {
	db              *gorm.DB
	secret          []byte
	sessionsManager *sessions.SessionsManager
}

type AuthContext struct {
	echo.Context
	User         *dao.User
	AccessToken  *Token
	RefreshToken *Token
}

type AuthConfig struct {
	Secret         []byte
	DB             *gorm.DB
	SessionManager *sessions.SessionsManager
	Skipper        middleware.Skipper
}

func AuthMiddleware(config AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == "OPTIONS" {
				return c.NoContent(http.StatusOK)
			}

			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}

			accessToken, refreshToken := extractTokens(c)
			if accessToken == nil && refreshToken == nil {
				return EErrorDefined(c, apierrors.ErrTokenInvalid)
			}

			keyFunc := func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return config.Secret, nil
			}

			var accessError error
			if accessToken != nil {
				accessToken.JWT, accessError = jwt.Parse(accessToken.SignedString, keyFunc)
			}

			if refreshToken != nil {
				var refreshError error
				refreshToken.JWT, refreshError = jwt.Parse(refreshToken.SignedString, keyFunc)
				if refreshError != nil {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}
			}

			var user *dao.User
			var err error

			// Prolong if expired
			if errors.Is(accessError, jwt.ErrTokenExpired) || accessToken == nil {
				accessToken, user, err = config.tokenProlong(c, refreshToken)
				if accessToken == nil || user == nil {
					return err
				}
			} else if accessError != nil {
				if accessToken.JWT != nil && !accessToken.JWT.Valid {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}
				return EError(c, accessError)
			} else {
				revoked, err := config.SessionManager.IsTokenRevoked(accessToken.JWT.Signature)
				if err != nil {
					return EError(c, err)
				}
				if revoked {
					return EErrorDefined(c, apierrors.ErrTokenExpired)
				}

				claims, ok := accessToken.JWT.Claims.(jwt.MapClaims)
				if !ok || !accessToken.JWT.Valid {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}

				userId, ok := claims["user_id"].(string)
				if !ok {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}

				user, err = dao.GetUserByIdOrEmail(config.DB, userId)
				if err != nil {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}
			}

			if user == nil {
				return EError(c, errors.New("nil user"))
			}

			if !user.IsActive {
				return EErrorDefined(c, apierrors.ErrUserInactive)
			}

			return next(AuthContext{c, user, accessToken, refreshToken})
		}
	}
}

// Токены из заголовка Authorization либо из кук
func extractTokens(c echo.Context) (*Token, *Token) {
	var accessToken *Token
	var refreshToken *Token

	schema, tokenString, ok := strings.Cut(c.Request().Header.Get("Authorization"), " ")
	if ok && strings.TrimSpace(schema) == "Bearer" {
		accessToken = &Token{SignedString: strings.TrimSpace(tokenString), Type: "access"}
	}

	if accessToken == nil {
		if accessCookie, err := c.Cookie("access_token"); err == nil && accessCookie.Value != "" {
			accessToken = &Token{SignedString: accessCookie.Value, Type: "access"}
		}
	}

	if refreshCookie, err := c.Cookie("refresh_token"); err == nil && refreshCookie.Value != "" {
		refreshToken = &Token{SignedString: refreshCookie.Value, Type: "refresh"}
	}

	return accessToken, refreshToken
}

func (a *AuthConfig) tokenProlong(c echo.Context, token *Token) (*Token, *dao.User, error) {
	if token == nil || token.JWT == nil {
		return nil, nil, EErrorDefined(c, apierrors.ErrRefreshTokenRequired)
	}

	revoked, err := a.SessionManager.IsTokenRevoked(token.JWT.Signature)
	if err != nil {
		return nil, nil, EError(c, err)
	}
	if revoked {
		return nil, nil, EErrorDefined(c, apierrors.ErrTokenExpired)
	}

	// Revoke old refresh token
	if err := a.SessionManager.RevokeToken(token.JWT.Signature); err != nil {
		return nil, nil, EError(c, err)
	}

	claims, ok := token.JWT.Claims.(jwt.MapClaims)
	if !ok || !token.JWT.Valid {
		return nil, nil, EErrorDefined(c, apierrors.ErrTokenInvalid)
	}

	userId, ok := claims["user_id"].(string)
	if !ok {
		return nil, nil, EErrorDefined(c, apierrors.ErrTokenInvalid)
	}

	user, err := dao.GetUserByIdOrEmail(a.DB, userId)
	if err != nil {
		return nil, nil, EErrorDefined(c, apierrors.ErrTokenInvalid)
	}

	accessToken, refreshToken, err := createAccessToken(user.ID)
	if err != nil {
		return nil, nil, EError(c, err)
	}

	setAuthCookies(c, accessToken, refreshToken)

	return accessToken, user, nil
}

func AddAuthenticationServices(db *gorm.DB, g *echo.Echo, secret []byte, sessionManager *sessions.SessionsManager) *Authentication {
	ret := &Authentication{db, secret, sessionManager}

	g.POST("api/sign-in/", ret.emailLogin)
	g.POST("api/sign-up/", ret.signUp)
	g.POST("api/sign-out/", ret.signOut)

	return ret
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name" validate:"omitempty,fullName"`
	Position string `json:"position"`
}

// emailLogin godoc
// @id emailLogin
// @Summary Доступ: вход пользователя
// @Description Аутентифицирует пользователя с использованием email и пароля
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body LoginRequest true "Данные для входа пользователя"
// @Success 200 {object} map[string]interface{} "Токены доступа и информация о пользователе"
// @Failure 401 {object} apierrors.DefinedError "Неудачный вход в систему"
// @Router /api/sign-in [post]
func (a *Authentication) emailLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Email == "" || req.Password == "" {
		return EErrorDefined(c, apierrors.ErrLoginCredentialsRequired)
	}

	var user dao.User
	if err := a.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrFailedLogin)
		}
		return EError(c, err)
	}

	if !user.IsActive {
		return EErrorDefined(c, apierrors.ErrUserInactive)
	}

	if !user.CheckPassword(req.Password) {
		return EErrorDefined(c, apierrors.ErrFailedLogin)
	}

	if err := dao.UpdateUserLastLogin(a.db, &user); err != nil {
		return EError(c, err)
	}

	accessToken, refreshToken, err := createAccessToken(user.ID)
	if err != nil {
		return EError(c, err)
	}

	setAuthCookies(c, accessToken, refreshToken)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"access_token":  accessToken.SignedString,
		"refresh_token": refreshToken.SignedString,
		"user":          user.ToDTO(),
	})
}

// signUp godoc
// @id signUp
// @Summary Доступ: регистрация пользователя
// @Description Создает пользователя и его персональное рабочее пространство
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body SignUpRequest true "Данные для регистрации"
// @Success 200 {object} map[string]interface{} "Токены доступа и информация о пользователе"
// @Failure 403 {object} apierrors.DefinedError "Регистрация отключена"
// @Failure 409 {object} apierrors.DefinedError "Пользователь уже существует"
// @Router /api/sign-up [post]
func (a *Authentication) signUp(c echo.Context) error {
	if !cfg.SignUpEnable {
		return EErrorDefined(c, apierrors.ErrSignUpDisabled)
	}

	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Email == "" || req.Password == "" {
		return EErrorDefined(c, apierrors.ErrLoginCredentialsRequired)
	}

	if !ValidateEmail(req.Email) {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage("email"))
	}

	var exist bool
	if err := a.db.Model(&dao.User{}).
		Select("count(*) > 0").
		Where("email = ?", req.Email).
		Find(&exist).Error; err != nil {
		return EError(c, err)
	}
	if exist {
		return EErrorDefined(c, apierrors.ErrUserAlreadyExist)
	}

	name := req.Name
	if name == "" {
		name, _, _ = strings.Cut(req.Email, "@")
	}

	user := dao.User{
		ID:       dao.GenUUID(),
		Email:    req.Email,
		Name:     name,
		Position: req.Position,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password, cfg.BcryptCost); err != nil {
		return EError(c, err)
	}

	// Персональное пространство создается вместе с пользователем
	if err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		workspace := dao.Workspace{
			ID:   dao.GenUUID(),
			Name: name,
			Slug: personalSlug(user.ID),
		}
		return dao.CreateWorkspace(tx, &workspace, user.ID)
	}); err != nil {
		return EError(c, err)
	}

	accessToken, refreshToken, err := createAccessToken(user.ID)
	if err != nil {
		return EError(c, err)
	}

	setAuthCookies(c, accessToken, refreshToken)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"access_token":  accessToken.SignedString,
		"refresh_token": refreshToken.SignedString,
		"user":          user.ToDTO(),
	})
}

// Slug персонального пространства из первого блока UUID пользователя
func personalSlug(userId uuid.UUID) string {
	id := userId.String()
	return "personal-" + id[:strings.Index(id, "-")] + "-" + fmt.Sprint(time.Now().Unix()%100000)
}

// signOut godoc
// @id signOut
// @Summary Доступ: выход пользователя
// @Description Отзывает токены текущей сессии и очищает куки
// @Tags Auth
// @Produce json
// @Success 200 "Выход выполнен"
// @Router /api/sign-out [post]
func (a *Authentication) signOut(c echo.Context) error {
	accessToken, refreshToken := extractTokens(c)

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}

	for _, token := range []*Token{accessToken, refreshToken} {
		if token == nil {
			continue
		}
		parsed, err := jwt.Parse(token.SignedString, keyFunc)
		if err != nil || parsed == nil {
			continue
		}
		if err := a.sessionsManager.RevokeToken(parsed.Signature); err != nil {
			return EError(c, err)
		}
	}

	clearAuthCookies(c)
	return c.NoContent(http.StatusOK)
}
