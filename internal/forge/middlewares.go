// Middleware уровня рабочего пространства.
//
// Основные возможности:
//   - Разрешение пространства по slug или UUID с загрузкой членства.
//   - Проверка прав администратора и владельца пространства.
//   - Запрет изменяющих операций в демо-режиме.
package forge

import (
	"github.com/forge-hq/forge/internal/forge/apierrors"
	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Запрет методов, если включен демо-режим
func DemoMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if cfg.Demo {
			return EErrorDefined(c, apierrors.ErrDemo)
		}
		return next(c)
	}
}

type WorkspaceContext struct {
	AuthContext
	Workspace       dao.Workspace
	WorkspaceMember dao.WorkspaceMember
}

func (s *Services) WorkspaceMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := c.(AuthContext).User
		slugOrId := c.Param("workspaceSlug")

		workspace, err := dao.GetWorkspaceBySlugOrId(s.db, slugOrId, user.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return EErrorDefined(c, apierrors.ErrWorkspaceNotFound)
			}
			return EError(c, err)
		}

		workspaceMember := *workspace.CurrentUserMembership
		workspaceMember.Workspace = workspace

		return next(WorkspaceContext{c.(AuthContext), *workspace, workspaceMember})
	}
}

// Доступ только для ADMIN и OWNER пространства
func (s *Services) WorkspaceAdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		member := c.(WorkspaceContext).WorkspaceMember
		if !member.HasAdminRights() {
			return EErrorDefined(c, apierrors.ErrWorkspaceAdminRequired)
		}
		return next(c)
	}
}

// Доступ только для OWNER пространства
func (s *Services) WorkspaceOwnerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		member := c.(WorkspaceContext).WorkspaceMember
		if member.Role != types.WorkspaceRoleOwner {
			return EErrorDefined(c, apierrors.ErrWorkspaceOwnerRequired)
		}
		return next(c)
	}
}
