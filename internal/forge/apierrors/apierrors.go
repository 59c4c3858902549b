// Определения ошибок API Forge. Каждая ошибка имеет числовой код, HTTP-статус,
// английское сообщение и локализованное сообщение для фронтенда (pt-BR).
//
// Диапазоны кодов:
//   - 1*** - авторизация и сессии
//   - 2*** - рабочие пространства и участники
//   - 3*** - команды
//   - 4*** - правила управления и онбординг
//   - 5*** - PDI (циклы, цели, компетенции, активности)
//   - 6*** - геймификация
//   - 7*** - pull requests
//   - 9*** - общие ошибки
package apierrors

import (
	"fmt"
	"net/http"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	PtErr      string `json:"pt_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

// WithFormattedMessage подставляет аргументы в шаблоны сообщений ошибки.
func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	e.Err = fmt.Sprintf(e.Err, args...)
	if e.PtErr != "" {
		e.PtErr = fmt.Sprintf(e.PtErr, args...)
	}
	return e
}

var (
	// 1*** - auth errors
	ErrFailedLogin              = DefinedError{Code: 1001, StatusCode: http.StatusUnauthorized, Err: "invalid credentials", PtErr: "Email ou senha incorretos"}
	ErrLoginCredentialsRequired = DefinedError{Code: 1002, StatusCode: http.StatusUnauthorized, Err: "both email and password are required", PtErr: "Email e senha são obrigatórios"}
	ErrUserAlreadyExist         = DefinedError{Code: 1003, StatusCode: http.StatusConflict, Err: "user already exists", PtErr: "Usuário com este email já está cadastrado"}
	ErrUserInactive             = DefinedError{Code: 1004, StatusCode: http.StatusUnauthorized, Err: "user is deactivated", PtErr: "Usuário desativado"}
	ErrWrongPassword            = DefinedError{Code: 1005, StatusCode: http.StatusBadRequest, Err: "wrong current password", PtErr: "Senha atual incorreta"}
	ErrSignUpDisabled           = DefinedError{Code: 1006, StatusCode: http.StatusForbidden, Err: "sign up is disabled", PtErr: "Cadastro de novos usuários desativado"}
	ErrTokenExpired             = DefinedError{Code: 1101, StatusCode: http.StatusUnauthorized, Err: "token expired", PtErr: "Sessão expirada"}
	ErrTokenInvalid             = DefinedError{Code: 1102, StatusCode: http.StatusUnauthorized, Err: "invalid token", PtErr: "Token inválido"}
	ErrRefreshTokenRequired     = DefinedError{Code: 1103, StatusCode: http.StatusUnauthorized, Err: "refresh token is required", PtErr: "Token de atualização obrigatório"}

	// 2*** - workspace errors
	ErrWorkspaceNotFound         = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "workspace not found", PtErr: "Workspace não encontrado"}
	ErrWorkspaceSlugConflict     = DefinedError{Code: 2002, StatusCode: http.StatusConflict, Err: "workspace with that slug already exists", PtErr: "Workspace com este identificador já existe"}
	ErrWorkspaceAdminRequired    = DefinedError{Code: 2003, StatusCode: http.StatusForbidden, Err: "workspace admin role is required", PtErr: "Ação permitida apenas para administradores do workspace"}
	ErrWorkspaceOwnerRequired    = DefinedError{Code: 2004, StatusCode: http.StatusForbidden, Err: "workspace owner role is required", PtErr: "Ação permitida apenas para o dono do workspace"}
	ErrWorkspaceMemberNotFound   = DefinedError{Code: 2005, StatusCode: http.StatusNotFound, Err: "workspace member not found", PtErr: "Usuário não é membro deste workspace"}
	ErrMemberAlreadyExist        = DefinedError{Code: 2006, StatusCode: http.StatusConflict, Err: "user already is a workspace member", PtErr: "Usuário já é membro deste workspace"}
	ErrCannotRemoveLastOwner     = DefinedError{Code: 2007, StatusCode: http.StatusBadRequest, Err: "cannot remove the last workspace owner", PtErr: "Não é possível remover o último dono do workspace"}
	ErrCannotUpdateHigherRole    = DefinedError{Code: 2008, StatusCode: http.StatusForbidden, Err: "cannot update user with a higher role than your own", PtErr: "Sem permissão para alterar usuário com papel superior ao seu"}
	ErrForbiddenSlug             = DefinedError{Code: 2009, StatusCode: http.StatusBadRequest, Err: "forbidden slug", PtErr: "Identificador contém caracteres inválidos"}
	ErrUserNotFound              = DefinedError{Code: 2010, StatusCode: http.StatusNotFound, Err: "user not found", PtErr: "Usuário não encontrado"}
	ErrWorkspaceRoleRequired     = DefinedError{Code: 2011, StatusCode: http.StatusBadRequest, Err: "valid workspace role must be specified", PtErr: "Papel de membro inválido"}
	ErrCannotRemoveSelf          = DefinedError{Code: 2012, StatusCode: http.StatusBadRequest, Err: "you cannot remove yourself from the workspace", PtErr: "Não é possível remover a si mesmo do workspace"}

	// 3*** - team errors
	ErrTeamNotFound         = DefinedError{Code: 3001, StatusCode: http.StatusNotFound, Err: "team not found", PtErr: "Time não encontrado"}
	ErrTeamNameConflict     = DefinedError{Code: 3002, StatusCode: http.StatusConflict, Err: "team with that name already exists in workspace", PtErr: "Time com este nome já existe no workspace"}
	ErrTeamMemberExist      = DefinedError{Code: 3003, StatusCode: http.StatusConflict, Err: "user already is a team member", PtErr: "Usuário já é membro deste time"}
	ErrTeamMemberNotFound   = DefinedError{Code: 3004, StatusCode: http.StatusNotFound, Err: "team member not found", PtErr: "Membro do time não encontrado"}
	ErrTeamRoleRequired     = DefinedError{Code: 3005, StatusCode: http.StatusBadRequest, Err: "valid team role must be specified", PtErr: "Papel de time inválido"}
	ErrTeamNotInWorkspace   = DefinedError{Code: 3006, StatusCode: http.StatusBadRequest, Err: "team does not belong to this workspace", PtErr: "Time não pertence a este workspace"}
	ErrUserNotInWorkspace   = DefinedError{Code: 3007, StatusCode: http.StatusBadRequest, Err: "user is not a member of the workspace", PtErr: "Usuário não é membro do workspace"}

	// 4*** - management errors
	ErrRuleNotFound           = DefinedError{Code: 4001, StatusCode: http.StatusNotFound, Err: "management rule not found", PtErr: "Regra de gestão não encontrada"}
	ErrRuleConflict           = DefinedError{Code: 4002, StatusCode: http.StatusConflict, Err: "management rule already exists", PtErr: "Regra de gestão já existe"}
	ErrRuleSubordinateNeeded  = DefinedError{Code: 4003, StatusCode: http.StatusBadRequest, Err: "subordinate_id is required for INDIVIDUAL rule type", PtErr: "subordinate_id é obrigatório para regra INDIVIDUAL"}
	ErrRuleTeamNeeded         = DefinedError{Code: 4004, StatusCode: http.StatusBadRequest, Err: "team_id is required for TEAM rule type", PtErr: "team_id é obrigatório para regra TEAM"}
	ErrRuleAmbiguousTarget    = DefinedError{Code: 4005, StatusCode: http.StatusBadRequest, Err: "rule must reference either a subordinate or a team, not both", PtErr: "Regra deve referenciar um subordinado ou um time, não ambos"}
	ErrRuleSelfManagement     = DefinedError{Code: 4006, StatusCode: http.StatusBadRequest, Err: "user cannot be assigned as their own manager", PtErr: "Usuário não pode ser gestor de si mesmo"}
	ErrRuleTypeRequired       = DefinedError{Code: 4007, StatusCode: http.StatusBadRequest, Err: "valid rule type must be specified", PtErr: "Tipo de regra inválido"}
	ErrNotManagedByYou        = DefinedError{Code: 4008, StatusCode: http.StatusForbidden, Err: "user is not managed by you", PtErr: "Usuário não está sob sua gestão"}
	ErrManagerRequired        = DefinedError{Code: 4009, StatusCode: http.StatusForbidden, Err: "manager role is required", PtErr: "Ação permitida apenas para gestores"}

	// 5*** - PDI errors
	ErrCycleNotFound        = DefinedError{Code: 5001, StatusCode: http.StatusNotFound, Err: "cycle not found", PtErr: "Ciclo não encontrado"}
	ErrNoActiveCycle        = DefinedError{Code: 5002, StatusCode: http.StatusNotFound, Err: "no active cycle", PtErr: "Nenhum ciclo ativo"}
	ErrGoalNotFound         = DefinedError{Code: 5003, StatusCode: http.StatusNotFound, Err: "goal not found", PtErr: "Meta não encontrada"}
	ErrGoalTypeRequired     = DefinedError{Code: 5004, StatusCode: http.StatusBadRequest, Err: "valid goal type must be specified", PtErr: "Tipo de meta inválido"}
	ErrCompetencyNotFound   = DefinedError{Code: 5005, StatusCode: http.StatusNotFound, Err: "competency not found", PtErr: "Competência não encontrada"}
	ErrBadCompetencyLevel   = DefinedError{Code: 5006, StatusCode: http.StatusBadRequest, Err: "competency levels must be within 1..5", PtErr: "Níveis de competência devem estar entre 1 e 5"}
	ErrActivityNotFound     = DefinedError{Code: 5007, StatusCode: http.StatusNotFound, Err: "activity not found", PtErr: "Atividade não encontrada"}
	ErrActivityTypeRequired = DefinedError{Code: 5008, StatusCode: http.StatusBadRequest, Err: "valid activity type must be specified", PtErr: "Tipo de atividade inválido"}
	ErrActivityDetailNeeded = DefinedError{Code: 5009, StatusCode: http.StatusBadRequest, Err: "detail payload for activity type %s is required", PtErr: "Detalhes da atividade do tipo %s são obrigatórios"}
	ErrBadCategory          = DefinedError{Code: 5010, StatusCode: http.StatusBadRequest, Err: "valid competency category must be specified", PtErr: "Categoria de competência inválida"}

	// 6*** - gamification errors
	ErrProfileNotFound = DefinedError{Code: 6001, StatusCode: http.StatusNotFound, Err: "gamification profile not found", PtErr: "Perfil de gamificação não encontrado"}
	ErrBadXPAmount     = DefinedError{Code: 6002, StatusCode: http.StatusBadRequest, Err: "xp amount must be positive", PtErr: "Quantidade de XP deve ser positiva"}

	// 7*** - pull request errors
	ErrPRNotFound    = DefinedError{Code: 7001, StatusCode: http.StatusNotFound, Err: "pull request not found", PtErr: "Pull request não encontrado"}
	ErrPRKeyRequired = DefinedError{Code: 7002, StatusCode: http.StatusBadRequest, Err: "repo and number are required", PtErr: "Repositório e número são obrigatórios"}

	// 9*** - generic
	ErrGeneric       = DefinedError{Code: 9001, StatusCode: http.StatusBadRequest, Err: "something went wrong", PtErr: "Algo deu errado"}
	ErrEntityToLarge = DefinedError{Code: 9002, StatusCode: http.StatusRequestEntityTooLarge, Err: "request entity too large", PtErr: "Requisição muito grande"}
	ErrValidation    = DefinedError{Code: 9003, StatusCode: http.StatusBadRequest, Err: "validation failed: %s", PtErr: "Dados inválidos: %s"}
	ErrDemo          = DefinedError{Code: 9004, StatusCode: http.StatusForbidden, Err: "action is not allowed in demo mode", PtErr: "Ação não permitida no modo de demonstração"}
)
