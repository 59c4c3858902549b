// DAO для работы с правилами управления (иерархия менеджер-подчиненный).
//
// Основные возможности:
//   - Создание правил с проверкой инварианта формы (subordinate XOR team).
//   - Выборка подчиненных менеджера с раскрытием командных правил.
//   - Проверка "управляет ли пользователь A пользователем B".
package dao

import (
	"errors"
	"time"

	"github.com/forge-hq/forge/internal/forge/apierrors"
	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Правила управления
type ManagementRule struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	WorkspaceId uuid.UUID      `json:"workspace_id" gorm:"type:uuid;index"`
	ManagerId   uuid.UUID      `json:"manager_id" gorm:"type:uuid;index"`
	RuleType    types.RuleType `json:"rule_type" gorm:"type:varchar(20)"`

	// Ровно одно из двух полей заполнено, согласно RuleType
	SubordinateId *uuid.UUID `json:"subordinate_id" gorm:"type:uuid;index" extensions:"x-nullable"`
	TeamId        *uuid.UUID `json:"team_id" gorm:"type:uuid;index" extensions:"x-nullable"`

	CreatedAt time.Time `json:"created_at"`

	Manager     *User `json:"manager,omitempty" gorm:"foreignKey:ManagerId" extensions:"x-nullable"`
	Subordinate *User `json:"subordinate,omitempty" gorm:"foreignKey:SubordinateId" extensions:"x-nullable"`
	Team        *Team `json:"team,omitempty" gorm:"foreignKey:TeamId" extensions:"x-nullable"`
}

func (ManagementRule) TableName() string { return "management_rules" }

func (r *ManagementRule) ToDTO() *dto.ManagementRule {
	if r == nil {
		return nil
	}
	return &dto.ManagementRule{
		ID:            r.ID,
		WorkspaceID:   r.WorkspaceId,
		ManagerID:     r.ManagerId,
		RuleType:      r.RuleType,
		CreatedAt:     r.CreatedAt,
		SubordinateID: r.SubordinateId,
		TeamID:        r.TeamId,
		Subordinate:   r.Subordinate.ToLightDTO(),
		Team:          r.Team.ToLightDTO(),
	}
}

// Validate проверяет инвариант формы правила: INDIVIDUAL требует subordinate_id
// и пустой team_id, TEAM - наоборот. Менеджер не может управлять сам собой.
func (r *ManagementRule) Validate() error {
	switch r.RuleType {
	case types.RuleIndividual:
		if r.SubordinateId == nil {
			return apierrors.ErrRuleSubordinateNeeded
		}
		if r.TeamId != nil {
			return apierrors.ErrRuleAmbiguousTarget
		}
		if *r.SubordinateId == r.ManagerId {
			return apierrors.ErrRuleSelfManagement
		}
	case types.RuleTeam:
		if r.TeamId == nil {
			return apierrors.ErrRuleTeamNeeded
		}
		if r.SubordinateId != nil {
			return apierrors.ErrRuleAmbiguousTarget
		}
	default:
		return apierrors.ErrRuleTypeRequired
	}
	return nil
}

// CreateManagementRule создает правило после проверки инварианта формы
// и уникальности. Дубликат возвращает ErrRuleConflict.
func CreateManagementRule(db *gorm.DB, rule *ManagementRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	query := db.Model(&ManagementRule{}).
		Where("workspace_id = ?", rule.WorkspaceId).
		Where("manager_id = ?", rule.ManagerId).
		Where("rule_type = ?", rule.RuleType)
	if rule.RuleType == types.RuleIndividual {
		query = query.Where("subordinate_id = ?", *rule.SubordinateId)
	} else {
		query = query.Where("team_id = ?", *rule.TeamId)
	}

	var exist bool
	if err := query.Select("count(*) > 0").Find(&exist).Error; err != nil {
		return err
	}
	if exist {
		return apierrors.ErrRuleConflict
	}

	if rule.ID.IsNil() {
		rule.ID = GenUUID()
	}
	return db.Create(rule).Error
}

// GetManagerRules возвращает правила менеджера в пространстве с деталями целей.
func GetManagerRules(db *gorm.DB, workspaceId, managerId uuid.UUID) ([]ManagementRule, error) {
	var rules []ManagementRule
	err := db.
		Joins("Subordinate").
		Joins("Team").
		Where("management_rules.workspace_id = ?", workspaceId).
		Where("management_rules.manager_id = ?", managerId).
		Order("management_rules.created_at").
		Find(&rules).Error
	return rules, err
}

// GetSubordinates возвращает подчиненных менеджера. Правила INDIVIDUAL дают
// прямых подчиненных; при includeTeamMembers раскрываются командные правила.
// Менеджер исключается из выборки, дубликаты по пользователю схлопываются.
func GetSubordinates(db *gorm.DB, workspaceId, managerId uuid.UUID, includeTeamMembers bool) (*dto.SubordinatesList, error) {
	individualRules, err := GetManagerRulesByType(db, workspaceId, managerId, types.RuleIndividual)
	if err != nil {
		return nil, err
	}

	result := dto.SubordinatesList{Subordinates: []dto.Subordinate{}}
	seen := map[uuid.UUID]bool{}

	for _, rule := range individualRules {
		if rule.Subordinate == nil {
			continue
		}
		result.DirectSubordinates++
		if seen[rule.Subordinate.ID] {
			continue
		}
		seen[rule.Subordinate.ID] = true
		result.Subordinates = append(result.Subordinates, dto.Subordinate{
			UserID:     rule.Subordinate.ID,
			Name:       rule.Subordinate.Name,
			Email:      rule.Subordinate.Email,
			RuleID:     rule.ID,
			RuleType:   types.RuleIndividual,
			AssignedAt: rule.CreatedAt,
		})
	}

	if includeTeamMembers {
		teamRules, err := GetManagerRulesByType(db, workspaceId, managerId, types.RuleTeam)
		if err != nil {
			return nil, err
		}

		for _, rule := range teamRules {
			if rule.Team == nil {
				continue
			}

			var members []TeamMember
			if err := db.
				Joins("Member").
				Where("team_members.team_id = ?", rule.Team.ID).
				Where("team_members.member_id <> ?", managerId).
				Find(&members).Error; err != nil {
				return nil, err
			}

			for _, member := range members {
				if member.Member == nil {
					continue
				}
				result.TeamMembers++
				if seen[member.Member.ID] {
					continue
				}
				seen[member.Member.ID] = true
				teamId := rule.Team.ID
				result.Subordinates = append(result.Subordinates, dto.Subordinate{
					UserID:     member.Member.ID,
					Name:       member.Member.Name,
					Email:      member.Member.Email,
					RuleID:     rule.ID,
					RuleType:   types.RuleTeam,
					TeamID:     &teamId,
					TeamName:   rule.Team.Name,
					AssignedAt: rule.CreatedAt,
				})
			}
		}
	}

	result.Total = len(result.Subordinates)
	return &result, nil
}

func GetManagerRulesByType(db *gorm.DB, workspaceId, managerId uuid.UUID, ruleType types.RuleType) ([]ManagementRule, error) {
	var rules []ManagementRule
	err := db.
		Joins("Subordinate").
		Joins("Team").
		Where("management_rules.workspace_id = ?", workspaceId).
		Where("management_rules.manager_id = ?", managerId).
		Where("management_rules.rule_type = ?", ruleType).
		Find(&rules).Error
	return rules, err
}

// GetManagedTeams возвращает команды под управлением менеджера.
func GetManagedTeams(db *gorm.DB, workspaceId, managerId uuid.UUID) ([]dto.ManagedTeam, error) {
	rules, err := GetManagerRulesByType(db, workspaceId, managerId, types.RuleTeam)
	if err != nil {
		return nil, err
	}

	teams := []dto.ManagedTeam{}
	for _, rule := range rules {
		if rule.Team == nil {
			continue
		}
		var count int64
		if err := db.Model(&TeamMember{}).Where("team_id = ?", rule.Team.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		teams = append(teams, dto.ManagedTeam{
			RuleID:      rule.ID,
			TeamID:      rule.Team.ID,
			TeamName:    rule.Team.Name,
			Description: rule.Team.Description,
			Status:      rule.Team.Status,
			MemberCount: int(count),
			AssignedAt:  rule.CreatedAt,
		})
	}
	return teams, nil
}

// IsManagedBy проверяет, управляет ли manager пользователем user: напрямую
// через INDIVIDUAL правило либо через TEAM правило команды пользователя.
func IsManagedBy(db *gorm.DB, workspaceId, managerId, userId uuid.UUID) (bool, error) {
	if managerId == userId {
		return false, nil
	}

	var exist bool
	if err := db.Model(&ManagementRule{}).
		Select("count(*) > 0").
		Where("workspace_id = ?", workspaceId).
		Where("manager_id = ?", managerId).
		Where("rule_type = ?", types.RuleIndividual).
		Where("subordinate_id = ?", userId).
		Find(&exist).Error; err != nil {
		return false, err
	}
	if exist {
		return true, nil
	}

	err := db.Model(&ManagementRule{}).
		Select("count(*) > 0").
		Joins("JOIN team_members ON team_members.team_id = management_rules.team_id").
		Where("management_rules.workspace_id = ?", workspaceId).
		Where("management_rules.manager_id = ?", managerId).
		Where("management_rules.rule_type = ?", types.RuleTeam).
		Where("team_members.member_id = ?", userId).
		Find(&exist).Error
	return exist, err
}

// HasManagedSubordinates сообщает, есть ли у пользователя хоть одно правило управления.
func HasManagedSubordinates(db *gorm.DB, workspaceId, managerId uuid.UUID) (bool, error) {
	var exist bool
	err := db.Model(&ManagementRule{}).
		Select("count(*) > 0").
		Where("workspace_id = ?", workspaceId).
		Where("manager_id = ?", managerId).
		Find(&exist).Error
	return exist, err
}

// GetAssignmentCandidates возвращает пользователей и команды пространства,
// доступные для назначения менеджеру. Сам менеджер в выборку не попадает.
func GetAssignmentCandidates(db *gorm.DB, workspaceId, managerId uuid.UUID) (*dto.AssignmentCandidates, error) {
	var members []WorkspaceMember
	if err := db.
		Joins("Member").
		Where("workspace_members.workspace_id = ?", workspaceId).
		Where("workspace_members.member_id <> ?", managerId).
		Find(&members).Error; err != nil {
		return nil, err
	}

	candidates := dto.AssignmentCandidates{Users: []dto.UserLight{}, Teams: []dto.TeamLight{}}
	for _, member := range members {
		if member.Member == nil {
			continue
		}
		candidates.Users = append(candidates.Users, *member.Member.ToLightDTO())
	}

	teams, err := GetWorkspaceTeams(db, workspaceId)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		candidates.Teams = append(candidates.Teams, *teams[i].ToLightDTO())
	}

	return &candidates, nil
}

// DeleteManagementRule удаляет правило менеджера в пространстве.
func DeleteManagementRule(db *gorm.DB, workspaceId uuid.UUID, ruleId string) error {
	res := db.
		Where("workspace_id = ?", workspaceId).
		Where("id = ?", ruleId).
		Delete(&ManagementRule{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsRuleNotFound распознает отсутствие правила.
func IsRuleNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
