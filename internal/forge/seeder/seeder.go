// Загрузка демонстрационных данных Forge.
//
// Все записи создаются идемпотентно: поиск по естественному ключу
// (email, slug, имя команды в пространстве, пары участников) либо по
// фиксированному UUID. Повторный запуск не меняет количество строк.
// Порядок шагов важен только из-за ссылок на ID предыдущих шагов.
package seeder

import (
	"fmt"
	"time"

	"github.com/forge-hq/forge/internal/forge/apierrors"
	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/forge-hq/forge/internal/forge/types"

	"github.com/gofrs/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const demoPassword = "senha123"

// Итог загрузки для вывода в консоль
type Summary struct {
	Users        int
	Workspaces   int
	Teams        int
	Rules        int
	Profiles     int
	Badges       int
	Cycles       int
	Goals        int
	Competencies int
	Activities   int
	PullRequests int

	Credentials []string
}

func mustUUID(s string) uuid.UUID { return uuid.FromStringOrNil(s) }

var (
	cycleId         = mustUUID("550e8400-e29b-41d4-a716-446655440003")
	goalCacheId     = mustUUID("550e8400-e29b-41d4-a716-446655440004")
	goalAuthId      = mustUUID("550e8400-e29b-41d4-a716-446655440005")
	goalTestsId     = mustUUID("550e8400-e29b-41d4-a716-446655440006")
	goalQueriesId   = mustUUID("550e8400-e29b-41d4-a716-446655440007")
	compArchId      = mustUUID("550e8400-e29b-41d4-a716-446655440008")
	compPerfId      = mustUUID("550e8400-e29b-41d4-a716-446655440009")
	compMentoringId = mustUUID("550e8400-e29b-41d4-a716-44665544000a")
	actOneOnOneId   = mustUUID("550e8400-e29b-41d4-a716-44665544000b")
	actMentoringId  = mustUUID("550e8400-e29b-41d4-a716-44665544000c")
	actCertId       = mustUUID("550e8400-e29b-41d4-a716-44665544000d")
)

// Seed загружает демонстрационный набор данных одной транзакцией.
// Любая ошибка откатывает весь запуск.
func Seed(db *gorm.DB) (*Summary, error) {
	summary := &Summary{}
	err := db.Transaction(func(tx *gorm.DB) error {
		users, err := seedUsers(tx, summary)
		if err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		diego, ana, carlos, maria, joao := users[0], users[1], users[2], users[3], users[4]

		acmeTech, startupLab, err := seedWorkspaces(tx, summary)
		if err != nil {
			return fmt.Errorf("seed workspaces: %w", err)
		}

		memberships := []struct {
			workspace *dao.Workspace
			user      *dao.User
			role      types.WorkspaceRole
		}{
			{acmeTech, diego, types.WorkspaceRoleOwner},
			{acmeTech, ana, types.WorkspaceRoleAdmin},
			{acmeTech, carlos, types.WorkspaceRoleMember},
			{acmeTech, maria, types.WorkspaceRoleAdmin},
			{acmeTech, joao, types.WorkspaceRoleMember},
			{startupLab, diego, types.WorkspaceRoleOwner},
			{startupLab, carlos, types.WorkspaceRoleMember},
		}
		for _, m := range memberships {
			if err := ensureWorkspaceMember(tx, m.workspace.ID, m.user.ID, m.role); err != nil {
				return fmt.Errorf("seed workspace members: %w", err)
			}
		}

		teams, err := seedTeams(tx, summary, acmeTech, users)
		if err != nil {
			return fmt.Errorf("seed teams: %w", err)
		}

		if err := seedManagementRules(tx, summary, acmeTech, teams, diego, ana, carlos, maria); err != nil {
			return fmt.Errorf("seed management rules: %w", err)
		}

		if err := seedGamification(tx, summary, acmeTech, users); err != nil {
			return fmt.Errorf("seed gamification: %w", err)
		}

		if err := seedPDI(tx, summary, acmeTech, diego, carlos); err != nil {
			return fmt.Errorf("seed pdi: %w", err)
		}

		if err := seedPullRequests(tx, summary, users); err != nil {
			return fmt.Errorf("seed pull requests: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.Credentials = []string{
		"diego@forji.com | " + demoPassword + " (Owner)",
		"ana@forji.com | " + demoPassword + " (Admin)",
		"carlos@forji.com | " + demoPassword,
		"maria@forji.com | " + demoPassword + " (Admin)",
		"joao@forji.com | " + demoPassword,
	}
	return summary, nil
}

func seedUsers(tx *gorm.DB, summary *Summary) ([]*dao.User, error) {
	fixtures := []dao.User{
		{Email: "diego@forji.com", Name: "Diego Santos", Position: "Engineering Manager", Bio: "Líder técnico focado em cultura de desenvolvimento"},
		{Email: "ana@forji.com", Name: "Ana Silva", Position: "Senior Frontend Developer", Bio: "Especialista em React e Design Systems"},
		{Email: "carlos@forji.com", Name: "Carlos Oliveira", Position: "Backend Developer", Bio: "Node.js e arquitetura de microsserviços"},
		{Email: "maria@forji.com", Name: "Maria Costa", Position: "Product Designer", Bio: "UX/UI e Design Thinking"},
		{Email: "joao@forji.com", Name: "João Souza", Position: "DevOps Engineer", Bio: "Cloud infrastructure e CI/CD"},
	}
	githubLogins := []string{"diegosantos", "anasilva", "carlosoliveira", "mariacosta", "joaosouza"}

	users := make([]*dao.User, 0, len(fixtures))
	for i, fixture := range fixtures {
		var user dao.User
		err := tx.Where("email = ?", fixture.Email).First(&user).Error
		if err == nil {
			users = append(users, &user)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		user = fixture
		user.ID = dao.GenUUID()
		user.IsActive = true
		user.IsOnboarded = true
		user.GithubId = &githubLogins[i]
		if err := user.SetPassword(demoPassword, 10); err != nil {
			return nil, err
		}
		if err := tx.Create(&user).Error; err != nil {
			return nil, err
		}
		summary.Users++
		users = append(users, &user)
	}
	return users, nil
}

func seedWorkspaces(tx *gorm.DB, summary *Summary) (*dao.Workspace, *dao.Workspace, error) {
	acmeTech, err := ensureWorkspace(tx, summary, dao.Workspace{
		Name:        "Acme Tech",
		Slug:        "acme-tech",
		Description: "Main technology workspace",
	})
	if err != nil {
		return nil, nil, err
	}
	startupLab, err := ensureWorkspace(tx, summary, dao.Workspace{
		Name:        "Startup Lab",
		Slug:        "startup-lab",
		Description: "Innovation and experimentation workspace",
	})
	if err != nil {
		return nil, nil, err
	}
	return acmeTech, startupLab, nil
}

func ensureWorkspace(tx *gorm.DB, summary *Summary, fixture dao.Workspace) (*dao.Workspace, error) {
	var workspace dao.Workspace
	err := tx.Where("slug = ?", fixture.Slug).First(&workspace).Error
	if err == nil {
		return &workspace, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	workspace = fixture
	workspace.ID = dao.GenUUID()
	workspace.Status = types.StatusActive
	if err := tx.Create(&workspace).Error; err != nil {
		return nil, err
	}
	summary.Workspaces++
	return &workspace, nil
}

func ensureWorkspaceMember(tx *gorm.DB, workspaceId, userId uuid.UUID, role types.WorkspaceRole) error {
	var exist bool
	if err := tx.Model(&dao.WorkspaceMember{}).
		Select("count(*) > 0").
		Where("workspace_id = ?", workspaceId).
		Where("member_id = ?", userId).
		Find(&exist).Error; err != nil {
		return err
	}
	if exist {
		return nil
	}
	return tx.Create(&dao.WorkspaceMember{
		ID:          dao.GenUUID(),
		WorkspaceId: workspaceId,
		MemberId:    userId,
		Role:        role,
	}).Error
}

func seedTeams(tx *gorm.DB, summary *Summary, acmeTech *dao.Workspace, users []*dao.User) (map[string]*dao.Team, error) {
	diego, ana, carlos, maria, joao := users[0], users[1], users[2], users[3], users[4]

	fixtures := []dao.Team{
		{Name: "Frontend", Description: "Time responsável pela interface e experiência do usuário"},
		{Name: "Backend", Description: "Time responsável pela API e infraestrutura de dados"},
		{Name: "Design", Description: "Time responsável pelo design e identidade visual"},
		{Name: "DevOps", Description: "Time responsável por infraestrutura e deployments"},
	}

	teams := map[string]*dao.Team{}
	for _, fixture := range fixtures {
		var team dao.Team
		err := tx.
			Where("workspace_id = ?", acmeTech.ID).
			Where("name = ?", fixture.Name).
			First(&team).Error
		if err == gorm.ErrRecordNotFound {
			team = fixture
			team.ID = dao.GenUUID()
			team.WorkspaceId = acmeTech.ID
			team.Status = types.StatusActive
			if err := tx.Create(&team).Error; err != nil {
				return nil, err
			}
			summary.Teams++
		} else if err != nil {
			return nil, err
		}
		teams[team.Name] = &team
	}

	teamMembers := []struct {
		team *dao.Team
		user *dao.User
		role types.TeamRole
	}{
		{teams["Frontend"], diego, types.TeamRoleManager},
		{teams["Backend"], diego, types.TeamRoleManager},
		{teams["Frontend"], ana, types.TeamRoleMember},
		{teams["Backend"], carlos, types.TeamRoleMember},
		{teams["Design"], maria, types.TeamRoleManager},
		{teams["DevOps"], joao, types.TeamRoleMember},
	}
	for _, tm := range teamMembers {
		inTeam, err := dao.IsTeamMember(tx, tm.team.ID, tm.user.ID)
		if err != nil {
			return nil, err
		}
		if inTeam {
			continue
		}
		if err := tx.Create(&dao.TeamMember{
			ID:       dao.GenUUID(),
			TeamId:   tm.team.ID,
			MemberId: tm.user.ID,
			Role:     tm.role,
		}).Error; err != nil {
			return nil, err
		}
	}

	return teams, nil
}

func seedManagementRules(tx *gorm.DB, summary *Summary, acmeTech *dao.Workspace, teams map[string]*dao.Team, diego, ana, carlos, maria *dao.User) error {
	rules := []*dao.ManagementRule{
		{WorkspaceId: acmeTech.ID, ManagerId: diego.ID, RuleType: types.RuleIndividual, SubordinateId: &ana.ID},
		{WorkspaceId: acmeTech.ID, ManagerId: diego.ID, RuleType: types.RuleIndividual, SubordinateId: &carlos.ID},
		{WorkspaceId: acmeTech.ID, ManagerId: diego.ID, RuleType: types.RuleTeam, TeamId: &teams["Frontend"].ID},
		{WorkspaceId: acmeTech.ID, ManagerId: maria.ID, RuleType: types.RuleTeam, TeamId: &teams["Design"].ID},
	}
	for _, rule := range rules {
		err := dao.CreateManagementRule(tx, rule)
		if err == nil {
			summary.Rules++
			continue
		}
		// Повторный запуск: правило уже есть
		if err == apierrors.ErrRuleConflict {
			continue
		}
		return err
	}
	return nil
}

func seedGamification(tx *gorm.DB, summary *Summary, acmeTech *dao.Workspace, users []*dao.User) error {
	diego, ana, carlos, maria, joao := users[0], users[1], users[2], users[3], users[4]

	fixtures := []struct {
		user    *dao.User
		level   int
		current int
		total   int
		streak  int
	}{
		{diego, 12, 2840, 15420, 7},
		{ana, 8, 1250, 8500, 3},
		{carlos, 10, 1800, 11200, 14},
		{maria, 15, 3100, 22500, 21},
		{joao, 5, 420, 3200, 2},
	}

	profiles := map[uuid.UUID]*dao.GamificationProfile{}
	for _, fixture := range fixtures {
		var profile dao.GamificationProfile
		err := tx.
			Where("workspace_id = ?", acmeTech.ID).
			Where("user_id = ?", fixture.user.ID).
			First(&profile).Error
		if err == gorm.ErrRecordNotFound {
			profile = dao.GamificationProfile{
				ID:           dao.GenUUID(),
				UserId:       fixture.user.ID,
				WorkspaceId:  acmeTech.ID,
				Level:        fixture.level,
				CurrentXP:    fixture.current,
				TotalXP:      fixture.total,
				Streak:       fixture.streak,
				LastActiveAt: time.Now(),
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			summary.Profiles++
		} else if err != nil {
			return err
		}
		profiles[fixture.user.ID] = &profile
	}

	badges := []struct {
		user        *dao.User
		badgeType   types.BadgeType
		name        string
		description string
	}{
		{diego, types.BadgeStreak7, "7 Dias de Fogo", "Manteve streak de 7 dias consecutivos"},
		{diego, types.BadgeMentor, "Mentor Dedicado", "Realizou 5 sessões de mentoria"},
		{diego, types.BadgeTeamPlayer, "Jogador de Equipe", "Realizou 10 reuniões 1:1"},
		{maria, types.BadgeStreak7, "7 Dias de Fogo", "Manteve streak de 7 dias consecutivos"},
		{maria, types.BadgeGoalMaster, "Mestre das Metas", "Completou 10 metas"},
		{maria, types.BadgeCertified, "Certificado", "Obteve 3 certificações"},
		{carlos, types.BadgeStreak7, "7 Dias de Fogo", "Manteve streak de 7 dias consecutivos"},
		{carlos, types.BadgeFastLearner, "Aprendiz Rápido", "Subiu 3 níveis em uma competência"},
	}
	for _, badge := range badges {
		profile := profiles[badge.user.ID]

		var exist bool
		if err := tx.Model(&dao.Badge{}).
			Select("count(*) > 0").
			Where("profile_id = ?", profile.ID).
			Where("type = ?", badge.badgeType).
			Find(&exist).Error; err != nil {
			return err
		}
		if exist {
			continue
		}
		if err := dao.AwardBadge(tx, profile.ID, badge.badgeType, badge.name, badge.description); err != nil {
			return err
		}
		summary.Badges++
	}

	return nil
}

func seedPDI(tx *gorm.DB, summary *Summary, acmeTech *dao.Workspace, diego, carlos *dao.User) error {
	cycleCreated, err := ensureRow(tx, cycleId, &dao.Cycle{}, func() error {
		return tx.Create(&dao.Cycle{
			ID:          cycleId,
			WorkspaceId: acmeTech.ID,
			UserId:      diego.ID,
			Name:        "Ciclo Q1 2024 - Desenvolvimento Backend",
			Description: "Foco em melhorias de arquitetura, performance e boas práticas",
			StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			Status:      types.CycleActive,
		}).Error
	})
	if err != nil {
		return err
	}
	if cycleCreated {
		summary.Cycles++
	}

	goals := []dao.Goal{
		{
			ID: goalCacheId, Title: "Implementar Sistema de Cache",
			Description: "Implementar Redis para cache de queries frequentes e melhorar performance da API",
			Type:        types.GoalBinary, Status: types.GoalActive,
			StartValue: 0, CurrentValue: 65, TargetValue: 100, Unit: "%",
		},
		{
			ID: goalAuthId, Title: "Refatorar Autenticação",
			Description: "Migrar de JWT simples para refresh tokens e melhorar segurança",
			Type:        types.GoalBinary, Status: types.GoalCompletedSt,
			StartValue: 0, CurrentValue: 100, TargetValue: 100, Unit: "%",
		},
		{
			ID: goalTestsId, Title: "Aumentar Cobertura de Testes",
			Description: "Elevar cobertura de testes unitários de 45% para 80%",
			Type:        types.GoalIncrease, Status: types.GoalActive,
			StartValue: 45, CurrentValue: 45, TargetValue: 80, Unit: "%",
		},
		{
			ID: goalQueriesId, Title: "Otimizar Queries do Banco",
			Description: "Identificar e otimizar queries lentas, adicionar índices necessários",
			Type:        types.GoalPercentage, Status: types.GoalActive,
			StartValue: 0, CurrentValue: 30, TargetValue: 100, Unit: "%",
		},
	}
	for i := range goals {
		goal := goals[i]
		goal.CycleId = cycleId
		goal.UserId = diego.ID
		created, err := ensureRow(tx, goal.ID, &dao.Goal{}, func() error {
			return tx.Create(&goal).Error
		})
		if err != nil {
			return err
		}
		if created {
			summary.Goals++
		}
	}

	competencies := []dao.Competency{
		{ID: compArchId, Name: "Arquitetura de Software", Category: types.CompetencyTechnical, CurrentLevel: 4, TargetLevel: 5},
		{ID: compPerfId, Name: "Performance e Otimização", Category: types.CompetencyTechnical, CurrentLevel: 3, TargetLevel: 4},
		{ID: compMentoringId, Name: "Mentoria Técnica", Category: types.CompetencyBehavioral, CurrentLevel: 4, TargetLevel: 5},
	}
	for i := range competencies {
		competency := competencies[i]
		competency.CycleId = cycleId
		competency.UserId = diego.ID
		created, err := ensureRow(tx, competency.ID, &dao.Competency{}, func() error {
			return tx.Create(&competency).Error
		})
		if err != nil {
			return err
		}
		if created {
			summary.Competencies++
		}
	}

	completedAt := time.Date(2025, 10, 25, 14, 0, 0, 0, time.UTC)
	activities := []dao.Activity{
		{
			ID: actOneOnOneId, Type: types.ActivityOneOnOne,
			Title: "Reunião 1:1 com Carlos", Description: "Discussão sobre progresso no sistema de cache",
			XPEarned: 50, Duration: 30,
			OneOnOne: &dao.OneOnOneActivity{
				ParticipantId:   &carlos.ID,
				ParticipantName: "Carlos Oliveira",
				CompletedAt:     &completedAt,
				WorkingOn:       pq.StringArray{"Implementação de sistema de cache com Redis", "Testes de integração"},
				GeneralNotes:    "Reunião produtiva, Carlos está progredindo bem",
				PositivePoints: pq.StringArray{
					"Ótimo progresso na implementação",
					"Código limpo e bem documentado",
					"Boa comunicação sobre bloqueios",
				},
				ImprovementPoints: pq.StringArray{
					"Poderia adicionar mais testes de integração",
					"Documentar edge cases identificados",
				},
				NextSteps: pq.StringArray{
					"Implementar testes de integração para cache",
					"Revisar documentação do módulo",
					"Preparar apresentação para o time",
				},
			},
		},
		{
			ID: actMentoringId, Type: types.ActivityMentoring,
			Title: "Sessão de Mentoria com Ana", Description: "Padrões de arquitetura e design patterns",
			XPEarned: 75, Duration: 60,
			Mentoring: &dao.MentoringActivity{
				MenteeName:   "Diego Santos (Mentee)",
				Topics:       pq.StringArray{"Padrões de arquitetura", "Clean Code", "Design Patterns", "SOLID Principles"},
				ProgressFrom: 60,
				ProgressTo:   75,
				Outcomes:     "Boa evolução no entendimento de padrões, aplicou conceitos no projeto atual",
				NextSteps: pq.StringArray{
					"Estudar SOLID principles em profundidade",
					"Implementar Repository Pattern no projeto",
					"Revisar código do módulo de autenticação",
					"Preparar apresentação sobre Clean Architecture",
				},
			},
		},
		{
			ID: actCertId, Type: types.ActivityCertification,
			Title: "AWS Certified Solutions Architect", Description: "Certificação completa em arquitetura AWS",
			XPEarned: 200,
			Certification: &dao.CertificationActivity{
				CertificationName: "AWS Certified Solutions Architect",
				Topics: pq.StringArray{
					"Cloud Architecture",
					"AWS Services (EC2, S3, RDS, Lambda)",
					"System Design",
					"Scalability and High Availability",
					"Security Best Practices",
				},
				Outcomes: "Certificação obtida com sucesso, conhecimentos aplicáveis ao projeto",
				Rating:   4,
				NextSteps: pq.StringArray{
					"Aplicar conceitos de HA no projeto atual",
					"Propor migração de serviços para Lambda",
					"Estudar AWS Well-Architected Framework",
					"Preparar workshop sobre AWS para o time",
				},
			},
		},
	}
	for i := range activities {
		activity := activities[i]
		activity.CycleId = cycleId
		activity.UserId = diego.ID
		created, err := ensureRow(tx, activity.ID, &dao.Activity{}, func() error {
			return dao.CreateActivity(tx, &activity)
		})
		if err != nil {
			return err
		}
		if created {
			summary.Activities++
		}
	}

	return nil
}

func seedPullRequests(tx *gorm.DB, summary *Summary, users []*dao.User) error {
	diego, ana, carlos := users[0], users[1], users[2]

	mergedAt := time.Date(2024, 2, 12, 16, 30, 0, 0, time.UTC)
	closedAt := time.Date(2024, 2, 20, 9, 15, 0, 0, time.UTC)

	fixtures := []dao.PullRequest{
		{
			Repo: "forge-hq/forge-api", Number: 101,
			Title: "Add Redis cache layer for frequent queries", Author: "carlosoliveira",
			OwnerUserId: &carlos.ID,
			Additions:   412, Deletions: 36, ChangedFiles: 14,
			ReviewSummary: "Solid implementation, minor nits on TTL configuration",
			CreatedAt:     time.Date(2024, 2, 10, 11, 0, 0, 0, time.UTC),
			UpdatedAt:     mergedAt,
			MergedAt:      &mergedAt,
		},
		{
			Repo: "forge-hq/forge-api", Number: 108,
			Title: "Refactor auth flow to refresh tokens", Author: "diegosantos",
			OwnerUserId: &diego.ID,
			Additions:   268, Deletions: 190, ChangedFiles: 9,
			CreatedAt: time.Date(2024, 2, 18, 8, 45, 0, 0, time.UTC),
			UpdatedAt: closedAt,
			ClosedAt:  &closedAt,
		},
		{
			Repo: "forge-hq/forge-web", Number: 57,
			Title: "Frontend skeleton states for cycle pages", Author: "anasilva",
			OwnerUserId: &ana.ID,
			Additions:   133, Deletions: 12, ChangedFiles: 6,
			CreatedAt: time.Date(2024, 3, 2, 13, 20, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 3, 2, 13, 20, 0, 0, time.UTC),
		},
		{
			Repo: "forge-hq/forge-web", Number: 61,
			Title: "Leaderboard widget with XP progress bars", Author: "anasilva",
			OwnerUserId: &ana.ID,
			Additions:   201, Deletions: 8, ChangedFiles: 5,
			CreatedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		},
	}
	for i := range fixtures {
		pr := fixtures[i]

		var exist bool
		if err := tx.Model(&dao.PullRequest{}).
			Select("count(*) > 0").
			Where("repo = ?", pr.Repo).
			Where("number = ?", pr.Number).
			Find(&exist).Error; err != nil {
			return err
		}
		if exist {
			continue
		}
		if err := dao.UpsertPullRequest(tx, &pr); err != nil {
			return err
		}
		summary.PullRequests++
	}

	return nil
}

// Создает строку через create, если запись с фиксированным UUID отсутствует.
// Возвращает true, если строка была создана.
func ensureRow(tx *gorm.DB, id uuid.UUID, model interface{}, create func() error) (bool, error) {
	err := tx.Where("id = ?", id).First(model).Error
	if err == nil {
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}
	return true, create()
}
