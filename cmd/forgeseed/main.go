// Утилита загрузки демонстрационных данных Forge. Подключается к базе,
// мигрирует модели и выполняет идемпотентный сидинг. Повторный запуск
// не создает дубликатов.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/forge-hq/forge/internal/forge/config"
	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/forge-hq/forge/internal/forge/gormlogger"
	"github.com/forge-hq/forge/internal/forge/seeder"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	noMigration := flag.Bool("noMigration", false, "Turn off DB migration")
	flag.Parse()

	cfg := config.ReadConfig()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DatabaseDSN,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.NewGormLogger(slog.Default(), time.Second*4, true),
	})
	if err != nil {
		slog.Error("Fail init DB connection", "err", err)
		os.Exit(1)
	}

	if !*noMigration {
		if err := db.AutoMigrate(
			&dao.User{},
			&dao.Workspace{},
			&dao.WorkspaceMember{},
			&dao.Team{},
			&dao.TeamMember{},
			&dao.ManagementRule{},
			&dao.Cycle{},
			&dao.Goal{},
			&dao.Competency{},
			&dao.Activity{},
			&dao.OneOnOneActivity{},
			&dao.MentoringActivity{},
			&dao.CertificationActivity{},
			&dao.GamificationProfile{},
			&dao.Badge{},
			&dao.PullRequest{},
		); err != nil {
			slog.Error("Fail migrate models", "err", err)
			os.Exit(1)
		}
	}

	summary, err := seeder.Seed(db)
	if err != nil {
		slog.Error("Seeding failed", "err", err)
		os.Exit(1)
	}

	fmt.Println("Seed completed!")
	fmt.Printf("  users: %d\n", summary.Users)
	fmt.Printf("  workspaces: %d\n", summary.Workspaces)
	fmt.Printf("  teams: %d\n", summary.Teams)
	fmt.Printf("  management rules: %d\n", summary.Rules)
	fmt.Printf("  gamification profiles: %d\n", summary.Profiles)
	fmt.Printf("  badges: %d\n", summary.Badges)
	fmt.Printf("  cycles: %d\n", summary.Cycles)
	fmt.Printf("  goals: %d\n", summary.Goals)
	fmt.Printf("  competencies: %d\n", summary.Competencies)
	fmt.Printf("  activities: %d\n", summary.Activities)
	fmt.Printf("  pull requests: %d\n", summary.PullRequests)

	fmt.Println("\nLogin credentials:")
	for _, line := range summary.Credentials {
		fmt.Println("  " + line)
	}
}
