// Основной пакет приложения Forge. Отвечает за запуск приложения,
// инициализацию базы данных, миграцию моделей и запуск основного сервера.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/forge-hq/forge/internal/forge"
	"github.com/forge-hq/forge/internal/forge/config"
	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/forge-hq/forge/internal/forge/gormlogger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var version string = "DEV"

var models = []any{
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
}

func main() {
	paramQueries := flag.Bool("paramQueries", true, "Mask queries params in log")
	noMigration := flag.Bool("noMigration", false, "Turn off DB migration")
	trace := flag.Bool("trace", false, "Verbose logs and sql trace")
	flag.Parse()

	PrintBanner()

	cfg := config.ReadConfig()

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
	}

	slog.Info("Forge start.")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: false, // disables implicit prepared statement usage
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.NewGormLogger(slog.Default(), time.Second*4, *paramQueries),
	})
	if err != nil {
		slog.Error("Fail init DB connection", "err", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Fail set settings to conn pool", "err", err)
		os.Exit(1)
	}
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(time.Minute * 15)

	if !*noMigration {
		slog.Info("Migrate models")
		if err := db.AutoMigrate(models...); err != nil {
			slog.Error("Fail migrate models", "err", err)
			os.Exit(1)
		}
	}

	forge.Server(db, cfg, version)
}

// PrintBanner выводит заголовок приложения с версией.
func PrintBanner() {
	banner := `
  ______
 |  ____|
 | |__ ___  _ __ __ _  ___
 |  __/ _ \| '__/ _  |/ _ \
 | | | (_) | | | (_| |  __/
 |_|  \___/|_|  \__, |\___| %s
                 __/ |
                |___/
People development and performance platform
----------------------------------------------------
`
	colorReset := "\033[0m"
	colorYellow := "\033[33m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Printf(banner, formattedVersion)
}
