// Управление конфигурацией приложения из переменных окружения.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения по тегам структуры.
//   - Опциональная загрузка .env файла для локальной разработки.
//   - Маскировка секретных значений в логах.
//   - Значения по умолчанию для необязательных параметров.
package config

import (
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	SecretKey   string `env:"SECRET_KEY"`
	DatabaseDSN string `env:"DATABASE_URL"`

	ListenAddr        string `env:"LISTEN_ADDR"`
	MetricsListenAddr string `env:"METRICS_LISTEN_ADDR"`

	SessionsDBPath string `env:"SESSIONS_DB_PATH"`

	SignUpEnable bool `env:"SIGN_UP_ENABLE"`
	Demo         bool `env:"DEMO"`

	BcryptCost int `env:"BCRYPT_COST"`
}

// ReadConfig загружает конфигурацию из окружения и выполняет валидацию
// обязательных параметров. При отсутствии DATABASE_URL или SECRET_KEY
// приложение завершает работу с ошибкой.
func ReadConfig() *Config {
	// .env is optional, ignore missing file
	_ = godotenv.Load()

	config := &Config{}

	envConfig("env", config)

	if config.DatabaseDSN == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	if config.SecretKey == "" {
		slog.Error("SECRET_KEY is required")
		os.Exit(1)
	}

	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}

	if config.MetricsListenAddr == "" {
		config.MetricsListenAddr = ":2112"
	}

	if config.BcryptCost < 4 || config.BcryptCost > 31 {
		config.BcryptCost = 10
	}

	return config
}

// Присваивает полям в переданной структуре значения переменных. Название
// переменной для каждого поля лежит в теге этого поля.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if !Exist(fEnvTag) {
			continue
		}

		logValue := GetEnv(fEnvTag)
		if logValue == "" {
			continue
		}

		// Secure passwords in log
		if strings.Contains(strings.ToLower(fName), "pass") || strings.Contains(strings.ToLower(fName), "secret") || strings.Contains(strings.ToLower(fName), "token") || strings.Contains(strings.ToLower(fName), "dsn") {
			pass := strings.Split(GetEnv(fEnvTag), "")
			logValue = pass[0]
			for i := 1; i < len(pass)-1; i++ {
				logValue += "*"
			}
			logValue += pass[len(pass)-1]
		}
		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", logValue),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(GetEnv(fEnvTag))
		case int:
			v.Field(i).SetInt(int64(GetIntEnv(fEnvTag)))
		case bool:
			v.Field(i).SetBool(GetBoolEnv(fEnvTag))
		}
	}
}
