// DAO (Data Access Object) - предоставляет модели GORM и методы доступа к данным
// приложения Forge.
//
// Основные возможности:
//   - Модели пользователей, пространств, команд и правил управления.
//   - Модели PDI: циклы, цели, компетенции, активности с детализацией по типу.
//   - Модели геймификации: профили и бейджи.
//   - Модель pull request с деривацией состояния.
//   - Генерация UUID для первичных ключей.
package dao

import (
	"github.com/gofrs/uuid"
)

// GenUUID генерирует уникальный идентификатор в формате UUID.
func GenUUID() uuid.UUID {
	u2, _ := uuid.NewV4()
	return u2
}
