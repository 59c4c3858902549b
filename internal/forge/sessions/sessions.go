// Учет отозванных токенов сессий в BoltDB.
//
// Основные возможности:
//   - Отзыв подписей JWT при выходе пользователя (blacklist).
//   - Проверка подписи токена при каждом запросе.
//   - Фоновая очистка записей старше времени жизни refresh токена.
package sessions

import (
	"encoding/binary"
	"log/slog"
	"os"
	"time"

	"github.com/boltdb/bolt"
	"github.com/forge-hq/forge/internal/forge/config"
)

type SessionsManager struct {
	db  *bolt.DB
	ttl time.Duration
}

const revokedBucketName = "revoked"

func NewSessionsManager(cfg *config.Config, sessionTTL time.Duration) *SessionsManager {
	if cfg.SessionsDBPath == "" {
		cfg.SessionsDBPath = "sessions.db"
	}

	db, err := bolt.Open(cfg.SessionsDBPath, 0644, nil)
	if err != nil {
		slog.Error("Open sessions db", "err", err)
		os.Exit(1)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(revokedBucketName))
		return err
	}); err != nil {
		slog.Error("Create sessions bucket", "err", err)
		os.Exit(1)
	}

	sm := &SessionsManager{db, sessionTTL}

	go sm.cleanLoop()

	return sm
}

// RevokeToken помечает подпись токена отозванной с текущего момента.
func (sm *SessionsManager) RevokeToken(signature []byte) error {
	return sm.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(revokedBucketName))

		tm := make([]byte, 8)
		binary.LittleEndian.PutUint64(tm, uint64(time.Now().Unix()))

		return b.Put(signature, tm)
	})
}

// IsTokenRevoked проверяет, отозвана ли подпись токена.
func (sm *SessionsManager) IsTokenRevoked(signature []byte) (bool, error) {
	var revoked bool
	err := sm.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(revokedBucketName))
		revoked = b.Get(signature) != nil
		return nil
	})
	return revoked, err
}

func (sm *SessionsManager) Close() {
	sm.db.Close()
}

// Записи старше ttl удаляются: соответствующие токены к этому времени
// уже истекли сами по себе.
func (sm *SessionsManager) cleanLoop() {
	for {
		keysToRemove := []string{}
		sm.db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket([]byte(revokedBucketName))

			c := b.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				tm := time.Unix(int64(binary.LittleEndian.Uint64(v)), 0)

				if time.Since(tm) > sm.ttl {
					keysToRemove = append(keysToRemove, string(k))
				}
			}
			return nil
		})

		if len(keysToRemove) > 0 {
			sm.db.Update(func(tx *bolt.Tx) error {
				b := tx.Bucket([]byte(revokedBucketName))

				for _, key := range keysToRemove {
					b.Delete([]byte(key))
				}

				return nil
			})
		}

		time.Sleep(time.Minute)
	}
}
