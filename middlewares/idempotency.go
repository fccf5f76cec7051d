package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"restaurant-pos/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayHeader      = "Idempotent-Replayed"
	idempotencyTTL    = 24 * time.Hour
)

var errKeyInFlight = fiber.NewError(fiber.StatusConflict, "request with this Idempotency-Key is still in progress")

// Idempotency replays the stored response when a mutating request is retried
// with the same Idempotency-Key. The key bookkeeping runs on the base
// connection, outside the request TX, so a rolled-back handler frees the key
// for a retry.
func Idempotency(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !isMutation(strings.ToUpper(c.Method())) {
			return c.Next()
		}
		key := strings.TrimSpace(c.Get(idempotencyHeader))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key too long")
		}
		userID := CurrentUserID(c)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "auth context missing")
		}

		rec, err := claimKey(db, userID, key, fingerprint(c), c.OriginalURL())
		if err != nil {
			return err
		}
		if rec.Completed() {
			c.Set(replayHeader, "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(rec.ResponseStatus).Send(rec.ResponseBody)
		}

		// a panic unwinds past the release below; free the key on the way out
		defer func() {
			if r := recover(); r != nil {
				releaseKey(db, rec.ID)
				panic(r)
			}
		}()

		if err := c.Next(); err != nil {
			releaseKey(db, rec.ID)
			return err
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusBadRequest {
			releaseKey(db, rec.ID)
			return nil
		}
		completeKey(db, rec.ID, status, c.Response().Body())
		return nil
	}
}

func fingerprint(c *fiber.Ctx) string {
	h := sha256.New()
	h.Write([]byte(c.Method()))
	h.Write([]byte{'\n'})
	h.Write([]byte(c.OriginalURL()))
	h.Write([]byte{'\n'})
	h.Write(c.Body())
	return hex.EncodeToString(h.Sum(nil))
}

// claimKey returns the existing record for (userID, key) or inserts a
// pending one. Expired records are replaced.
func claimKey(db *gorm.DB, userID, key, fp, route string) (*models.IdempotencyKey, error) {
	var rec models.IdempotencyKey
	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.Where("user_id = ? AND expires_at < ?", userID, now).Delete(&models.IdempotencyKey{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency cleanup failed")
		}

		err := tx.Where("user_id = ? AND key = ?", userID, key).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = models.IdempotencyKey{
				UserID:      userID,
				Key:         key,
				Fingerprint: fp,
				Route:       route,
				CreatedAt:   now,
				ExpiresAt:   now.Add(idempotencyTTL),
			}
			if err := tx.Create(&rec).Error; err == nil {
				return nil
			}
			// lost an insert race; fall through to the winner's row
			err = tx.Where("user_id = ? AND key = ?", userID, key).First(&rec).Error
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
		}

		if rec.Fingerprint != fp {
			return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
		}
		if !rec.Completed() {
			return errKeyInFlight
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func completeKey(db *gorm.DB, id uint, status int, body []byte) {
	now := time.Now().UTC()
	blob := make([]byte, len(body))
	copy(blob, body)
	_ = db.Model(&models.IdempotencyKey{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"response_status": status,
			"response_body":   blob,
			"completed_at":    &now,
		}).Error
}

// releaseKey drops a pending record so the client may retry with the same key.
func releaseKey(db *gorm.DB, id uint) {
	_ = db.Where("id = ? AND response_status = 0", id).Delete(&models.IdempotencyKey{}).Error
}
