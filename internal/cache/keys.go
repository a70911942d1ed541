package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func AdviceStatusKey(adviceID uuid.UUID) string {
	return fmt.Sprintf("advice:status:%s", adviceID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}

func AdviceListKey(userID uuid.UUID, filterHash string) string {
	return fmt.Sprintf("advice:list:%s:%s", userID, filterHash)
}
