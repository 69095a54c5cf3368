package util

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateTimestampWithPrefix builds a sortable id such as PO-1706713445123.
// Internal ids only, public access uses uuids.
func GenerateTimestampWithPrefix(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixMilli())
}

// GenerateUUID returns a random v4 uuid string. Used for the public order
// identifier, which must never be guessable or sequential.
func GenerateUUID() string {
	return uuid.NewString()
}
