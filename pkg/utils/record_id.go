package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRecordID creates a replacement record ID.
// Format: {tier}-{8charHexUUID}, e.g. "grouped-a3f8e2b1".
//
// IDs only need to be unique within one configuration document; the tier
// prefix keeps them readable in logs and exported files.
func GenerateRecordID(tier string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	if tier == "" {
		return id
	}
	return strings.ToLower(tier) + "-" + id
}
