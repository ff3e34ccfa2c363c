package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Fingerprint identifies a search by who asked and what they asked for.
// Case and whitespace differences in the query do not change it.
func Fingerprint(userID uuid.UUID, businessType, location string, radius int) string {
	parts := []string{
		userID.String(),
		normalize(businessType),
		normalize(location),
		strconv.Itoa(radius),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
