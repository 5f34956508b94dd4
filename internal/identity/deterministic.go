package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using hashid.
//
// Callers must prefix keys by entity kind to keep them from colliding.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// LocationID returns the stable id of an imported location addressed by its
// canonical path. Re-importing the same dataset yields the same ids.
func LocationID(canonicalSlug string) string {
	return UUID("go-directory:location:" + strings.ToLower(strings.TrimSpace(canonicalSlug))).String()
}
