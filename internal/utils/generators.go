package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

func GenerateSubmissionID() string {
	return fmt.Sprintf("sub_%s", uuid.New().String())
}

// GenerateStorageKey builds a non-guessable object key for an uploaded proof
// file. The client filename contributes only its extension; the key itself is
// always a fresh UUID so two uploads can never collide and a crafted filename
// can never escape the store.
func GenerateStorageKey(originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalFilename)))
	return uuid.New().String() + ext
}
