package pkg

import (
	"strings"

	"github.com/google/uuid"
)

// NewID make a uuid without dashes, used as document id
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Contains check source have target
func Contains(slice []string, val string) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}
