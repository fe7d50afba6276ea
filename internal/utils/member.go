package utils

import (
	"strings"

	"github.com/google/uuid" // UUID generation
)

// NewMemberCode generates a human-readable member code like "LIB-3F2A91BC"
func NewMemberCode() string {
	id := uuid.NewString()
	return "LIB-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}
