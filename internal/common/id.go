package common

import (
	"github.com/google/uuid"
)

// NewLinkID generates a unique link ID with the "lnk_" prefix
// Format: lnk_<uuid>
func NewLinkID() string {
	return "lnk_" + uuid.New().String()
}
