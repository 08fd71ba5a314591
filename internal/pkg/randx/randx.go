/*
Package randx provides functions for generating unique identifiers and
storage object keys used across the messaging core.
*/
package randx

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// NewID generates a UUID v4 string, used as the identifier for users,
// chat requests, messages, and live connections.
func NewID() string {
	return uuid.New().String()
}

// AttachmentKey builds a unique object key for a message attachment,
// preserving the original file extension when one is present.
func AttachmentKey(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("attachments/%s%s", uuid.New().String(), ext)
}

// AvatarKey builds a unique object key for a profile picture with the given extension.
// The extension must include the leading dot (e.g. ".png").
func AvatarKey(ext string) string {
	return fmt.Sprintf("avatars/%s%s", uuid.New().String(), strings.ToLower(ext))
}
