/*
Package message contains the direct-message model, attachment validation, and the
service that persists and relays messages.

This file defines the Message record and attachment constraints. Attachments are
uploaded to the external media host; only the returned durable URL is stored.
*/
package message

import (
	"context"
	"strings"
	"time"

	"chatty/internal/pkg/errs"
)

const (
	// MaxTextBytes is the maximum allowed size for message text content.
	MaxTextBytes = 5000

	// MaxAttachmentSizeMB is the maximum allowed attachment size in megabytes.
	MaxAttachmentSizeMB = 5

	// MaxAttachmentSize is the maximum allowed attachment size in bytes.
	MaxAttachmentSize = MaxAttachmentSizeMB * 1024 * 1024
)

// Kind classifies an attachment for the client's renderer.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindFile  Kind = "file"
)

// allowedKinds is the set of attachment kinds a client may declare.
var allowedKinds = map[Kind]struct{}{
	KindImage: {},
	KindVideo: {},
	KindAudio: {},
	KindFile:  {},
}

// ValidKind reports whether the declared attachment kind is supported.
func ValidKind(kind Kind) bool {
	_, ok := allowedKinds[kind]
	return ok
}

// Message represents a persisted direct message between two users.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	FileURL    string    `json:"fileUrl,omitempty"`
	FileType   Kind      `json:"fileType,omitempty"`
	FileName   string    `json:"fileName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store is the persistence contract for messages.
type Store interface {
	// Create inserts the message and fills its ID and CreatedAt.
	Create(ctx context.Context, msg *Message) error

	// Conversation returns every message between the two users, in either
	// direction, ordered by creation time ascending.
	Conversation(ctx context.Context, userA, userB string) ([]Message, error)
}

// ValidateText checks the message text against the length limit.
func ValidateText(text string) *errs.CustomError {
	if len(text) > MaxTextBytes {
		return errs.NewError(errs.ErrMessageContentTooLong)
	}
	return nil
}

// StripDataURI removes a "data:...;base64," prefix when present, returning the
// bare base64 payload. Clients send attachments as data URIs; the media host
// wants raw bytes.
func StripDataURI(encoded string) string {
	if !strings.HasPrefix(encoded, "data:") {
		return encoded
	}

	idx := strings.Index(encoded, ";base64,")
	if idx < 0 {
		return encoded
	}
	return encoded[idx+len(";base64,"):]
}
