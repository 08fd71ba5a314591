package randx

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	id := NewID()

	_, err := uuid.Parse(id)
	require.NoError(t, err)

	assert.NotEqual(t, id, NewID())
}

func TestAttachmentKey(t *testing.T) {
	key := AttachmentKey("Holiday Photo.PNG")

	assert.True(t, strings.HasPrefix(key, "attachments/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	// No extension on the original name means none on the key.
	bare := AttachmentKey("README")
	assert.True(t, strings.HasPrefix(bare, "attachments/"))
	assert.NotContains(t, bare, ".")
}

func TestAvatarKey(t *testing.T) {
	key := AvatarKey(".JPG")

	assert.True(t, strings.HasPrefix(key, "avatars/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
}
