package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher := NewPasswordHasher()

	encoded, err := hasher.Hash("Razavi@1404")
	assert.NoError(t, err)

	assert.True(t, hasher.Verify(encoded, "Razavi@1404"))
	assert.False(t, hasher.Verify(encoded, "Razavi@1405"))
	assert.False(t, hasher.Verify(encoded, ""))
}

func TestPasswordHasher_EncodedFormat(t *testing.T) {
	hasher := NewPasswordHasher()

	encoded, err := hasher.Hash("Razavi@1404")
	assert.NoError(t, err)

	parts := strings.Split(encoded, "$")
	assert.Len(t, parts, 4)
	assert.Equal(t, "pbkdf2_sha256", parts[0])
	assert.Equal(t, "210000", parts[1])
	assert.NotContains(t, encoded, "Razavi")
}

func TestPasswordHasher_SaltsDiffer(t *testing.T) {
	hasher := NewPasswordHasher()

	first, err := hasher.Hash("Razavi@1404")
	assert.NoError(t, err)
	second, err := hasher.Hash("Razavi@1404")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify(first, "Razavi@1404"))
	assert.True(t, hasher.Verify(second, "Razavi@1404"))
}

func TestPasswordHasher_MalformedHashNeverVerifies(t *testing.T) {
	hasher := NewPasswordHasher()

	for _, encoded := range []string{
		"",
		"plaintext",
		"pbkdf2_sha256$not-a-number$salt$key",
		"pbkdf2_sha256$210000$!!!$key",
		"bcrypt$10$salt$key",
		"pbkdf2_sha256$210000$onlythree",
	} {
		assert.False(t, hasher.Verify(encoded, "Razavi@1404"), "encoded=%q", encoded)
	}
}
