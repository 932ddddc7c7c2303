package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserNormalizesIdentity(t *testing.T) {
	user := NewUser("  Ann Lee ", " AnnLee ", " A@X.com ", "secret")

	assert.Equal(t, "Ann Lee", user.FullName)
	assert.Equal(t, "annlee", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "secret", user.Password)
}

func TestUserHashPassword(t *testing.T) {
	user := NewUser("Ann Lee", "annlee", "a@x.com", "secret")
	require.NoError(t, user.HashPassword())

	assert.NotEqual(t, "secret", user.Password)
	assert.True(t, user.CheckPassword("secret"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestUserJSONOmitsCredentials(t *testing.T) {
	user := NewUser("Ann Lee", "annlee", "a@x.com", "secret")
	user.RefreshToken = "refresh"

	payload, err := json.Marshal(user)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))
	assert.NotContains(t, fields, "password")
	assert.NotContains(t, fields, "refreshToken")
	assert.Equal(t, "annlee", fields["username"])
}

func TestUserSanitized(t *testing.T) {
	user := User{Username: "annlee", Password: "hash", RefreshToken: "token"}
	clean := user.Sanitized()

	assert.Empty(t, clean.Password)
	assert.Empty(t, clean.RefreshToken)
	assert.Equal(t, "hash", user.Password)
}
