package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserRole(t *testing.T) {
	for _, valid := range []string{"user", "admin", "premium", "elite"} {
		role, err := ParseUserRole(valid)
		require.NoError(t, err)
		assert.Equal(t, UserRole(valid), role)
	}

	_, err := ParseUserRole("superadmin")
	assert.Error(t, err)
	_, err = ParseUserRole("")
	assert.Error(t, err)
}

func TestRefreshToken_Expired(t *testing.T) {
	now := time.Now()

	assert.False(t, RefreshToken{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, RefreshToken{ExpiresAt: now}.Expired(now))
	assert.True(t, RefreshToken{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}
