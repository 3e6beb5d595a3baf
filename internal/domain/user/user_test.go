package user

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_JSONHidesSecrets(t *testing.T) {
	u := &User{Email: "ada@example.com", PasswordHash: "$2a$12$hash", StripeCustomerID: "cus_123", Plan: PlanPro}
	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), "cus_123")
	assert.Contains(t, string(raw), `"plan":"pro"`)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "ada", (&User{Email: "ada@example.com"}).DisplayName())
	assert.Equal(t, "Ada L.", (&User{Email: "ada@example.com", Name: "Ada L."}).DisplayName())
}

func TestPasswordReset_Usable(t *testing.T) {
	now := time.Now()
	r := &PasswordReset{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, r.Usable(now))

	used := now
	r.UsedAt = &used
	assert.False(t, r.Usable(now))

	assert.False(t, (&PasswordReset{ExpiresAt: now.Add(-time.Second)}).Usable(now))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}
