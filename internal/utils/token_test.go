package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/collab-shopping/internal/utils"
)

func TestParticipantTokenRoundTrip(t *testing.T) {
	raw, err := utils.NewParticipantToken("secret", utils.ParticipantClaims{
		SessionCode: "AB12CD",
		UserName:    "Asha",
	}, time.Hour)
	require.NoError(t, err)

	claims, err := utils.ParseParticipantToken("secret", raw)
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", claims.SessionCode)
	assert.Equal(t, "Asha", claims.UserName)
}

func TestParticipantTokenWrongSecret(t *testing.T) {
	raw, err := utils.NewParticipantToken("secret", utils.ParticipantClaims{SessionCode: "AB12CD", UserName: "Asha"}, time.Hour)
	require.NoError(t, err)

	_, err = utils.ParseParticipantToken("other", raw)
	assert.Error(t, err)
}

func TestParticipantTokenExpired(t *testing.T) {
	raw, err := utils.NewParticipantToken("secret", utils.ParticipantClaims{SessionCode: "AB12CD", UserName: "Asha"}, -time.Minute)
	require.NoError(t, err)

	_, err = utils.ParseParticipantToken("secret", raw)
	assert.Error(t, err)
}

func TestParticipantTokenGarbage(t *testing.T) {
	_, err := utils.ParseParticipantToken("secret", "not.a.token")
	assert.Error(t, err)
}
