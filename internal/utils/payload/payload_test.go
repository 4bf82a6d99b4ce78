package payload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetapp/duet-bot/internal/utils/payload"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := payload.Postback{
		Action:    payload.ActionRateCouple,
		Person1ID: "A",
		Person2ID: "B",
		Rating:    true,
	}

	decoded, err := payload.Decode(payload.Encode(original))
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeNegativeRatingSurvives(t *testing.T) {
	decoded, err := payload.Decode(payload.Encode(payload.Postback{
		Action:    payload.ActionRateCouple,
		Person1ID: "A",
		Person2ID: "B",
		Rating:    false,
	}))
	require.NoError(t, err)
	assert.False(t, decoded.Rating)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := payload.Decode("{definitely not json")
	assert.Error(t, err)
}

func TestDecodeRejectsMissingAction(t *testing.T) {
	_, err := payload.Decode(`{"person1_id":"A"}`)
	assert.Error(t, err)
}
