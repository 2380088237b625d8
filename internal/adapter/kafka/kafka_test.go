package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evatlas/chargefeed/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	generatedAt := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)
	station := domain.Station{
		ID:        "ccs-1a2b3c4d",
		Category:  domain.CategoryCCS,
		PowerKW:   150,
		Latitude:  52.52,
		Longitude: 13.405,
		Source:    "ocm",
	}

	msg, err := serializeToMessage(station, generatedAt)
	require.NoError(t, err)

	assert.Equal(t, []byte("ccs-1a2b3c4d"), msg.Key)
	assert.Contains(t, string(msg.Value), `"category":"CCS"`)
	assert.Contains(t, string(msg.Value), `"power_kw":150`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "category", msg.Headers[0].Key)
	assert.Equal(t, []byte("CCS"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(generatedAt.Format(time.RFC3339)), msg.Headers[1].Value)
}
