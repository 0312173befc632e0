package publisher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oap_import/internal/domain"
)

func TestNewEventMessage(t *testing.T) {
	now := time.Date(2017, 6, 1, 11, 30, 0, 0, time.FixedZone("PDT", -7*3600))

	put := NewEventMessage(&domain.SyncEvent{OAPID: "ark:/1/a", Put: true}, now)
	assert.Equal(t, ActionPut, put.Action)
	assert.Equal(t, time.UTC, put.Timestamp.Location())

	link := NewEventMessage(&domain.SyncEvent{OAPID: "ark:/1/a", NewUsers: 2}, now)
	assert.Equal(t, ActionLink, link.Action)
	assert.Equal(t, 2, link.Event.NewUsers)
}

func TestEventMessage_JSON(t *testing.T) {
	msg := NewEventMessage(&domain.SyncEvent{
		OAPID:      "ark:/1/a",
		PubID:      "4711",
		CampusIDs:  []string{"c-ucla-id::1"},
		Users:      []string{"1001"},
		Put:        true,
		Compatible: true,
	}, time.Unix(0, 0))

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Equal(t, "put", raw["action"])
	event, ok := raw["event"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ark:/1/a", event["oap_id"])
	assert.Equal(t, "4711", event["pub_id"])
	assert.Equal(t, "1970-01-01T00:00:00Z", raw["timestamp"])
}
