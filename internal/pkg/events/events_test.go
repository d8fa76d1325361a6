package events

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	ev := New(StudentPromoted, 9, map[string]interface{}{"facultyId": 3})

	msg, err := encode(ev)
	require.NoError(t, err)
	assert.Equal(t, "9", string(msg.Key))
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, "student.promoted", string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, StudentPromoted, decoded.Type)
	assert.Equal(t, int64(9), decoded.AccountID)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	require.NoError(t, p.Publish(context.Background(), New(AccountRegistered, 1, nil)))
	assert.Contains(t, buf.String(), `"event":"account.registered"`)
	assert.NoError(t, p.Close())
}
