package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextAddsIDs(t *testing.T) {
	var buf bytes.Buffer
	base := newWithWriter(&buf, "production", "")

	ctx := WithBrokerID(WithRequestID(context.Background(), "req-1"), "b1")
	FromContext(ctx, base).Info("captura")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "b1", entry["broker_id"])
	assert.Equal(t, "captura", entry["msg"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	newWithWriter(&buf, "production", "console").Debug("detalhe")
	assert.Contains(t, buf.String(), "msg=detalhe")
}
