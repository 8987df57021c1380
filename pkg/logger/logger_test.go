package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSONConServicio(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, Config{Level: "info", Service: "timbrado-api"})

	l.Debug().Msg("no sale")
	l.Info().Int64("invoice_id", 501).Msg("timbrado finalizado")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "timbrado-api", entry["service"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, float64(501), entry["invoice_id"])
	assert.Equal(t, "timbrado finalizado", entry["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "warn", parseLevel("warn").String())
	assert.Equal(t, "info", parseLevel("otro").String())
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error().Msg("x") })
}
