package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jhoicas/inventario-ledger/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONConComponente(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf}).Component("ledger")
	l.Info().Str("product_id", "p1").Msg("movimiento registrado")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ledger", line["component"])
	assert.Equal(t, "p1", line["product_id"])
	assert.Equal(t, "info", line["level"])
}

func TestNew_NivelFiltra(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})
	l.Info().Msg("oculto")
	assert.Zero(t, buf.Len())
	l.Warn().Msg("visible")
	assert.NotZero(t, buf.Len())
}

func TestNop_NoEscribe(t *testing.T) {
	l := logger.Nop()
	assert.NotPanics(t, func() { l.Error().Msg("nada") })
}
