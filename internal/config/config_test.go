package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "postgres", cfg.DocstoreDriver)
	assert.Equal(t, 8, cfg.AuditWorkers)
	assert.Equal(t, "X-Operator", cfg.OperatorHeader)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("AUDIT_WORKERS", "0")
	t.Setenv("DOCSTORE_DRIVER", "mongo")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 1, cfg.AuditWorkers)
	assert.Equal(t, "mongo", cfg.DocstoreDriver)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DOCSTORE_DRIVER", "sqlite")
	_, err := Load()
	assert.ErrorContains(t, err, "DOCSTORE_DRIVER")
}

func TestLoad_BadNumber(t *testing.T) {
	t.Setenv("AUDIT_WORKERS", "many")
	_, err := Load()
	assert.Error(t, err)
}
