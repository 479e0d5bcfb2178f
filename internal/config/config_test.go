package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useSecretsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := secretsDir
	secretsDir = dir
	t.Cleanup(func() { secretsDir = prev })
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	useSecretsDir(t)
	t.Setenv("ENV", "development")
	t.Setenv("ENCRYPTION_KEY", "")
	t.Setenv("LLM_PROVIDER", " Gemini ")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, int64(1), cfg.DefaultUserID)
	assert.Zero(t, cfg.AITimeout)
	assert.True(t, cfg.UsingDevEncryptionKey)
	assert.Equal(t, devEncryptionKey, cfg.EncryptionKey)
}

func TestLoadConfig_ProductionRequiresEncryptionKey(t *testing.T) {
	useSecretsDir(t)
	t.Setenv("ENV", "production")
	t.Setenv("ENCRYPTION_KEY", "")

	_, err := LoadConfig("")
	assert.ErrorIs(t, err, ErrMissingEncryptionKey)
}

func TestLoadConfig_SecretFileWinsOverEnv(t *testing.T) {
	dir := useSecretsDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "encryption_key"), []byte("from-file\n"), 0o600))
	t.Setenv("ENV", "production")
	t.Setenv("ENCRYPTION_KEY", "from-env")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.EncryptionKey)
	assert.False(t, cfg.UsingDevEncryptionKey)
	assert.Equal(t, "pw", cfg.DBPassword)
	assert.NotContains(t, cfg.MaskedDSN(), "pw")
}

func TestConfig_Vendor(t *testing.T) {
	cfg := &Config{XAIAPIKey: "xai", GrokModel: "grok-beta", OllamaBaseURL: "http://ollama:11434"}

	assert.Equal(t, VendorOverride{APIKey: "xai", Model: "grok-beta"}, cfg.Vendor("grok"))
	assert.Equal(t, "http://ollama:11434", cfg.Vendor("ollama").BaseURL)
	assert.Equal(t, VendorOverride{}, cfg.Vendor("unknown"))
}

func TestConfig_GetAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: "http://a.test, http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.GetAllowedOrigins())
}
