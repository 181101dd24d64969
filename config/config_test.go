package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)
	assert.Equal(t, "5000", c.AppPort)
	assert.Equal(t, 72, c.SessionTTLHours)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "database.db", c.SQLitePath)
	assert.Equal(t, filepath.Join("static", "uploads"), c.UploadDir)
	assert.Equal(t, 16, c.MaxUploadMB)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
}

func TestLoadJSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"app": {"AppPort": "8080", "SessionSecret": "s3cret", "AllowedOrigins": ["https://a.example"]},
		"database": {"Driver": "postgres", "DBHost": "db"},
		"upload": {"Dir": "/data/uploads", "MaxSizeMB": 4}
	}`), 0o644))

	var c AppConfig
	require.NoError(t, loadJSONConfig(path, &c))
	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "s3cret", c.SessionSecret)
	assert.Equal(t, []string{"https://a.example"}, c.AllowedOrigins)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, "db", c.DBHost)
	assert.Equal(t, "/data/uploads", c.UploadDir)
	assert.Equal(t, 4, c.MaxUploadMB)

	require.NoError(t, loadJSONConfig(filepath.Join(t.TempDir(), "missing.json"), &c), "missing file is ignored")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	assert.Error(t, loadJSONConfig(bad, &c))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("SECURE_COOKIE", "true")
	t.Setenv("MAX_UPLOAD_MB", "8")

	c := AppConfig{AppPort: "5000"}
	applyEnvOverrides(&c)
	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, "mysql", c.DBDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.True(t, c.SecureCookie)
	assert.Equal(t, 8, c.MaxUploadMB)
}

func TestDialectorFor(t *testing.T) {
	for _, driver := range []string{"sqlite", "mysql", "postgres"} {
		d, err := dialectorFor(AppConfig{DBDriver: driver, SQLitePath: filepath.Join(t.TempDir(), "x.db")})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}
	_, err := dialectorFor(AppConfig{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestOpenDatabaseSQLite(t *testing.T) {
	c := Use(AppConfig{SessionSecret: "x", SQLitePath: filepath.Join(t.TempDir(), "app.db"), LogLevel: "silent"})
	conn, err := OpenDatabase(c)
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))
	for _, table := range []string{"users", "publications", "remixes", "publication_likes", "remix_likes", "subscriptions", "page_views"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}
