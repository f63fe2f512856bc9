package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Ammar Qazi")
	cfg.Accounts = []Account{
		{Name: "wise-usd", FilePattern: "wise*.csv", Format: "wise", Idiom: "wise"},
	}
	cfg.Categories = []CategoryRule{
		{Name: "Groceries", Keywords: []string{"lidl", "aldi"}},
	}

	path := filepath.Join(t.TempDir(), "transfermatch.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.User.Names, got.User.Names)
	assert.Equal(t, cfg.Matching.DateToleranceHours, got.Matching.DateToleranceHours)
	assert.InDelta(t, cfg.Matching.ConfidenceThreshold, got.Matching.ConfidenceThreshold, 0.001)
	assert.InDelta(t, cfg.Matching.TieMargin, got.Matching.TieMargin, 0.001)
	assert.InDelta(t, cfg.Matching.MinConfidence, got.Matching.MinConfidence, 0.001)
	assert.Equal(t, cfg.Matching.DefaultPairCategory, got.Matching.DefaultPairCategory)
	require.Len(t, got.Accounts, 1)
	assert.Equal(t, "wise-usd", got.Accounts[0].Name)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, []string{"lidl", "aldi"}, got.Categories[0].Keywords)
}

func TestDefaults(t *testing.T) {
	cfg := Default("Ammar Qazi")

	assert.Equal(t, []string{"Ammar Qazi"}, cfg.User.Names)
	assert.Equal(t, 72, cfg.Matching.DateToleranceHours)
	assert.InDelta(t, 0.70, cfg.Matching.ConfidenceThreshold, 0.001)
	assert.InDelta(t, 0.05, cfg.Matching.TieMargin, 0.001)
	assert.InDelta(t, 0.50, cfg.Matching.MinConfidence, 0.001)
	assert.Equal(t, "Balance Correction", cfg.Matching.DefaultPairCategory)
	assert.Empty(t, cfg.Accounts)
}

func TestDefault_NoUser(t *testing.T) {
	cfg := Default("")
	assert.Empty(t, cfg.User.Names)
}

func TestLoad_SparseFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transfermatch.yaml")
	sparse := "user:\n  names:\n    - Ammar Qazi\n"
	require.NoError(t, os.WriteFile(path, []byte(sparse), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Ammar Qazi"}, cfg.User.Names)
	assert.Equal(t, 72, cfg.Matching.DateToleranceHours)
	assert.Equal(t, "Balance Correction", cfg.Matching.DefaultPairCategory)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Ammar Qazi")
	path := filepath.Join(t.TempDir(), "transfermatch.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "date_tolerance_hours: 72")
	assert.Contains(t, contents, "confidence_threshold: 0.7")
	assert.Contains(t, contents, "default_pair_category: Balance Correction")
}
