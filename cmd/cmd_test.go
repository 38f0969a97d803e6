package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"roster-sync/core/config"
	"roster-sync/core/reconcile"
	"roster-sync/feature/baserow"
	"roster-sync/feature/membership"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPrintDrift(t *testing.T) {
	var buf bytes.Buffer
	printDrift(&buf, &reconcile.Drift{
		Extra:   []string{"7"},
		Missing: []string{"3", "4"},
		Issues: map[string][]string{
			"2": {"Wrong email: a@x.com != b@x.com", "Missing tag Team: Core"},
		},
	})

	assert.Equal(t, `### Extra ids (present in the mailing list, but not in the roster)
7
### Missing ids (missing in the mailing list, but present in the roster)
3
4
Found issues with id=2:
    Wrong email: a@x.com != b@x.com
    Missing tag Team: Core
`, buf.String())
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &membership.Report{
		RunID:     "run-1",
		StartedAt: time.Now(),
		DryRun:    true,
		Result: &reconcile.Result{
			Warnings:   []string{"something odd"},
			Operations: []reconcile.Operation{reconcile.DeleteSubscriber{Email: "a@x.com"}},
			Summary:    reconcile.Summary{Deletes: 1},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "=== Sync Report (dry-run) ===")
	assert.Contains(t, out, "something odd")
	assert.Contains(t, out, `delete email="a@x.com"`)
	assert.Contains(t, out, "Adds: 0, Edits: 0, Deletes: 1, Skipped: 0")
}

func TestConfirmDestructiveAction(t *testing.T) {
	var out bytes.Buffer

	assert.True(t, confirmDestructiveAction(strings.NewReader(""), &out, true))
	assert.True(t, confirmDestructiveAction(strings.NewReader("yes\n"), &out, false))
	assert.True(t, confirmDestructiveAction(strings.NewReader("yes"), &out, false))
	assert.False(t, confirmDestructiveAction(strings.NewReader("y\n"), &out, false))
	assert.False(t, confirmDestructiveAction(strings.NewReader(""), &out, false))
}

func TestNewSource(t *testing.T) {
	t.Run("Unsupported", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Source.Provider = "airtable"

		_, err := newSource(cfg, zap.NewNop())
		assert.ErrorContains(t, err, `unsupported roster provider "airtable"`)
	})

	t.Run("BaserowRequiresTable", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Source.Provider = ProviderBaserow

		_, err := newSource(cfg, zap.NewNop())
		assert.ErrorIs(t, err, baserow.ErrTableRequired)
	})

	t.Run("Baserow", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Baserow.TableID = 12

		src, err := newSource(cfg, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &baserow.Client{}, src)
	})
}

func TestNewArchive_Disabled(t *testing.T) {
	archive, err := newArchive(&config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, archive)
}
