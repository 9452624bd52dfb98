package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func withBuild(t *testing.T, v, c, d string) {
	t.Helper()
	prevV, prevC, prevD := version, commit, date
	version, commit, date = v, c, d
	t.Cleanup(func() { version, commit, date = prevV, prevC, prevD })
}

func TestDefaultsAreSet(t *testing.T) {
	v, c, d := Info()
	require.NotEmpty(t, v)
	require.NotEmpty(t, c)
	require.NotEmpty(t, d)
}

func TestLdflagsValuesAreExposed(t *testing.T) {
	withBuild(t, "1.4.0", "abc123", "2026-10-01")

	require.Equal(t, "1.4.0", GetVersion())
	require.Equal(t, "abc123", GetCommit())
	require.Equal(t, "2026-10-01", GetDate())
	require.Equal(t, "version=1.4.0 commit=abc123 date=2026-10-01", String())
}

func TestFieldsForStructuredLog(t *testing.T) {
	withBuild(t, "1.4.0", "abc123", "2026-10-01")

	require.Equal(t, map[string]any{
		"version":    "1.4.0",
		"commit":     "abc123",
		"build_date": "2026-10-01",
	}, Fields())
}
