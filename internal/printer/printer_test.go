package printer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Error prints its rich output to stderr; the returned error carries only
// the title so Cobra (with SilenceErrors) does not print it a second time.
func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		err := Error("Database unreachable", "Could not open the configured database", nil)
		require.Error(t, err)
		require.Equal(t, "Database unreachable", err.Error())
	})

	t.Run("single suggestion", func(t *testing.T) {
		err := Error("Redis unreachable", "Ping failed", []string{"Check that redis is running"})
		require.Equal(t, "Redis unreachable", err.Error())
	})

	t.Run("multiple suggestions", func(t *testing.T) {
		err := Error("Invalid configuration", "", []string{
			"Fix corkd.yml",
			"Override with CORKD_* environment variables",
		})
		require.Equal(t, "Invalid configuration", err.Error())
	})
}
