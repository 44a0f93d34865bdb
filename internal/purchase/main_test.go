package purchase

import (
	"os"
	"testing"

	"premiumbot/core/logger"
)

// TestMain initializes the global logger the same way bootstrap does in
// production, so code under test can log without a nil *slog.Logger panic.
func TestMain(m *testing.M) {
	if err := logger.InitLogger(nil); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
