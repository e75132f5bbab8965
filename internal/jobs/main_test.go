package jobs

import (
	"os"
	"testing"

	"github.com/AndersonAGodoy/noah-server/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger()
	os.Exit(m.Run())
}
