package deps

import (
	"time"

	"github.com/linkmarkhq/linkmark/internal/auditor"
	"github.com/linkmarkhq/linkmark/internal/dispatch"
	"github.com/linkmarkhq/linkmark/internal/importer"
	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/store/sqlite"
)

type Deps struct {
	Logger      logger.Logger
	StartTime   time.Time
	Version     string
	Commit      string
	BuildDate   string
	GoVersion   string
	Store       *sqlite.Store
	Coordinator *dispatch.Coordinator
	Importer    *importer.Importer
	Auditor     *auditor.Auditor
}
