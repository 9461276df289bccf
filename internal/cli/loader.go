package cli

import (
	"log/slog"

	"github.com/rawdlite/onboardsync/internal/config"
	"github.com/rawdlite/onboardsync/internal/couch"
	"github.com/rawdlite/onboardsync/internal/directory"
	"github.com/rawdlite/onboardsync/internal/engine"
	"github.com/rawdlite/onboardsync/internal/journal"
	"github.com/rawdlite/onboardsync/internal/tracker"
)

// runtime is everything a command needs once the configuration is
// loaded: the engine over the three live clients plus the journal.
type runtime struct {
	cfg     config.Config
	journal *journal.Store
	engine  *engine.Engine
}

// loadRuntime builds the collaborator clients and the engine from the
// configuration file. The caller owns Close.
func loadRuntime(opts *RootOptions) (*runtime, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configuration", err)
	}

	journalPath := cfg.JournalPath()
	if opts.Journal != "" {
		journalPath = opts.Journal
	}
	store, err := journal.Open(journalPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open journal", err)
	}

	docs := couch.New(cfg.CouchDB.URL, cfg.CouchDB.Database, cfg.CouchDB.Username, cfg.CouchDB.Password)

	trackerOpts := []tracker.Option{
		tracker.WithFieldMapping(cfg.Tracker.FieldMapping()),
		tracker.WithStatusTable(cfg.Tracker.StatusTable()),
	}
	if cfg.Tracker.PageSize > 0 {
		trackerOpts = append(trackerOpts, tracker.WithPageSize(cfg.Tracker.PageSize))
	}
	track := tracker.New(cfg.Tracker.URL, cfg.Tracker.APIKey, cfg.Tracker.ProjectID, trackerOpts...)

	dir := directory.New(cfg.Directory.URL, cfg.Directory.Username, cfg.Directory.Password)

	eng := engine.New(docs, track, dir,
		engine.WithJournal(store),
		engine.WithLogger(slog.Default()),
		engine.WithStatusTable(cfg.Tracker.StatusTable()),
	)

	return &runtime{cfg: cfg, journal: store, engine: eng}, nil
}

// Close releases the journal.
func (rt *runtime) Close() {
	if err := rt.journal.Close(); err != nil {
		slog.Error("error closing journal", "error", err)
	}
}
