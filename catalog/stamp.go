package catalog

import (
	"database/sql"
	"os"
	"sync"
	"time"

	"github.com/maximlamare/S3-extract/util"
)

// Extraction outcomes stamped on cataloged scenes
const (
	StatusOK          = "ok"
	StatusOutOfBounds = "out_of_bounds"
	StatusFailed      = "failed"
)

// Stamper records extraction outcomes on cataloged scenes. The catalog is
// advisory bookkeeping: extraction runs never fail because stamping does,
// and a missing catalog disables stamping altogether. Safe for concurrent
// use by extraction workers.
type Stamper struct {
	ctx util.LogContext
	db  *sql.DB

	mu       sync.Mutex
	disabled bool
}

// NewStamper opens the catalog for stamping. It returns nil when there is
// no catalog file; a nil Stamper is safe to use and does nothing.
func NewStamper(ctx util.LogContext, connectionProvider ConnectionProvider) *Stamper {
	if _, err := os.Stat(util.GetCatalogPath()); err != nil {
		return nil
	}

	db, err := connectionProvider(ctx)
	if err != nil {
		util.LogAlert(ctx, "A scene catalog exists but could not be opened. Extraction outcomes will not be recorded.")
		return nil
	}

	return &Stamper{ctx: ctx, db: db}
}

// Stamp records the outcome of an extraction run on one scene. Scenes that
// were never ingested are silently left alone.
func (s *Stamper) Stamp(productID string, status string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return
	}

	if _, err := MarkExtracted(s.db, productID, status, time.Now()); err != nil {
		// One failure means the schema is missing or the file is locked
		// for good; stop trying rather than alerting once per scene.
		s.disabled = true
		util.LogAlert(s.ctx, "Could not record an extraction outcome in the catalog. Giving up on stamping for this run.")
	}
}

// Close releases the catalog connection
func (s *Stamper) Close() {
	if s != nil && s.db != nil {
		s.db.Close()
	}
}
