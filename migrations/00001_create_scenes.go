package migration

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(Up00001, Down00001)
}

// Up00001 creates the scenes table, one row per Sentinel-3 product folder.
// The footprint is stored as GeoJSON text; its bounding box is flattened
// into indexed columns so discover queries can prefilter without parsing
// geometry in SQL.
func Up00001(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE scenes
		(
			product_id  TEXT NOT NULL,
			platform    TEXT NOT NULL,
			instrument  TEXT NOT NULL,
			acquired    TEXT NOT NULL,
			footprint   TEXT NOT NULL,
			min_lon     REAL NOT NULL,
			min_lat     REAL NOT NULL,
			max_lon     REAL NOT NULL,
			max_lat     REAL NOT NULL,
			path        TEXT NOT NULL,
			ingested_at TEXT NOT NULL,
			CONSTRAINT scenes_pk_product_id PRIMARY KEY (product_id)
		);

		CREATE INDEX idx_scenes_acquired ON scenes (acquired);

		CREATE INDEX idx_scenes_bbox ON scenes (min_lon, max_lon, min_lat, max_lat);
		`)

	return err
}

// Down00001 undoes the db changes.
func Down00001(tx *sql.Tx) error {
	_, err := tx.Exec(`
		DROP INDEX IF EXISTS idx_scenes_bbox;
		DROP INDEX IF EXISTS idx_scenes_acquired;
		DROP TABLE IF EXISTS scenes;
		`)
	return err
}
