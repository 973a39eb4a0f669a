package migration

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(Up00002, Down00002)
}

// Up00002 adds the advisory extraction bookkeeping columns to the scenes
// table. SQLite takes one ADD COLUMN per statement.
func Up00002(tx *sql.Tx) error {
	if _, err := tx.Exec(`ALTER TABLE scenes ADD COLUMN last_status TEXT;`); err != nil {
		return err
	}
	_, err := tx.Exec(`ALTER TABLE scenes ADD COLUMN last_extracted_at TEXT;`)
	return err
}

// Down00002 undoes the effects of Up00002
func Down00002(tx *sql.Tx) error {
	if _, err := tx.Exec(`ALTER TABLE scenes DROP COLUMN last_status;`); err != nil {
		return err
	}
	_, err := tx.Exec(`ALTER TABLE scenes DROP COLUMN last_extracted_at;`)
	return err
}
