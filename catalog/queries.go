package catalog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/maximlamare/S3-extract/model"
)

const sceneColumns = `product_id, platform, instrument, acquired, footprint,
	min_lon, min_lat, max_lon, max_lat, path, last_status, last_extracted_at`

const upsertSceneSQL = `
	INSERT INTO scenes
		(product_id, platform, instrument, acquired, footprint,
		min_lon, min_lat, max_lon, max_lat, path, ingested_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (product_id) DO UPDATE SET
		platform = excluded.platform,
		instrument = excluded.instrument,
		acquired = excluded.acquired,
		footprint = excluded.footprint,
		min_lon = excluded.min_lon,
		min_lat = excluded.min_lat,
		max_lon = excluded.max_lon,
		max_lat = excluded.max_lat,
		path = excluded.path,
		ingested_at = excluded.ingested_at`

func upsertArgs(scn *IndexedScene) []interface{} {
	return []interface{}{
		scn.ProductID,
		scn.Platform,
		scn.Instrument,
		scn.Acquired.UTC().Format(time.RFC3339),
		scn.Footprint.String(),
		scn.MinLon,
		scn.MinLat,
		scn.MaxLon,
		scn.MaxLat,
		scn.Path,
		time.Now().UTC().Format(time.RFC3339),
	}
}

// UpsertScene inserts a scene row, or refreshes every column of an existing
// row with the same product ID. Repeat ingests of a moved archive update the
// stored paths this way.
func UpsertScene(db *sql.DB, scn *IndexedScene) error {
	_, err := db.Exec(upsertSceneSQL, upsertArgs(scn)...)
	return err
}

// GetSceneByID looks a single scene up by its product folder name. Missing
// scenes return sql.ErrNoRows.
func GetSceneByID(tx *sql.Tx, productID string) (*IndexedScene, error) {
	rows, err := tx.Query(`
		SELECT `+sceneColumns+`
		FROM scenes
		WHERE product_id = ?
		LIMIT 1`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}

	return scanScene(rows)
}

// SearchFilter narrows a catalog search. A nil Bbox, an empty Platform (or
// "AB") and zero times leave their dimension unfiltered.
type SearchFilter struct {
	Bbox        geojson.BoundingBox
	Platform    string
	MinAcquired time.Time
	MaxAcquired time.Time
}

// SearchScenes returns the cataloged scenes matching the filter in
// acquisition order. The bbox is applied twice: the flattened bbox columns
// prefilter in SQL, then each candidate footprint is tested exactly.
func SearchScenes(tx *sql.Tx, filter SearchFilter) ([]*IndexedScene, error) {
	maxAcquired := filter.MaxAcquired
	if maxAcquired.IsZero() {
		maxAcquired = time.Now()
	}

	query := `SELECT ` + sceneColumns + ` FROM scenes WHERE acquired >= ? AND acquired <= ?`
	args := []interface{}{
		filter.MinAcquired.UTC().Format(time.RFC3339),
		maxAcquired.UTC().Format(time.RFC3339),
	}

	if len(filter.Bbox) >= 4 {
		query += ` AND max_lon >= ? AND min_lon <= ? AND max_lat >= ? AND min_lat <= ?`
		args = append(args, filter.Bbox[0], filter.Bbox[2], filter.Bbox[1], filter.Bbox[3])
	}

	if platform := strings.ToUpper(filter.Platform); platform == model.PlatformA || platform == model.PlatformB {
		query += ` AND platform = ?`
		args = append(args, platform)
	}

	query += ` ORDER BY acquired`

	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenes []*IndexedScene
	for rows.Next() {
		scn, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		if len(filter.Bbox) >= 4 && !scn.OverlapsBbox(filter.Bbox) {
			continue
		}
		scenes = append(scenes, scn)
	}

	return scenes, rows.Err()
}

// MarkExtracted stamps the advisory extraction outcome on a cataloged scene.
// The returned flag tells whether a row was there to stamp.
func MarkExtracted(db *sql.DB, productID string, status string, when time.Time) (bool, error) {
	result, err := db.Exec(
		`UPDATE scenes SET last_status = ?, last_extracted_at = ? WHERE product_id = ?`,
		status, when.UTC().Format(time.RFC3339), productID)
	if err != nil {
		return false, err
	}
	updated, err := result.RowsAffected()
	return updated > 0, err
}

// PurgeScenes empties the scenes table, keeping the schema in place
func PurgeScenes(db *sql.DB) (int64, error) {
	result, err := db.Exec(`DELETE FROM scenes`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Times are stored as RFC 3339 UTC text so lexicographic comparison in SQL
// matches chronological order.
func scanScene(rows *sql.Rows) (*IndexedScene, error) {
	scn := IndexedScene{}
	var acquired string
	var footprintBytes []byte
	var lastStatus, lastExtractedAt sql.NullString

	err := rows.Scan(
		&scn.ProductID, &scn.Platform, &scn.Instrument, &acquired, &footprintBytes,
		&scn.MinLon, &scn.MinLat, &scn.MaxLon, &scn.MaxLat, &scn.Path,
		&lastStatus, &lastExtractedAt)
	if err != nil {
		return nil, err
	}

	if scn.Acquired, err = time.Parse(time.RFC3339, acquired); err != nil {
		return nil, fmt.Errorf("scene %s has a bad acquisition time: %v", scn.ProductID, err)
	}

	if scn.Footprint, err = geojson.PolygonFromBytes(footprintBytes); err != nil {
		return nil, fmt.Errorf("scene %s has a bad footprint: %v", scn.ProductID, err)
	}

	scn.LastStatus = lastStatus.String
	if lastExtractedAt.String != "" {
		if scn.LastExtractedAt, err = time.Parse(time.RFC3339, lastExtractedAt.String); err != nil {
			return nil, fmt.Errorf("scene %s has a bad extraction time: %v", scn.ProductID, err)
		}
	}

	return &scn, nil
}
