package terrain

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/maximlamare/S3-extract/model"
)

//Record is one row of the terrain characteristics csv.
type Record struct {
	Site      string  `csv:"site"`
	Slope     float64 `csv:"slope"`
	Aspect    float64 `csv:"aspect"`
	Elevation float64 `csv:"elevation"`
}

//Table holds per-site terrain characteristics, keyed by site name.
type Table struct {
	records map[string]*Record
}

//Load reads a terrain csv with a site,slope,aspect,elevation header.
//Later rows win when a site appears twice.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening terrain file: %v", err)
	}
	defer file.Close()

	var records []*Record
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, fmt.Errorf("parsing terrain file %s: %v", path, err)
	}

	table := &Table{records: make(map[string]*Record, len(records))}
	for _, record := range records {
		table.records[record.Site] = record
	}
	return table, nil
}

//Lookup returns the terrain data for a site, or nil when the table has none.
//A nil table is a valid empty table, so callers can skip the terrain file
//entirely.
func (t *Table) Lookup(site string) *model.TerrainData {
	if t == nil {
		return nil
	}
	record, ok := t.records[site]
	if !ok {
		return nil
	}
	return &model.TerrainData{Slope: record.Slope, Aspect: record.Aspect, Elevation: record.Elevation}
}
