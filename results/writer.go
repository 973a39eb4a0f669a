package results

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/maximlamare/S3-extract/model"
)

//Datetime columns at the front of every per-site csv, in order.
var dtColumns = []string{"year", "month", "day", "hour", "minute", "second", "dayofyear", "platform"}

const tempSuffix = "_tmp.csv"

//FailedLogName is the side log of scenes that failed outright.
const FailedLogName = "failed_log.txt"

//TempPath returns the in-progress csv of a site.
func TempPath(dir, site string) string {
	return filepath.Join(dir, site+tempSuffix)
}

//FinalPath returns the finished csv of a site.
func FinalPath(dir, site string) string {
	return filepath.Join(dir, site+".csv")
}

//FormatValue renders one numeric cell, NA when the value is not available.
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

//SnowColumns returns the value columns of a snow run.
func SnowColumns(withTerrain bool) []string {
	columns := append([]string{}, model.SnowProductNames...)
	columns = append(columns, "auto_cloud")
	if withTerrain {
		columns = append(columns, "slope", "aspect", "elevation")
	}
	return columns
}

//Row is one scene's worth of cells, keyed by column name. Columns absent
//from Values are written as NA.
type Row struct {
	Time     time.Time
	Platform string
	Values   map[string]string
}

//SnowRow flattens a snow result into csv cells.
func SnowRow(result *model.SnowSceneResult) Row {
	row := Row{Time: result.Acquired, Platform: result.Platform, Values: map[string]string{}}
	if result.Valid {
		row.Values["grain_diameter"] = FormatValue(result.GrainDiameter)
		row.Values["snow_specific_area"] = FormatValue(result.SnowSpecificArea)
		row.Values["albedo_bb_planar_sw"] = FormatValue(result.AlbedoBBPlanarSW)
		row.Values["albedo_spectral_planar_1020"] = FormatValue(result.AlbedoSpectralPlanar1020)
		row.Values["rBRR_21"] = FormatValue(result.RBRR21)
		row.Values["ndsi"] = FormatValue(result.NDSI)
		row.Values["ice_indicator"] = FormatValue(result.IceIndicator)
		if result.AutoCloud >= 0 {
			row.Values["auto_cloud"] = strconv.Itoa(result.AutoCloud)
		}
	}
	//Terrain cells describe the site, not the scene, so they are written
	//even when the pixel values are not available.
	if result.TerrainData != nil {
		row.Values["slope"] = FormatValue(result.Slope)
		row.Values["aspect"] = FormatValue(result.Aspect)
		row.Values["elevation"] = FormatValue(result.Elevation)
	}
	return row
}

//BandRow flattens a band result into csv cells.
func BandRow(result *model.BandSceneResult) Row {
	row := Row{Time: result.Acquired, Platform: result.Platform, Values: map[string]string{}}
	if result.Valid {
		for name, value := range result.Values {
			row.Values[name] = FormatValue(value)
		}
	}
	return row
}

//SiteWriter appends rows to a site's temp csv, writing the header the first
//time the file is used. Safe for concurrent appends.
type SiteWriter struct {
	Site string

	mu      sync.Mutex
	path    string
	columns []string
	file    *os.File
	csv     *csv.Writer
}

//NewSiteWriter prepares a writer for dir/<site>_tmp.csv with the given value
//columns behind the datetime block. Nothing is written until the first
//Append, so a site with no scenes leaves no file behind.
func NewSiteWriter(dir, site string, columns []string) *SiteWriter {
	return &SiteWriter{Site: site, path: TempPath(dir, site), columns: append([]string{}, columns...)}
}

//Append writes one row.
func (w *SiteWriter) Append(row Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.csv == nil {
		if err := w.open(); err != nil {
			return err
		}
	}

	record := dtCells(row.Time, row.Platform)
	for _, column := range w.columns {
		value, has := row.Values[column]
		if !has {
			value = "NA"
		}
		record = append(record, value)
	}
	w.csv.Write(record)
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("writing %s: %v", w.path, err)
	}
	return nil
}

//open opens the temp file for appending, emitting the header only when the
//file is new so an interrupted run can resume into it.
func (w *SiteWriter) open() error {
	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %v", w.path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("opening %s: %v", w.path, err)
	}
	w.file = file
	w.csv = csv.NewWriter(file)
	if info.Size() == 0 {
		w.csv.Write(append(append([]string{}, dtColumns...), w.columns...))
		w.csv.Flush()
		if err := w.csv.Error(); err != nil {
			return fmt.Errorf("writing %s: %v", w.path, err)
		}
	}
	return nil
}

//Close flushes and closes the temp file. Appending again reopens it.
func (w *SiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	w.csv.Flush()
	err := w.csv.Error()
	if closeErr := w.file.Close(); err == nil {
		err = closeErr
	}
	w.file, w.csv = nil, nil
	return err
}

func dtCells(t time.Time, platform string) []string {
	return []string{
		strconv.Itoa(t.Year()),
		strconv.Itoa(int(t.Month())),
		strconv.Itoa(t.Day()),
		strconv.Itoa(t.Hour()),
		strconv.Itoa(t.Minute()),
		strconv.Itoa(t.Second()),
		strconv.Itoa(t.YearDay()),
		strconv.Itoa(model.PlatformNumber(platform)),
	}
}

//BoundsWriter streams footprint flags for a whole run into one csv.
type BoundsWriter struct {
	path string
	file *os.File
	csv  *csv.Writer
}

//NewBoundsWriter creates path and writes the header.
func NewBoundsWriter(path string) (*BoundsWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %v", path, err)
	}
	w := &BoundsWriter{path: path, file: file, csv: csv.NewWriter(file)}
	w.csv.Write([]string{"scene", "site", "in_bounds"})
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		file.Close()
		return nil, fmt.Errorf("writing %s: %v", path, err)
	}
	return w, nil
}

//Append writes one scene/site flag, 1 inside and 0 outside.
func (w *BoundsWriter) Append(sceneName, site string, inBounds bool) error {
	flag := "0"
	if inBounds {
		flag = "1"
	}
	w.csv.Write([]string{sceneName, site, flag})
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("writing %s: %v", w.path, err)
	}
	return nil
}

//Close closes the flags csv.
func (w *BoundsWriter) Close() error {
	w.csv.Flush()
	err := w.csv.Error()
	if closeErr := w.file.Close(); err == nil {
		err = closeErr
	}
	return err
}

//FailureLog appends scene failures to failed_log.txt next to the outputs.
type FailureLog struct {
	mu   sync.Mutex
	path string
}

//NewFailureLog points a failure log at dir/failed_log.txt.
func NewFailureLog(dir string) *FailureLog {
	return &FailureLog{path: filepath.Join(dir, FailedLogName)}
}

//Record appends one "scene name: reason" line.
func (l *FailureLog) Record(sceneName string, reason error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening failure log: %v", err)
	}
	defer file.Close()
	if _, err := fmt.Fprintf(file, "%s: %v\n", sceneName, reason); err != nil {
		return fmt.Errorf("writing failure log: %v", err)
	}
	return nil
}
