package results

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/maximlamare/S3-extract/model"
	"github.com/maximlamare/S3-extract/util"
	"github.com/stretchr/testify/assert"
)

func testCtx() util.LogContext {
	return &util.BasicLogContext{}
}

//writeTempRows builds a temp csv through the writer, with band columns in
//an unnatural order and rows in reverse time order.
func writeTempRows(t *testing.T, dir, site string) {
	writer := NewSiteWriter(dir, site, []string{"Oa10_radiance", "Oa2_radiance", "Oa1_radiance"})
	later := Row{
		Time:     time.Date(2018, 4, 18, 9, 0, 0, 0, time.UTC),
		Platform: model.PlatformB,
		Values: map[string]string{
			"Oa10_radiance": "10.5",
			"Oa2_radiance":  "2.5",
			"Oa1_radiance":  "1.5",
		},
	}
	earlier := Row{
		Time:     time.Date(2018, 4, 17, 10, 35, 8, 0, time.UTC),
		Platform: model.PlatformA,
		Values: map[string]string{
			"Oa10_radiance": "10.25",
			"Oa2_radiance":  "NA",
			"Oa1_radiance":  "1.25",
		},
	}
	assert.Nil(t, writer.Append(later))
	assert.Nil(t, writer.Append(earlier))
	assert.Nil(t, writer.Close())
}

func TestFinalize(t *testing.T) {
	// Mock
	dir := t.TempDir()
	writeTempRows(t, dir, "summit")

	// Tested code
	err := Finalize(testCtx(), dir, "summit")

	// Asserts: columns in natural order, rows in time order, temp removed
	assert.Nil(t, err, "Expected finalize to succeed; got: %v", err)
	lines := readLines(t, FinalPath(dir, "summit"))
	assert.Equal(t, []string{
		"year,month,day,hour,minute,second,dayofyear,platform,Oa1_radiance,Oa2_radiance,Oa10_radiance",
		"2018,4,17,10,35,8,107,0,1.25,NA,10.25",
		"2018,4,18,9,0,0,108,1,1.5,2.5,10.5",
	}, lines)
	_, statErr := os.Stat(TempPath(dir, "summit"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFinalize_AppendsToExistingFinal(t *testing.T) {
	// Mock: a final csv from an earlier run plus a fresh temp file
	dir := t.TempDir()
	writeTempRows(t, dir, "summit")
	assert.Nil(t, Finalize(testCtx(), dir, "summit"))
	writeTempRows(t, dir, "summit")

	// Tested code
	err := Finalize(testCtx(), dir, "summit")

	// Asserts: four data rows, one header
	assert.Nil(t, err)
	lines := readLines(t, FinalPath(dir, "summit"))
	assert.Len(t, lines, 5)
	assert.Equal(t, "year,month,day,hour,minute,second,dayofyear,platform,Oa1_radiance,Oa2_radiance,Oa10_radiance", lines[0])
}

func TestFinalize_MissingTemp(t *testing.T) {
	// Tested code
	err := Finalize(testCtx(), t.TempDir(), "summit")

	// Asserts
	assert.NotNil(t, err)
}

func TestFinalize_RejectsForeignCsv(t *testing.T) {
	// Mock: an unrelated csv that happens to carry the temp suffix
	dir := t.TempDir()
	err := os.WriteFile(TempPath(dir, "summit"), []byte("a,b,c\n1,2,3\n"), 0644)
	assert.Nil(t, err)

	// Tested code
	err = Finalize(testCtx(), dir, "summit")

	// Asserts: refused, and the file left alone
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "does not look like a site temp file")
	_, statErr := os.Stat(TempPath(dir, "summit"))
	assert.Nil(t, statErr)
}

func TestRecover(t *testing.T) {
	// Mock: two orphaned temp files, a finished csv and an unrelated file
	dir := t.TempDir()
	writeTempRows(t, dir, "summit")
	writeTempRows(t, dir, "egp")
	assert.Nil(t, os.WriteFile(FinalPath(dir, "done"), []byte("year\n"), 0644))
	assert.Nil(t, os.WriteFile(filepath.Join(dir, FailedLogName), []byte("scene: reason\n"), 0644))

	// Tested code
	recovered, err := Recover(testCtx(), dir)

	// Asserts
	assert.Nil(t, err)
	sort.Strings(recovered)
	assert.Equal(t, []string{"egp", "summit"}, recovered)
	for _, site := range recovered {
		_, statErr := os.Stat(FinalPath(dir, site))
		assert.Nil(t, statErr, "Expected a final csv for %s", site)
		_, statErr = os.Stat(TempPath(dir, site))
		assert.True(t, os.IsNotExist(statErr), "Expected the temp csv of %s to be gone", site)
	}
}

func TestRecover_SkipsBrokenTemp(t *testing.T) {
	// Mock: one healthy temp file, one that is not a temp csv at all
	dir := t.TempDir()
	writeTempRows(t, dir, "summit")
	assert.Nil(t, os.WriteFile(TempPath(dir, "broken"), []byte("a,b\n"), 0644))

	// Tested code
	recovered, err := Recover(testCtx(), dir)

	// Asserts: the healthy site is recovered, the broken file stays put
	assert.Nil(t, err)
	assert.Equal(t, []string{"summit"}, recovered)
	_, statErr := os.Stat(TempPath(dir, "broken"))
	assert.Nil(t, statErr)
}

func TestRecover_EmptyFolder(t *testing.T) {
	// Tested code
	recovered, err := Recover(testCtx(), t.TempDir())

	// Asserts
	assert.Nil(t, err)
	assert.Empty(t, recovered)
}

func TestNaturalLess(t *testing.T) {
	// Tested code & Asserts
	assert.True(t, naturalLess("Oa2_radiance", "Oa10_radiance"))
	assert.False(t, naturalLess("Oa10_radiance", "Oa2_radiance"))
	assert.True(t, naturalLess("Oa02_radiance", "Oa10_radiance"))
	assert.True(t, naturalLess("band_1", "band_2"))
	assert.True(t, naturalLess("albedo", "ndsi"))
	assert.True(t, naturalLess("S1", "S1_radiance"))
	assert.False(t, naturalLess("ndsi", "ndsi"))
}

func TestRunStats(t *testing.T) {
	// Mock
	stats := &RunStats{}

	// Tested code
	stats.CountRow(true)
	stats.CountRow(true)
	stats.CountRow(false)
	stats.CountFailure()

	// Asserts
	assert.Equal(t, 1, stats.Failures())
	assert.Equal(t, "4 scenes processed: 3 rows written, 1 out of bounds, 1 failed", stats.Summary())
}
