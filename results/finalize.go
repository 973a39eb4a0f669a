package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/maximlamare/S3-extract/util"
)

//Finalize turns a site's temp csv into <site>.csv: value columns in natural
//order, rows in time order, NA cells preserved. The temp file is removed on
//success. Finalizing into an existing final csv appends to it.
func Finalize(ctx util.LogContext, dir, site string) error {
	tempPath := TempPath(dir, site)
	header, rows, err := readTemp(tempPath)
	if err != nil {
		return err
	}

	order := columnOrder(header)
	sortRows(rows)

	if err := appendFinal(FinalPath(dir, site), header, rows, order); err != nil {
		return err
	}
	if err := os.Remove(tempPath); err != nil {
		return fmt.Errorf("removing %s: %v", tempPath, err)
	}
	util.LogInfo(ctx, fmt.Sprintf("Finalized %d rows for site %s", len(rows), site))
	return nil
}

//readTemp loads a temp csv and checks it carries the datetime block, so a
//stray csv that happens to end in _tmp.csv is not mangled.
func readTemp(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %v", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %v", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", path)
	}
	header := records[0]
	if len(header) < len(dtColumns) {
		return nil, nil, fmt.Errorf("%s does not look like a site temp file", path)
	}
	for i, name := range dtColumns {
		if header[i] != name {
			return nil, nil, fmt.Errorf("%s does not look like a site temp file", path)
		}
	}
	return header, records[1:], nil
}

//columnOrder maps output positions to input positions: the datetime block
//stays put, value columns are natural-sorted behind it.
func columnOrder(header []string) []int {
	type column struct {
		name  string
		index int
	}
	values := make([]column, 0, len(header)-len(dtColumns))
	for i := len(dtColumns); i < len(header); i++ {
		values = append(values, column{header[i], i})
	}
	sort.SliceStable(values, func(i, j int) bool { return naturalLess(values[i].name, values[j].name) })

	order := make([]int, 0, len(header))
	for i := range dtColumns {
		order = append(order, i)
	}
	for _, value := range values {
		order = append(order, value.index)
	}
	return order
}

//sortRows orders rows chronologically using the datetime block.
func sortRows(rows [][]string) {
	sort.SliceStable(rows, func(i, j int) bool { return timeKey(rows[i]) < timeKey(rows[j]) })
}

//timeKey builds a zero-padded sort key from the datetime cells so plain
//string order is chronological.
func timeKey(record []string) string {
	var key strings.Builder
	for i, width := range []int{4, 2, 2, 2, 2, 2} {
		value := 0
		if i < len(record) {
			value, _ = strconv.Atoi(record[i])
		}
		fmt.Fprintf(&key, "%0*d", width, value)
	}
	return key.String()
}

//appendFinal writes the reordered rows, emitting the header only when the
//final file is new.
func appendFinal(path string, header []string, rows [][]string, order []int) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %v", path, err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("opening %s: %v", path, err)
	}

	writer := csv.NewWriter(file)
	if info.Size() == 0 {
		writer.Write(reorder(header, order))
	}
	for _, row := range rows {
		writer.Write(reorder(row, order))
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("writing %s: %v", path, err)
	}
	return nil
}

func reorder(record []string, order []int) []string {
	out := make([]string, 0, len(order))
	for _, index := range order {
		if index < len(record) {
			out = append(out, record[index])
		} else {
			out = append(out, "NA")
		}
	}
	return out
}

//Recover finalizes every orphaned temp csv under dir, returning the sites
//that were recovered. A temp file that cannot be finalized is logged and
//left in place for inspection.
func Recover(ctx util.LogContext, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("output folder %s: %v", dir, err)
	}

	var recovered []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, tempSuffix) {
			continue
		}
		site := strings.TrimSuffix(name, tempSuffix)
		if site == "" {
			continue
		}
		if err := Finalize(ctx, dir, site); err != nil {
			util.LogSimpleErr(ctx, fmt.Sprintf("Recovery of site %s failed", site), err)
			continue
		}
		recovered = append(recovered, site)
	}
	return recovered, nil
}

//naturalLess orders names with embedded numbers by numeric value, so
//Oa2_radiance sorts before Oa10_radiance.
func naturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			numberA, restA := takeNumber(a)
			numberB, restB := takeNumber(b)
			if numberA != numberB {
				return numberA < numberB
			}
			a, b = restA, restB
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func takeNumber(s string) (int64, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	value, _ := strconv.ParseInt(s[:i], 10, 64)
	return value, s[i:]
}
