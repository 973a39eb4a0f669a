package sites

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/maximlamare/S3-extract/util"
)

//SceneListFileName is the per-site scene list read in batch mode.
const SceneListFileName = "time_search.csv"

//Site is one measurement location that pixel values are extracted for.
//The name doubles as the base name of the site's output csv.
type Site struct {
	Name string
	Lat  float64
	Lon  float64
}

//Validate checks that the site can be used as an extraction target.
func (s Site) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("site has no name")
	}
	if strings.ContainsAny(s.Name, `/\`) || s.Name == "." || s.Name == ".." {
		return fmt.Errorf("site name %q cannot be used as a file name", s.Name)
	}
	if math.IsNaN(s.Lat) || s.Lat < -90 || s.Lat > 90 {
		return fmt.Errorf("site %s: latitude %v out of range", s.Name, s.Lat)
	}
	if math.IsNaN(s.Lon) || s.Lon < -180 || s.Lon > 180 {
		return fmt.Errorf("site %s: longitude %v out of range", s.Name, s.Lon)
	}
	return nil
}

//LoadSites reads a site,lat,lon csv. A first row whose coordinates do not
//parse as numbers is treated as a header and skipped.
func LoadSites(path string) ([]Site, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sites file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var sitesFound []Site
	seen := map[string]bool{}
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading sites file %s: %v", path, err)
		}
		row++
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("sites file %s row %d: want site,lat,lon, got %d columns", path, row, len(record))
		}

		site, parseErr := parseSiteRecord(record)
		if parseErr != nil {
			if row == 1 {
				continue
			}
			return nil, fmt.Errorf("sites file %s row %d: %v", path, row, parseErr)
		}
		if err := site.Validate(); err != nil {
			return nil, fmt.Errorf("sites file %s row %d: %v", path, row, err)
		}
		if seen[site.Name] {
			return nil, fmt.Errorf("sites file %s row %d: duplicate site %s", path, row, site.Name)
		}
		seen[site.Name] = true
		sitesFound = append(sitesFound, site)
	}

	if len(sitesFound) == 0 {
		return nil, fmt.Errorf("sites file %s contains no sites", path)
	}
	return sitesFound, nil
}

func parseSiteRecord(record []string) (Site, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return Site{}, fmt.Errorf("bad latitude %q", record[1])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return Site{}, fmt.Errorf("bad longitude %q", record[2])
	}
	return Site{Name: strings.TrimSpace(record[0]), Lat: lat, Lon: lon}, nil
}

//SiteList couples a site with the scene names queued for it.
type SiteList struct {
	Site   Site
	Scenes []string
	Path   string
}

//LoadSiteList reads a per-site scene list csv. The first row holds the site
//as site,lat,lon, the second row is always treated as a header for the scene
//names, and every following row names one scene in its first column.
func LoadSiteList(path string) (*SiteList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scene list: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("scene list %s has no site row: %v", path, err)
	}
	if len(first) < 3 {
		return nil, fmt.Errorf("scene list %s: site row wants site,lat,lon, got %d columns", path, len(first))
	}
	site, err := parseSiteRecord(first)
	if err != nil {
		return nil, fmt.Errorf("scene list %s: %v", path, err)
	}
	if err := site.Validate(); err != nil {
		return nil, fmt.Errorf("scene list %s: %v", path, err)
	}

	list := &SiteList{Site: site, Path: path}
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading scene list %s: %v", path, err)
		}
		row++
		if row == 2 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		list.Scenes = append(list.Scenes, name)
	}
	return list, nil
}

//FindSiteLists loads fileName from every immediate child directory of root
//that has one, sorted by site name. Directories with an unreadable list are
//skipped with an alert so one bad site does not sink a whole batch.
func FindSiteLists(ctx util.LogContext, root, fileName string) ([]*SiteList, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("batch folder %s: %v", root, err)
	}

	var lists []*SiteList
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name(), fileName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		list, err := LoadSiteList(path)
		if err != nil {
			util.LogAlert(ctx, fmt.Sprintf("Skipping site folder %s: %v", entry.Name(), err))
			continue
		}
		lists = append(lists, list)
	}

	if len(lists) == 0 {
		return nil, fmt.Errorf("no %s files found under %s", fileName, root)
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].Site.Name < lists[j].Site.Name })
	return lists, nil
}
