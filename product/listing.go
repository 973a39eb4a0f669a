// Copyright 2019, Maxim Lamare.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package product

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Listing groups the variables of a scene folder the way the toolbox
// presents them: measurement bands, geometry and meteo grids, and the mask
// names decoded from flag variables.
type Listing struct {
	Dir           string
	Bands         []string
	TiePointGrids []string
	Masks         []string
	Skipped       []string
}

// File name prefixes that hold geometry, time and meteo grids rather than
// measurements, across the OLCI and SLSTR folder layouts
var tiePointFilePrefixes = []string{
	"geo_", "tie_", "time_", "cartesian_", "geodetic_", "geometry_", "met_",
}

// ListSceneBands inventories a raw scene folder by opening its NetCDF files
// directly. Files the reader cannot open are collected in Skipped rather
// than failing the listing.
func ListSceneBands(sceneDir string) (*Listing, error) {
	entries, err := os.ReadDir(sceneDir)
	if err != nil {
		return nil, fmt.Errorf("listing scene folder %s: %v", sceneDir, err)
	}

	listing := &Listing{Dir: sceneDir}
	found := false
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".nc") {
			continue
		}
		found = true
		if err := listing.addFile(filepath.Join(sceneDir, entry.Name()), entry.Name()); err != nil {
			listing.Skipped = append(listing.Skipped, entry.Name()+": "+err.Error())
		}
	}
	if !found {
		return nil, fmt.Errorf("scene folder %s has no NetCDF measurement files", sceneDir)
	}

	sort.Strings(listing.Bands)
	sort.Strings(listing.TiePointGrids)
	sort.Strings(listing.Masks)
	return listing, nil
}

func (l *Listing) addFile(path, name string) error {
	nc, err := openNetcdf(path)
	if err != nil {
		return err
	}
	defer nc.Close()

	auxiliary := isTiePointFile(name)
	for _, variable := range nc.ListVariables() {
		if auxiliary {
			l.TiePointGrids = append(l.TiePointGrids, variable)
		} else {
			l.Bands = append(l.Bands, variable)
		}

		getter, err := nc.GetVarGetter(variable)
		if err != nil {
			continue
		}
		attributes := getter.Attributes()
		if attributes == nil {
			continue
		}
		if meanings, has := attributes.Get("flag_meanings"); has {
			if text, ok := meanings.(string); ok {
				l.Masks = append(l.Masks, strings.Fields(text)...)
			}
		}
	}
	return nil
}

func isTiePointFile(name string) bool {
	for _, prefix := range tiePointFilePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
