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
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/stretchr/testify/assert"
)

func writeSceneFiles(t *testing.T, names ...string) string {
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestListSceneBands(t *testing.T) {
	// Mock: scene folder contents plus a fake reader keyed on file name
	dir := writeSceneFiles(t, "Oa01_radiance.nc", "geo_coordinates.nc", "qualityFlags.nc", "broken.nc", "xfdumanifest.xml")

	groups := map[string]*fakeGroup{
		"Oa01_radiance.nc": {variables: map[string]*fakeVariable{
			"Oa01_radiance": {values: []float32{1}},
		}},
		"geo_coordinates.nc": {variables: map[string]*fakeVariable{
			"latitude":  {values: []float64{67}},
			"longitude": {values: []float64{12}},
		}},
		"qualityFlags.nc": {variables: map[string]*fakeVariable{
			"quality_flags": {
				values:     []int32{0},
				attributes: map[string]interface{}{"flag_meanings": "saturated land coastline"},
			},
		}},
	}
	original := openNetcdf
	openNetcdf = func(path string) (api.Group, error) {
		group, has := groups[filepath.Base(path)]
		if !has {
			return nil, fmt.Errorf("corrupt header")
		}
		return group, nil
	}
	defer func() { openNetcdf = original }()

	// Tested code
	listing, err := ListSceneBands(dir)

	// Asserts
	assert.Nil(t, err, "Expected the listing to succeed; got: %v", err)
	assert.Equal(t, []string{"Oa01_radiance", "quality_flags"}, listing.Bands)
	assert.Equal(t, []string{"latitude", "longitude"}, listing.TiePointGrids)
	assert.Equal(t, []string{"coastline", "land", "saturated"}, listing.Masks)
	assert.Len(t, listing.Skipped, 1)
	assert.Contains(t, listing.Skipped[0], "broken.nc")
	assert.Contains(t, listing.Skipped[0], "corrupt header")
}

func TestListSceneBands_NoMeasurements(t *testing.T) {
	// Mock
	dir := writeSceneFiles(t, "xfdumanifest.xml")

	// Tested code
	_, err := ListSceneBands(dir)

	// Asserts
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "no NetCDF measurement files")
}

func TestListSceneBands_MissingFolder(t *testing.T) {
	// Tested code
	_, err := ListSceneBands(filepath.Join(t.TempDir(), "absent"))

	// Asserts
	assert.NotNil(t, err)
}

func TestIsTiePointFile(t *testing.T) {
	// Asserts
	assert.True(t, isTiePointFile("geo_coordinates.nc"))
	assert.True(t, isTiePointFile("tie_meteo.nc"))
	assert.True(t, isTiePointFile("geodetic_an.nc"))
	assert.False(t, isTiePointFile("Oa21_radiance.nc"))
	assert.False(t, isTiePointFile("S1_radiance_an.nc"))
}
