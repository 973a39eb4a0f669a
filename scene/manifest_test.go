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

package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// testManifest is a trimmed-down xfdumanifest.xml with a footprint covering
// lat 45..47, lon 6..8
const testManifest = `<?xml version="1.0" encoding="UTF-8"?>
<xfdu:XFDU xmlns:xfdu="urn:ccsds:schema:xfdu:1" xmlns:gml="http://www.opengis.net/gml" xmlns:sentinel-safe="http://www.esa.int/safe/sentinel/1.1" version="esa/safe/sentinel/1.1/sentinel-3/olci/level-1">
  <metadataSection>
    <metadataObject ID="acquisitionPeriod" classification="DESCRIPTION" category="DMD">
      <metadataWrap mimeType="text/xml" vocabularyName="Sentinel-SAFE" textInfo="Acquisition Period">
        <xmlData>
          <sentinel-safe:acquisitionPeriod>
            <sentinel-safe:startTime>2018-04-17T10:35:08.725369Z</sentinel-safe:startTime>
            <sentinel-safe:stopTime>2018-04-17T10:38:08.725369Z</sentinel-safe:stopTime>
          </sentinel-safe:acquisitionPeriod>
        </xmlData>
      </metadataWrap>
    </metadataObject>
    <metadataObject ID="platform" classification="DESCRIPTION" category="DMD">
      <metadataWrap mimeType="text/xml" vocabularyName="Sentinel-SAFE" textInfo="Platform Description">
        <xmlData>
          <sentinel-safe:platform>
            <sentinel-safe:nssdcIdentifier>2016-011A</sentinel-safe:nssdcIdentifier>
            <sentinel-safe:familyName>Sentinel-3</sentinel-safe:familyName>
            <sentinel-safe:number>A</sentinel-safe:number>
          </sentinel-safe:platform>
        </xmlData>
      </metadataWrap>
    </metadataObject>
    <metadataObject ID="measurementFrameSet" classification="DESCRIPTION" category="DMD">
      <metadataWrap mimeType="text/xml" vocabularyName="Sentinel-SAFE" textInfo="Frame Set">
        <xmlData>
          <sentinel-safe:frameSet>
            <sentinel-safe:footPrint srsName="http://www.opengis.net/def/crs/EPSG/0/4326">
              <gml:posList>45.0 6.0 45.0 8.0 47.0 8.0 47.0 6.0</gml:posList>
            </sentinel-safe:footPrint>
          </sentinel-safe:frameSet>
        </xmlData>
      </metadataWrap>
    </metadataObject>
  </metadataSection>
</xfdu:XFDU>`

func TestParseManifest_Success(t *testing.T) {
	// Tested code
	manifest, err := parseManifest([]byte(testManifest))

	// Asserts
	assert.Nil(t, err, "Expected manifest to parse; got: %v", err)
	assert.Equal(t, "A", manifest.Platform)
	assert.Equal(t, time.Date(2018, 4, 17, 10, 35, 8, 725369000, time.UTC), manifest.StartTime)
	assert.True(t, manifest.Contains(46.0, 7.0), "Expected point inside the footprint")
	assert.False(t, manifest.Contains(48.0, 7.0), "Expected point north of the footprint to be outside")
	assert.False(t, manifest.Contains(46.0, 9.0), "Expected point east of the footprint to be outside")
}

func TestParseManifest_ContainsEdge(t *testing.T) {
	// Mock
	manifest, err := parseManifest([]byte(testManifest))
	assert.Nil(t, err)

	// Tested code & Asserts: a point on the footprint boundary counts as inside
	assert.True(t, manifest.Contains(45.0, 7.0))
}

func TestParseManifest_NoFootprint(t *testing.T) {
	// Mock: rename the frame set object so it is not recognized
	mangled := strings.Replace(testManifest, `ID="measurementFrameSet"`, `ID="somethingElse"`, 1)

	// Tested code
	manifest, err := parseManifest([]byte(mangled))

	// Asserts
	assert.Nil(t, manifest)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "no footprint")
}

func TestParseManifest_BadXML(t *testing.T) {
	// Tested code
	manifest, err := parseManifest([]byte("this is not XML"))

	// Asserts
	assert.Nil(t, manifest)
	assert.NotNil(t, err)
}

func TestParsePosList(t *testing.T) {
	// Tested code
	ring, err := parsePosList("45.0 6.0 45.0 8.0 47.0 8.0")

	// Asserts: ring closed back to the first point, lat/lon swapped to x=lon
	assert.Nil(t, err)
	assert.Len(t, ring, 4)
	assert.Equal(t, ring[0], ring[3])
	assert.Equal(t, 6.0, ring[0].X)
	assert.Equal(t, 45.0, ring[0].Y)
}

func TestParsePosList_Invalid(t *testing.T) {
	// Mock
	badLists := []string{
		"",
		"45.0 6.0",
		"45.0 6.0 45.0 8.0",
		"45.0 6.0 45.0 8.0 47.0",
		"45.0 abc 45.0 8.0 47.0 8.0",
	}

	for _, posList := range badLists {
		// Tested code
		ring, err := parsePosList(posList)

		// Asserts
		assert.NotNil(t, err, "Expected an error for posList %q", posList)
		assert.Nil(t, ring)
	}
}

func TestReadManifest(t *testing.T) {
	// Mock
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(testManifest), 0644)
	assert.Nil(t, err)

	// Tested code
	manifest, err := ReadManifest(dir)

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, "A", manifest.Platform)
}

func TestReadManifest_MissingFile(t *testing.T) {
	// Tested code
	manifest, err := ReadManifest(t.TempDir())

	// Asserts
	assert.Nil(t, manifest)
	assert.NotNil(t, err)
}

func TestFootprintGeoJSON(t *testing.T) {
	// Mock
	manifest, err := parseManifest([]byte(testManifest))
	assert.Nil(t, err)

	// Tested code
	polygon := manifest.FootprintGeoJSON()

	// Asserts
	assert.NotNil(t, polygon)
	assert.Len(t, polygon.Coordinates, 1)
	assert.Len(t, polygon.Coordinates[0], 5)
	assert.Equal(t, []float64{6.0, 45.0}, polygon.Coordinates[0][0])
	assert.Equal(t, polygon.Coordinates[0][0], polygon.Coordinates[0][4])
}

func TestFootprintGeoJSON_Empty(t *testing.T) {
	// Mock
	manifest := &Manifest{}

	// Tested code & Asserts
	assert.Nil(t, manifest.FootprintGeoJSON())
	assert.False(t, manifest.Contains(46.0, 7.0))
}
