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
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ctessum/geom"
	"github.com/venicegeo/geojson-go/geojson"

	"github.com/maximlamare/S3-extract/model"
)

// ManifestFileName is the SAFE manifest file present in every scene folder
const ManifestFileName = "xfdumanifest.xml"

// Manifest holds the scene metadata read from xfdumanifest.xml
type Manifest struct {
	Platform  string
	StartTime time.Time

	footprint geom.Polygon
}

// The manifest is an XFDU document; everything we need lives in
// metadataSection under objects keyed by their ID attribute. Struct tags
// match by local element name, so the sentinel-safe/gml namespaces do not
// need spelling out.
type manifestXML struct {
	MetadataObjects []manifestMetadataObject `xml:"metadataSection>metadataObject"`
}

type manifestMetadataObject struct {
	ID             string `xml:"ID,attr"`
	StartTime      string `xml:"metadataWrap>xmlData>acquisitionPeriod>startTime"`
	PlatformNumber string `xml:"metadataWrap>xmlData>platform>number"`
	PosList        string `xml:"metadataWrap>xmlData>frameSet>footPrint>posList"`
}

// ReadManifest parses the manifest of the given scene folder
func ReadManifest(sceneDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(sceneDir, ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("reading manifest of %s: %v", sceneDir, err)
	}
	return parseManifest(data)
}

func parseManifest(data []byte) (*Manifest, error) {
	var doc manifestXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest: %v", err)
	}

	manifest := Manifest{}
	for _, object := range doc.MetadataObjects {
		switch object.ID {
		case "acquisitionPeriod":
			start, err := model.ParseSceneTime(strings.TrimSpace(object.StartTime))
			if err != nil {
				return nil, fmt.Errorf("manifest start time: %v", err)
			}
			manifest.StartTime = start
		case "platform":
			manifest.Platform = strings.TrimSpace(object.PlatformNumber)
		case "measurementFrameSet":
			ring, err := parsePosList(object.PosList)
			if err != nil {
				return nil, err
			}
			manifest.footprint = geom.Polygon{ring}
		}
	}

	if len(manifest.footprint) == 0 {
		return nil, fmt.Errorf("manifest has no footprint")
	}

	return &manifest, nil
}

// parsePosList converts a gml:posList of "lat lon lat lon ..." pairs into a
// closed ring of lon/lat points
func parsePosList(posList string) ([]geom.Point, error) {
	fields := strings.Fields(posList)
	if len(fields) < 6 || len(fields)%2 != 0 {
		return nil, fmt.Errorf("footprint posList has %d values, want an even count of at least 6", len(fields))
	}

	ring := make([]geom.Point, 0, len(fields)/2+1)
	for i := 0; i < len(fields); i += 2 {
		lat, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad footprint latitude `%s`", fields[i])
		}
		lon, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad footprint longitude `%s`", fields[i+1])
		}
		ring = append(ring, geom.Point{X: lon, Y: lat})
	}

	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}

	return ring, nil
}

// Contains reports whether a coordinate falls inside the scene footprint.
// Points on the footprint edge count as inside.
func (m *Manifest) Contains(lat, lon float64) bool {
	if len(m.footprint) == 0 {
		return false
	}
	return geom.Point{X: lon, Y: lat}.Within(m.footprint) != geom.Outside
}

// FootprintGeoJSON returns the footprint as a GeoJSON polygon
func (m *Manifest) FootprintGeoJSON() *geojson.Polygon {
	if len(m.footprint) == 0 {
		return nil
	}
	ring := make([][]float64, len(m.footprint[0]))
	for i, point := range m.footprint[0] {
		ring[i] = []float64{point.X, point.Y}
	}
	return geojson.NewPolygon([][][]float64{ring})
}
