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
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/maximlamare/S3-extract/model"
)

// Product folder names follow the Sentinel-3 naming convention:
// S3A_OL_1_EFR____20180417T103508_20180417T103808_20180418T155828_0179_030_108_1980_LN1_O_NT_002.SEN3
// https://sentinel.esa.int/web/sentinel/user-guides/sentinel-3-olci/naming-convention
var productNamePattern = regexp.MustCompile(
	`^S3(A|B)_(OL|SL)_([012])_([A-Z0-9_]{6})_([0-9]{8}T[0-9]{6})_([0-9]{8}T[0-9]{6})_([0-9]{8}T[0-9]{6})_(.+)\.SEN3$`)

// SceneExtension is the suffix of Sentinel-3 product folders
const SceneExtension = ".SEN3"

// ProductID holds the fields parsed from a Sentinel-3 product folder name
type ProductID struct {
	Name       string
	Platform   string
	Instrument string
	Level      string
	DataType   string
	Start      time.Time
	Stop       time.Time
}

// IsValidProductName returns whether a folder name is a valid Sentinel-3
// OLCI or SLSTR product name
func IsValidProductName(name string) bool {
	return productNamePattern.MatchString(name)
}

// ParseProductID parses a product folder name into its fields
func ParseProductID(name string) (*ProductID, error) {
	m := productNamePattern.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("not a Sentinel-3 product name: %s", name)
	}

	start, err := model.ParseSceneTime(m[5])
	if err != nil {
		return nil, fmt.Errorf("bad start time in product name %s: %v", name, err)
	}
	stop, err := model.ParseSceneTime(m[6])
	if err != nil {
		return nil, fmt.Errorf("bad stop time in product name %s: %v", name, err)
	}

	return &ProductID{
		Name:       name,
		Platform:   m[1],
		Instrument: m[2],
		Level:      m[3],
		DataType:   strings.TrimRight(m[4], "_"),
		Start:      start,
		Stop:       stop,
	}, nil
}

// MatchesPlatform returns whether a platform letter passes an A|B|AB filter
func MatchesPlatform(platform, filter string) bool {
	filter = strings.ToUpper(filter)
	if filter == "" || filter == "AB" {
		return true
	}
	return platform == filter
}

// Scene couples a product folder on disk with its parsed identity
type Scene struct {
	Dir string
	ID  ProductID

	mu       sync.Mutex
	manifest *Manifest
}

// ManifestPath returns the path of the scene's xfdumanifest.xml, the file
// the SNAP readers take as their product entry point
func (s *Scene) ManifestPath() string {
	return filepath.Join(s.Dir, ManifestFileName)
}

// Manifest reads and caches the scene's xfdumanifest.xml. Safe for
// concurrent use by extraction workers sharing a scene.
func (s *Scene) Manifest() (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.manifest != nil {
		return s.manifest, nil
	}
	manifest, err := ReadManifest(s.Dir)
	if err != nil {
		return nil, err
	}
	s.manifest = manifest
	return manifest, nil
}

// Acquired returns the scene sensing start time, preferring the product name
// and falling back to the manifest
func (s *Scene) Acquired() time.Time {
	if !s.ID.Start.IsZero() {
		return s.ID.Start
	}
	if manifest, err := s.Manifest(); err == nil {
		return manifest.StartTime
	}
	return time.Time{}
}

// BasicResult builds the model result common to every per-scene output. The
// footprint geometry is attached when the manifest is readable.
func (s *Scene) BasicResult() model.BasicSceneResult {
	result := model.BasicSceneResult{
		ID:         s.ID.Name,
		Acquired:   s.Acquired(),
		Platform:   s.ID.Platform,
		Instrument: s.ID.Instrument,
		SourcePath: s.Dir,
	}
	if manifest, err := s.Manifest(); err == nil {
		result.Geometry = manifest.FootprintGeoJSON()
	}
	return result
}
