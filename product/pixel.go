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
	"math"
)

// Names the coordinate grids are stored under, depending on the writer and
// the instrument
var (
	latitudeNames  = []string{"lat", "latitude", "TP_latitude"}
	longitudeNames = []string{"lon", "longitude", "TP_longitude"}
)

// Geolocation holds the per-pixel coordinate grids of a product
type Geolocation struct {
	Lat *Raster
	Lon *Raster
}

// ReadGeolocation pulls the coordinate grids from the product, trying the
// names the NetCDF writer uses. Exact names only; substring matching would
// confuse lat with platform metadata.
func (p *Product) ReadGeolocation() (*Geolocation, error) {
	lat, err := p.readExact(latitudeNames)
	if err != nil {
		return nil, err
	}
	lon, err := p.readExact(longitudeNames)
	if err != nil {
		return nil, err
	}
	if len(lat.Values) != len(lon.Values) {
		return nil, fmt.Errorf("product %s: latitude grid has %d cells, longitude %d",
			p.path, len(lat.Values), len(lon.Values))
	}
	return &Geolocation{Lat: lat, Lon: lon}, nil
}

func (p *Product) readExact(names []string) (*Raster, error) {
	available := map[string]bool{}
	for _, name := range p.nc.ListVariables() {
		available[name] = true
	}
	for _, name := range names {
		if available[name] {
			return p.ReadBand(name)
		}
	}
	return nil, fmt.Errorf("product %s has no variable named any of %v", p.path, names)
}

// NearestPixel finds the grid position closest to a coordinate by brute
// force; the products this runs on are small subsets. The returned distance
// is in degrees, with the longitude difference scaled by latitude.
func (g *Geolocation) NearestPixel(lat, lon float64) (x, y int, distance float64, err error) {
	best := math.Inf(1)
	bestIndex := -1
	lonScale := math.Cos(lat * math.Pi / 180)

	for i, cellLat := range g.Lat.Values {
		cellLon := g.Lon.Values[i]
		if math.IsNaN(cellLat) || math.IsNaN(cellLon) {
			continue
		}
		dLat := cellLat - lat
		dLon := (cellLon - lon) * lonScale
		d := dLat*dLat + dLon*dLon
		if d < best {
			best = d
			bestIndex = i
		}
	}

	if bestIndex < 0 {
		return 0, 0, 0, fmt.Errorf("no valid geolocation cells")
	}
	return bestIndex % g.Lat.Width, bestIndex / g.Lat.Width, math.Sqrt(best), nil
}
