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

// Package product reads the NetCDF rasters the processor writes, without
// needing the toolbox installed.
package product

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// Product is one open NetCDF output
type Product struct {
	path string
	nc   api.Group
}

var openNetcdf = netcdf.Open

// Open opens a NetCDF product file
func Open(path string) (*Product, error) {
	nc, err := openNetcdf(path)
	if err != nil {
		return nil, fmt.Errorf("opening product %s: %v", path, err)
	}
	return &Product{path: path, nc: nc}, nil
}

// Close releases the underlying file
func (p *Product) Close() {
	p.nc.Close()
}

// Path returns the file the product was opened from
func (p *Product) Path() string {
	return p.path
}

// BandNames lists the product's variables in name order
func (p *Product) BandNames() []string {
	names := append([]string{}, p.nc.ListVariables()...)
	sort.Strings(names)
	return names
}

// FindBand resolves a short band name against the product. The processor
// decorates its output names, so grain_diameter may be stored under a longer
// name; an exact match wins, then the first substring match in name order.
func (p *Product) FindBand(name string) (string, error) {
	names := p.BandNames()
	for _, candidate := range names {
		if candidate == name {
			return candidate, nil
		}
	}
	for _, candidate := range names {
		if strings.Contains(candidate, name) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("product %s has no band matching %q", p.path, name)
}

// Raster holds one band as a row-major float grid. Fill values are NaN.
type Raster struct {
	Name   string
	Width  int
	Height int
	Values []float64
}

// At returns the value at pixel x,y, or NaN outside the grid
func (r *Raster) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return math.NaN()
	}
	return r.Values[y*r.Width+x]
}

// ReadBand loads a band as a float raster, converting whatever numeric type
// the file stores and blanking its declared fill value to NaN
func (p *Product) ReadBand(name string) (*Raster, error) {
	resolved, err := p.FindBand(name)
	if err != nil {
		return nil, err
	}
	variable, err := p.nc.GetVariable(resolved)
	if err != nil {
		return nil, fmt.Errorf("reading band %s of %s: %v", resolved, p.path, err)
	}

	values, dims, err := flatten(variable.Values)
	if err != nil {
		return nil, fmt.Errorf("band %s of %s: %v", resolved, p.path, err)
	}

	raster := &Raster{Name: resolved, Values: values}
	switch len(dims) {
	case 1:
		raster.Width, raster.Height = dims[0], 1
	case 2:
		raster.Width, raster.Height = dims[1], dims[0]
	default:
		return nil, fmt.Errorf("band %s of %s has %d dimensions, want 1 or 2", resolved, p.path, len(dims))
	}

	if fill, ok := fillValue(variable.Attributes); ok {
		for i, v := range raster.Values {
			if v == fill {
				raster.Values[i] = math.NaN()
			}
		}
	}
	return raster, nil
}

func fillValue(attributes api.AttributeMap) (float64, bool) {
	if attributes == nil {
		return 0, false
	}
	raw, has := attributes.Get("_FillValue")
	if !has {
		return 0, false
	}
	return scalarToFloat(raw)
}

func scalarToFloat(raw interface{}) (float64, bool) {
	value := reflect.ValueOf(raw)
	// attributes may come back as single-element slices
	if value.Kind() == reflect.Slice && value.Len() == 1 {
		value = value.Index(0)
	}
	switch value.Kind() {
	case reflect.Float32, reflect.Float64:
		return value.Float(), true
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return float64(value.Int()), true
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return float64(value.Uint()), true
	}
	return 0, false
}

// flatten converts the nested numeric slices the NetCDF library returns into
// a flat row-major float64 slice plus the dimension sizes
func flatten(values interface{}) ([]float64, []int, error) {
	var dims []int
	probe := reflect.ValueOf(values)
	for probe.Kind() == reflect.Slice {
		dims = append(dims, probe.Len())
		if probe.Len() == 0 {
			return nil, nil, fmt.Errorf("empty dimension in values")
		}
		probe = probe.Index(0)
	}
	if len(dims) == 0 {
		return nil, nil, fmt.Errorf("values are %T, not a slice", values)
	}

	size := 1
	for _, d := range dims {
		size *= d
	}
	out := make([]float64, 0, size)
	if err := appendFloats(reflect.ValueOf(values), &out); err != nil {
		return nil, nil, err
	}
	if len(out) != size {
		return nil, nil, fmt.Errorf("ragged values: got %d of %d cells", len(out), size)
	}
	return out, dims, nil
}

func appendFloats(value reflect.Value, out *[]float64) error {
	switch value.Kind() {
	case reflect.Slice:
		for i := 0; i < value.Len(); i++ {
			if err := appendFloats(value.Index(i), out); err != nil {
				return err
			}
		}
	case reflect.Float32, reflect.Float64:
		*out = append(*out, value.Float())
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		*out = append(*out, float64(value.Int()))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		*out = append(*out, float64(value.Uint()))
	default:
		return fmt.Errorf("unsupported value type %s", value.Kind())
	}
	return nil
}
