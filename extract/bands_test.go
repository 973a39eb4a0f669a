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

package extract

import (
	"errors"
	"testing"

	"github.com/maximlamare/S3-extract/product"
	"github.com/maximlamare/S3-extract/sites"
	"github.com/maximlamare/S3-extract/snap"
	"github.com/stretchr/testify/assert"
)

func TestBands(t *testing.T) {
	// Mock
	scn := writeScene(t, olciTestProduct)
	runner := &fakeRunner{}
	stubProducts(t, map[string]*fakeProductReader{
		snap.SubsetFileName: {
			geo: fakeGeo(),
			bands: map[string]*product.Raster{
				"Oa17_radiance": grid(0, 0, 0, 88.125),
				"quality_flags": grid(0, 0, 0, 2),
			},
		},
	})

	// Tested code
	result, err := testExtractor(t, runner).Bands(testContext(), scn, testSite, []string{"Oa17_radiance", "quality_flags"})

	// Asserts
	assert.Nil(t, err, "Expected the pipeline to succeed; got: %v", err)
	assert.True(t, result.Valid)
	assert.Equal(t, 88.125, result.Values["Oa17_radiance"])
	assert.Equal(t, 2.0, result.Values["quality_flags"])
	assert.Equal(t, []string{"Oa17_radiance", "quality_flags"}, result.Names)
	assert.Equal(t, 1, runner.calls)
	assert.Contains(t, runner.graphs[0], "Subset")
	assert.NotContains(t, runner.graphs[0], "OLCI.SnowAlbedo")
}

func TestBands_SlstrReader(t *testing.T) {
	// Mock
	scn := writeScene(t, slstrTestProduct)
	runner := &fakeRunner{}
	stubProducts(t, map[string]*fakeProductReader{
		snap.SubsetFileName: {
			geo: fakeGeo(),
			bands: map[string]*product.Raster{
				"S1_radiance_an": grid(0, 0, 0, 33.25),
			},
		},
	})
	e := testExtractor(t, runner)
	e.SlstrResolution = "1000"

	// Tested code
	result, err := e.Bands(testContext(), scn, testSite, []string{"S1_radiance_an"})

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, 33.25, result.Values["S1_radiance_an"])
	assert.Contains(t, runner.graphs[0], snap.ReaderSlstr1km)
}

func TestBands_BadSlstrResolution(t *testing.T) {
	// Mock
	scn := writeScene(t, slstrTestProduct)
	runner := &fakeRunner{}
	e := testExtractor(t, runner)
	e.SlstrResolution = "750"

	// Tested code
	result, err := e.Bands(testContext(), scn, testSite, []string{"S1_radiance_an"})

	// Asserts
	assert.Nil(t, result)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "500 or 1000")
	assert.Equal(t, 0, runner.calls)
}

func TestBands_MissingRequestedBand(t *testing.T) {
	// Mock
	scn := writeScene(t, olciTestProduct)
	runner := &fakeRunner{}
	stubProducts(t, map[string]*fakeProductReader{
		snap.SubsetFileName: {
			geo:   fakeGeo(),
			bands: map[string]*product.Raster{"Oa17_radiance": grid(0, 0, 0, 88.125)},
		},
	})

	// Tested code
	result, err := testExtractor(t, runner).Bands(testContext(), scn, testSite, []string{"Oa99_radiance"})

	// Asserts: a typo in the band list must fail loudly
	assert.Nil(t, result)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Oa99_radiance")
}

func TestBands_SubstringMatch(t *testing.T) {
	// Mock: the request names a band without its suffix
	scn := writeScene(t, olciTestProduct)
	runner := &fakeRunner{}
	stubProducts(t, map[string]*fakeProductReader{
		snap.SubsetFileName: {
			geo:   fakeGeo(),
			bands: map[string]*product.Raster{"S1_radiance_an": grid(0, 0, 0, 12.5)},
		},
	})

	// Tested code
	result, err := testExtractor(t, runner).Bands(testContext(), scn, testSite, []string{"S1_radiance"})

	// Asserts: the value lands under the requested name
	assert.Nil(t, err)
	assert.Equal(t, 12.5, result.Values["S1_radiance"])
}

func TestBands_OutsideFootprint(t *testing.T) {
	// Mock
	scn := writeScene(t, olciTestProduct)
	runner := &fakeRunner{}
	stubProducts(t, nil)

	// Tested code
	result, err := testExtractor(t, runner).Bands(testContext(), scn, sites.Site{Name: "north", Lat: 50.0, Lon: 7.0}, []string{"Oa17_radiance"})

	// Asserts
	assert.Nil(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Oa17_radiance"}, result.Names)
	assert.Equal(t, 0, runner.calls)
}

func TestBands_SubsetOutOfBounds(t *testing.T) {
	// Mock
	scn := writeScene(t, olciTestProduct)
	runner := &fakeRunner{errs: []error{snap.MakeOutOfBounds(errors.New("No intersection with source product boundary"))}}
	stubProducts(t, nil)

	// Tested code
	result, err := testExtractor(t, runner).Bands(testContext(), scn, testSite, []string{"Oa17_radiance"})

	// Asserts
	assert.Nil(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, 1, runner.calls)
}

func TestBands_NoBandsRequested(t *testing.T) {
	// Tested code
	result, err := testExtractor(t, &fakeRunner{}).Bands(testContext(), writeScene(t, olciTestProduct), testSite, nil)

	// Asserts
	assert.Nil(t, result)
	assert.NotNil(t, err)
}
