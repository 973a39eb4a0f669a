package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/venicegeo/geojson-go/geojson"
)

// General test mocks and utils

var mockPolygon = geojson.NewPolygon([][][]float64{[][]float64{
	[]float64{30, 70}, []float64{40, 75}, []float64{20, 78}, []float64{10, 72}, []float64{30, 70},
}})

var mockBasicSceneResult = BasicSceneResult{
	ID:         "S3A_OL_1_EFR____20180417T103508_20180417T103808_20180418T155828_0179_030_108_1980_LN1_O_NT_002.SEN3",
	Acquired:   time.Unix(1523961308, 0).UTC(),
	Platform:   PlatformA,
	Instrument: InstrumentOLCI,
	Geometry:   mockPolygon,
	SourcePath: "/data/scenes/S3A_OL_1_EFR____20180417T103508.SEN3",
}

var mockSnowProducts = SnowProducts{
	GrainDiameter:            123.4567,
	SnowSpecificArea:         12.3456,
	AlbedoBBPlanarSW:         0.8765,
	AlbedoSpectralPlanar1020: 0.7654,
	RBRR21:                   0.6543,
	NDSI:                     0.5432,
	IceIndicator:             1,
	AutoCloud:                0,
	Valid:                    true,
}

var mockTerrainData = TerrainData{
	Slope:     12.5,
	Aspect:    270,
	Elevation: 2430,
}

var mockBandValues = BandValues{
	Names: []string{"Oa17_radiance", "Oa21_radiance"},
	Values: map[string]float64{
		"Oa17_radiance": 88.125,
		"Oa21_radiance": 45.75,
	},
	Valid: true,
}

func assertFeatureContainsBasicSceneResult(t *testing.T, feature *geojson.Feature, result BasicSceneResult) {
	assert.Equal(t, result.ID, feature.IDStr())
	assert.Equal(t, result.Acquired.Format(time.RFC3339), feature.PropertyString("acquiredDate"))
	assert.Equal(t, result.Platform, feature.PropertyString("platform"))
	assert.Equal(t, result.Instrument, feature.PropertyString("instrument"))
	assert.Equal(t, result.SourcePath, feature.PropertyString("sourcePath"))
}

func assertFeatureContainsSnowProducts(t *testing.T, feature *geojson.Feature, products SnowProducts) {
	assert.Equal(t, products.GrainDiameter, feature.PropertyFloat("grain_diameter"))
	assert.Equal(t, products.SnowSpecificArea, feature.PropertyFloat("snow_specific_area"))
	assert.Equal(t, products.AlbedoBBPlanarSW, feature.PropertyFloat("albedo_bb_planar_sw"))
	assert.Equal(t, products.AlbedoSpectralPlanar1020, feature.PropertyFloat("albedo_spectral_planar_1020"))
	assert.Equal(t, products.RBRR21, feature.PropertyFloat("rBRR_21"))
	assert.Equal(t, products.NDSI, feature.PropertyFloat("ndsi"))
	assert.Equal(t, products.IceIndicator, feature.PropertyFloat("ice_indicator"))
	assert.Equal(t, products.AutoCloud, feature.PropertyInt("auto_cloud"))
}

func assertFeatureContainsTerrainData(t *testing.T, feature *geojson.Feature, terrain TerrainData) {
	assert.Equal(t, terrain.Slope, feature.PropertyFloat("slope"))
	assert.Equal(t, terrain.Aspect, feature.PropertyFloat("aspect"))
	assert.Equal(t, terrain.Elevation, feature.PropertyFloat("elevation"))
}

// Actual tests

func TestBasicSceneResult_GeoJSONFeature(t *testing.T) {
	// Mock
	result := mockBasicSceneResult

	// Tested code
	feature, err := result.GeoJSONFeature()

	// Asserts
	assert.Nil(t, err)
	assert.NotNil(t, feature)
	assertFeatureContainsBasicSceneResult(t, feature, mockBasicSceneResult)
	assert.Nil(t, feature.Bbox.Valid())
}

func TestSnowSceneResult_GeoJSONFeature_NoTerrain(t *testing.T) {
	// Mock
	result := SnowSceneResult{
		BasicSceneResult: mockBasicSceneResult,
		SnowProducts:     mockSnowProducts,
	}

	// Tested code
	feature, err := result.GeoJSONFeature()

	// Asserts
	assert.Nil(t, err)
	assert.NotNil(t, feature)
	assertFeatureContainsBasicSceneResult(t, feature, mockBasicSceneResult)
	assertFeatureContainsSnowProducts(t, feature, mockSnowProducts)
	assert.Empty(t, feature.PropertyString("slope"))
	assert.Empty(t, feature.PropertyString("aspect"))
	assert.Nil(t, feature.Bbox.Valid())
}

func TestSnowSceneResult_GeoJSONFeature_WithTerrain(t *testing.T) {
	// Mock
	result := SnowSceneResult{
		BasicSceneResult: mockBasicSceneResult,
		SnowProducts:     mockSnowProducts,
		TerrainData:      &mockTerrainData,
	}

	// Tested code
	feature, err := result.GeoJSONFeature()

	// Asserts
	assert.Nil(t, err)
	assert.NotNil(t, feature)
	assertFeatureContainsBasicSceneResult(t, feature, mockBasicSceneResult)
	assertFeatureContainsSnowProducts(t, feature, mockSnowProducts)
	assertFeatureContainsTerrainData(t, feature, mockTerrainData)
	assert.Nil(t, feature.Bbox.Valid())
}

func TestSnowSceneResult_GeoJSONFeature_OutOfBounds(t *testing.T) {
	// Mock
	result := SnowSceneResult{
		BasicSceneResult: mockBasicSceneResult,
		SnowProducts:     SnowProducts{Valid: false},
	}

	// Tested code
	feature, err := result.GeoJSONFeature()

	// Asserts
	assert.Nil(t, err)
	assert.NotNil(t, feature)
	assertFeatureContainsBasicSceneResult(t, feature, mockBasicSceneResult)
	for _, name := range SnowProductNames {
		assert.Contains(t, feature.Properties, name)
		assert.Nil(t, feature.Properties[name])
	}
	assert.Nil(t, feature.Properties["auto_cloud"])
}

func TestBandSceneResult_GeoJSONFeature(t *testing.T) {
	// Mock
	result := BandSceneResult{
		BasicSceneResult: mockBasicSceneResult,
		BandValues:       mockBandValues,
	}

	// Tested code
	feature, err := result.GeoJSONFeature()

	// Asserts
	assert.Nil(t, err)
	assert.NotNil(t, feature)
	assertFeatureContainsBasicSceneResult(t, feature, mockBasicSceneResult)
	assert.Equal(t, 88.125, feature.PropertyFloat("Oa17_radiance"))
	assert.Equal(t, 45.75, feature.PropertyFloat("Oa21_radiance"))
}

func TestBoundsSceneResult_GeoJSONFeature(t *testing.T) {
	// Mock
	inside := BoundsSceneResult{BasicSceneResult: mockBasicSceneResult, InBounds: true}
	outside := BoundsSceneResult{BasicSceneResult: mockBasicSceneResult, InBounds: false}

	// Tested code
	insideFeature, insideErr := inside.GeoJSONFeature()
	outsideFeature, outsideErr := outside.GeoJSONFeature()

	// Asserts
	assert.Nil(t, insideErr)
	assert.Nil(t, outsideErr)
	assert.Equal(t, 1, insideFeature.PropertyInt("inBounds"))
	assert.Equal(t, 0, outsideFeature.PropertyInt("inBounds"))
}

func TestIndexedSceneResult_GeoJSONFeature(t *testing.T) {
	// Mock
	bandFiles, err := NewOlciSceneBandFiles("/data/scenes/test.SEN3")
	assert.Nil(t, err)
	result := IndexedSceneResult{
		BasicSceneResult: mockBasicSceneResult,
		SceneBandFiles:   bandFiles,
		LastStatus:       "extracted",
	}

	// Tested code
	feature, err := result.GeoJSONFeature()

	// Asserts
	assert.Nil(t, err)
	assert.NotNil(t, feature)
	assertFeatureContainsBasicSceneResult(t, feature, mockBasicSceneResult)
	assert.Equal(t, "extracted", feature.PropertyString("lastStatus"))
	assert.IsType(t, map[string]string{}, feature.Properties["bandFiles"])
}

func TestMultiSceneResult_GeoJSONFeatureCollection(t *testing.T) {
	// Mock
	result := MultiSceneResult{
		FeatureCreators: []GeoJSONFeatureCreator{mockBasicSceneResult, mockBasicSceneResult, mockBasicSceneResult},
	}

	// Tested code
	fc, err := result.GeoJSONFeatureCollection()

	// Asserts
	assert.Nil(t, err)
	assert.NotNil(t, fc)
	assert.Len(t, fc.Features, 3)
	for _, feature := range fc.Features {
		assertFeatureContainsBasicSceneResult(t, feature, mockBasicSceneResult)
	}
}
