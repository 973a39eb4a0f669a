package model

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/venicegeo/geojson-go/geojson"
)

// SnowProducts is a mixin containing the S3Snow processor outputs sampled at
// a single pixel. Valid is false when the site fell outside the scene or the
// target pixel held no data; all values are reported as null in that case.
type SnowProducts struct {
	GrainDiameter            float64
	SnowSpecificArea         float64
	AlbedoBBPlanarSW         float64
	AlbedoSpectralPlanar1020 float64
	RBRR21                   float64
	NDSI                     float64
	IceIndicator             float64
	AutoCloud                int
	Valid                    bool
}

// Apply implements the GeoJSONFeatureMixin interface
func (sp SnowProducts) Apply(feature *geojson.Feature) error {
	if !sp.Valid {
		for _, name := range SnowProductNames {
			feature.Properties[name] = nil
		}
		feature.Properties["auto_cloud"] = nil
		return nil
	}
	feature.Properties["grain_diameter"] = jsonNumber(sp.GrainDiameter)
	feature.Properties["snow_specific_area"] = jsonNumber(sp.SnowSpecificArea)
	feature.Properties["albedo_bb_planar_sw"] = jsonNumber(sp.AlbedoBBPlanarSW)
	feature.Properties["albedo_spectral_planar_1020"] = jsonNumber(sp.AlbedoSpectralPlanar1020)
	feature.Properties["rBRR_21"] = jsonNumber(sp.RBRR21)
	feature.Properties["ndsi"] = jsonNumber(sp.NDSI)
	feature.Properties["ice_indicator"] = jsonNumber(sp.IceIndicator)
	if sp.AutoCloud < 0 {
		// Negative means the cloud flag could not be sampled
		feature.Properties["auto_cloud"] = nil
	} else {
		feature.Properties["auto_cloud"] = sp.AutoCloud
	}
	return nil
}

// SnowProductNames lists the snow product columns in output order
var SnowProductNames = []string{
	"grain_diameter",
	"snow_specific_area",
	"albedo_bb_planar_sw",
	"albedo_spectral_planar_1020",
	"rBRR_21",
	"ndsi",
	"ice_indicator",
}

// BandValues is a mixin containing arbitrary named band values sampled at a
// single pixel. Names preserves the order bands were requested in; Valid is
// false when the site fell outside the scene, in which case every band is
// reported as null.
type BandValues struct {
	Names  []string
	Values map[string]float64
	Valid  bool
}

// Apply implements the GeoJSONFeatureMixin interface
func (bv BandValues) Apply(feature *geojson.Feature) error {
	if !bv.Valid {
		for _, name := range bv.Names {
			feature.Properties[name] = nil
		}
		return nil
	}
	for _, name := range bv.Names {
		value, ok := bv.Values[name]
		if !ok {
			return fmt.Errorf("no value extracted for band `%s`", name)
		}
		feature.Properties[name] = jsonNumber(value)
	}
	return nil
}

// TerrainData is a mixin containing auxiliary terrain attributes of a site
type TerrainData struct {
	Slope     float64
	Aspect    float64
	Elevation float64
}

// Apply implements the GeoJSONFeatureMixin interface
func (td TerrainData) Apply(feature *geojson.Feature) error {
	feature.Properties["slope"] = jsonNumber(td.Slope)
	feature.Properties["aspect"] = jsonNumber(td.Aspect)
	feature.Properties["elevation"] = jsonNumber(td.Elevation)
	return nil
}

// SceneBandFiles is a mixin containing the per-band NetCDF files inside a
// scene folder
type SceneBandFiles struct {
	BandFiles map[string]string
}

// NewOlciSceneBandFiles builds the band file map of an OLCI L1 scene folder
func NewOlciSceneBandFiles(sceneDir string) (*SceneBandFiles, error) {
	if sceneDir == "" {
		return nil, errors.New("no scene folder to map band files from")
	}

	files := make(map[string]string, 23)
	for band := 1; band <= 21; band++ {
		name := fmt.Sprintf("Oa%02d_radiance", band)
		files[name] = filepath.Join(sceneDir, name+".nc")
	}
	files["geo_coordinates"] = filepath.Join(sceneDir, "geo_coordinates.nc")
	files["qualityFlags"] = filepath.Join(sceneDir, "qualityFlags.nc")

	return &SceneBandFiles{BandFiles: files}, nil
}

// Apply implements the GeoJSONFeatureMixin interface
func (bf SceneBandFiles) Apply(feature *geojson.Feature) error {
	feature.Properties["bandFiles"] = bf.BandFiles
	return nil
}

// jsonNumber keeps NaN out of GeoJSON output, where it is not representable
func jsonNumber(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
