package model

import (
	"time"

	"github.com/venicegeo/geojson-go/geojson"
)

// BasicSceneResult holds the fields common to all s3-extract single results
type BasicSceneResult struct {
	ID         string
	Geometry   interface{}
	Acquired   time.Time
	Platform   string
	Instrument string
	SourcePath string
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (sr BasicSceneResult) GeoJSONFeature() (*geojson.Feature, error) {
	f := geojson.NewFeature(sr.Geometry, sr.ID, map[string]interface{}{
		"acquiredDate": sr.Acquired.Format(time.RFC3339),
		"platform":     sr.Platform,
		"instrument":   sr.Instrument,
		"sourcePath":   sr.SourcePath,
	})
	f.Bbox = f.ForceBbox()
	return f, nil
}

// SnowSceneResult is a scene result carrying the snow processor outputs at
// one site pixel, plus optional terrain data for the site
type SnowSceneResult struct {
	BasicSceneResult
	SnowProducts
	*TerrainData
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (result SnowSceneResult) GeoJSONFeature() (*geojson.Feature, error) {
	feature, err := result.BasicSceneResult.GeoJSONFeature()
	if err != nil {
		return nil, err
	}

	err = result.SnowProducts.Apply(feature)
	if err != nil {
		return nil, err
	}

	if result.TerrainData != nil {
		err = result.TerrainData.Apply(feature)
		if err != nil {
			return nil, err
		}
	}

	return feature, nil
}

// BandSceneResult is a scene result carrying arbitrary band values at one
// site pixel
type BandSceneResult struct {
	BasicSceneResult
	BandValues
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (result BandSceneResult) GeoJSONFeature() (*geojson.Feature, error) {
	feature, err := result.BasicSceneResult.GeoJSONFeature()
	if err != nil {
		return nil, err
	}

	err = result.BandValues.Apply(feature)
	if err != nil {
		return nil, err
	}

	return feature, nil
}

// BoundsSceneResult is a scene result carrying only the footprint check flag
type BoundsSceneResult struct {
	BasicSceneResult
	InBounds bool
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (result BoundsSceneResult) GeoJSONFeature() (*geojson.Feature, error) {
	feature, err := result.BasicSceneResult.GeoJSONFeature()
	if err != nil {
		return nil, err
	}

	flag := 0
	if result.InBounds {
		flag = 1
	}
	feature.Properties["inBounds"] = flag

	return feature, nil
}

// IndexedSceneResult represents a catalog entry, with the file map of the
// scene folder when the instrument is OLCI
type IndexedSceneResult struct {
	BasicSceneResult
	*SceneBandFiles
	LastStatus string
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (result IndexedSceneResult) GeoJSONFeature() (*geojson.Feature, error) {
	feature, err := result.BasicSceneResult.GeoJSONFeature()
	if err != nil {
		return nil, err
	}

	if result.SceneBandFiles != nil {
		err = result.SceneBandFiles.Apply(feature)
		if err != nil {
			return nil, err
		}
	}

	if result.LastStatus != "" {
		feature.Properties["lastStatus"] = result.LastStatus
	}

	return feature, nil
}

// MultiSceneResult is a container type for bundling multiple results together,
// e.g. as results from a discover endpoint
type MultiSceneResult struct {
	FeatureCreators []GeoJSONFeatureCreator
}

// GeoJSONFeatureCollection implements the GeoJSONFeatureCollectionCreator interface
func (result MultiSceneResult) GeoJSONFeatureCollection() (*geojson.FeatureCollection, error) {
	var err error
	features := make([]*geojson.Feature, len(result.FeatureCreators))
	for i, creator := range result.FeatureCreators {
		features[i], err = creator.GeoJSONFeature()
		if err != nil {
			return nil, err
		}
	}

	return geojson.NewFeatureCollection(features), nil
}
