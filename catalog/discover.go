package catalog

import (
	"database/sql"

	"github.com/maximlamare/S3-extract/model"
)

// discoverScenes runs a catalog search and bundles the hits as feature
// creators. Band file maps are left off here; the per-scene endpoint
// carries those.
func discoverScenes(tx *sql.Tx, filter SearchFilter) (model.GeoJSONFeatureCollectionCreator, error) {
	scenes, err := SearchScenes(tx, filter)
	if err != nil {
		return nil, err
	}

	multiResult := model.MultiSceneResult{
		FeatureCreators: make([]model.GeoJSONFeatureCreator, len(scenes)),
	}

	for i, scn := range scenes {
		if multiResult.FeatureCreators[i], err = scn.Result(false); err != nil {
			return nil, err
		}
	}

	return multiResult, nil
}
