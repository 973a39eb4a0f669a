package catalog

import (
	"fmt"
	"time"

	"github.com/ctessum/geom"
	"github.com/venicegeo/geojson-go/geojson"

	"github.com/maximlamare/S3-extract/model"
	"github.com/maximlamare/S3-extract/scene"
)

// IndexedScene is one row of the scenes table: the identity, footprint and
// folder location of a Sentinel-3 product, plus the advisory extraction
// bookkeeping columns.
type IndexedScene struct {
	ProductID       string
	Platform        string
	Instrument      string
	Acquired        time.Time
	Footprint       *geojson.Polygon
	MinLon          float64
	MinLat          float64
	MaxLon          float64
	MaxLat          float64
	Path            string
	LastStatus      string
	LastExtractedAt time.Time
}

// NewIndexedScene builds a catalog row from a scene folder on disk. The
// manifest must be readable, it is the only source of the footprint.
func NewIndexedScene(s *scene.Scene) (*IndexedScene, error) {
	manifest, err := s.Manifest()
	if err != nil {
		return nil, err
	}

	footprint := manifest.FootprintGeoJSON()
	bbox := footprint.ForceBbox()
	if len(bbox) < 4 {
		return nil, fmt.Errorf("scene %s has a degenerate footprint", s.ID.Name)
	}

	return &IndexedScene{
		ProductID:  s.ID.Name,
		Platform:   s.ID.Platform,
		Instrument: s.ID.Instrument,
		Acquired:   s.Acquired().UTC(),
		Footprint:  footprint,
		MinLon:     bbox[0],
		MinLat:     bbox[1],
		MaxLon:     bbox[2],
		MaxLat:     bbox[3],
		Path:       s.Dir,
	}, nil
}

// Result converts the row into the model result served over HTTP. The band
// file map is only attached on request, and only for OLCI scenes, it names
// a file per radiance band.
func (s *IndexedScene) Result(withBandFiles bool) (model.IndexedSceneResult, error) {
	result := model.IndexedSceneResult{
		BasicSceneResult: model.BasicSceneResult{
			ID:         s.ProductID,
			Geometry:   s.Footprint,
			Acquired:   s.Acquired,
			Platform:   s.Platform,
			Instrument: s.Instrument,
			SourcePath: s.Path,
		},
		LastStatus: s.LastStatus,
	}

	if withBandFiles && s.Instrument == model.InstrumentOLCI {
		bandFiles, err := model.NewOlciSceneBandFiles(s.Path)
		if err != nil {
			return result, err
		}
		result.SceneBandFiles = bandFiles
	}

	return result, nil
}

// OverlapsBbox reports whether the scene footprint itself intersects the
// bounding box, not just the stored bbox columns. SQL prefilters on the
// flattened bbox; this is the exact test behind it.
func (s *IndexedScene) OverlapsBbox(bbox geojson.BoundingBox) bool {
	if len(bbox) < 4 || s.Footprint == nil {
		return false
	}
	intersection := geomPolygon(s.Footprint).Intersection(bboxPolygon(bbox))
	return intersection != nil && intersection.Area() > 0
}

func geomPolygon(p *geojson.Polygon) geom.Polygon {
	poly := make(geom.Polygon, len(p.Coordinates))
	for i, ring := range p.Coordinates {
		points := make([]geom.Point, len(ring))
		for j, position := range ring {
			points[j] = geom.Point{X: position[0], Y: position[1]}
		}
		poly[i] = points
	}
	return poly
}

func bboxPolygon(bbox geojson.BoundingBox) geom.Polygon {
	return geom.Polygon{{
		{X: bbox[0], Y: bbox[1]},
		{X: bbox[2], Y: bbox[1]},
		{X: bbox[2], Y: bbox[3]},
		{X: bbox[0], Y: bbox[3]},
		{X: bbox[0], Y: bbox[1]},
	}}
}
