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
	"math"
	"os"
	"path/filepath"

	"github.com/maximlamare/S3-extract/model"
	"github.com/maximlamare/S3-extract/scene"
	"github.com/maximlamare/S3-extract/sites"
	"github.com/maximlamare/S3-extract/snap"
	"github.com/maximlamare/S3-extract/util"
)

// Bounds reports whether a site is inside a scene. The cheap test uses the
// manifest footprint alone; with pixelCheck set the subset is actually run
// and a radiance band probed, which also catches no-data margins inside the
// footprint.
func (e *Extractor) Bounds(ctx util.LogContext, scn *scene.Scene, site sites.Site, pixelCheck bool) (*model.BoundsSceneResult, error) {
	result := &model.BoundsSceneResult{BasicSceneResult: scn.BasicResult()}

	manifest, err := scn.Manifest()
	if err != nil {
		return nil, (&util.Error{LogMsg: err.Error(), SimpleMsg: "scene manifest could not be read", Scene: scn.ID.Name}).Log(ctx, "Bounds check")
	}
	result.InBounds = manifest.Contains(site.Lat, site.Lon)
	if !result.InBounds || !pixelCheck {
		return result, nil
	}

	inBounds, err := e.probePixel(ctx, scn, site)
	if err != nil {
		return nil, (&util.Error{LogMsg: err.Error(), SimpleMsg: "pixel probe failed", Scene: scn.ID.Name}).Log(ctx, "Bounds check")
	}
	result.InBounds = inBounds
	return result, nil
}

// probeBand picks the radiance band the pixel probe samples
func probeBand(instrument string) string {
	if instrument == model.InstrumentSLSTR {
		return "S1_radiance"
	}
	return "Oa01_radiance"
}

func (e *Extractor) probePixel(ctx util.LogContext, scn *scene.Scene, site sites.Site) (bool, error) {
	dir, err := e.runSubset(ctx, scn, site)
	if err != nil {
		if snap.IsOutOfBounds(err) {
			return false, nil
		}
		return false, err
	}
	defer os.RemoveAll(dir)

	subset, err := openProduct(filepath.Join(dir, snap.SubsetFileName))
	if err != nil {
		return false, err
	}
	defer subset.Close()

	x, y, err := locate(subset, site.Lat, site.Lon)
	if err != nil {
		return false, err
	}
	return !math.IsNaN(sampleBand(ctx, subset, probeBand(scn.ID.Instrument), x, y)), nil
}
