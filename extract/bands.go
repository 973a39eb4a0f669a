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
	"fmt"
	"os"
	"path/filepath"

	"github.com/maximlamare/S3-extract/model"
	"github.com/maximlamare/S3-extract/scene"
	"github.com/maximlamare/S3-extract/sites"
	"github.com/maximlamare/S3-extract/snap"
	"github.com/maximlamare/S3-extract/util"
)

// Bands runs the band pipeline for one scene and site: a subset around the
// site, then a pixel sample of each requested band. Unlike snow products, a
// requested band that is not in the subset fails the scene; a silent NaN
// there would hide a typo in the band list for the whole run.
func (e *Extractor) Bands(ctx util.LogContext, scn *scene.Scene, site sites.Site, bands []string) (*model.BandSceneResult, error) {
	if len(bands) == 0 {
		return nil, errors.New("no bands requested")
	}
	result := &model.BandSceneResult{
		BasicSceneResult: scn.BasicResult(),
		BandValues:       model.BandValues{Names: bands},
	}

	manifest, err := scn.Manifest()
	if err != nil {
		return nil, (&util.Error{LogMsg: err.Error(), SimpleMsg: "scene manifest could not be read", Scene: scn.ID.Name}).Log(ctx, "Band extraction")
	}
	if !manifest.Contains(site.Lat, site.Lon) {
		util.LogInfo(ctx, fmt.Sprintf("Site %s is outside the footprint of %s", site.Name, scn.ID.Name))
		return result, nil
	}

	dir, err := e.runSubset(ctx, scn, site)
	if err != nil {
		if snap.IsOutOfBounds(err) {
			util.LogInfo(ctx, fmt.Sprintf("Subset around %s has no overlap with %s", site.Name, scn.ID.Name))
			return result, nil
		}
		return nil, err
	}
	defer os.RemoveAll(dir)

	subset, err := openProduct(filepath.Join(dir, snap.SubsetFileName))
	if err != nil {
		return nil, (&util.Error{LogMsg: err.Error(), SimpleMsg: "subset output could not be opened", Scene: scn.ID.Name}).Log(ctx, "Band extraction")
	}
	defer subset.Close()

	x, y, err := locate(subset, site.Lat, site.Lon)
	if err != nil {
		return nil, (&util.Error{LogMsg: err.Error(), SimpleMsg: "site pixel could not be located", Scene: scn.ID.Name}).Log(ctx, "Band extraction")
	}

	values := make(map[string]float64, len(bands))
	for _, name := range bands {
		resolved, err := subset.FindBand(name)
		if err != nil {
			return nil, (&util.Error{LogMsg: err.Error(), SimpleMsg: fmt.Sprintf("band %s is not in the subset", name), Scene: scn.ID.Name}).Log(ctx, "Band extraction")
		}
		raster, err := subset.ReadBand(resolved)
		if err != nil {
			return nil, (&util.Error{LogMsg: err.Error(), SimpleMsg: fmt.Sprintf("band %s could not be read", name), Scene: scn.ID.Name}).Log(ctx, "Band extraction")
		}
		values[name] = round4(raster.At(x, y))
	}

	result.BandValues = model.BandValues{Names: bands, Values: values, Valid: true}
	return result, nil
}
