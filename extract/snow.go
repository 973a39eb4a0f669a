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
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/maximlamare/S3-extract/model"
	"github.com/maximlamare/S3-extract/scene"
	"github.com/maximlamare/S3-extract/sites"
	"github.com/maximlamare/S3-extract/snap"
	"github.com/maximlamare/S3-extract/util"
)

// Bands sampled from the snow processor output, in output column order.
// Lookup is substring-based so wavelength suffixes in newer processor
// versions still match.
var snowBandNames = []string{
	"grain_diameter",
	"snow_specific_area",
	"albedo_bb_planar_sw",
	"albedo_spectral_planar_1020",
	"rBRR_21",
	"ice_indicator",
}

// Snow runs the snow pipeline for one scene and site: a subset around the
// site feeds the snow processor and the cloud flagging in a single gpt
// invocation, then every output is sampled at the pixel nearest the site.
// A site outside the scene footprint yields an invalid result, not an error.
func (e *Extractor) Snow(ctx util.LogContext, scn *scene.Scene, site sites.Site) (*model.SnowSceneResult, error) {
	result := &model.SnowSceneResult{BasicSceneResult: scn.BasicResult()}

	manifest, err := scn.Manifest()
	if err != nil {
		return nil, (&util.Error{LogMsg: err.Error(), SimpleMsg: "scene manifest could not be read", Scene: scn.ID.Name}).Log(ctx, "Snow extraction")
	}
	if !manifest.Contains(site.Lat, site.Lon) {
		util.LogInfo(ctx, fmt.Sprintf("Site %s is outside the footprint of %s", site.Name, scn.ID.Name))
		return result, nil
	}

	dir, err := e.workDir()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	doc, err := snap.SnowGraph(scn.ManifestPath(), snap.SubsetRegion(site.Lat, site.Lon, e.RegionPad), e.SnowParams, dir)
	if err != nil {
		return nil, err
	}
	graphPath, err := snap.WriteGraph(dir, doc)
	if err != nil {
		return nil, err
	}

	if err = e.runGraph(ctx, graphPath, scn.ID.Name); err != nil {
		if snap.IsOutOfBounds(err) {
			util.LogInfo(ctx, fmt.Sprintf("Subset around %s has no overlap with %s", site.Name, scn.ID.Name))
			return result, nil
		}
		return nil, err
	}

	products, err := e.readSnowProducts(ctx, dir, site)
	if err != nil {
		return nil, (&util.Error{LogMsg: err.Error(), SimpleMsg: "snow processor output could not be sampled", Scene: scn.ID.Name}).Log(ctx, "Snow extraction")
	}
	result.SnowProducts = *products
	return result, nil
}

// readSnowProducts samples the three pipeline outputs at the site pixel
func (e *Extractor) readSnowProducts(ctx util.LogContext, dir string, site sites.Site) (*model.SnowProducts, error) {
	snow, err := openProduct(filepath.Join(dir, snap.SnowFileName))
	if err != nil {
		return nil, err
	}
	defer snow.Close()

	x, y, err := locate(snow, site.Lat, site.Lon)
	if err != nil {
		return nil, err
	}

	values := make(map[string]float64, len(snowBandNames))
	empty := true
	for _, name := range snowBandNames {
		value := round4(sampleBand(ctx, snow, name, x, y))
		values[name] = value
		if !math.IsNaN(value) {
			empty = false
		}
	}

	products := &model.SnowProducts{
		GrainDiameter:            values["grain_diameter"],
		SnowSpecificArea:         values["snow_specific_area"],
		AlbedoBBPlanarSW:         values["albedo_bb_planar_sw"],
		AlbedoSpectralPlanar1020: values["albedo_spectral_planar_1020"],
		RBRR21:                   values["rBRR_21"],
		IceIndicator:             values["ice_indicator"],
	}
	if empty {
		// The subset ran but the target pixel holds no data, e.g. a site
		// in the no-data margin of the swath
		util.LogInfo(ctx, fmt.Sprintf("Site %s hit an empty pixel", site.Name))
		return products, nil
	}
	products.Valid = true
	products.NDSI = round4(e.readNdsi(ctx, dir, site))
	products.AutoCloud = e.readCloudFlag(ctx, dir, site)
	return products, nil
}

// readNdsi computes the snow index from the written subset's radiances
func (e *Extractor) readNdsi(ctx util.LogContext, dir string, site sites.Site) float64 {
	subset, err := openProduct(filepath.Join(dir, snap.SubsetFileName))
	if err != nil {
		util.LogSimpleErr(ctx, "NDSI radiances could not be opened", err)
		return math.NaN()
	}
	defer subset.Close()

	x, y, err := locate(subset, site.Lat, site.Lon)
	if err != nil {
		util.LogSimpleErr(ctx, "NDSI pixel could not be located", err)
		return math.NaN()
	}
	return ndsiOf(
		sampleBand(ctx, subset, "Oa17_radiance", x, y),
		sampleBand(ctx, subset, "Oa21_radiance", x, y),
	)
}

// readCloudFlag samples the cloud-over-snow flag, -1 when unavailable
func (e *Extractor) readCloudFlag(ctx util.LogContext, dir string, site sites.Site) int {
	cloud, err := openProduct(filepath.Join(dir, snap.CloudFileName))
	if err != nil {
		util.LogSimpleErr(ctx, "Cloud flags could not be opened", err)
		return -1
	}
	defer cloud.Close()

	x, y, err := locate(cloud, site.Lat, site.Lon)
	if err != nil {
		util.LogSimpleErr(ctx, "Cloud pixel could not be located", err)
		return -1
	}
	value := sampleBand(ctx, cloud, "cloud_over_snow", x, y)
	if math.IsNaN(value) {
		return -1
	}
	return int(value)
}
