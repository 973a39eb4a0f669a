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

// Package extract runs the per-pixel pipelines. SNAP does the heavy
// retrieval work through generated graphs; the pipelines sample the
// resulting NetCDF products at the pixel nearest each site and package the
// values as model results.
package extract

import (
	"fmt"
	"math"
	"os"

	"github.com/maximlamare/S3-extract/model"
	"github.com/maximlamare/S3-extract/product"
	"github.com/maximlamare/S3-extract/scene"
	"github.com/maximlamare/S3-extract/sites"
	"github.com/maximlamare/S3-extract/snap"
	"github.com/maximlamare/S3-extract/util"
)

// GraphRunner runs a generated SNAP graph. snap.Runner is the production
// implementation.
type GraphRunner interface {
	RunGraph(ctx util.LogContext, graphPath string) error
}

// ProductReader is the slice of the product API the pipelines sample from
type ProductReader interface {
	FindBand(name string) (string, error)
	ReadBand(name string) (*product.Raster, error)
	ReadGeolocation() (*product.Geolocation, error)
	Close()
}

// openProduct lets tests run the pipelines against synthetic products
var openProduct = func(path string) (ProductReader, error) {
	return product.Open(path)
}

// Extractor holds the options shared by every scene of a run
type Extractor struct {
	Gpt             GraphRunner
	SnowParams      snap.SnowAlbedoParams
	RegionPad       float64
	SlstrResolution string
	ScratchDir      string
}

// NewExtractor builds an Extractor with the run defaults
func NewExtractor(gpt GraphRunner) *Extractor {
	return &Extractor{
		Gpt:        gpt,
		SnowParams: snap.DefaultSnowAlbedoParams(),
		RegionPad:  snap.DefaultRegionPad,
		ScratchDir: util.GetScratchDir(),
	}
}

// workDir creates the scratch folder a single scene's products land in.
// The caller removes it.
func (e *Extractor) workDir() (string, error) {
	dir, err := os.MkdirTemp(e.ScratchDir, "s3extract-")
	if err != nil {
		return "", fmt.Errorf("creating scratch folder: %v", err)
	}
	return dir, nil
}

// runGraph runs gpt on a written graph, retrying once when the failure
// looks transient
func (e *Extractor) runGraph(ctx util.LogContext, graphPath, sceneName string) error {
	err := e.Gpt.RunGraph(ctx, graphPath)
	if err != nil && snap.IsTemporary(err) {
		util.LogAlert(ctx, "Transient SNAP failure on "+sceneName+", retrying once")
		err = e.Gpt.RunGraph(ctx, graphPath)
	}
	return err
}

// runSubset generates and runs the subset-only graph for a scene and site,
// returning the scratch folder its output landed in. The caller removes the
// folder. SLSTR scenes are read at the configured resolution.
func (e *Extractor) runSubset(ctx util.LogContext, scn *scene.Scene, site sites.Site) (string, error) {
	readerFormat := snap.ReaderAuto
	if scn.ID.Instrument == model.InstrumentSLSTR {
		var err error
		if readerFormat, err = snap.SlstrReader(e.SlstrResolution); err != nil {
			return "", err
		}
	}

	dir, err := e.workDir()
	if err != nil {
		return "", err
	}
	doc, err := snap.SubsetGraph(scn.ManifestPath(), readerFormat, snap.SubsetRegion(site.Lat, site.Lon, e.RegionPad), dir)
	if err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	graphPath, err := snap.WriteGraph(dir, doc)
	if err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	if err = e.runGraph(ctx, graphPath, scn.ID.Name); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}

// locate finds the pixel of a pipeline output nearest the site
func locate(p ProductReader, lat, lon float64) (x, y int, err error) {
	geo, err := p.ReadGeolocation()
	if err != nil {
		return 0, 0, err
	}
	x, y, _, err = geo.NearestPixel(lat, lon)
	return x, y, err
}

// sampleBand reads one band value at a pixel, NaN when the band is absent.
// Processor versions differ in the exact bands they emit, so a missing band
// downgrades to an empty cell instead of failing the scene.
func sampleBand(ctx util.LogContext, p ProductReader, name string, x, y int) float64 {
	resolved, err := p.FindBand(name)
	if err != nil {
		util.LogAlert(ctx, err.Error())
		return math.NaN()
	}
	raster, err := p.ReadBand(resolved)
	if err != nil {
		util.LogAlert(ctx, err.Error())
		return math.NaN()
	}
	return raster.At(x, y)
}

// round4 trims a sampled value to the 4 decimals the output files carry.
// Non-finite values collapse to NaN so they reach the writers as empty cells.
func round4(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN()
	}
	return math.Round(v*1e4) / 1e4
}

// ndsiOf computes the normalized difference snow index from the two OLCI
// radiances it is defined over
func ndsiOf(b17, b21 float64) float64 {
	sum := b17 + b21
	if sum == 0 || math.IsNaN(sum) {
		return math.NaN()
	}
	return (b17 - b21) / sum
}
