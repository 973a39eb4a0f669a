package main

import (
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/maximlamare/S3-extract/extract"
	"github.com/maximlamare/S3-extract/model"
	"github.com/maximlamare/S3-extract/results"
	"github.com/maximlamare/S3-extract/sites"
	"github.com/maximlamare/S3-extract/snap"
	"github.com/maximlamare/S3-extract/util"
)

func boundsAction(c *cli.Context) error {
	ctx := &(util.BasicLogContext{})

	sceneRoot := c.String("input")
	coordsPath := c.String("coords")
	outPath := c.String("output")
	if sceneRoot == "" || coordsPath == "" || outPath == "" {
		return cli.NewExitError("the input, coords and output flags are all required", 1)
	}

	siteList, err := sites.LoadSites(coordsPath)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	scenes, err := findScenesFunc(ctx, sceneRoot, "")
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	pixelCheck := c.Bool("pixel-check")
	runner := snap.NewRunner()
	if pixelCheck {
		//The footprint test alone never launches gpt.
		if err := runner.CheckInstalled(); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
	}
	extractor := extract.NewExtractor(runner)

	writer, err := results.NewBoundsWriter(outPath)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	stats := &results.RunStats{}
	var creators []model.GeoJSONFeatureCreator
	for _, scn := range scenes {
		for _, site := range siteList {
			result, err := extractor.Bounds(ctx, scn, site, pixelCheck)
			if err != nil {
				util.LogSimpleErr(ctx, "Checking scene "+scn.ID.Name, err)
				stats.CountFailure()
				continue
			}
			if err := writer.Append(scn.ID.Name, site.Name, result.InBounds); err != nil {
				writer.Close()
				return cli.NewExitError(err.Error(), 1)
			}
			stats.CountRow(result.InBounds)
			if c.String("geojson") != "" {
				creators = append(creators, *result)
			}
		}
	}
	if err := writer.Close(); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	if geojsonPath := c.String("geojson"); geojsonPath != "" {
		collection, err := model.MultiSceneResult{FeatureCreators: creators}.GeoJSONFeatureCollection()
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		if err := os.WriteFile(geojsonPath, []byte(collection.String()), 0644); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
	}

	util.LogInfo(ctx, stats.Summary())
	if stats.Failures() > 0 {
		return cli.NewExitError("Some scenes could not be checked. See the log for details.", 1)
	}
	return nil
}
