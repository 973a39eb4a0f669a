package main

import (
	"fmt"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/maximlamare/S3-extract/catalog"
	"github.com/maximlamare/S3-extract/extract"
	"github.com/maximlamare/S3-extract/results"
	"github.com/maximlamare/S3-extract/scene"
	"github.com/maximlamare/S3-extract/sites"
	"github.com/maximlamare/S3-extract/snap"
	"github.com/maximlamare/S3-extract/util"
)

func bandsAction(c *cli.Context) error {
	ctx := &(util.BasicLogContext{})

	bands := c.StringSlice("band")
	if len(bands) == 0 {
		return cli.NewExitError("at least one band must be requested with the band flag", 1)
	}
	if _, err := snap.SlstrReader(c.String("resolution")); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	scenes, siteList, outputDir, err := loadRunInputs(ctx, c)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	runner := snap.NewRunner()
	if err := runner.CheckInstalled(); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	extractor := extract.NewExtractor(runner)
	extractor.SlstrResolution = c.String("resolution")

	stamper := catalog.NewStamper(ctx, getDbConnectionFunc)
	defer stamper.Close()
	failures := results.NewFailureLog(outputDir)
	stats := &results.RunStats{}

	writers := make(map[string]*results.SiteWriter, len(siteList))
	for _, site := range siteList {
		writers[site.Name] = results.NewSiteWriter(outputDir, site.Name, bands)
	}

	util.LogInfo(ctx, fmt.Sprintf("Band extraction: %d scenes, %d sites, %d bands", len(scenes), len(siteList), len(bands)))
	runPairs(scenes, siteList, c.Int("workers"), func(scn *scene.Scene, site sites.Site) {
		result, err := extractor.Bands(ctx, scn, site, bands)
		if err != nil {
			failures.Record(scn.ID.Name, err)
			stats.CountFailure()
			stamper.Stamp(scn.ID.Name, catalog.StatusFailed)
			return
		}
		if err := writers[site.Name].Append(results.BandRow(result)); err != nil {
			failures.Record(scn.ID.Name, err)
			stats.CountFailure()
			return
		}
		stats.CountRow(result.Valid)
		stamper.Stamp(scn.ID.Name, stampStatus(result.Valid))
	})

	return finishRun(ctx, outputDir, writers, stats)
}
