package main

import (
	"fmt"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/maximlamare/S3-extract/catalog"
	"github.com/maximlamare/S3-extract/extract"
	"github.com/maximlamare/S3-extract/results"
	"github.com/maximlamare/S3-extract/snap"
	"github.com/maximlamare/S3-extract/terrain"
	"github.com/maximlamare/S3-extract/util"
)

func snowAction(c *cli.Context) error {
	ctx := &(util.BasicLogContext{})

	scenes, siteList, outputDir, err := loadRunInputs(ctx, c)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	runner := snap.NewRunner()
	if err := runner.CheckInstalled(); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	extractor := extract.NewExtractor(runner)
	applySnowFlags(&extractor.SnowParams, c)

	terrainTable, err := loadTerrainTable(c)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	stamper := catalog.NewStamper(ctx, getDbConnectionFunc)
	defer stamper.Close()

	run := &snowRun{
		ctx:       ctx,
		extractor: extractor,
		terrain:   terrainTable,
		failures:  results.NewFailureLog(outputDir),
		stats:     &results.RunStats{},
		stamper:   stamper,
	}

	columns := results.SnowColumns(terrainTable != nil)
	writers := make(map[string]*results.SiteWriter, len(siteList))
	for _, site := range siteList {
		writers[site.Name] = results.NewSiteWriter(outputDir, site.Name, columns)
	}

	util.LogInfo(ctx, fmt.Sprintf("Snow extraction: %d scenes, %d sites", len(scenes), len(siteList)))
	runPairs(scenes, siteList, c.Int("workers"), run.process(func(site string) *results.SiteWriter {
		return writers[site]
	}))

	return finishRun(ctx, outputDir, writers, run.stats)
}

//applySnowFlags folds the processor option flags into the graph parameters.
func applySnowFlags(params *snap.SnowAlbedoParams, c *cli.Context) {
	params.ConsiderSnowPollution = c.Bool("pollution")
	params.WritePollutionParams = c.Bool("pollution")
	params.PollutionDelta = c.Float64("delta")
	params.ConsiderNdsiMask = c.Bool("ndsi")
	params.NdsiThreshold = c.Float64("ndsi-thresh")
	params.ComputePPA = c.Bool("ppa")
	params.ApplyGains = !c.Bool("no-gains")
}

func loadTerrainTable(c *cli.Context) (*terrain.Table, error) {
	path := c.String("terrain")
	if path == "" {
		return nil, nil
	}
	return terrain.Load(path)
}
