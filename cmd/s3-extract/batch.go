package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/maximlamare/S3-extract/catalog"
	"github.com/maximlamare/S3-extract/extract"
	"github.com/maximlamare/S3-extract/results"
	"github.com/maximlamare/S3-extract/scene"
	"github.com/maximlamare/S3-extract/sites"
	"github.com/maximlamare/S3-extract/snap"
	"github.com/maximlamare/S3-extract/util"
)

//batchAction runs the snow extraction for a folder of per-site scene lists,
//one output file per site, carrying on past per-scene failures.
func batchAction(c *cli.Context) error {
	ctx := &(util.BasicLogContext{})

	sceneRoot := c.String("input")
	sitesDir := c.String("sites")
	outputDir := c.String("output")
	if sceneRoot == "" || sitesDir == "" || outputDir == "" {
		return cli.NewExitError("the input, sites and output flags are all required", 1)
	}

	lists, err := sites.FindSiteLists(ctx, sitesDir, sites.SceneListFileName)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	scenes, err := findScenesFunc(ctx, sceneRoot, c.String("platform"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return cli.NewExitError(fmt.Sprintf("output folder %s: %v", outputDir, err), 1)
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

	total := 0
	for _, list := range lists {
		total += len(list.Scenes)
	}
	bar := progressbar.Default(int64(total), "Extracting")

	run := &snowRun{
		ctx:       ctx,
		extractor: extractor,
		terrain:   terrainTable,
		failures:  results.NewFailureLog(outputDir),
		stats:     &results.RunStats{},
		stamper:   stamper,
		progress:  func() { bar.Add(1) },
	}

	columns := results.SnowColumns(terrainTable != nil)
	finalizeFailed := false
	for _, list := range lists {
		selected, missing := scene.SelectByName(scenes, list.Scenes)
		for _, name := range missing {
			run.failures.Record(name, fmt.Errorf("scene not found under %s", sceneRoot))
			run.stats.CountFailure()
			bar.Add(1)
		}
		if len(selected) == 0 {
			continue
		}

		writer := results.NewSiteWriter(outputDir, list.Site.Name, columns)
		runPairs(selected, []sites.Site{list.Site}, c.Int("workers"), run.process(func(string) *results.SiteWriter {
			return writer
		}))

		if err := writer.Close(); err != nil {
			util.LogSimpleErr(ctx, "Closing the output of site "+list.Site.Name, err)
		}
		if _, err := os.Stat(results.TempPath(outputDir, list.Site.Name)); err != nil {
			continue
		}
		if err := results.Finalize(ctx, outputDir, list.Site.Name); err != nil {
			util.LogSimpleErr(ctx, "Finalizing site "+list.Site.Name, err)
			finalizeFailed = true
		}
	}
	bar.Finish()

	util.LogInfo(ctx, run.stats.Summary())
	if run.stats.Failures() > 0 || finalizeFailed {
		return cli.NewExitError("Batch finished with failures. See "+results.FailedLogName, 1)
	}
	return nil
}
