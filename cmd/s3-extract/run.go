package main

import (
	"errors"
	"fmt"
	"os"
	"sync"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/maximlamare/S3-extract/catalog"
	"github.com/maximlamare/S3-extract/extract"
	"github.com/maximlamare/S3-extract/results"
	"github.com/maximlamare/S3-extract/scene"
	"github.com/maximlamare/S3-extract/sites"
	"github.com/maximlamare/S3-extract/terrain"
	"github.com/maximlamare/S3-extract/util"
)

var findScenesFunc = scene.FindScenes

//loadRunInputs resolves the flags shared by the extraction commands and
//loads the scene and site sets they name.
func loadRunInputs(ctx util.LogContext, c *cli.Context) ([]*scene.Scene, []sites.Site, string, error) {
	sceneRoot := c.String("input")
	coordsPath := c.String("coords")
	outputDir := c.String("output")
	if sceneRoot == "" || coordsPath == "" || outputDir == "" {
		return nil, nil, "", errors.New("the input, coords and output flags are all required")
	}

	siteList, err := sites.LoadSites(coordsPath)
	if err != nil {
		return nil, nil, "", err
	}
	scenes, err := findScenesFunc(ctx, sceneRoot, c.String("platform"))
	if err != nil {
		return nil, nil, "", err
	}
	if len(scenes) == 0 {
		return nil, nil, "", fmt.Errorf("no Sentinel-3 scenes found under %s", sceneRoot)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, nil, "", fmt.Errorf("output folder %s: %v", outputDir, err)
	}
	return scenes, siteList, outputDir, nil
}

//runPairs feeds every scene and site combination to workerCount workers.
func runPairs(scenes []*scene.Scene, siteList []sites.Site, workerCount int, process func(*scene.Scene, sites.Site)) {
	if workerCount < 1 {
		workerCount = 1
	}

	type pair struct {
		scn  *scene.Scene
		site sites.Site
	}
	jobs := make(chan pair)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				process(job.scn, job.site)
			}
		}()
	}

	for _, scn := range scenes {
		for _, site := range siteList {
			jobs <- pair{scn: scn, site: site}
		}
	}
	close(jobs)
	wg.Wait()
}

//snowRun bundles the state shared by every worker of a snow extraction.
type snowRun struct {
	ctx       util.LogContext
	extractor *extract.Extractor
	terrain   *terrain.Table
	failures  *results.FailureLog
	stats     *results.RunStats
	stamper   *catalog.Stamper
	progress  func()
}

//process returns the per-pair worker body, appending to the writer that
//writerFor picks for the site.
func (r *snowRun) process(writerFor func(site string) *results.SiteWriter) func(*scene.Scene, sites.Site) {
	return func(scn *scene.Scene, site sites.Site) {
		if r.progress != nil {
			defer r.progress()
		}

		result, err := r.extractor.Snow(r.ctx, scn, site)
		if err != nil {
			r.failures.Record(scn.ID.Name, err)
			r.stats.CountFailure()
			r.stamper.Stamp(scn.ID.Name, catalog.StatusFailed)
			return
		}

		result.TerrainData = r.terrain.Lookup(site.Name)
		if err := writerFor(site.Name).Append(results.SnowRow(result)); err != nil {
			r.failures.Record(scn.ID.Name, err)
			r.stats.CountFailure()
			return
		}
		r.stats.CountRow(result.Valid)
		r.stamper.Stamp(scn.ID.Name, stampStatus(result.Valid))
	}
}

func stampStatus(valid bool) string {
	if valid {
		return catalog.StatusOK
	}
	return catalog.StatusOutOfBounds
}

//finishRun closes and finalizes the per-site outputs, logs the tally, and
//turns failures into a non-zero exit.
func finishRun(ctx util.LogContext, outputDir string, writers map[string]*results.SiteWriter, stats *results.RunStats) error {
	finalizeFailed := false
	for site, writer := range writers {
		if err := writer.Close(); err != nil {
			util.LogSimpleErr(ctx, "Closing the output of site "+site, err)
		}
		if _, err := os.Stat(results.TempPath(outputDir, site)); err != nil {
			continue //the site saw no scenes, there is nothing to finalize
		}
		if err := results.Finalize(ctx, outputDir, site); err != nil {
			util.LogSimpleErr(ctx, "Finalizing site "+site, err)
			finalizeFailed = true
		}
	}

	util.LogInfo(ctx, stats.Summary())
	if stats.Failures() > 0 || finalizeFailed {
		return cli.NewExitError("Run finished with failures. See "+results.FailedLogName, 1)
	}
	return nil
}
