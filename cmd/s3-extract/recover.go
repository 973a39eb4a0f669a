package main

import (
	"fmt"
	"strings"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/maximlamare/S3-extract/results"
	"github.com/maximlamare/S3-extract/util"
)

func recoverAction(c *cli.Context) error {
	ctx := &(util.BasicLogContext{})

	outputDir := c.String("output")
	if outputDir == "" {
		return cli.NewExitError("the output folder flag is required", 1)
	}

	recovered, err := results.Recover(ctx, outputDir)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	if len(recovered) == 0 {
		util.LogInfo(ctx, "No interrupted outputs found under "+outputDir)
		return nil
	}
	util.LogInfo(ctx, fmt.Sprintf("Recovered %d sites: %s", len(recovered), strings.Join(recovered, ", ")))
	return nil
}
