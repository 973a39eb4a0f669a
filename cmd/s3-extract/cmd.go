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

package main

import (
	"fmt"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/maximlamare/S3-extract/sites"
)

//ProductVersion is the version reported by the version command.
const ProductVersion = "1.1.0"

var inputFlag = cli.StringFlag{
	Name:  "input, i",
	Usage: "Scene root folder, searched recursively for .SEN3 products",
}
var coordsFlag = cli.StringFlag{
	Name:  "coords, c",
	Usage: "Site coordinates csv with site,lat,lon rows",
}
var outputDirFlag = cli.StringFlag{
	Name:  "output, o",
	Usage: "Output folder for the per-site csv files",
}
var terrainFlag = cli.StringFlag{
	Name:  "terrain, t",
	Usage: "Optional terrain csv with site,slope,aspect,elevation rows",
}
var platformFlag = cli.StringFlag{
	Name:  "platform, p",
	Value: "AB",
	Usage: "Sentinel-3 platform filter: A, B or AB",
}
var workersFlag = cli.IntFlag{
	Name:  "workers, w",
	Value: 1,
	Usage: "Scenes processed in parallel. SNAP is memory hungry, raise with care",
}

//snowOptionFlags are the processor options shared by the snow and batch
//commands.
var snowOptionFlags = []cli.Flag{
	cli.BoolFlag{Name: "pollution", Usage: "Consider snow pollution in the albedo retrieval"},
	cli.Float64Flag{Name: "delta", Value: 0.1, Usage: "Snow pollution delta"},
	cli.BoolFlag{Name: "ndsi", Usage: "Apply the NDSI snow mask"},
	cli.Float64Flag{Name: "ndsi-thresh", Value: 0.03, Usage: "NDSI snow mask threshold"},
	cli.BoolFlag{Name: "ppa", Usage: "Compute the probabilistic photon absorption path length"},
	cli.BoolFlag{Name: "no-gains", Usage: "Disable the OLCI gain correction"},
}

var commands = cli.Commands{
	cli.Command{
		Name:    "snow",
		Aliases: []string{"s"},
		Usage:   "Extract snow processor variables at each site",
		Flags:   append([]cli.Flag{inputFlag, coordsFlag, outputDirFlag, terrainFlag, platformFlag, workersFlag}, snowOptionFlags...),
		Action:  snowAction,
	},
	cli.Command{
		Name:    "bands",
		Aliases: []string{"b"},
		Usage:   "Extract raw band values at each site",
		Flags: []cli.Flag{inputFlag, coordsFlag, outputDirFlag, platformFlag, workersFlag,
			cli.StringSliceFlag{Name: "band, b", Usage: "Band to extract, repeatable"},
			cli.StringFlag{Name: "resolution, r", Value: "500", Usage: "SLSTR reader resolution in metres: 500 or 1000"},
		},
		Action: bandsAction,
	},
	cli.Command{
		Name:  "bounds",
		Usage: "Check which sites fall inside which scenes",
		Flags: []cli.Flag{inputFlag, coordsFlag,
			cli.StringFlag{Name: "output, o", Usage: "Output csv of scene,site,in_bounds rows"},
			cli.BoolFlag{Name: "pixel-check", Usage: "Probe a radiance pixel instead of trusting the footprint"},
			cli.StringFlag{Name: "geojson", Usage: "Optional path for a GeoJSON dump of the checked scenes"},
		},
		Action: boundsAction,
	},
	cli.Command{
		Name:    "list-bands",
		Aliases: []string{"l"},
		Usage:   "List the bands, tie-point grids and masks of a scene",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "input, i", Usage: "A single .SEN3 scene folder"},
			cli.StringFlag{Name: "output, o", Usage: "Optional file to write the listing to"},
		},
		Action: listBandsAction,
	},
	cli.Command{
		Name:  "batch",
		Usage: "Run the snow extraction for a folder of per-site scene lists",
		Flags: append([]cli.Flag{inputFlag,
			cli.StringFlag{Name: "sites, s", Usage: "Folder with one sub-folder per site holding a " + sites.SceneListFileName},
			outputDirFlag, terrainFlag, platformFlag, workersFlag}, snowOptionFlags...),
		Action: batchAction,
	},
	cli.Command{
		Name:  "recover",
		Usage: "Finalize the temp csv files left behind by an interrupted run",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "output, o", Usage: "Output folder to recover"},
		},
		Action: recoverAction,
	},
	cli.Command{
		Name:    "ingest",
		Aliases: []string{"n"},
		Usage:   "Scan a scene root into the catalog database",
		Flags: []cli.Flag{inputFlag, platformFlag,
			cli.BoolFlag{Name: "schedule", Usage: "Keep rescanning on a timer, with http start/cancel/status routes"},
		},
		Action: ingestAction,
	},
	cli.Command{
		Name:   "serve",
		Usage:  "Launch the catalog webserver",
		Action: serveAction,
	},
	cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Update the catalog database schema",
		Action:  migrateDatabaseAction,
	},
	cli.Command{
		Name:  "db",
		Usage: "Catalog database maintenance",
		Subcommands: cli.Commands{
			cli.Command{
				Name:   "purge",
				Usage:  "Delete every scene from the catalog",
				Action: dbPurgeAction,
			},
		},
	},
	cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print the version number of the s3-extract tool",
		Action:  versionAction,
	},
}

func versionAction(*cli.Context) {
	fmt.Println("s3-extract " + ProductVersion)
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "s3-extract"
	app.Usage = "Extract Sentinel-3 OLCI and SLSTR pixel values at field sites"
	app.Commands = commands
	return
}
