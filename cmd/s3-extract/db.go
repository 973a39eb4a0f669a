package main

import (
	"database/sql"
	"fmt"

	cli "gopkg.in/urfave/cli.v1"
	_ "modernc.org/sqlite"

	"github.com/maximlamare/S3-extract/catalog"
	"github.com/maximlamare/S3-extract/util"
)

//getDbConnection opens the catalog database file, creating it on first use.
func getDbConnection(ctx util.LogContext) (*sql.DB, error) {
	catalogPath := util.GetCatalogPath()

	util.LogInfo(ctx, fmt.Sprintf("Opening the scene catalog at: `%s`", catalogPath))
	db, err := sql.Open("sqlite", catalogPath)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, err
}

var getDbConnectionFunc catalog.ConnectionProvider = getDbConnection

func dbPurgeAction(*cli.Context) error {
	ctx := &(util.BasicLogContext{})

	database, err := getDbConnectionFunc(ctx)
	if err != nil {
		return cli.NewExitError("Could not open the catalog database.", 1)
	}
	defer database.Close()

	purged, err := catalog.PurgeScenes(database)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("Purge failed: %v", err), 1)
	}
	util.LogInfo(ctx, fmt.Sprintf("Purged %d scenes from the catalog", purged))
	return nil
}
