package main

import (
	"log"

	"github.com/pressly/goose"
	cli "gopkg.in/urfave/cli.v1"

	_ "github.com/maximlamare/S3-extract/migrations"
	"github.com/maximlamare/S3-extract/util"
)

func migrateDatabaseAction(*cli.Context) {
	database, err := getDbConnectionFunc(&util.BasicLogContext{})
	if err != nil {
		log.Fatal("Could not open the catalog database.")
	}
	defer database.Close()

	goose.SetDialect("sqlite3")
	goose.Run("up", database, ".")
}
