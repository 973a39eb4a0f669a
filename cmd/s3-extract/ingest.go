package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/maximlamare/S3-extract/catalog"
	"github.com/maximlamare/S3-extract/util"
)

//ingestAction scans a scene root into the catalog, once by default or on a
//schedule with http control routes.
func ingestAction(c *cli.Context) error {
	ctx := &(util.BasicLogContext{})

	sceneRoot := c.String("input")
	if sceneRoot == "" {
		return cli.NewExitError("the input scene root flag is required", 1)
	}
	importer := catalog.NewImporter(sceneRoot, c.String("platform"), getDbConnectionFunc)

	if !c.Bool("schedule") {
		status := importer.Import(nil)
		util.LogInfo(ctx, "Ingest result:"+status)
		if strings.Contains(status, "Failed") {
			return cli.NewExitError("Ingest failed. See the log for details.", 1)
		}
		return nil
	}

	//Create the channel that sends the start/stop messages to the Importer.
	messageChan := make(chan string, 5) //small buffer.

	//Start the sleep/ingest loop.
	go importer.ImportWhile(messageChan, util.GetIngestFrequency())

	//Set up an http router for the control routes.
	router := mux.NewRouter()
	router.HandleFunc("/ingest/", func(resp http.ResponseWriter, req *http.Request) {
		handleImportStatus(importer, resp, req)
	})
	router.HandleFunc("/ingest/start", func(resp http.ResponseWriter, req *http.Request) {
		handleForceStartIngest(importer, messageChan, resp, req)
	})
	router.HandleFunc("/ingest/cancel", func(resp http.ResponseWriter, req *http.Request) {
		handleCancel(importer, messageChan, resp, req)
	})

	portStr := getPortStr()
	util.LogInfo(ctx, "Ingest control routes listening on "+portStr)
	launchServerFunc(portStr, router)
	return nil
}

//handleImportStatus requests the status from the importer and writes it out.
func handleImportStatus(imp *catalog.Importer, writer http.ResponseWriter, req *http.Request) {
	fmt.Fprintln(writer, imp.GetStatus())
}

//handleForceStartIngest sends a "begin" message to the importer and returns the new status to the user.
func handleForceStartIngest(imp *catalog.Importer, messageChan chan<- string, writer http.ResponseWriter, req *http.Request) {
	select {
	case messageChan <- catalog.BeginIngestJobMessage:
		fmt.Fprintln(writer, "Begin job request submitted.")
	default:
		fmt.Fprintln(writer, "Error submitting request.")
	}
	fmt.Fprintln(writer, imp.GetStatus())
}

//handleCancel sends a "cancel" message to the importer and returns the new status to the user.
func handleCancel(imp *catalog.Importer, cancelChan chan<- string, writer http.ResponseWriter, req *http.Request) {
	select {
	case cancelChan <- catalog.AbortIngestJobMessage:
		fmt.Fprintln(writer, "Cancel request submitted.")
	default:
		fmt.Fprintln(writer, "Error submitting cancel request.")
	}
	fmt.Fprintln(writer, imp.GetStatus())
}
