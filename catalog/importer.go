package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/maximlamare/S3-extract/scene"
	"github.com/maximlamare/S3-extract/util"
)

//ConnectionProvider is a function that can provide a database connection.
type ConnectionProvider func(util.LogContext) (*sql.DB, error)

//BeginIngestJobMessage is sent on a channel to start an ingest job.
const BeginIngestJobMessage = "start"

//AbortIngestJobMessage is sent on a channel to stop an in-progress job.
const AbortIngestJobMessage = "stop"

var findScenesFunc = scene.FindScenes

type jobStats struct {
	NumberAddedOrUpdated int
	NumberSkipped        int
	NumberError          int
	StartTime            time.Time
	EndTime              time.Time
	CanceledByUser       bool
}

func (stats *jobStats) String() string {
	return fmt.Sprintf(`
		Start:	%v
		End:	%v
		Canceled: %v
		#Added:		%v
		#Skipped:	%v
		#Error:		%v
		`,
		stats.StartTime.Format("Mon Jan _2 15:04:05 2006"),
		stats.EndTime.Format("Mon Jan _2 15:04:05 2006"),
		stats.CanceledByUser,
		stats.NumberAddedOrUpdated,
		stats.NumberSkipped,
		stats.NumberError)
}

//Importer manages the state for an ingest job.
//Mainly useful when launching the job on an interval.
type Importer struct {
	sceneRoot      string
	platformFilter string
	dbConnProvider ConnectionProvider
	statusChan     chan chan string
	ctx            util.LogContext
}

//NewImporter intializes a new importer scanning the given scene root.
func NewImporter(
	sceneRoot string,
	platformFilter string,
	dbConnProvider ConnectionProvider) *Importer {
	return &Importer{
		sceneRoot:      sceneRoot,
		platformFilter: platformFilter,
		dbConnProvider: dbConnProvider,
		statusChan:     make(chan chan string, 10),
		ctx:            &util.BasicLogContext{}}
}

//ImportWhile performs the Ingest() task and waits for a channel.
//Note: this is blocking
//The function will exit when messageChan is closed and any in-progress jobs complete.
//To close quickly, send AbortIngestJobMessage on messageChan before closing it.
func (imp *Importer) ImportWhile(messageChan <-chan string, maxTimeBetweenJobs time.Duration) {
	util.LogInfo(imp.ctx, fmt.Sprintf("Ingest loop started with frequency %v", maxTimeBetweenJobs))

	previousStatus := "\tNone"

	scheduleTimer := time.NewTimer(maxTimeBetweenJobs)
	nextScheduledStartTime := time.Now().Add(maxTimeBetweenJobs)

	var startJob bool
	for {
		startJob = false

		//Wait for a start message.
		//Status is reported cooperatively, so deal with any requests while we wait.
		select {
		case <-scheduleTimer.C:
			util.LogInfo(imp.ctx, "Maximum time between ingest jobs elapsed.")
			startJob = true
		case msg, ok := <-messageChan:
			if !ok {
				return //The message channel has been closed. Exit.
			}
			switch msg {
			case BeginIngestJobMessage:
				util.LogInfo(imp.ctx, "User requested ingest job start.")
				startJob = true
			default:
				//ignore this message. We only want ones for "begin".
			}
		case respChan := <-imp.statusChan:
			//The user has sent a request for the current status.
			select {
			//Try to send a response on the provided channel.
			case respChan <- fmt.Sprintf("%v\nStatus: Sleeping until %v\nPrevious job:\n%v",
				time.Now().Format("Mon Jan _2 15:04:05 2006"),
				nextScheduledStartTime.Format("Mon Jan _2 15:04:05 2006"),
				previousStatus): //good
			default:
				//Could not send immediately. We'll ignore it.
			}
		}

		if startJob {
			util.LogInfo(imp.ctx, "Starting ingest job.")
			previousStatus = imp.Import(messageChan)

			//Reset the timer.
			scheduleTimer.Stop()
			//Rather than keep track of whether we've received on the timer channel
			//(maybe that's how we got here), we'll just drain it in a general way.
		TimerDrainLoop:
			for {
				select {
				case <-scheduleTimer.C: //good, discard
				default:
					//Channel is empty. We're done.
					break TimerDrainLoop
				}
			}

			scheduleTimer.Reset(maxTimeBetweenJobs)
			nextScheduledStartTime = time.Now().Add(maxTimeBetweenJobs)
		}
	}
}

//GetStatus is a thread safe way to get information about the import operation.
func (imp *Importer) GetStatus() string {
	responseChan := make(chan string, 1) //Must have a buffer. The importer won't wait if it can't send.
	imp.statusChan <- responseChan
	status := <-responseChan
	return status
}

//Import walks the scene root and updates the catalog.
//Failures are reported in the returned status rather than ending the
//process, so a scheduled loop survives a temporarily unreadable archive.
func (imp *Importer) Import(messageChan <-chan string) (result string) {
	scenes, err := findScenesFunc(imp.ctx, imp.sceneRoot, imp.platformFilter)
	if err != nil {
		util.LogSimpleErr(imp.ctx, "Could not scan the scene folder.", err)
		return fmt.Sprintf("\tFailed: %v", err)
	}

	//Database connection is opened right before the ingest, and closed
	//immediately after.
	database, err := imp.dbConnProvider(imp.ctx)
	if err != nil {
		util.LogSimpleErr(imp.ctx, "Could not open the catalog database.", err)
		return fmt.Sprintf("\tFailed: %v", err)
	}
	defer database.Close()

	return imp.Ingest(scenes, database, messageChan)
}

//Ingest upserts one catalog row per scene folder.
func (imp *Importer) Ingest(scenes []*scene.Scene, database *sql.DB, cancelChan <-chan string) (result string) {
	//Create the prepared statement that will be used to upsert rows.
	stmt, err := database.Prepare(upsertSceneSQL)
	if err != nil {
		util.LogSimpleErr(imp.ctx, "Prepare statement failed. Has the catalog been migrated?", err)
		return fmt.Sprintf("\tFailed: %v", err)
	}
	defer stmt.Close()

	var stats jobStats
	stats.StartTime = time.Now()
	lastProgressLogTime := time.Now()
	progressLogInterval := time.Duration(time.Second * 30)

SceneLoop:
	for _, scn := range scenes {
		//Check whether the user has requested cancelation.
		if abort := drainMessages(cancelChan); abort {
			util.LogInfo(imp.ctx, "Ingest job canceled by user.")
			stats.CanceledByUser = true
			break SceneLoop
		}

		//Report the status to anyone waiting for it.
		drainStatusChannel(imp.statusChan, &stats)

		//Occasionally emit progress to the log stream
		if time.Since(lastProgressLogTime) > progressLogInterval {
			util.LogInfo(imp.ctx, fmt.Sprintf("Ingest Progress: Added:%v Skipped:%v Error:%v",
				stats.NumberAddedOrUpdated, stats.NumberSkipped, stats.NumberError))
			lastProgressLogTime = time.Now()
		}

		indexed, err := NewIndexedScene(scn)
		if err != nil {
			//A scene folder without a readable manifest has no footprint to index.
			//Just log this and move along.
			util.LogAlert(imp.ctx, fmt.Sprintf("Skipping scene %s: %v", scn.ID.Name, err))
			stats.NumberSkipped++
			continue
		}

		if _, err = stmt.Exec(upsertArgs(indexed)...); err != nil {
			stats.NumberError++
			util.LogSimpleErr(imp.ctx, "Error upserting scene "+indexed.ProductID, err)
		} else {
			stats.NumberAddedOrUpdated++
		}
	}

	//Clear the status requests before doing the long-running operation.
	drainStatusChannel(imp.statusChan, &stats)
	imp.doDatabaseMaintenance(database)

	stats.EndTime = time.Now()
	util.LogInfo(imp.ctx, fmt.Sprintf("Ingest Complete: %v", stats.String()))
	util.LogInfo(imp.ctx, fmt.Sprintf("Ingest took %s", stats.EndTime.Sub(stats.StartTime)))

	return fmt.Sprintf("%v", stats.String())
}

//drainMessages reads all the messages from the channel looking for
//any abort messages.
//All other messages will be ignored and discarded.
func drainMessages(messageChan <-chan string) (abortRequested bool) {
	abortRequested = false
	for {
		select {
		case msg := <-messageChan:
			abortRequested = abortRequested || (msg == AbortIngestJobMessage)
		default:
			return
		}
	}
}

//drainStatusChannel drains the status request channel
//and sends back a status string
func drainStatusChannel(statusChan <-chan chan string, stats *jobStats) {
	for {
		select {
		case resp := <-statusChan:
			if resp != nil {
				select {
				case resp <- fmt.Sprintf("%v\nIn progress\n%v", time.Now().Format("Mon Jan _2 15:04:05 2006"), stats.String()): //good
				default: //can't send. ignore this request.
				}
			}
		default:
			return
		}
	}
}

//doDatabaseMaintenance performs any maintenance that should be done
//after the import operation, e.g. refreshing the query planner statistics
func (imp *Importer) doDatabaseMaintenance(database *sql.DB) {
	_, err := database.Exec(`ANALYZE`)
	if err != nil {
		util.LogSimpleErr(imp.ctx, "Error during database maintenance.", err)
	}
}
