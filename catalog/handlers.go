package catalog

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/google/uuid"
	"github.com/venicegeo/geojson-go/geojson"

	"github.com/maximlamare/S3-extract/model"
	"github.com/maximlamare/S3-extract/util"
)

// Context is the context for a catalog HTTP operation
type Context struct {
	DB        *sql.DB
	sessionID string
}

// AppName returns the application name
func (c *Context) AppName() string {
	return "s3-extract"
}

// SessionID returns a session ID, creating one if needed
func (c *Context) SessionID() string {
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *Context) LogRootDir() string {
	return ""
}

// DiscoverHandler is a handler for /catalog/discover
// @Title catalogDiscoverHandler
// @Description searches the local scene catalog
// @Accept  plain
// @Param   bbox            query   string  false        "The bounding box, as minLon,minLat,maxLon,maxLat"
// @Param   platform        query   string  false        "The platform letter (A, B or AB)"
// @Param   acquiredDate    query   string  false        "The minimum (earliest) acquired date, as RFC 3339"
// @Param   maxAcquiredDate query   string  false        "The maximum acquired date, as RFC 3339"
// @Success 200 {object}  geojson.FeatureCollection
// @Failure 400 {object}  string
// @Router /catalog/discover [get]
type DiscoverHandler struct {
	Context Context
}

// NewDiscoverHandler creates a new handler using the given catalog database
func NewDiscoverHandler(connectionProvider ConnectionProvider) (*DiscoverHandler, error) {
	db, err := connectionProvider(&util.BasicLogContext{})
	if err != nil {
		return nil, err
	}

	return &DiscoverHandler{
		Context: Context{
			DB: db,
		},
	}, nil
}

// ServeHTTP implements the http.Handler interface for the DiscoverHandler type
func (h DiscoverHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Context.DB.Begin()
	if err != nil {
		message := fmt.Sprintf("Could not begin DB transaction: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	defer tx.Commit()

	filter := SearchFilter{}
	if r.FormValue("bbox") != "" {
		if filter.Bbox, err = geojson.NewBoundingBox(r.FormValue("bbox")); err != nil {
			message := fmt.Sprintf("The bbox value of %v is invalid", r.FormValue("bbox"))
			util.LogSimpleErr(&h.Context, message, err)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			tx.Rollback()
			return
		}
	}
	if platform := strings.ToUpper(r.FormValue("platform")); platform != "" {
		if platform != model.PlatformA && platform != model.PlatformB && platform != "AB" {
			message := fmt.Sprintf("The platform value of %v is invalid, expected A, B or AB", r.FormValue("platform"))
			util.LogAlert(&h.Context, message)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			tx.Rollback()
			return
		}
		filter.Platform = platform
	}
	filter.MinAcquired = time.Unix(0, 0)
	if r.FormValue("acquiredDate") != "" {
		if filter.MinAcquired, err = time.Parse(time.RFC3339, r.FormValue("acquiredDate")); err != nil {
			message := fmt.Sprintf("Acquired date value of %v is invalid.", r.FormValue("acquiredDate"))
			util.LogSimpleErr(&h.Context, message, err)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			tx.Rollback()
			return
		}
	}
	filter.MaxAcquired = time.Now()
	if r.FormValue("maxAcquiredDate") != "" {
		if filter.MaxAcquired, err = time.Parse(time.RFC3339, r.FormValue("maxAcquiredDate")); err != nil {
			message := fmt.Sprintf("Acquired date value of %v is invalid.", r.FormValue("maxAcquiredDate"))
			util.LogSimpleErr(&h.Context, message, err)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			tx.Rollback()
			return
		}
	}

	multiResult, err := discoverScenes(tx, filter)
	if err != nil {
		message := fmt.Sprintf("Error searching for scenes: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		tx.Rollback()
		return
	}

	featureCollection, err := multiResult.GeoJSONFeatureCollection()
	if err != nil {
		message := fmt.Sprintf("Error converting to feature collection: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	w.Write([]byte(featureCollection.String()))
}

// SceneHandler is a handler for /catalog/scenes/{id}
// @Title catalogSceneHandler
// @Description returns a single cataloged scene with its band file map
// @Accept  plain
// @Param   id            path   string  false        "The product ID of the requested scene"
// @Success 200 {object}  geojson.Feature
// @Failure 404 {object}  string
// @Router /catalog/scenes/{id} [get]
type SceneHandler struct {
	Context Context
}

// NewSceneHandler creates a new handler using the given catalog database
func NewSceneHandler(connectionProvider ConnectionProvider) (*SceneHandler, error) {
	db, err := connectionProvider(&util.BasicLogContext{})
	if err != nil {
		return nil, err
	}

	return &SceneHandler{
		Context: Context{
			DB: db,
		},
	}, nil
}

// ServeHTTP implements the http.Handler interface for the SceneHandler type
func (h SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sceneID, ok := mux.Vars(r)["id"]
	if !ok {
		message := "No scene ID found in URL"
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		return
	}

	tx, err := h.Context.DB.Begin()
	if err != nil {
		message := fmt.Sprintf("Could not begin DB transaction: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	defer tx.Commit()

	scn, err := GetSceneByID(tx, sceneID)
	if err == sql.ErrNoRows {
		message := fmt.Sprintf("Scene not found: %s", sceneID)
		util.LogInfo(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		tx.Rollback()
		return
	}
	if err != nil {
		message := fmt.Sprintf("Server error searching for scene: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		tx.Rollback()
		return
	}

	result, err := scn.Result(true)
	if err != nil {
		message := fmt.Sprintf("Error building scene result: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		tx.Rollback()
		return
	}

	feature, err := result.GeoJSONFeature()
	if err != nil {
		message := fmt.Sprintf("Error converting scene to geojson: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		tx.Rollback()
		return
	}
	w.Write([]byte(feature.String()))
}
