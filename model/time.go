package model

import (
	"fmt"
	"time"
)

// Sensing times show up in two places with different shapes: the compact form
// in product folder names, and RFC 3339 variants (with or without fractional
// seconds) in the manifest. Parse leniently against all of them.

var sceneTimeLayouts = []string{
	"20060102T150405",
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
}

// ParseSceneTime is a drop-in replacement for time.Parse, matching against every sensing-time format
func ParseSceneTime(sceneTime string) (time.Time, error) {
	for _, layout := range sceneTimeLayouts {
		if output, err := time.Parse(layout, sceneTime); err == nil {
			return output, nil
		}
	}
	return time.Time{}, fmt.Errorf("Date could not be parsed by any expected time format: `%s`", sceneTime)
}
