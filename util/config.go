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

package util

import (
	"os"
	"strconv"
	"time"
)

// Environment variables
const (
	S3EXTRACT_GPT              = "S3EXTRACT_GPT"
	S3EXTRACT_GPT_CACHE        = "S3EXTRACT_GPT_CACHE"
	S3EXTRACT_DB               = "S3EXTRACT_DB"
	S3EXTRACT_TMPDIR           = "S3EXTRACT_TMPDIR"
	S3EXTRACT_DEBUG            = "S3EXTRACT_DEBUG"
	S3EXTRACT_INGEST_FREQUENCY = "S3EXTRACT_INGEST_FREQUENCY"
)

const defaultGptPath = "/usr/local/snap/bin/gpt"
const defaultCatalogPath = "s3extract.db"
const defaultIngestFrequency = 24 * time.Hour

// GetGptPath returns the path of the SNAP graph processing tool binary,
// from the S3EXTRACT_GPT environment variable or the standard install path
func GetGptPath() string {
	gptPath, ok := os.LookupEnv(S3EXTRACT_GPT)
	if !ok {
		return defaultGptPath
	}
	if gptPath == "" {
		LogAlert(&BasicLogContext{}, "S3EXTRACT_GPT is set but empty. Using the default gpt path.")
		return defaultGptPath
	}
	return gptPath
}

// GetGptCacheSize returns the tile cache size to pass to gpt (e.g. "1G"),
// or an empty string when the default should be left alone
func GetGptCacheSize() string {
	return os.Getenv(S3EXTRACT_GPT_CACHE)
}

// GetCatalogPath returns the scene catalog database file path
func GetCatalogPath() string {
	catalogPath, ok := os.LookupEnv(S3EXTRACT_DB)
	if !ok || catalogPath == "" {
		return defaultCatalogPath
	}
	return catalogPath
}

// GetScratchDir returns the directory for intermediate processor outputs
func GetScratchDir() string {
	scratchDir, ok := os.LookupEnv(S3EXTRACT_TMPDIR)
	if !ok || scratchDir == "" {
		return os.TempDir()
	}
	if info, err := os.Stat(scratchDir); err != nil || !info.IsDir() {
		LogAlert(&BasicLogContext{}, "S3EXTRACT_TMPDIR is not a usable directory: "+scratchDir+". Using the system temp directory.")
		return os.TempDir()
	}
	return scratchDir
}

// GetIngestFrequency returns the maximum time between scheduled catalog
// ingest jobs. Durations under a minute are treated as misconfiguration.
func GetIngestFrequency() time.Duration {
	frequency, err := time.ParseDuration(os.Getenv(S3EXTRACT_INGEST_FREQUENCY))
	if err != nil || frequency < time.Minute {
		if os.Getenv(S3EXTRACT_INGEST_FREQUENCY) != "" {
			LogAlert(&BasicLogContext{}, "S3EXTRACT_INGEST_FREQUENCY is not a usable duration. Using the default frequency.")
		}
		return defaultIngestFrequency
	}
	return frequency
}

// IsDebugEnabled returns true if S3EXTRACT_DEBUG is truthy
func IsDebugEnabled() (bool, error) {
	return strconv.ParseBool(os.Getenv(S3EXTRACT_DEBUG))
}
