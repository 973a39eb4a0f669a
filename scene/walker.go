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

package scene

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maximlamare/S3-extract/util"
)

// FindScenes walks root recursively and returns every Sentinel-3 scene
// folder beneath it that passes the A|B|AB platform filter, in name order.
// Folders that look like scenes but cannot be identified are skipped with an
// alert rather than failing the walk.
func FindScenes(ctx util.LogContext, root string, platformFilter string) ([]*Scene, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scene folder %s: %v", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scene folder %s is not a directory", root)
	}

	var scenes []*Scene
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() || !strings.HasSuffix(d.Name(), SceneExtension) {
			return nil
		}

		// This is a scene folder: identify it and never descend into it.
		id, parseErr := ParseProductID(d.Name())
		if parseErr != nil {
			util.LogAlert(ctx, "Skipping folder with unrecognized product name: "+d.Name())
			return fs.SkipDir
		}
		if _, statErr := os.Stat(filepath.Join(path, ManifestFileName)); statErr != nil {
			util.LogAlert(ctx, "Skipping scene without a manifest: "+d.Name())
			return fs.SkipDir
		}

		if MatchesPlatform(id.Platform, platformFilter) {
			scenes = append(scenes, &Scene{Dir: path, ID: *id})
		}
		return fs.SkipDir
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(scenes, func(i, j int) bool { return scenes[i].ID.Name < scenes[j].ID.Name })
	return scenes, nil
}

// SelectByName filters scenes down to the named set, preserving the order
// names were given in. Names that match no scene are returned separately so
// the caller can report them.
func SelectByName(scenes []*Scene, names []string) (selected []*Scene, missing []string) {
	byName := make(map[string]*Scene, len(scenes))
	for _, s := range scenes {
		byName[s.ID.Name] = s
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !strings.HasSuffix(name, SceneExtension) {
			name += SceneExtension
		}
		if s, ok := byName[name]; ok {
			selected = append(selected, s)
		} else {
			missing = append(missing, name)
		}
	}
	return selected, missing
}
