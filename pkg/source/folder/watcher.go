// Copyright 2025 Interlynk.io
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// -------------------------------------------------------------------------

package folder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/viveksahu26/bomimport/pkg/icontext"
	"github.com/viveksahu26/bomimport/pkg/iterator"
	"github.com/viveksahu26/bomimport/pkg/logger"
	"github.com/viveksahu26/bomimport/pkg/source"
)

type WatcherFetcher struct{}

func NewWatcherFetcher() *WatcherFetcher {
	return &WatcherFetcher{}
}

// Fetch watches the folder and streams SBOMs as they are written into it.
// The returned iterator blocks on Next until a new SBOM arrives or the
// context is cancelled.
func (f *WatcherFetcher) Fetch(ctx icontext.ImportMetadata, config *FolderConfig) (iterator.SBOMIterator, error) {
	logger.LogDebug(ctx.Context, "Starting folder watcher", "path", config.FolderPath, "recursive", config.Recursive)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	sbomChan := make(chan *iterator.SBOM, 10)

	// add sub-directories to the watch list when recursive
	err = filepath.Walk(config.FolderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.LogError(ctx.Context, err, "Error accessing path", "path", path)
			return nil
		}
		if info.IsDir() {
			if !config.Recursive && path != config.FolderPath {
				return filepath.SkipDir
			}
			if err := watcher.Add(path); err != nil {
				logger.LogError(ctx.Context, err, "Failed to watch directory", "path", path)
			} else {
				logger.LogDebug(ctx.Context, "Watching directory", "path", path)
			}
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					close(sbomChan)
					return
				}

				logger.LogDebug(ctx.Context, "Event Triggered", "name", event)

				if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					logger.LogDebug(ctx.Context, "Resource removed from watched folder", "path", event.Name)
					continue
				}

				info, err := os.Stat(event.Name)
				if err != nil {
					logger.LogDebug(ctx.Context, "Failed to stat path", "path", event.Name)
					continue
				}

				if event.Has(fsnotify.Write) {
					var allFiles []string
					if info.IsDir() {
						logger.LogDebug(ctx.Context, "New directory created", "path", event.Name)

						// subdirectories created while watching are picked up too
						if config.Recursive {
							if err := watcher.Add(event.Name); err != nil {
								logger.LogError(ctx.Context, err, "Failed to watch new directory", "path", event.Name)
							} else {
								logger.LogInfo(ctx.Context, "monitoring", "path", event.Name)
							}
						}

						dirEntries, err := os.ReadDir(event.Name)
						if err != nil {
							logger.LogDebug(ctx.Context, "Failed to read directory", "path", event.Name)
							continue
						}
						for _, entry := range dirEntries {
							if !entry.IsDir() {
								allFiles = append(allFiles, filepath.Join(event.Name, entry.Name()))
							}
						}
					} else {
						allFiles = append(allFiles, event.Name)
					}

					for _, filePath := range allFiles {
						if !source.DetectSBOMsFile(filepath.Base(filePath)) {
							logger.LogDebug(ctx.Context, "Skipping file, name does not look like an SBOM", "path", filePath)
							continue
						}

						content, err := os.ReadFile(filePath)
						if err != nil {
							logger.LogDebug(ctx.Context, "Failed to read SBOM", "path", filePath)
							continue
						}

						if source.IsCycloneDXFile(content) {
							fileName := getFilePath(config.FolderPath, filePath)
							logger.LogDebug(ctx.Context, "Found CycloneDX SBOM", "file", fileName)

							sbomChan <- &iterator.SBOM{
								Data:      content,
								Path:      fileName,
								Namespace: config.FolderPath,
							}
						} else {
							logger.LogDebug(ctx.Context, "Skipping non-CycloneDX file", "path", filePath)
						}
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					close(sbomChan)
					return
				}
				logger.LogError(ctx.Context, err, "Watcher error")

			case <-ctx.Done():
				close(sbomChan)
				return
			}
		}
	}()

	return &WatcherIterator{sbomChan: sbomChan}, nil
}
