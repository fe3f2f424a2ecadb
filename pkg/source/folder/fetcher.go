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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viveksahu26/bomimport/pkg/icontext"
	"github.com/viveksahu26/bomimport/pkg/iterator"
	"github.com/viveksahu26/bomimport/pkg/logger"
	"github.com/viveksahu26/bomimport/pkg/source"
)

type SBOMFetcher interface {
	Fetch(ctx icontext.ImportMetadata, config *FolderConfig) (iterator.SBOMIterator, error)
}

type SequentialFetcher struct{}

// SequentialFetcher Fetch() scans the folder for SBOMs one-by-one
// 1. Walks through the folder file-by-file
// 2. Detects valid CycloneDX SBOMs using source.IsCycloneDXFile().
// 3. Reads the content & adds it to the iterator along with path.
func (f *SequentialFetcher) Fetch(ctx icontext.ImportMetadata, config *FolderConfig) (iterator.SBOMIterator, error) {
	logger.LogDebug(ctx.Context, "Scanning folder for SBOMs", "path", config.FolderPath, "recursive", config.Recursive)
	var sbomList []*iterator.SBOM
	err := filepath.Walk(config.FolderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.LogInfo(ctx.Context, "error", "path", path, "error", err)
			return nil
		}

		if info.IsDir() {
			// Skip subdirectories if not recursive
			if !config.Recursive && path != config.FolderPath {
				return filepath.SkipDir
			}
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			logger.LogError(ctx.Context, err, "Failed to read SBOM", "path", path)
			return nil
		}

		if source.IsCycloneDXFile(content) {
			fileName := getFilePath(config.FolderPath, path)
			logger.LogDebug(ctx.Context, "Found CycloneDX SBOM", "file", fileName)
			sbomList = append(sbomList, &iterator.SBOM{
				Data:      content,
				Path:      fileName,
				Namespace: config.FolderPath,
			})
		} else {
			logger.LogDebug(ctx.Context, "Skipping non-CycloneDX file", "path", getFilePath(config.FolderPath, path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(sbomList) == 0 {
		return nil, fmt.Errorf("no CycloneDX SBOM found in the folder")
	}
	return NewFolderIterator(sbomList), nil
}

// getFilePath returns file path
func getFilePath(basePath, fullPath string) string {
	relPath, err := filepath.Rel(basePath, fullPath)
	if err != nil {
		logger.LogDebug(context.Background(), "Path resolution failed", "base", basePath, "full", fullPath, "error", err)
		return filepath.Base(fullPath)
	}

	parts := strings.Split(relPath, string(filepath.Separator))
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return filepath.Base(fullPath)
}
