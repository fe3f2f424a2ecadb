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

package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/viveksahu26/bomimport/pkg/catalog"
	"github.com/viveksahu26/bomimport/pkg/catalog/sqlitestore"
	"github.com/viveksahu26/bomimport/pkg/icontext"
	"github.com/viveksahu26/bomimport/pkg/importer"
	"github.com/viveksahu26/bomimport/pkg/iterator"
	"github.com/viveksahu26/bomimport/pkg/logger"
	"github.com/viveksahu26/bomimport/pkg/source/folder"
	"github.com/viveksahu26/bomimport/pkg/source/s3"
	"github.com/viveksahu26/bomimport/pkg/types"
)

// ImportRun wires a source of SBOMs to the catalog and reconciles each one in
// turn. Dry-run mode swaps the sqlite catalog for an in-memory one, so the
// whole pipeline executes with nothing persisted.
func ImportRun(ctx context.Context, config types.Config) error {
	logger.LogDebug(ctx, "Starting SBOM import process....")

	importCtx := icontext.NewImportMetadata(ctx)

	accessor, cleanup, err := openCatalog(*importCtx, config)
	if err != nil {
		return err
	}
	defer cleanup()

	imp := importer.New(accessor, config.User, config.Strategy)

	sbomIterator, err := newSourceIterator(*importCtx, config)
	if err != nil {
		return fmt.Errorf("failed to fetch SBOMs: %w", err)
	}

	var processed, failed int
	for {
		doc, err := sbomIterator.Next(*importCtx)
		if err == io.EOF {
			break
		}
		if err != nil {
			if err == context.Canceled || err == context.DeadlineExceeded || ctx.Err() != nil {
				logger.LogDebug(importCtx.Context, "Import loop stopped", "error", err)
				break
			}
			logger.LogError(importCtx.Context, err, "Error retrieving SBOM from iterator")
			continue
		}

		attachment := &catalog.AttachmentContent{
			ID:       uuid.NewString(),
			Filename: filepath.Base(doc.Path),
		}

		logger.LogInfo(importCtx.Context, "importing SBOM", "file", attachment.Filename, "namespace", doc.Namespace)
		outcome := imp.Import(*importCtx, doc.Data, attachment, config.ProjectID)
		renderOutcome(attachment.Filename, outcome)

		processed++
		if outcome.Status != catalog.StatusSuccess {
			failed++
		}
	}

	logger.LogInfo(importCtx.Context, "import completed", "processed", processed, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d SBOM imports did not succeed", failed, processed)
	}
	return nil
}

// openCatalog returns the accessor plus a cleanup func. Dry-run never touches
// disk.
func openCatalog(ctx icontext.ImportMetadata, config types.Config) (catalog.Accessor, func(), error) {
	if config.DryRun {
		logger.LogInfo(ctx.Context, "dry-run mode enabled, catalog changes will not be persisted")
		return catalog.NewMemoryStore(), func() {}, nil
	}

	store, err := sqlitestore.Open(config.CatalogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog %q: %w", config.CatalogPath, err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.LogError(ctx.Context, err, "Failed to close catalog")
		}
	}, nil
}

// newSourceIterator selects the SBOM source from the config: a single file, a
// folder scan (optionally watched), or an S3 bucket listing.
func newSourceIterator(ctx icontext.ImportMetadata, config types.Config) (iterator.SBOMIterator, error) {
	switch config.SourceType() {
	case types.FileSourceType:
		content, err := os.ReadFile(config.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read SBOM file %q: %w", config.FilePath, err)
		}
		return iterator.NewMemoryIterator([]*iterator.SBOM{{
			Path:      config.FilePath,
			Data:      content,
			Namespace: filepath.Dir(config.FilePath),
		}}), nil

	case types.FolderSourceType:
		folderCfg := folder.NewFolderConfig()
		folderCfg.FolderPath = config.FolderPath
		folderCfg.Recursive = config.Recursive
		folderCfg.Watch = config.Watch
		if err := folderCfg.Validate(); err != nil {
			return nil, err
		}
		if config.Watch {
			return folder.NewWatcherFetcher().Fetch(ctx, folderCfg)
		}
		return (&folder.SequentialFetcher{}).Fetch(ctx, folderCfg)

	case types.S3SourceType:
		s3cfg := s3.NewS3Config()
		s3cfg.BucketName = config.S3Bucket
		s3cfg.Prefix = config.S3Prefix
		s3cfg.Region = config.S3Region
		s3cfg.AccessKey = config.S3AccessKey
		s3cfg.SecretKey = config.S3SecretKey
		if err := s3cfg.Validate(); err != nil {
			return nil, err
		}
		return (&s3.S3SequentialFetcher{}).Fetch(ctx, s3cfg)

	default:
		return nil, fmt.Errorf("no SBOM source configured: provide a file, folder, or S3 bucket")
	}
}

// renderOutcome prints the per-SBOM reconciliation summary.
func renderOutcome(filename string, outcome *importer.Outcome) {
	fmt.Printf("\n=== %s ===\n", filename)
	fmt.Printf("status: %s\n", outcome.Status)
	if outcome.Message != "" {
		fmt.Printf("message: %s\n", outcome.Message)
	}
	if outcome.ProjectID != "" {
		fmt.Printf("project: %s (%s)\n", outcome.ProjectName, outcome.ProjectID)
	}

	result := outcome.ResultMap()
	keys := make([]string, 0, len(result))
	for key := range result {
		switch key {
		case "projectId", "projectName", "message":
			continue
		}
		if result[key] == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("  %s: %s\n", key, strings.ReplaceAll(result[key], importer.Joiner, ", "))
	}
}
