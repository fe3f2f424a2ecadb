// Copyright 2025 Interlynk.io
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

// ImportStrategy selects how BOM components are reconciled into the catalog.
type ImportStrategy string

const (
	// StrategyReleaseOnly creates one component + release per BOM component,
	// with no grouping and no package records.
	StrategyReleaseOnly ImportStrategy = "release-only"

	// StrategyReleaseAndPackage groups components by VCS identity and creates
	// components, releases and linked packages. This is the default.
	StrategyReleaseAndPackage ImportStrategy = "release-package"
)

// SourceType defines where SBOM documents are read from
type SourceType string

const (
	FileSourceType   SourceType = "file"
	FolderSourceType SourceType = "folder"
	S3SourceType     SourceType = "s3"
)

// User is the acting identity recorded on created catalog entities.
type User struct {
	Email      string
	Department string
}

// Config holds the resolved CLI/environment configuration for one run.
type Config struct {
	// one of FilePath / FolderPath / S3Bucket must be set
	FilePath     string
	FolderPath   string
	Recursive    bool
	Watch        bool
	S3Bucket     string
	S3Prefix     string
	S3Region     string
	S3AccessKey  string
	S3SecretKey  string
	CatalogPath  string
	ProjectID    string
	Strategy     ImportStrategy
	User         User
	DryRun       bool
	Debug        bool
	JSONLog      bool
}

// SourceType reports which SBOM source the config selects. An empty string
// means none was configured.
func (c Config) SourceType() SourceType {
	switch {
	case c.FilePath != "":
		return FileSourceType
	case c.FolderPath != "":
		return FolderSourceType
	case c.S3Bucket != "":
		return S3SourceType
	}
	return ""
}
