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

// Package catalog defines the shared entity model of the component catalog and
// the narrow accessor interface the importer drives it through. Identifiers are
// opaque strings assigned by the store on creation.
package catalog

import "github.com/viveksahu26/bomimport/pkg/purl"

// Status is the outcome of a catalog operation or of a whole import.
type Status string

const (
	StatusSuccess      Status = "SUCCESS"
	StatusFailure      Status = "FAILURE"
	StatusDuplicate    Status = "DUPLICATE"
	StatusNamingError  Status = "NAMINGERROR"
	StatusInvalidInput Status = "INVALID_INPUT"
)

// CreateResult reports a create attempt. On StatusDuplicate the ID carries the
// pre-existing entity's id when exactly one duplicate matched; an empty ID with
// StatusDuplicate means the match was ambiguous (more than one candidate).
type CreateResult struct {
	Status  Status
	ID      string
	Message string
}

const (
	ProjectTypeProduct  = "PRODUCT"
	VisibilityEveryone  = "EVERYONE"
	ComponentTypeOSS    = "OSS"
	DefaultCategory     = "Default_Category"
	RelationUnknown     = "UNKNOWN"
	MainlineStateOpen   = "OPEN"
	AttachmentTypeSBOM  = "SBOM"
	CheckStatusNotDone  = "NOTCHECKED"
)

// ReleaseUsage describes how a project consumes a release.
type ReleaseUsage struct {
	Relation      string `json:"relation"`
	MainlineState string `json:"mainlineState"`
}

// DefaultReleaseUsage is the relation recorded for releases discovered via SBOM
// import: unknown usage, open mainline state.
func DefaultReleaseUsage() ReleaseUsage {
	return ReleaseUsage{Relation: RelationUnknown, MainlineState: MainlineStateOpen}
}

// AttachmentContent is the handle to an already-stored SBOM upload, recorded on
// the project for provenance.
type AttachmentContent struct {
	ID       string
	Filename string
}

// Attachment is the provenance record placed on the finalized project.
type Attachment struct {
	ContentID      string `json:"contentId"`
	Filename       string `json:"filename"`
	Type           string `json:"type"`
	CreatedBy      string `json:"createdBy"`
	CreatedOn      string `json:"createdOn"`
	CreatedComment string `json:"createdComment"`
	CheckStatus    string `json:"checkStatus"`
}

// Project is created at most once per (name, version) pair for a given import,
// unless the caller supplies an existing project id.
type Project struct {
	ID           string
	Name         string
	Version      string
	Description  string
	Type         string
	BusinessUnit string
	Visibility   string
	PackageIDs   []string
	ReleaseUsage map[string]ReleaseUsage // release id -> usage
	Attachments  []Attachment
}

// AddPackageID appends a package id if not already linked.
func (p *Project) AddPackageID(id string) {
	for _, existing := range p.PackageIDs {
		if existing == id {
			return
		}
	}
	p.PackageIDs = append(p.PackageIDs, id)
}

// PutReleaseUsage records (or overwrites) the usage entry for a release.
func (p *Project) PutReleaseUsage(releaseID string, usage ReleaseUsage) {
	if p.ReleaseUsage == nil {
		p.ReleaseUsage = make(map[string]ReleaseUsage)
	}
	p.ReleaseUsage[releaseID] = usage
}

// Component is looked up by normalized name; merges only ever add categories
// and licenses, never remove.
type Component struct {
	ID             string
	Name           string
	Type           string
	Description    string
	Categories     []string
	MainLicenseIDs []string
}

// AddCategory unions a category onto the component, dropping the placeholder
// default category once a real one arrives.
func (c *Component) AddCategory(category string) {
	if category == "" {
		return
	}
	var kept []string
	found := false
	for _, existing := range c.Categories {
		if existing == category {
			found = true
		}
		if existing != DefaultCategory {
			kept = append(kept, existing)
		}
	}
	if !found {
		kept = append(kept, category)
	}
	c.Categories = kept
}

// AddLicenses unions license ids onto the component.
func (c *Component) AddLicenses(licenses []string) {
	c.MainLicenseIDs = unionStrings(c.MainLicenseIDs, licenses)
}

// Release uniqueness key is (name, version), scoped globally. One release
// belongs to exactly one component.
type Release struct {
	ID                string
	Name              string
	Version           string
	ComponentID       string
	CreatorDepartment string
	MainLicenseIDs    []string
	SourceCodeURL     string
	PackageIDs        []string
}

// AddPackageID appends a package id if not already linked.
func (r *Release) AddPackageID(id string) {
	for _, existing := range r.PackageIDs {
		if existing == id {
			return
		}
	}
	r.PackageIDs = append(r.PackageIDs, id)
}

// Package uniqueness key is (name, version). A purl is mandatory; the release
// link is optional (an unlinked package is an orphan package).
type Package struct {
	ID          string
	Name        string
	Version     string
	Manager     purl.ManagerType
	Purl        string
	ReleaseID   string
	Description string
	HomepageURL string
	VCSURL      string
	LicenseIDs  []string
	CreatedBy   string
	CreatedOn   string
}

func unionStrings(existing, add []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			existing = append(existing, s)
		}
	}
	return existing
}
