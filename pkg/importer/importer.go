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

// Package importer reconciles parsed CycloneDX SBOM components onto the
// catalog's Project/Component/Release/Package graph. Entities are created only
// when no equivalent exists; repeated imports reuse what an earlier run wrote.
package importer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/viveksahu26/bomimport/pkg/catalog"
	"github.com/viveksahu26/bomimport/pkg/icontext"
	"github.com/viveksahu26/bomimport/pkg/identity"
	"github.com/viveksahu26/bomimport/pkg/logger"
	"github.com/viveksahu26/bomimport/pkg/purl"
	"github.com/viveksahu26/bomimport/pkg/sbom"
	"github.com/viveksahu26/bomimport/pkg/types"
)

// Importer drives one sequential reconciliation pass per SBOM. A single
// Importer is safe to share across invocations; all shared mutable state lives
// in the catalog, whose create operations provide the at-most-one-winner
// semantics on the uniqueness keys.
type Importer struct {
	catalog  catalog.Accessor
	user     types.User
	strategy types.ImportStrategy
}

// New builds an importer. The strategy is an explicit parameter so both modes
// are testable without process-wide state.
func New(accessor catalog.Accessor, user types.User, strategy types.ImportStrategy) *Importer {
	return &Importer{
		catalog:  accessor,
		user:     user,
		strategy: strategy,
	}
}

// Import parses the SBOM bytes (format gated by the attachment filename
// extension) and reconciles the declared components into the catalog. An empty
// projectID means a new project is created from the BOM metadata component;
// a non-empty one targets an existing project. The attachment handle, when
// present, is recorded on the finalized project for provenance.
func (im *Importer) Import(ctx icontext.ImportMetadata, content []byte, attachment *catalog.AttachmentContent, projectID string) *Outcome {
	outcome := newOutcome()

	filename := ""
	if attachment != nil {
		filename = attachment.Filename
	}

	format, err := sbom.FormatFromFilename(filename)
	if err != nil {
		logger.LogError(ctx.Context, err, "Rejecting SBOM upload", "file", filename)
		return outcome.fail(catalog.StatusFailure,
			fmt.Sprintf("Invalid file format %q. Only XML & JSON CycloneDX SBOMs are supported!", filename))
	}

	doc, err := sbom.Parse(content, format)
	if err != nil {
		logger.LogError(ctx.Context, err, "Failed to parse CycloneDX SBOM", "file", filename)
		return outcome.fail(catalog.StatusFailure, fmt.Sprintf("Error while parsing CycloneDX SBOM: %v", err))
	}

	componentsCount := len(doc.Components)
	vcsCount := sbom.VCSRefCount(doc.Components)
	logger.LogDebug(ctx.Context, "Classified SBOM components", "components", componentsCount, "vcs_refs", vcsCount, "strategy", im.strategy)

	if vcsCount > componentsCount {
		// one component yielded multiple VCS groups; nothing is persisted
		return outcome.fail(catalog.StatusFailure, fmt.Sprintf(
			"SBOM import aborted with error: multiple VCS information found in components, vcs found: %d and total components: %d",
			vcsCount, componentsCount))
	}

	if im.strategy == types.StrategyReleaseOnly {
		return im.importReleasesOnly(ctx, doc, attachment, projectID)
	}

	groups := groupByVCS(doc.Components)
	outcome = im.importGrouped(ctx, doc, groups, attachment, projectID)

	if vcsCount < componentsCount && outcome.Status == catalog.StatusSuccess {
		im.importStandalonePackages(ctx, outcome, doc.Components, componentsCount, vcsCount)
	}
	return outcome
}

// groupByVCS clusters components by normalized VCS identity. URLs that fail to
// normalize contribute no key; a component whose every URL fails is treated as
// lacking VCS info entirely.
func groupByVCS(comps []sbom.RawComponent) map[string][]sbom.RawComponent {
	groups := make(map[string][]sbom.RawComponent)
	for _, comp := range comps {
		for _, url := range comp.VCSRefs() {
			if key, ok := identity.GroupKey(url); ok {
				groups[key] = append(groups[key], comp)
			}
		}
	}
	return groups
}

// resolveProject fetches the caller-supplied project or creates one from the
// BOM metadata component. A nil project means the outcome is terminal.
func (im *Importer) resolveProject(ctx icontext.ImportMetadata, doc *sbom.Document, outcome *Outcome, projectID string) *catalog.Project {
	if strings.TrimSpace(projectID) != "" {
		project, err := im.catalog.FindProjectByID(ctx.Context, projectID)
		if err != nil {
			logger.LogError(ctx.Context, err, "Failed to fetch target project", "project_id", projectID)
			if errors.Is(err, catalog.ErrNotFound) {
				outcome.fail(catalog.StatusFailure, fmt.Sprintf("Project with id %q does not exist!", projectID))
			} else {
				outcome.fail(catalog.StatusFailure, "An error occurred while importing project from SBOM!")
			}
			return nil
		}
		logger.LogInfo(ctx.Context, "reusing existing project", "project_id", projectID)
		return project
	}

	project := &catalog.Project{
		Name:         strings.TrimSpace(doc.Metadata.Name),
		Version:      strings.TrimSpace(doc.Metadata.Version),
		Description:  strings.TrimSpace(doc.Metadata.Description),
		Type:         catalog.ProjectTypeProduct,
		BusinessUnit: im.user.Department,
		Visibility:   catalog.VisibilityEveryone,
	}

	result, err := im.catalog.CreateProject(ctx.Context, project)
	if err != nil {
		logger.LogError(ctx.Context, err, "Failed to create project from SBOM metadata", "project", project.Name)
		outcome.fail(catalog.StatusFailure, "An error occurred while importing project from SBOM!")
		return nil
	}

	switch {
	case result.Status == catalog.StatusSuccess:
		logger.LogInfo(ctx.Context, "project created successfully", "project_id", result.ID)
		return project
	case result.Status == catalog.StatusDuplicate && result.ID != "":
		// importing into an existing project must be explicit
		logger.LogError(ctx.Context, nil, "cannot import SBOM for an existing project without a target project id", "existing_id", result.ID)
		outcome.fail(catalog.StatusDuplicate, fmt.Sprintf(
			"A project with the same name and version already exists with id %q. Please import this SBOM into that project explicitly!", result.ID))
		return nil
	default:
		outcome.fail(result.Status,
			"Invalid project metadata present in SBOM or multiple projects with the same name and version already exist!")
		return nil
	}
}

// importGrouped is the release+package strategy: one component per VCS group,
// one release per distinct version inside the group, one linked package per
// release when a purl resolves.
func (im *Importer) importGrouped(ctx icontext.ImportMetadata, doc *sbom.Document, groups map[string][]sbom.RawComponent, attachment *catalog.AttachmentContent, projectID string) *Outcome {
	outcome := newOutcome()

	project := im.resolveProject(ctx, doc, outcome, projectID)
	if project == nil {
		return outcome
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if aborted := im.importGroup(ctx, outcome, project, key, groups[key]); aborted {
			return outcome
		}
	}

	if !im.finalizeProject(ctx, outcome, project, attachment) {
		return outcome
	}

	outcome.Status = catalog.StatusSuccess
	return outcome
}

// importGroup reconciles one VCS-identity group. The returned bool reports a
// fatal fault that aborts the remaining groups.
func (im *Importer) importGroup(ctx icontext.ImportMetadata, outcome *Outcome, project *catalog.Project, key string, members []sbom.RawComponent) bool {
	component := &catalog.Component{Name: key, Type: catalog.ComponentTypeOSS}

	result, err := im.catalog.CreateComponent(ctx.Context, component)
	if err != nil {
		logger.LogError(ctx.Context, err, "Failed to resolve component", "component", key)
		outcome.fail(catalog.StatusFailure, "An error occurred while importing CycloneDX SBOM!")
		return true
	}

	switch {
	case result.Status == catalog.StatusSuccess:
		component.ID = result.ID
		outcome.ComponentCreationCount++
		logger.LogInfo(ctx.Context, "component creation successful", "component_id", component.ID)
	case result.Status == catalog.StatusDuplicate && result.ID != "":
		component.ID = result.ID
		outcome.ComponentReuseCount++
		logger.LogInfo(ctx.Context, "reusing existing component", "component_id", component.ID)
	case result.Status == catalog.StatusDuplicate:
		logger.LogWarn(ctx.Context, "found multiple components", "component", key)
		outcome.addDuplicateComponent(key)
		return false
	default:
		logger.LogWarn(ctx.Context, "skipping component with unresolvable name", "component", key, "status", result.Status)
		outcome.addInvalidComponent(key)
		return false
	}

	stored, err := im.catalog.GetComponentByID(ctx.Context, component.ID)
	if err != nil {
		logger.LogError(ctx.Context, err, "Failed to fetch component for merge", "component_id", component.ID)
		outcome.fail(catalog.StatusFailure, "An error occurred while importing CycloneDX SBOM!")
		return true
	}

	for _, raw := range members {
		release, ok := im.resolveRelease(ctx, outcome, stored, raw)

		// metadata merges even when the release or package is skipped
		stored.AddCategory(raw.Category)
		if stored.Description == "" {
			stored.Description = strings.TrimSpace(raw.Description)
		}
		stored.AddLicenses(raw.Licenses)

		if !ok {
			continue
		}

		project.PutReleaseUsage(release.ID, catalog.DefaultReleaseUsage())

		if pkgID, ok := im.resolvePackage(ctx, outcome, raw, release); ok {
			project.AddPackageID(pkgID)
		}
	}

	if err := im.catalog.UpdateComponent(ctx.Context, stored); err != nil {
		logger.LogError(ctx.Context, err, "Failed to update component", "component_id", stored.ID)
		outcome.fail(catalog.StatusFailure, "An error occurred while importing CycloneDX SBOM!")
		return true
	}
	logger.LogDebug(ctx.Context, "updating component successful", "component", stored.Name)
	return false
}

// resolveRelease creates or reuses the release for one raw component under the
// given catalog component. Storage faults here skip the entity, not the import.
func (im *Importer) resolveRelease(ctx icontext.ImportMetadata, outcome *Outcome, component *catalog.Component, raw sbom.RawComponent) (*catalog.Release, bool) {
	releaseName := sbom.VersionedName(component.Name, raw.Version)

	if strings.TrimSpace(raw.Version) == "" {
		logger.LogWarn(ctx.Context, "release version is blank", "release", releaseName)
		outcome.addInvalidRelease(releaseName)
		return nil, false
	}

	release := &catalog.Release{
		Name:              component.Name,
		Version:           strings.TrimSpace(raw.Version),
		ComponentID:       component.ID,
		CreatorDepartment: im.user.Department,
		MainLicenseIDs:    raw.Licenses,
	}
	if refs := raw.VCSRefs(); len(refs) > 0 {
		release.SourceCodeURL = identity.NormalizeHTTPS(refs[0])
	}

	result, err := im.catalog.CreateRelease(ctx.Context, release)
	if err != nil {
		logger.LogError(ctx.Context, err, "Failed to resolve release, skipping", "release", releaseName)
		return nil, false
	}

	switch {
	case result.Status == catalog.StatusSuccess:
		release.ID = result.ID
		outcome.ReleaseCreationCount++
		logger.LogInfo(ctx.Context, "release creation successful", "release_id", release.ID)
		return release, true
	case result.Status == catalog.StatusDuplicate && result.ID != "":
		release.ID = result.ID
		outcome.ReleaseReuseCount++
		logger.LogInfo(ctx.Context, "reusing existing release", "release_id", release.ID)
		return release, true
	case result.Status == catalog.StatusDuplicate:
		logger.LogWarn(ctx.Context, "found multiple releases", "release", releaseName)
		outcome.addDuplicateRelease(releaseName)
		return nil, false
	default:
		outcome.addInvalidRelease(releaseName)
		return nil, false
	}
}

// resolvePackage builds and persists the package linked to the release. A
// duplicate package whose stored release link diverges from the current
// release is repaired in place. Storage faults skip the entity.
func (im *Importer) resolvePackage(ctx icontext.ImportMetadata, outcome *Outcome, raw sbom.RawComponent, release *catalog.Release) (string, bool) {
	pkg, ok := im.buildPackage(ctx, outcome, raw, release.ID)
	if !ok {
		return "", false
	}
	pkgName := sbom.VersionedName(pkg.Name, pkg.Version)

	result, err := im.catalog.CreatePackage(ctx.Context, pkg)
	if err != nil {
		logger.LogError(ctx.Context, err, "Failed to resolve package, skipping", "package", pkgName)
		return "", false
	}

	switch {
	case result.Status == catalog.StatusSuccess:
		pkg.ID = result.ID
		outcome.PackageCreationCount++
		logger.LogInfo(ctx.Context, "package creation successful", "package_id", pkg.ID)
		return pkg.ID, true
	case result.Status == catalog.StatusDuplicate && result.ID != "":
		if !im.repairPackageLink(ctx, result.ID, release.ID) {
			return "", false
		}
		outcome.PackageReuseCount++
		logger.LogInfo(ctx.Context, "reusing existing package", "package_id", result.ID)
		return result.ID, true
	case result.Status == catalog.StatusDuplicate:
		logger.LogWarn(ctx.Context, "found multiple packages", "package", pkgName)
		outcome.addDuplicatePackage(pkgName)
		return "", false
	default:
		logger.LogWarn(ctx.Context, "invalid package", "package", pkgName, "status", result.Status)
		outcome.addInvalidPackage(pkgName)
		return "", false
	}
}

// repairPackageLink points an existing package at the current release when the
// stored link diverges. The repair is unconditional, even across components.
func (im *Importer) repairPackageLink(ctx icontext.ImportMetadata, packageID, releaseID string) bool {
	existing, err := im.catalog.GetPackageByID(ctx.Context, packageID)
	if err != nil {
		logger.LogError(ctx.Context, err, "Failed to fetch duplicate package, skipping", "package_id", packageID)
		return false
	}
	if existing.ReleaseID == releaseID {
		return true
	}

	logger.LogError(ctx.Context, nil, "release id of package from BOM and catalog differ, repairing",
		"package_id", packageID, "catalog_release_id", existing.ReleaseID, "bom_release_id", releaseID)
	existing.ReleaseID = releaseID
	if err := im.catalog.UpdatePackage(ctx.Context, existing); err != nil {
		logger.LogError(ctx.Context, err, "Failed to repair package release link", "package_id", packageID)
		return false
	}
	return true
}

// buildPackage decomposes the component's purl into package coordinates.
// Unresolvable purls surface in the invalid-package set, never as a fatal error.
func (im *Importer) buildPackage(ctx icontext.ImportMetadata, outcome *Outcome, raw sbom.RawComponent, releaseID string) (*catalog.Package, bool) {
	fullName := raw.VersionedName()

	if strings.TrimSpace(raw.Purl) == "" {
		logger.LogError(ctx.Context, nil, "invalid package found in SBOM, no purl", "package", fullName)
		outcome.addInvalidPackage(fullName)
		return nil, false
	}

	coords, err := purl.Decompose(raw.Purl, raw.Group, raw.Publisher)
	if err != nil {
		logger.LogError(ctx.Context, err, "malformed purl for component", "component", raw.Name)
		outcome.addInvalidPackage(fullName)
		return nil, false
	}
	if coords.Name == "" || coords.Version == "" {
		logger.LogError(ctx.Context, nil, "invalid package found in SBOM, blank name or version", "package", fullName)
		outcome.addInvalidPackage(fullName)
		return nil, false
	}

	pkg := &catalog.Package{
		Name:        coords.Name,
		Version:     coords.Version,
		Manager:     coords.Manager,
		Purl:        coords.Purl,
		ReleaseID:   releaseID,
		Description: strings.TrimSpace(raw.Description),
		LicenseIDs:  raw.Licenses,
		CreatedBy:   im.user.Email,
		CreatedOn:   time.Now().UTC().Format("2006-01-02"),
	}
	pkg.HomepageURL = raw.WebsiteURL()
	if refs := raw.VCSRefs(); len(refs) > 0 {
		pkg.VCSURL = identity.NormalizeHTTPS(refs[0])
	}
	return pkg, true
}

// importStandalonePackages attaches VCS-less components directly to the project
// as orphan packages, after the grouped import succeeded. Partial success is
// expected; every invalid entry is surfaced in the outcome.
func (im *Importer) importStandalonePackages(ctx icontext.ImportMetadata, outcome *Outcome, comps []sbom.RawComponent, componentsCount, vcsCount int) {
	project, err := im.catalog.FindProjectByID(ctx.Context, outcome.ProjectID)
	if err != nil {
		logger.LogError(ctx.Context, err, "Failed to fetch project for standalone packages", "project_id", outcome.ProjectID)
		outcome.fail(catalog.StatusFailure, "An error occurred while updating project during SBOM import!")
		return
	}

	for _, comp := range comps {
		if comp.HasVCS() {
			continue
		}

		pkg, ok := im.buildPackage(ctx, outcome, comp, "")
		if !ok {
			continue
		}
		pkgName := sbom.VersionedName(pkg.Name, pkg.Version)

		result, err := im.catalog.CreatePackage(ctx.Context, pkg)
		if err != nil {
			logger.LogError(ctx.Context, err, "Failed to resolve standalone package, skipping", "package", pkgName)
			continue
		}

		switch {
		case result.Status == catalog.StatusSuccess:
			project.AddPackageID(result.ID)
			outcome.PackageCreationCount++
			logger.LogInfo(ctx.Context, "package creation successful", "package_id", result.ID)
		case result.Status == catalog.StatusDuplicate && result.ID != "":
			project.AddPackageID(result.ID)
			outcome.PackageReuseCount++
			logger.LogInfo(ctx.Context, "reusing existing package", "package_id", result.ID)
		case result.Status == catalog.StatusDuplicate:
			logger.LogWarn(ctx.Context, "found multiple packages", "package", pkgName)
			outcome.addDuplicatePackage(pkgName)
		default:
			outcome.addInvalidPackage(pkgName)
		}
	}

	if err := im.catalog.UpdateProject(ctx.Context, project); err != nil {
		logger.LogError(ctx.Context, err, "Failed to update project with standalone packages", "project_id", project.ID)
		outcome.fail(catalog.StatusFailure, "An error occurred while updating project during SBOM import!")
		return
	}
	logger.LogInfo(ctx.Context, "updating project successful", "project", project.Name)

	outcome.Message = fmt.Sprintf("VCS information is missing for %d / %d components!",
		componentsCount-vcsCount, componentsCount)
}

// importReleasesOnly is the release-only strategy: every component becomes its
// own catalog component and release, with no grouping and no package records.
func (im *Importer) importReleasesOnly(ctx icontext.ImportMetadata, doc *sbom.Document, attachment *catalog.AttachmentContent, projectID string) *Outcome {
	outcome := newOutcome()

	project := im.resolveProject(ctx, doc, outcome, projectID)
	if project == nil {
		return outcome
	}

	for _, raw := range doc.Components {
		name := identity.FallbackName(raw.Group, raw.Publisher, raw.Author, raw.Name)
		if name == "" {
			logger.LogError(ctx.Context, nil, "component has no resolvable name, skipping", "component", raw.VersionedName())
			outcome.addInvalidComponent(raw.VersionedName())
			continue
		}

		component := &catalog.Component{
			Name:        name,
			Type:        catalog.ComponentTypeOSS,
			Description: strings.TrimSpace(raw.Description),
		}

		result, err := im.catalog.CreateComponent(ctx.Context, component)
		if err != nil {
			logger.LogError(ctx.Context, err, "Failed to resolve component", "component", name)
			return outcome.fail(catalog.StatusFailure, "An error occurred while importing CycloneDX SBOM!")
		}

		switch {
		case result.Status == catalog.StatusSuccess:
			component.ID = result.ID
			outcome.ComponentCreationCount++
		case result.Status == catalog.StatusDuplicate && result.ID != "":
			component.ID = result.ID
			outcome.ComponentReuseCount++
		case result.Status == catalog.StatusDuplicate:
			logger.LogWarn(ctx.Context, "found multiple components", "component", name)
			outcome.addDuplicateComponent(name)
			continue
		default:
			outcome.addInvalidComponent(name)
			continue
		}

		stored, err := im.catalog.GetComponentByID(ctx.Context, component.ID)
		if err != nil {
			logger.LogError(ctx.Context, err, "Failed to fetch component for merge", "component_id", component.ID)
			return outcome.fail(catalog.StatusFailure, "An error occurred while importing CycloneDX SBOM!")
		}

		if release, ok := im.resolveRelease(ctx, outcome, stored, raw); ok {
			project.PutReleaseUsage(release.ID, catalog.DefaultReleaseUsage())
		}

		stored.AddCategory(raw.Category)
		if stored.Description == "" {
			stored.Description = strings.TrimSpace(raw.Description)
		}
		stored.AddLicenses(raw.Licenses)

		if err := im.catalog.UpdateComponent(ctx.Context, stored); err != nil {
			logger.LogError(ctx.Context, err, "Failed to update component", "component_id", stored.ID)
			return outcome.fail(catalog.StatusFailure, "An error occurred while importing CycloneDX SBOM!")
		}
	}

	if !im.finalizeProject(ctx, outcome, project, attachment) {
		return outcome
	}

	outcome.Status = catalog.StatusSuccess
	return outcome
}

// finalizeProject writes the accumulated package ids, release-usage map and
// the attachment record back onto the project, strictly after all group
// processing. Reports false on a storage fault (the import aborts).
func (im *Importer) finalizeProject(ctx icontext.ImportMetadata, outcome *Outcome, project *catalog.Project, attachment *catalog.AttachmentContent) bool {
	if attachment != nil {
		project.Attachments = []catalog.Attachment{{
			ContentID:      attachment.ID,
			Filename:       attachment.Filename,
			Type:           catalog.AttachmentTypeSBOM,
			CreatedBy:      im.user.Email,
			CreatedOn:      time.Now().UTC().Format("2006-01-02"),
			CreatedComment: "Auto generated - used for importing CycloneDX SBOM",
			CheckStatus:    catalog.CheckStatusNotDone,
		}}
	}

	if err := im.catalog.UpdateProject(ctx.Context, project); err != nil {
		logger.LogError(ctx.Context, err, "Failed to finalize project", "project_id", project.ID)
		outcome.fail(catalog.StatusFailure,
			"An error occurred while updating project during SBOM import, please delete the project and re-import the SBOM!")
		return false
	}
	logger.LogInfo(ctx.Context, "updating project successful", "project", project.Name)

	outcome.ProjectID = project.ID
	outcome.ProjectName = sbom.VersionedName(project.Name, project.Version)
	return true
}
