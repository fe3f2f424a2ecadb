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

package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viveksahu26/bomimport/pkg/catalog"
	"github.com/viveksahu26/bomimport/pkg/icontext"
	"github.com/viveksahu26/bomimport/pkg/types"
)

var testUser = types.User{Email: "dev@example.com", Department: "DEP"}

func newCtx() icontext.ImportMetadata {
	return *icontext.NewImportMetadata(context.Background())
}

func encodeBOM(t *testing.T, bom *cdx.BOM) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, cdx.NewBOMEncoder(&buf, cdx.BOMFileFormatJSON).Encode(bom))
	return buf.Bytes()
}

func newBOM(comps ...cdx.Component) *cdx.BOM {
	bom := cdx.NewBOM()
	bom.Metadata = &cdx.Metadata{
		Component: &cdx.Component{
			Type:    cdx.ComponentTypeApplication,
			Name:    "demo-app",
			Version: "1.0.0",
		},
	}
	bom.Components = &comps
	return bom
}

func libComponent(name, version, purlStr string, vcsURLs ...string) cdx.Component {
	comp := cdx.Component{
		Type:       cdx.ComponentTypeLibrary,
		Name:       name,
		Version:    version,
		PackageURL: purlStr,
	}
	var refs []cdx.ExternalReference
	for _, url := range vcsURLs {
		refs = append(refs, cdx.ExternalReference{Type: cdx.ERTypeVCS, URL: url})
	}
	if len(refs) > 0 {
		comp.ExternalReferences = &refs
	}
	return comp
}

func attachment(filename string) *catalog.AttachmentContent {
	return &catalog.AttachmentContent{ID: "att-1", Filename: filename}
}

func TestImportCreatesGroupedEntities(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	// two versions of the same repository collapse into one component
	content := encodeBOM(t, newBOM(
		libComponent("react", "18.2.0", "pkg:npm/react@18.2.0", "https://github.com/facebook/react"),
		libComponent("react", "17.0.2", "pkg:npm/react@17.0.2", "git+https://github.com/facebook/react.git"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	assert.Equal(t, catalog.StatusSuccess, outcome.Status)
	assert.Equal(t, 1, outcome.ComponentCreationCount)
	assert.Equal(t, 0, outcome.ComponentReuseCount)
	assert.Equal(t, 2, outcome.ReleaseCreationCount)
	assert.Equal(t, 2, outcome.PackageCreationCount)
	assert.NotEmpty(t, outcome.ProjectID)
	assert.Equal(t, "demo-app (1.0.0)", outcome.ProjectName)

	comps, err := store.FindComponentsByName(context.Background(), "facebook.react")
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, catalog.ComponentTypeOSS, comps[0].Type)
	assert.Contains(t, comps[0].Categories, "library")

	project, err := store.FindProjectByID(context.Background(), outcome.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "demo-app", project.Name)
	assert.Equal(t, catalog.ProjectTypeProduct, project.Type)
	assert.Equal(t, "DEP", project.BusinessUnit)
	assert.Len(t, project.ReleaseUsage, 2)
	assert.Len(t, project.PackageIDs, 2)
	for _, usage := range project.ReleaseUsage {
		assert.Equal(t, catalog.RelationUnknown, usage.Relation)
		assert.Equal(t, catalog.MainlineStateOpen, usage.MainlineState)
	}

	require.Len(t, project.Attachments, 1)
	assert.Equal(t, "bom.json", project.Attachments[0].Filename)
	assert.Equal(t, catalog.AttachmentTypeSBOM, project.Attachments[0].Type)
	assert.Equal(t, "dev@example.com", project.Attachments[0].CreatedBy)

	releases, err := store.FindReleasesByNameVersion(context.Background(), "facebook.react", "18.2.0")
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Equal(t, comps[0].ID, releases[0].ComponentID)
	assert.Equal(t, "https://github.com/facebook/react", releases[0].SourceCodeURL)
}

func TestImportIsIdempotent(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	content := encodeBOM(t, newBOM(
		libComponent("react", "18.2.0", "pkg:npm/react@18.2.0", "https://github.com/facebook/react"),
	))

	first := imp.Import(newCtx(), content, attachment("bom.json"), "")
	require.Equal(t, catalog.StatusSuccess, first.Status)

	// second run targets the existing project and reuses everything
	second := imp.Import(newCtx(), content, attachment("bom.json"), first.ProjectID)
	assert.Equal(t, catalog.StatusSuccess, second.Status)
	assert.Equal(t, 0, second.ComponentCreationCount)
	assert.Equal(t, 1, second.ComponentReuseCount)
	assert.Equal(t, 0, second.ReleaseCreationCount)
	assert.Equal(t, 1, second.ReleaseReuseCount)
	assert.Equal(t, 0, second.PackageCreationCount)
	assert.Equal(t, 1, second.PackageReuseCount)
	assert.Equal(t, first.ProjectID, second.ProjectID)
}

func TestImportRejectsMultipleVCSPerComponent(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	content := encodeBOM(t, newBOM(
		libComponent("react", "18.2.0", "pkg:npm/react@18.2.0",
			"https://github.com/facebook/react",
			"https://github.com/facebook/react-native"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	assert.Equal(t, catalog.StatusFailure, outcome.Status)
	assert.Contains(t, outcome.Message, "multiple VCS information")
	assert.Contains(t, outcome.Message, "vcs found: 2")
	assert.Contains(t, outcome.Message, "total components: 1")

	// nothing was persisted
	comps, err := store.FindComponentsByName(context.Background(), "facebook.react")
	require.NoError(t, err)
	assert.Empty(t, comps)
}

func TestImportVCSLessComponentsBecomeOrphanPackages(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	content := encodeBOM(t, newBOM(
		libComponent("react", "18.2.0", "pkg:npm/react@18.2.0", "https://github.com/facebook/react"),
		libComponent("lodash", "4.17.21", "pkg:npm/lodash@4.17.21"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	assert.Equal(t, catalog.StatusSuccess, outcome.Status)
	assert.Equal(t, "VCS information is missing for 1 / 2 components!", outcome.Message)
	assert.Equal(t, 2, outcome.PackageCreationCount)

	// orphan package has no release link but is attached to the project
	pkgs, err := store.FindPackagesByNameVersion(context.Background(), "lodash", "4.17.21")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.Empty(t, pkgs[0].ReleaseID)

	project, err := store.FindProjectByID(context.Background(), outcome.ProjectID)
	require.NoError(t, err)
	assert.Contains(t, project.PackageIDs, pkgs[0].ID)
}

func TestImportAllComponentsVCSLess(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	content := encodeBOM(t, newBOM(
		libComponent("lodash", "4.17.21", "pkg:npm/lodash@4.17.21"),
		libComponent("underscore", "1.13.6", "pkg:npm/underscore@1.13.6"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	assert.Equal(t, catalog.StatusSuccess, outcome.Status)
	assert.Equal(t, "VCS information is missing for 2 / 2 components!", outcome.Message)
	assert.Equal(t, 0, outcome.ComponentCreationCount)
	assert.Equal(t, 0, outcome.ReleaseCreationCount)
	assert.Equal(t, 2, outcome.PackageCreationCount)
}

func TestImportDuplicateProjectAborts(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	existing, err := store.CreateProject(context.Background(), &catalog.Project{Name: "demo-app", Version: "1.0.0"})
	require.NoError(t, err)

	content := encodeBOM(t, newBOM(
		libComponent("react", "18.2.0", "pkg:npm/react@18.2.0", "https://github.com/facebook/react"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	assert.Equal(t, catalog.StatusDuplicate, outcome.Status)
	assert.Contains(t, outcome.Message, existing.ID)

	comps, err := store.FindComponentsByName(context.Background(), "facebook.react")
	require.NoError(t, err)
	assert.Empty(t, comps)
}

func TestImportUnknownProjectIDFails(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	content := encodeBOM(t, newBOM(
		libComponent("react", "18.2.0", "pkg:npm/react@18.2.0", "https://github.com/facebook/react"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "no-such-id")

	assert.Equal(t, catalog.StatusFailure, outcome.Status)
	assert.Contains(t, outcome.Message, "no-such-id")
}

func TestImportBlankVersionSkipsRelease(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	content := encodeBOM(t, newBOM(
		libComponent("react", "", "pkg:npm/react@18.2.0", "https://github.com/facebook/react"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	assert.Equal(t, catalog.StatusSuccess, outcome.Status)
	assert.Equal(t, 1, outcome.ComponentCreationCount)
	assert.Equal(t, 0, outcome.ReleaseCreationCount)
	assert.Contains(t, outcome.InvalidReleases, "facebook.react")
}

func TestImportMalformedPurlSkipsPackage(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	content := encodeBOM(t, newBOM(
		libComponent("mystery", "1.0.0", "pkg:brew/mystery@1.0.0", "https://github.com/org/mystery"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	// the release still lands; only the package is skipped
	assert.Equal(t, catalog.StatusSuccess, outcome.Status)
	assert.Equal(t, 1, outcome.ReleaseCreationCount)
	assert.Equal(t, 0, outcome.PackageCreationCount)
	assert.Contains(t, outcome.InvalidPackages, "mystery (1.0.0)")
}

func TestImportMissingPurlSkipsPackage(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	content := encodeBOM(t, newBOM(
		libComponent("react", "18.2.0", "", "https://github.com/facebook/react"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	assert.Equal(t, catalog.StatusSuccess, outcome.Status)
	assert.Equal(t, 1, outcome.ReleaseCreationCount)
	assert.Equal(t, 0, outcome.PackageCreationCount)
	assert.Contains(t, outcome.InvalidPackages, "react (18.2.0)")
}

func TestImportRejectsUnsupportedExtension(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	outcome := imp.Import(newCtx(), []byte("{}"), attachment("bom.yaml"), "")

	assert.Equal(t, catalog.StatusFailure, outcome.Status)
	assert.Contains(t, outcome.Message, "Invalid file format")
}

func TestImportRejectsUnparseableContent(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	outcome := imp.Import(newCtx(), []byte("not a bom at all"), attachment("bom.json"), "")

	assert.Equal(t, catalog.StatusFailure, outcome.Status)
	assert.Contains(t, outcome.Message, "Error while parsing CycloneDX SBOM")
}

func TestImportReleaseOnlyStrategy(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseOnly)

	comp := libComponent("jackson-core", "2.15.0", "pkg:maven/com.fasterxml.jackson.core/jackson-core@2.15.0")
	comp.Group = "com.fasterxml.jackson.core"
	content := encodeBOM(t, newBOM(
		comp,
		libComponent("lodash", "4.17.21", "pkg:npm/lodash@4.17.21"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	assert.Equal(t, catalog.StatusSuccess, outcome.Status)
	assert.Equal(t, 2, outcome.ComponentCreationCount)
	assert.Equal(t, 2, outcome.ReleaseCreationCount)
	assert.Equal(t, 0, outcome.PackageCreationCount)

	// release-only names qualify with the group
	comps, err := store.FindComponentsByName(context.Background(), "com.fasterxml.jackson.core.jackson-core")
	require.NoError(t, err)
	assert.Len(t, comps, 1)

	project, err := store.FindProjectByID(context.Background(), outcome.ProjectID)
	require.NoError(t, err)
	assert.Len(t, project.ReleaseUsage, 2)
	assert.Empty(t, project.PackageIDs)
}

func TestImportRepairsDivergedPackageLink(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)
	ctx := context.Background()

	// seed a stale release and a package pointing at it
	stale, err := store.CreateRelease(ctx, &catalog.Release{Name: "stale.repo", Version: "0.1"})
	require.NoError(t, err)
	seeded, err := store.CreatePackage(ctx, &catalog.Package{
		Name:      "react",
		Version:   "18.2.0",
		Purl:      "pkg:npm/react@18.2.0",
		ReleaseID: stale.ID,
	})
	require.NoError(t, err)
	require.Equal(t, catalog.StatusSuccess, seeded.Status)

	content := encodeBOM(t, newBOM(
		libComponent("react", "18.2.0", "pkg:npm/react@18.2.0", "https://github.com/facebook/react"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")
	require.Equal(t, catalog.StatusSuccess, outcome.Status)
	assert.Equal(t, 1, outcome.PackageReuseCount)

	// the stored package now points at the release created by this import
	repaired, err := store.GetPackageByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.NotEqual(t, stale.ID, repaired.ReleaseID)
	assert.NotEmpty(t, repaired.ReleaseID)
}

// faultStore lets tests inject ambiguous matches and storage faults the memory
// store cannot produce on its own.
type faultStore struct {
	catalog.Accessor
	createComponent func(ctx context.Context, c *catalog.Component) (catalog.CreateResult, error)
	createRelease   func(ctx context.Context, r *catalog.Release) (catalog.CreateResult, error)
	createPackage   func(ctx context.Context, p *catalog.Package) (catalog.CreateResult, error)
}

func (f *faultStore) CreateComponent(ctx context.Context, c *catalog.Component) (catalog.CreateResult, error) {
	if f.createComponent != nil {
		return f.createComponent(ctx, c)
	}
	return f.Accessor.CreateComponent(ctx, c)
}

func (f *faultStore) CreateRelease(ctx context.Context, r *catalog.Release) (catalog.CreateResult, error) {
	if f.createRelease != nil {
		return f.createRelease(ctx, r)
	}
	return f.Accessor.CreateRelease(ctx, r)
}

func (f *faultStore) CreatePackage(ctx context.Context, p *catalog.Package) (catalog.CreateResult, error) {
	if f.createPackage != nil {
		return f.createPackage(ctx, p)
	}
	return f.Accessor.CreatePackage(ctx, p)
}

func TestImportAmbiguousComponentIsSkipped(t *testing.T) {
	store := &faultStore{
		Accessor: catalog.NewMemoryStore(),
		createComponent: func(ctx context.Context, c *catalog.Component) (catalog.CreateResult, error) {
			return catalog.CreateResult{Status: catalog.StatusDuplicate}, nil
		},
	}
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	content := encodeBOM(t, newBOM(
		libComponent("react", "18.2.0", "pkg:npm/react@18.2.0", "https://github.com/facebook/react"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	// the ambiguous group is skipped, the import itself still succeeds
	assert.Equal(t, catalog.StatusSuccess, outcome.Status)
	assert.Contains(t, outcome.DuplicateComponents, "facebook.react")
	assert.Equal(t, 0, outcome.ComponentCreationCount)
	assert.Equal(t, 0, outcome.ReleaseCreationCount)
}

func TestImportComponentStorageFaultAborts(t *testing.T) {
	store := &faultStore{
		Accessor: catalog.NewMemoryStore(),
		createComponent: func(ctx context.Context, c *catalog.Component) (catalog.CreateResult, error) {
			return catalog.CreateResult{}, errors.New("connection reset")
		},
	}
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	content := encodeBOM(t, newBOM(
		libComponent("react", "18.2.0", "pkg:npm/react@18.2.0", "https://github.com/facebook/react"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	assert.Equal(t, catalog.StatusFailure, outcome.Status)
	assert.Contains(t, outcome.Message, "An error occurred while importing CycloneDX SBOM")
}

func TestImportReleaseStorageFaultSkipsEntity(t *testing.T) {
	store := &faultStore{
		Accessor: catalog.NewMemoryStore(),
		createRelease: func(ctx context.Context, r *catalog.Release) (catalog.CreateResult, error) {
			return catalog.CreateResult{}, errors.New("connection reset")
		},
	}
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	content := encodeBOM(t, newBOM(
		libComponent("react", "18.2.0", "pkg:npm/react@18.2.0", "https://github.com/facebook/react"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	// faulted release is skipped, the rest of the import completes
	assert.Equal(t, catalog.StatusSuccess, outcome.Status)
	assert.Equal(t, 1, outcome.ComponentCreationCount)
	assert.Equal(t, 0, outcome.ReleaseCreationCount)
	assert.Equal(t, 0, outcome.PackageCreationCount)
}

func TestImportAmbiguousReleaseAndPackageRecorded(t *testing.T) {
	store := &faultStore{
		Accessor: catalog.NewMemoryStore(),
		createRelease: func(ctx context.Context, r *catalog.Release) (catalog.CreateResult, error) {
			return catalog.CreateResult{Status: catalog.StatusDuplicate}, nil
		},
		createPackage: func(ctx context.Context, p *catalog.Package) (catalog.CreateResult, error) {
			return catalog.CreateResult{Status: catalog.StatusDuplicate}, nil
		},
	}
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	content := encodeBOM(t, newBOM(
		libComponent("react", "18.2.0", "pkg:npm/react@18.2.0", "https://github.com/facebook/react"),
		libComponent("lodash", "4.17.21", "pkg:npm/lodash@4.17.21"),
	))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	assert.Equal(t, catalog.StatusSuccess, outcome.Status)
	assert.Contains(t, outcome.DuplicateReleases, "facebook.react (18.2.0)")
	// both grouped and standalone package paths hit the ambiguous branch
	assert.Contains(t, outcome.DuplicatePackages, "lodash (4.17.21)")
}

func TestResultMapJoinsSkipSets(t *testing.T) {
	outcome := newOutcome()
	outcome.addDuplicateComponent("a")
	outcome.addDuplicateComponent("b")
	outcome.addDuplicateComponent("a") // dedup
	outcome.addInvalidPackage("p (1.0)")
	outcome.ComponentCreationCount = 3

	result := outcome.ResultMap()
	assert.Equal(t, "a||b", result["dupComp"])
	assert.Equal(t, "p (1.0)", result["invalidPkg"])
	assert.Equal(t, "3", result["componentCreationCount"])
	assert.Equal(t, "", result["dupRel"])
}

func TestOutcomeMessageOnPartialSuccessKeepsCounts(t *testing.T) {
	store := catalog.NewMemoryStore()
	imp := New(store, testUser, types.StrategyReleaseAndPackage)

	var comps []cdx.Component
	for i := 0; i < 3; i++ {
		comps = append(comps, libComponent(
			fmt.Sprintf("lib%d", i),
			"1.0.0",
			fmt.Sprintf("pkg:npm/lib%d@1.0.0", i),
			fmt.Sprintf("https://github.com/org/lib%d", i),
		))
	}
	comps = append(comps, libComponent("plain", "2.0.0", "pkg:npm/plain@2.0.0"))
	content := encodeBOM(t, newBOM(comps...))

	outcome := imp.Import(newCtx(), content, attachment("bom.json"), "")

	assert.Equal(t, catalog.StatusSuccess, outcome.Status)
	assert.Equal(t, 3, outcome.ComponentCreationCount)
	assert.Equal(t, 3, outcome.ReleaseCreationCount)
	assert.Equal(t, 4, outcome.PackageCreationCount)
	assert.Equal(t, "VCS information is missing for 1 / 4 components!", outcome.Message)
}
