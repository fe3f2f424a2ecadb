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

package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	packageurl "github.com/package-url/packageurl-go"
)

// MemoryStore is an in-process Accessor used for dry runs and tests. Create
// operations apply the same duplicate-detection rules as the sqlite store.
type MemoryStore struct {
	mu         sync.Mutex
	projects   map[string]*Project
	components map[string]*Component
	releases   map[string]*Release
	packages   map[string]*Package
}

var _ Accessor = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects:   make(map[string]*Project),
		components: make(map[string]*Component),
		releases:   make(map[string]*Release),
		packages:   make(map[string]*Package),
	}
}

func (s *MemoryStore) FindProjectByID(ctx context.Context, id string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *project
	return &copied, nil
}

func (s *MemoryStore) CreateProject(ctx context.Context, project *Project) (CreateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(project.Name)
	if name == "" {
		return CreateResult{Status: StatusNamingError, Message: "project name is required"}, nil
	}

	var duplicates []string
	for id, existing := range s.projects {
		if strings.EqualFold(existing.Name, name) && strings.EqualFold(existing.Version, project.Version) {
			duplicates = append(duplicates, id)
		}
	}
	if len(duplicates) == 1 {
		return CreateResult{Status: StatusDuplicate, ID: duplicates[0]}, nil
	}
	if len(duplicates) > 1 {
		return CreateResult{Status: StatusDuplicate}, nil
	}

	project.ID = uuid.NewString()
	copied := *project
	s.projects[project.ID] = &copied
	return CreateResult{Status: StatusSuccess, ID: project.ID}, nil
}

func (s *MemoryStore) UpdateProject(ctx context.Context, project *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[project.ID]; !ok {
		return ErrNotFound
	}
	copied := *project
	s.projects[project.ID] = &copied
	return nil
}

func (s *MemoryStore) FindComponentsByName(ctx context.Context, name string) ([]Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []Component
	for _, comp := range s.components {
		if strings.EqualFold(comp.Name, name) {
			matches = append(matches, *comp)
		}
	}
	return matches, nil
}

func (s *MemoryStore) GetComponentByID(ctx context.Context, id string) (*Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp, ok := s.components[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *comp
	return &copied, nil
}

func (s *MemoryStore) CreateComponent(ctx context.Context, component *Component) (CreateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(component.Name)
	if name == "" {
		return CreateResult{Status: StatusNamingError, Message: "component name is required"}, nil
	}

	var duplicates []string
	for id, existing := range s.components {
		if strings.EqualFold(existing.Name, name) {
			duplicates = append(duplicates, id)
		}
	}
	if len(duplicates) == 1 {
		return CreateResult{Status: StatusDuplicate, ID: duplicates[0]}, nil
	}
	if len(duplicates) > 1 {
		return CreateResult{Status: StatusDuplicate}, nil
	}

	component.ID = uuid.NewString()
	copied := *component
	s.components[component.ID] = &copied
	return CreateResult{Status: StatusSuccess, ID: component.ID}, nil
}

func (s *MemoryStore) UpdateComponent(ctx context.Context, component *Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.components[component.ID]; !ok {
		return ErrNotFound
	}
	copied := *component
	s.components[component.ID] = &copied
	return nil
}

func (s *MemoryStore) FindReleasesByNameVersion(ctx context.Context, name, version string) ([]Release, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []Release
	for _, rel := range s.releases {
		if strings.EqualFold(rel.Name, name) && strings.EqualFold(rel.Version, version) {
			matches = append(matches, *rel)
		}
	}
	return matches, nil
}

func (s *MemoryStore) CreateRelease(ctx context.Context, release *Release) (CreateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(release.Name)
	version := strings.TrimSpace(release.Version)
	if name == "" || version == "" {
		return CreateResult{Status: StatusNamingError, Message: "release name and version are required"}, nil
	}

	var duplicates []string
	for id, existing := range s.releases {
		if strings.EqualFold(existing.Name, name) && strings.EqualFold(existing.Version, version) {
			duplicates = append(duplicates, id)
		}
	}
	if len(duplicates) == 1 {
		return CreateResult{Status: StatusDuplicate, ID: duplicates[0]}, nil
	}
	if len(duplicates) > 1 {
		return CreateResult{Status: StatusDuplicate}, nil
	}

	release.ID = uuid.NewString()
	copied := *release
	s.releases[release.ID] = &copied
	return CreateResult{Status: StatusSuccess, ID: release.ID}, nil
}

func (s *MemoryStore) FindPackagesByNameVersion(ctx context.Context, name, version string) ([]Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []Package
	for _, pkg := range s.packages {
		if strings.EqualFold(pkg.Name, name) && strings.EqualFold(pkg.Version, version) {
			matches = append(matches, *pkg)
		}
	}
	return matches, nil
}

func (s *MemoryStore) GetPackageByID(ctx context.Context, id string) (*Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *pkg
	return &copied, nil
}

func (s *MemoryStore) CreatePackage(ctx context.Context, pkg *Package) (CreateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(pkg.Name)
	version := strings.TrimSpace(pkg.Version)
	if name == "" || version == "" {
		return CreateResult{Status: StatusNamingError, Message: "package name and version are required"}, nil
	}
	if _, err := packageurl.FromString(pkg.Purl); err != nil {
		return CreateResult{Status: StatusInvalidInput, Message: "invalid package URL"}, nil
	}

	var duplicates []string
	for id, existing := range s.packages {
		if strings.EqualFold(existing.Name, name) && strings.EqualFold(existing.Version, version) {
			duplicates = append(duplicates, id)
		}
	}
	if len(duplicates) == 1 {
		return CreateResult{Status: StatusDuplicate, ID: duplicates[0]}, nil
	}
	if len(duplicates) > 1 {
		return CreateResult{Status: StatusDuplicate}, nil
	}

	if pkg.ReleaseID != "" {
		release, ok := s.releases[pkg.ReleaseID]
		if !ok {
			return CreateResult{Status: StatusInvalidInput, Message: "invalid release id"}, nil
		}
		pkg.ID = uuid.NewString()
		release.AddPackageID(pkg.ID)
	} else {
		// orphan package, no linked release
		pkg.ID = uuid.NewString()
	}

	copied := *pkg
	s.packages[pkg.ID] = &copied
	return CreateResult{Status: StatusSuccess, ID: pkg.ID}, nil
}

func (s *MemoryStore) UpdatePackage(ctx context.Context, pkg *Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.packages[pkg.ID]; !ok {
		return ErrNotFound
	}
	copied := *pkg
	s.packages[pkg.ID] = &copied
	return nil
}
