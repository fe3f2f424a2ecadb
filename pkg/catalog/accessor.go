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
	"errors"
)

// ErrNotFound reports a lookup by id that matched nothing.
var ErrNotFound = errors.New("catalog: not found")

// Accessor is the narrow store boundary the importer drives. Create operations
// perform their own duplicate detection on the uniqueness keys (lower-cased
// name, plus version for releases and packages) and report it via CreateResult,
// so callers branch on explicit statuses instead of error types. A non-nil
// error always means a storage/transport fault, never a domain outcome.
//
// Lookups by name are case-insensitive and may return zero, one, or many
// matches; deciding what an ambiguous multi-match means is the caller's job.
type Accessor interface {
	FindProjectByID(ctx context.Context, id string) (*Project, error)
	CreateProject(ctx context.Context, project *Project) (CreateResult, error)
	UpdateProject(ctx context.Context, project *Project) error

	FindComponentsByName(ctx context.Context, name string) ([]Component, error)
	GetComponentByID(ctx context.Context, id string) (*Component, error)
	CreateComponent(ctx context.Context, component *Component) (CreateResult, error)
	UpdateComponent(ctx context.Context, component *Component) error

	FindReleasesByNameVersion(ctx context.Context, name, version string) ([]Release, error)
	CreateRelease(ctx context.Context, release *Release) (CreateResult, error)

	FindPackagesByNameVersion(ctx context.Context, name, version string) ([]Package, error)
	GetPackageByID(ctx context.Context, id string) (*Package, error)
	CreatePackage(ctx context.Context, pkg *Package) (CreateResult, error)
	UpdatePackage(ctx context.Context, pkg *Package) error
}
