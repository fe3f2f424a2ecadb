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

// Package sqlitestore is the file-backed catalog accessor. Uniqueness keys
// (lower-cased name, plus version for releases and packages) are enforced via
// duplicate-detection queries, matching the semantics the importer expects.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	packageurl "github.com/package-url/packageurl-go"

	"github.com/viveksahu26/bomimport/pkg/catalog"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	version       TEXT NOT NULL DEFAULT '',
	description   TEXT NOT NULL DEFAULT '',
	type          TEXT NOT NULL DEFAULT '',
	business_unit TEXT NOT NULL DEFAULT '',
	visibility    TEXT NOT NULL DEFAULT '',
	package_ids   TEXT NOT NULL DEFAULT '[]',
	release_usage TEXT NOT NULL DEFAULT '{}',
	attachments   TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_projects_name_version ON projects (lower(name), lower(version));

CREATE TABLE IF NOT EXISTS components (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	type             TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	categories       TEXT NOT NULL DEFAULT '[]',
	main_license_ids TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_components_name ON components (lower(name));

CREATE TABLE IF NOT EXISTS releases (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	version            TEXT NOT NULL,
	component_id       TEXT NOT NULL DEFAULT '',
	creator_department TEXT NOT NULL DEFAULT '',
	main_license_ids   TEXT NOT NULL DEFAULT '[]',
	source_code_url    TEXT NOT NULL DEFAULT '',
	package_ids        TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_releases_name_version ON releases (lower(name), lower(version));

CREATE TABLE IF NOT EXISTS packages (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	version      TEXT NOT NULL,
	manager      TEXT NOT NULL DEFAULT '',
	purl         TEXT NOT NULL,
	release_id   TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	homepage_url TEXT NOT NULL DEFAULT '',
	vcs_url      TEXT NOT NULL DEFAULT '',
	license_ids  TEXT NOT NULL DEFAULT '[]',
	created_by   TEXT NOT NULL DEFAULT '',
	created_on   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_packages_name_version ON packages (lower(name), lower(version));
`

// Store is a sqlite-backed catalog.Accessor.
type Store struct {
	db *sql.DB
}

var _ catalog.Accessor = (*Store)(nil)

// Open opens (creating if needed) the catalog database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing catalog schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func marshalJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalStrings(data string) []string {
	var out []string
	_ = json.Unmarshal([]byte(data), &out)
	return out
}

func (s *Store) FindProjectByID(ctx context.Context, id string) (*catalog.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, version, description, type, business_unit,
		visibility, package_ids, release_usage, attachments FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

func scanProject(row *sql.Row) (*catalog.Project, error) {
	var p catalog.Project
	var packageIDs, releaseUsage, attachments string
	err := row.Scan(&p.ID, &p.Name, &p.Version, &p.Description, &p.Type, &p.BusinessUnit,
		&p.Visibility, &packageIDs, &releaseUsage, &attachments)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying project: %w", err)
	}
	p.PackageIDs = unmarshalStrings(packageIDs)
	_ = json.Unmarshal([]byte(releaseUsage), &p.ReleaseUsage)
	_ = json.Unmarshal([]byte(attachments), &p.Attachments)
	return &p, nil
}

func (s *Store) CreateProject(ctx context.Context, project *catalog.Project) (catalog.CreateResult, error) {
	name := strings.TrimSpace(project.Name)
	if name == "" {
		return catalog.CreateResult{Status: catalog.StatusNamingError, Message: "project name is required"}, nil
	}

	ids, err := s.queryIDs(ctx,
		`SELECT id FROM projects WHERE lower(name) = lower(?) AND lower(version) = lower(?)`,
		name, project.Version)
	if err != nil {
		return catalog.CreateResult{}, err
	}
	if result, dup := duplicateResult(ids); dup {
		return result, nil
	}

	project.ID = uuid.NewString()
	_, err = s.db.ExecContext(ctx, `INSERT INTO projects (id, name, version, description, type,
		business_unit, visibility, package_ids, release_usage, attachments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID, name, project.Version, project.Description, project.Type,
		project.BusinessUnit, project.Visibility, marshalJSON(project.PackageIDs),
		marshalUsage(project.ReleaseUsage), marshalJSON(project.Attachments))
	if err != nil {
		return catalog.CreateResult{}, fmt.Errorf("inserting project: %w", err)
	}
	return catalog.CreateResult{Status: catalog.StatusSuccess, ID: project.ID}, nil
}

func (s *Store) UpdateProject(ctx context.Context, project *catalog.Project) error {
	result, err := s.db.ExecContext(ctx, `UPDATE projects SET name = ?, version = ?, description = ?,
		type = ?, business_unit = ?, visibility = ?, package_ids = ?, release_usage = ?, attachments = ?
		WHERE id = ?`,
		project.Name, project.Version, project.Description, project.Type, project.BusinessUnit,
		project.Visibility, marshalJSON(project.PackageIDs), marshalUsage(project.ReleaseUsage),
		marshalJSON(project.Attachments), project.ID)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return requireRow(result)
}

func (s *Store) FindComponentsByName(ctx context.Context, name string) ([]catalog.Component, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type, description, categories,
		main_license_ids FROM components WHERE lower(name) = lower(?)`, name)
	if err != nil {
		return nil, fmt.Errorf("querying components: %w", err)
	}
	defer rows.Close()

	var matches []catalog.Component
	for rows.Next() {
		var c catalog.Component
		var categories, licenses string
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Description, &categories, &licenses); err != nil {
			return nil, fmt.Errorf("scanning component: %w", err)
		}
		c.Categories = unmarshalStrings(categories)
		c.MainLicenseIDs = unmarshalStrings(licenses)
		matches = append(matches, c)
	}
	return matches, rows.Err()
}

func (s *Store) GetComponentByID(ctx context.Context, id string) (*catalog.Component, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, type, description, categories,
		main_license_ids FROM components WHERE id = ?`, id)
	var c catalog.Component
	var categories, licenses string
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Description, &categories, &licenses)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying component: %w", err)
	}
	c.Categories = unmarshalStrings(categories)
	c.MainLicenseIDs = unmarshalStrings(licenses)
	return &c, nil
}

func (s *Store) CreateComponent(ctx context.Context, component *catalog.Component) (catalog.CreateResult, error) {
	name := strings.TrimSpace(component.Name)
	if name == "" {
		return catalog.CreateResult{Status: catalog.StatusNamingError, Message: "component name is required"}, nil
	}

	ids, err := s.queryIDs(ctx, `SELECT id FROM components WHERE lower(name) = lower(?)`, name)
	if err != nil {
		return catalog.CreateResult{}, err
	}
	if result, dup := duplicateResult(ids); dup {
		return result, nil
	}

	component.ID = uuid.NewString()
	_, err = s.db.ExecContext(ctx, `INSERT INTO components (id, name, type, description, categories,
		main_license_ids) VALUES (?, ?, ?, ?, ?, ?)`,
		component.ID, name, component.Type, component.Description,
		marshalJSON(component.Categories), marshalJSON(component.MainLicenseIDs))
	if err != nil {
		return catalog.CreateResult{}, fmt.Errorf("inserting component: %w", err)
	}
	return catalog.CreateResult{Status: catalog.StatusSuccess, ID: component.ID}, nil
}

func (s *Store) UpdateComponent(ctx context.Context, component *catalog.Component) error {
	result, err := s.db.ExecContext(ctx, `UPDATE components SET name = ?, type = ?, description = ?,
		categories = ?, main_license_ids = ? WHERE id = ?`,
		component.Name, component.Type, component.Description,
		marshalJSON(component.Categories), marshalJSON(component.MainLicenseIDs), component.ID)
	if err != nil {
		return fmt.Errorf("updating component: %w", err)
	}
	return requireRow(result)
}

func (s *Store) FindReleasesByNameVersion(ctx context.Context, name, version string) ([]catalog.Release, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, version, component_id, creator_department,
		main_license_ids, source_code_url, package_ids FROM releases
		WHERE lower(name) = lower(?) AND lower(version) = lower(?)`, name, version)
	if err != nil {
		return nil, fmt.Errorf("querying releases: %w", err)
	}
	defer rows.Close()

	var matches []catalog.Release
	for rows.Next() {
		rel, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *rel)
	}
	return matches, rows.Err()
}

func scanRelease(rows *sql.Rows) (*catalog.Release, error) {
	var r catalog.Release
	var licenses, packageIDs string
	if err := rows.Scan(&r.ID, &r.Name, &r.Version, &r.ComponentID, &r.CreatorDepartment,
		&licenses, &r.SourceCodeURL, &packageIDs); err != nil {
		return nil, fmt.Errorf("scanning release: %w", err)
	}
	r.MainLicenseIDs = unmarshalStrings(licenses)
	r.PackageIDs = unmarshalStrings(packageIDs)
	return &r, nil
}

func (s *Store) CreateRelease(ctx context.Context, release *catalog.Release) (catalog.CreateResult, error) {
	name := strings.TrimSpace(release.Name)
	version := strings.TrimSpace(release.Version)
	if name == "" || version == "" {
		return catalog.CreateResult{Status: catalog.StatusNamingError, Message: "release name and version are required"}, nil
	}

	ids, err := s.queryIDs(ctx,
		`SELECT id FROM releases WHERE lower(name) = lower(?) AND lower(version) = lower(?)`,
		name, version)
	if err != nil {
		return catalog.CreateResult{}, err
	}
	if result, dup := duplicateResult(ids); dup {
		return result, nil
	}

	release.ID = uuid.NewString()
	_, err = s.db.ExecContext(ctx, `INSERT INTO releases (id, name, version, component_id,
		creator_department, main_license_ids, source_code_url, package_ids)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		release.ID, name, version, release.ComponentID, release.CreatorDepartment,
		marshalJSON(release.MainLicenseIDs), release.SourceCodeURL, marshalJSON(release.PackageIDs))
	if err != nil {
		return catalog.CreateResult{}, fmt.Errorf("inserting release: %w", err)
	}
	return catalog.CreateResult{Status: catalog.StatusSuccess, ID: release.ID}, nil
}

func (s *Store) FindPackagesByNameVersion(ctx context.Context, name, version string) ([]catalog.Package, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, version, manager, purl, release_id,
		description, homepage_url, vcs_url, license_ids, created_by, created_on FROM packages
		WHERE lower(name) = lower(?) AND lower(version) = lower(?)`, name, version)
	if err != nil {
		return nil, fmt.Errorf("querying packages: %w", err)
	}
	defer rows.Close()

	var matches []catalog.Package
	for rows.Next() {
		var p catalog.Package
		var licenses string
		if err := rows.Scan(&p.ID, &p.Name, &p.Version, &p.Manager, &p.Purl, &p.ReleaseID,
			&p.Description, &p.HomepageURL, &p.VCSURL, &licenses, &p.CreatedBy, &p.CreatedOn); err != nil {
			return nil, fmt.Errorf("scanning package: %w", err)
		}
		p.LicenseIDs = unmarshalStrings(licenses)
		matches = append(matches, p)
	}
	return matches, rows.Err()
}

func (s *Store) GetPackageByID(ctx context.Context, id string) (*catalog.Package, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, version, manager, purl, release_id,
		description, homepage_url, vcs_url, license_ids, created_by, created_on FROM packages
		WHERE id = ?`, id)
	var p catalog.Package
	var licenses string
	err := row.Scan(&p.ID, &p.Name, &p.Version, &p.Manager, &p.Purl, &p.ReleaseID,
		&p.Description, &p.HomepageURL, &p.VCSURL, &licenses, &p.CreatedBy, &p.CreatedOn)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying package: %w", err)
	}
	p.LicenseIDs = unmarshalStrings(licenses)
	return &p, nil
}

func (s *Store) CreatePackage(ctx context.Context, pkg *catalog.Package) (catalog.CreateResult, error) {
	name := strings.TrimSpace(pkg.Name)
	version := strings.TrimSpace(pkg.Version)
	if name == "" || version == "" {
		return catalog.CreateResult{Status: catalog.StatusNamingError, Message: "package name and version are required"}, nil
	}
	if _, err := packageurl.FromString(pkg.Purl); err != nil {
		return catalog.CreateResult{Status: catalog.StatusInvalidInput, Message: "invalid package URL"}, nil
	}

	ids, err := s.queryIDs(ctx,
		`SELECT id FROM packages WHERE lower(name) = lower(?) AND lower(version) = lower(?)`,
		name, version)
	if err != nil {
		return catalog.CreateResult{}, err
	}
	if result, dup := duplicateResult(ids); dup {
		return result, nil
	}

	pkg.ID = uuid.NewString()

	if pkg.ReleaseID != "" {
		// linked package: the owning release must exist and gets the back-link
		var packageIDs string
		row := s.db.QueryRowContext(ctx, `SELECT package_ids FROM releases WHERE id = ?`, pkg.ReleaseID)
		if err := row.Scan(&packageIDs); err == sql.ErrNoRows {
			return catalog.CreateResult{Status: catalog.StatusInvalidInput, Message: "invalid release id"}, nil
		} else if err != nil {
			return catalog.CreateResult{}, fmt.Errorf("querying linked release: %w", err)
		}
		linked := append(unmarshalStrings(packageIDs), pkg.ID)
		if _, err := s.db.ExecContext(ctx, `UPDATE releases SET package_ids = ? WHERE id = ?`,
			marshalJSON(linked), pkg.ReleaseID); err != nil {
			return catalog.CreateResult{}, fmt.Errorf("linking package to release: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO packages (id, name, version, manager, purl,
		release_id, description, homepage_url, vcs_url, license_ids, created_by, created_on)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pkg.ID, name, version, pkg.Manager, pkg.Purl, pkg.ReleaseID, pkg.Description,
		pkg.HomepageURL, pkg.VCSURL, marshalJSON(pkg.LicenseIDs), pkg.CreatedBy, pkg.CreatedOn)
	if err != nil {
		return catalog.CreateResult{}, fmt.Errorf("inserting package: %w", err)
	}
	return catalog.CreateResult{Status: catalog.StatusSuccess, ID: pkg.ID}, nil
}

func (s *Store) UpdatePackage(ctx context.Context, pkg *catalog.Package) error {
	result, err := s.db.ExecContext(ctx, `UPDATE packages SET name = ?, version = ?, manager = ?,
		purl = ?, release_id = ?, description = ?, homepage_url = ?, vcs_url = ?, license_ids = ?,
		created_by = ?, created_on = ? WHERE id = ?`,
		pkg.Name, pkg.Version, pkg.Manager, pkg.Purl, pkg.ReleaseID, pkg.Description,
		pkg.HomepageURL, pkg.VCSURL, marshalJSON(pkg.LicenseIDs), pkg.CreatedBy, pkg.CreatedOn, pkg.ID)
	if err != nil {
		return fmt.Errorf("updating package: %w", err)
	}
	return requireRow(result)
}

func (s *Store) queryIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("duplicate lookup: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("duplicate lookup: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func duplicateResult(ids []string) (catalog.CreateResult, bool) {
	if len(ids) == 1 {
		return catalog.CreateResult{Status: catalog.StatusDuplicate, ID: ids[0]}, true
	}
	if len(ids) > 1 {
		return catalog.CreateResult{Status: catalog.StatusDuplicate}, true
	}
	return catalog.CreateResult{}, false
}

func marshalUsage(usage map[string]catalog.ReleaseUsage) string {
	if usage == nil {
		return "{}"
	}
	data, err := json.Marshal(usage)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
