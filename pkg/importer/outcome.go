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
	"strconv"
	"strings"

	"github.com/viveksahu26/bomimport/pkg/catalog"
)

// Joiner separates names in the joined-string set encodings of the result map.
// It must not appear in legitimate entity names; the structured slices on
// Outcome carry the same information losslessly.
const Joiner = "||"

// Outcome accumulates per-entity-kind counters and skip sets across one import
// invocation. Counters only ever increment.
type Outcome struct {
	Status      catalog.Status
	Message     string
	ProjectID   string
	ProjectName string

	ComponentCreationCount int
	ComponentReuseCount    int
	ReleaseCreationCount   int
	ReleaseReuseCount      int
	PackageCreationCount   int
	PackageReuseCount      int

	// ambiguous multi-match lookups, skipped
	DuplicateComponents []string
	DuplicateReleases   []string
	DuplicatePackages   []string

	// missing required fields or unresolvable purl, skipped
	InvalidComponents []string
	InvalidReleases   []string
	InvalidPackages   []string
}

func newOutcome() *Outcome {
	return &Outcome{Status: catalog.StatusFailure}
}

func (o *Outcome) fail(status catalog.Status, message string) *Outcome {
	o.Status = status
	o.Message = message
	return o
}

func (o *Outcome) addDuplicateComponent(name string) {
	o.DuplicateComponents = appendUnique(o.DuplicateComponents, name)
}

func (o *Outcome) addDuplicateRelease(name string) {
	o.DuplicateReleases = appendUnique(o.DuplicateReleases, name)
}

func (o *Outcome) addDuplicatePackage(name string) {
	o.DuplicatePackages = appendUnique(o.DuplicatePackages, name)
}

func (o *Outcome) addInvalidComponent(name string) {
	o.InvalidComponents = appendUnique(o.InvalidComponents, name)
}

func (o *Outcome) addInvalidRelease(name string) {
	o.InvalidReleases = appendUnique(o.InvalidReleases, name)
}

func (o *Outcome) addInvalidPackage(name string) {
	o.InvalidPackages = appendUnique(o.InvalidPackages, name)
}

// ResultMap renders the machine-readable summary handed back to callers.
func (o *Outcome) ResultMap() map[string]string {
	return map[string]string{
		"projectId":              o.ProjectID,
		"projectName":            o.ProjectName,
		"message":                o.Message,
		"componentCreationCount": strconv.Itoa(o.ComponentCreationCount),
		"componentReuseCount":    strconv.Itoa(o.ComponentReuseCount),
		"releaseCreationCount":   strconv.Itoa(o.ReleaseCreationCount),
		"releaseReuseCount":      strconv.Itoa(o.ReleaseReuseCount),
		"packageCreationCount":   strconv.Itoa(o.PackageCreationCount),
		"packageReuseCount":      strconv.Itoa(o.PackageReuseCount),
		"dupComp":                strings.Join(o.DuplicateComponents, Joiner),
		"dupRel":                 strings.Join(o.DuplicateReleases, Joiner),
		"dupPkg":                 strings.Join(o.DuplicatePackages, Joiner),
		"invalidComp":            strings.Join(o.InvalidComponents, Joiner),
		"invalidRel":             strings.Join(o.InvalidReleases, Joiner),
		"invalidPkg":             strings.Join(o.InvalidPackages, Joiner),
	}
}

func appendUnique(set []string, name string) []string {
	for _, existing := range set {
		if existing == name {
			return set
		}
	}
	return append(set, name)
}
