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

package sbom

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
)

// Format is the wire encoding of a CycloneDX document.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// ErrUnsupportedFormat reports a filename whose extension is neither xml nor json.
var ErrUnsupportedFormat = errors.New("unsupported SBOM file format")

// RefType classifies a component external reference.
type RefType string

const (
	RefVCS     RefType = "vcs"
	RefWebsite RefType = "website"
	RefOther   RefType = "other"
)

// ExternalRef is a typed URL attached to a BOM component.
type ExternalRef struct {
	Type RefType
	URL  string
}

// RawComponent is a declared SBOM component, never persisted as-is.
type RawComponent struct {
	Name         string
	Version      string
	Group        string
	Publisher    string
	Author       string
	Description  string
	Category     string // BOM component type tag (library, application, ...)
	Purl         string
	ExternalRefs []ExternalRef
	Licenses     []string
}

// Document is a parsed CycloneDX BOM reduced to what the importer consumes.
type Document struct {
	SpecVersion string
	Metadata    RawComponent // the BOM metadata component; zero value when absent
	HasMetadata bool
	Components  []RawComponent
}

// FormatFromFilename gates on the file extension: only xml and json CycloneDX
// documents are accepted.
func FormatFromFilename(filename string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	default:
		return "", fmt.Errorf("%w: %q (only XML & JSON CycloneDX SBOMs are supported)", ErrUnsupportedFormat, ext)
	}
}

// Parse decodes a CycloneDX document into the importer's component view.
func Parse(content []byte, format Format) (*Document, error) {
	var fileFormat cdx.BOMFileFormat
	switch format {
	case FormatJSON:
		fileFormat = cdx.BOMFileFormatJSON
	case FormatXML:
		fileFormat = cdx.BOMFileFormatXML
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	bom := new(cdx.BOM)
	if err := cdx.NewBOMDecoder(bytes.NewReader(content), fileFormat).Decode(bom); err != nil {
		return nil, fmt.Errorf("decoding CycloneDX SBOM: %w", err)
	}

	doc := &Document{SpecVersion: bom.SpecVersion.String()}

	if bom.Metadata != nil && bom.Metadata.Component != nil {
		doc.Metadata = fromBomComponent(*bom.Metadata.Component)
		doc.HasMetadata = true
	}

	if bom.Components != nil {
		doc.Components = make([]RawComponent, 0, len(*bom.Components))
		for _, comp := range *bom.Components {
			doc.Components = append(doc.Components, fromBomComponent(comp))
		}
	}

	return doc, nil
}

func fromBomComponent(comp cdx.Component) RawComponent {
	raw := RawComponent{
		Name:        comp.Name,
		Version:     comp.Version,
		Group:       comp.Group,
		Publisher:   comp.Publisher,
		Author:      comp.Author,
		Description: comp.Description,
		Category:    string(comp.Type),
		Purl:        comp.PackageURL,
	}

	if comp.ExternalReferences != nil {
		for _, ref := range *comp.ExternalReferences {
			raw.ExternalRefs = append(raw.ExternalRefs, ExternalRef{
				Type: refType(ref.Type),
				URL:  ref.URL,
			})
		}
	}

	raw.Licenses = licensesFromComponent(comp)
	return raw
}

func refType(t cdx.ExternalReferenceType) RefType {
	switch t {
	case cdx.ERTypeVCS:
		return RefVCS
	case cdx.ERTypeWebsite:
		return RefWebsite
	default:
		return RefOther
	}
}

// licensesFromComponent collects license identifiers, preferring the SPDX id
// over the free-form name.
func licensesFromComponent(comp cdx.Component) []string {
	if comp.Licenses == nil {
		return nil
	}
	var licenses []string
	for _, choice := range *comp.Licenses {
		if choice.License != nil {
			if choice.License.ID != "" {
				licenses = append(licenses, choice.License.ID)
			} else if choice.License.Name != "" {
				licenses = append(licenses, choice.License.Name)
			}
		} else if choice.Expression != "" {
			licenses = append(licenses, choice.Expression)
		}
	}
	return licenses
}

// VCSRefs returns every version-control reference URL of the component.
func (c RawComponent) VCSRefs() []string {
	var urls []string
	for _, ref := range c.ExternalRefs {
		if ref.Type == RefVCS {
			urls = append(urls, ref.URL)
		}
	}
	return urls
}

// HasVCS reports whether the component declares at least one VCS reference.
func (c RawComponent) HasVCS() bool {
	return len(c.VCSRefs()) > 0
}

// WebsiteURL returns the first website reference, or "".
func (c RawComponent) WebsiteURL() string {
	for _, ref := range c.ExternalRefs {
		if ref.Type == RefWebsite {
			return ref.URL
		}
	}
	return ""
}

// VersionedName renders "name (version)" for user-facing skip/duplicate sets.
func (c RawComponent) VersionedName() string {
	return VersionedName(c.Name, c.Version)
}

// VersionedName joins a name and version for display.
func VersionedName(name, version string) string {
	if strings.TrimSpace(version) == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, version)
}

// VCSRefCount counts VCS references across all components. A component with
// more than one VCS reference contributes more than once, which is how a
// malformed grouping (vcsCount > componentsCount) is detected upstream.
func VCSRefCount(comps []RawComponent) int {
	count := 0
	for _, comp := range comps {
		count += len(comp.VCSRefs())
	}
	return count
}
