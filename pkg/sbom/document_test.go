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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "bomFormat": "CycloneDX",
  "specVersion": "1.4",
  "version": 1,
  "metadata": {
    "component": {
      "type": "application",
      "name": "demo-app",
      "version": "1.0.0",
      "description": "demo application"
    }
  },
  "components": [
    {
      "type": "library",
      "name": "react",
      "version": "18.2.0",
      "group": "facebook",
      "purl": "pkg:npm/react@18.2.0",
      "externalReferences": [
        {"type": "vcs", "url": "https://github.com/facebook/react"},
        {"type": "website", "url": "https://react.dev"}
      ],
      "licenses": [{"license": {"id": "MIT"}}]
    },
    {
      "type": "library",
      "name": "orphan-lib",
      "version": "2.0.0",
      "purl": "pkg:npm/orphan-lib@2.0.0"
    }
  ]
}`

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<bom xmlns="http://cyclonedx.org/schema/bom/1.4" version="1">
  <components>
    <component type="library">
      <name>lodash</name>
      <version>4.17.21</version>
      <purl>pkg:npm/lodash@4.17.21</purl>
    </component>
  </components>
</bom>`

func TestParseJSON(t *testing.T) {
	doc, err := Parse([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "1.4", doc.SpecVersion)
	require.True(t, doc.HasMetadata)
	assert.Equal(t, "demo-app", doc.Metadata.Name)
	assert.Equal(t, "1.0.0", doc.Metadata.Version)

	require.Len(t, doc.Components, 2)

	react := doc.Components[0]
	assert.Equal(t, "react", react.Name)
	assert.Equal(t, "facebook", react.Group)
	assert.Equal(t, "library", react.Category)
	assert.Equal(t, []string{"https://github.com/facebook/react"}, react.VCSRefs())
	assert.Equal(t, "https://react.dev", react.WebsiteURL())
	assert.Equal(t, []string{"MIT"}, react.Licenses)
	assert.True(t, react.HasVCS())

	orphan := doc.Components[1]
	assert.False(t, orphan.HasVCS())
	assert.Empty(t, orphan.WebsiteURL())
}

func TestParseXML(t *testing.T) {
	doc, err := Parse([]byte(sampleXML), FormatXML)
	require.NoError(t, err)

	assert.False(t, doc.HasMetadata)
	require.Len(t, doc.Components, 1)
	assert.Equal(t, "lodash", doc.Components[0].Name)
	assert.Equal(t, "pkg:npm/lodash@4.17.21", doc.Components[0].Purl)
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse([]byte("not a bom"), FormatJSON)
	assert.Error(t, err)
}

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
		wantErr  bool
	}{
		{"bom.json", FormatJSON, false},
		{"bom.cdx.JSON", FormatJSON, false},
		{"bom.xml", FormatXML, false},
		{"sbom.spdx", "", true},
		{"bom.yaml", "", true},
		{"noextension", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := FormatFromFilename(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionedName(t *testing.T) {
	assert.Equal(t, "react (18.2.0)", VersionedName("react", "18.2.0"))
	assert.Equal(t, "react", VersionedName("react", ""))
	assert.Equal(t, "react", VersionedName("react", "   "))
}

func TestVCSRefCount(t *testing.T) {
	comps := []RawComponent{
		{ExternalRefs: []ExternalRef{{Type: RefVCS, URL: "a"}, {Type: RefVCS, URL: "b"}}},
		{ExternalRefs: []ExternalRef{{Type: RefWebsite, URL: "c"}}},
		{},
	}
	// the double-VCS component counts twice
	assert.Equal(t, 2, VCSRefCount(comps))
}
