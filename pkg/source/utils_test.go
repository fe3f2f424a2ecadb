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

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const cycloneDXSample = `{
  "bomFormat": "CycloneDX",
  "specVersion": "1.4",
  "version": 1,
  "components": []
}`

const spdxSample = `{
  "spdxVersion": "SPDX-2.3",
  "SPDXID": "SPDXRef-DOCUMENT",
  "name": "sample",
  "creationInfo": {"created": "2024-01-01T00:00:00Z", "creators": ["Tool: test"]},
  "packages": []
}`

func TestIsSBOMFile(t *testing.T) {
	assert.True(t, IsSBOMFile([]byte(cycloneDXSample)))
	assert.True(t, IsSBOMFile([]byte(spdxSample)))
	assert.False(t, IsSBOMFile([]byte(`{"hello": "world"}`)))
	assert.False(t, IsSBOMFile([]byte("plain text")))
}

func TestIsCycloneDXFile(t *testing.T) {
	assert.True(t, IsCycloneDXFile([]byte(cycloneDXSample)))
	assert.False(t, IsCycloneDXFile([]byte(spdxSample)))
	assert.False(t, IsCycloneDXFile([]byte("plain text")))
}

func TestDetectSBOMsFile(t *testing.T) {
	assert.True(t, DetectSBOMsFile("app.sbom.json"))
	assert.True(t, DetectSBOMsFile("cdx-output.xml"))
	assert.True(t, DetectSBOMsFile("project.spdx.json"))
	assert.True(t, DetectSBOMsFile("BOM.JSON"))
	assert.False(t, DetectSBOMsFile("readme.md"))
	assert.False(t, DetectSBOMsFile("sbom-file.pdf"))
	assert.False(t, DetectSBOMsFile("plain.json"))
}
