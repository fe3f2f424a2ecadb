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
	"bytes"
	"strings"

	"github.com/interlynk-io/sbomasm/pkg/detect"
)

// IsSBOMFile simply detect SBOMs file format and spec after reading the file.
func IsSBOMFile(content []byte) bool {
	reader := bytes.NewReader(content)
	spec, format, err := detect.Detect(reader)
	if err != nil {
		return false
	}

	if format == detect.FileFormatUnknown {
		return false
	}

	if spec == detect.SBOMSpecUnknown {
		return false
	}

	return true
}

// IsCycloneDXFile reports whether the content is a CycloneDX SBOM. Importing
// only understands CycloneDX, so SPDX files are filtered at the source.
func IsCycloneDXFile(content []byte) bool {
	reader := bytes.NewReader(content)
	spec, _, err := detect.Detect(reader)
	if err != nil {
		return false
	}
	return spec == detect.SBOMSpecCDX
}

// DetectSBOMsFile simply detects files names and on the basis of possible patterns of SBOM files it retreives them.
func DetectSBOMsFile(name string) bool {
	name = strings.ToLower(name)

	patterns := []string{
		".spdx.", "spdx-", "spdx_", "spdx.",
		".sbom", "sbom-", "sbom_", "sbom.",
		"bom.", "bom-", "bom_",
		"cyclonedx", "cdx-", "cdx_", "cdx.",
	}

	extensions := []string{
		".json", ".xml",
	}

	hasValidExtension := false
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			hasValidExtension = true
			break
		}
	}
	if !hasValidExtension {
		return false
	}

	for _, pattern := range patterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}
