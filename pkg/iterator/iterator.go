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

package iterator

import (
	"io"

	"github.com/viveksahu26/bomimport/pkg/icontext"
)

// SBOM represents a single SBOM file
type SBOM struct {
	Path      string // File name relative to its source (used as attachment filename)
	Data      []byte // SBOM content held in memory
	Namespace string // Source identity (folder path or bucket-prefix), for multi-source tracking
}

// SBOMIterator provides a way to lazily fetch SBOMs one by one
type SBOMIterator interface {
	Next(ctx icontext.ImportMetadata) (*SBOM, error) // Fetch the next SBOM
}

// MemoryIterator is an iterator that iterates over a preloaded slice of SBOMs.
type MemoryIterator struct {
	sboms []*SBOM
	index int
}

// NewMemoryIterator creates a new MemoryIterator from a slice of SBOMs.
func NewMemoryIterator(sboms []*SBOM) SBOMIterator {
	return &MemoryIterator{
		sboms: sboms,
		index: 0,
	}
}

// Next retrieves the next SBOM in memory.
func (it *MemoryIterator) Next(ctx icontext.ImportMetadata) (*SBOM, error) {
	if it.index >= len(it.sboms) {
		return nil, io.EOF // No more SBOMs left
	}

	sbom := it.sboms[it.index]
	it.index++
	return sbom, nil
}
