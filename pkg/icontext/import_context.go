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

package icontext

import "context"

// ImportMetadata carries run-scoped key-value pairs alongside the request context
// for a single import invocation (source kind, filename, acting user, ...).
type ImportMetadata struct {
	context.Context
	values map[string]interface{}
}

// WithValue adds a key-value pair to ImportMetadata
func (im *ImportMetadata) WithValue(key string, value interface{}) {
	im.values[key] = value
}

// Value retrieves a value from ImportMetadata
func (im *ImportMetadata) Value(key string) interface{} {
	return im.values[key]
}

// NewImportMetadata initializes ImportMetadata
func NewImportMetadata(ctx context.Context) *ImportMetadata {
	return &ImportMetadata{
		Context: ctx,
		values:  make(map[string]interface{}),
	}
}
