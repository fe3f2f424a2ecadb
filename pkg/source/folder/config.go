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

package folder

import (
	"fmt"
	"os"
)

// FolderConfig holds the settings for scanning a local folder for SBOMs.
type FolderConfig struct {
	FolderPath string
	Recursive  bool
	Watch      bool
}

func NewFolderConfig() *FolderConfig {
	return &FolderConfig{}
}

// Validate checks that the folder exists and is a directory.
func (c *FolderConfig) Validate() error {
	if c.FolderPath == "" {
		return fmt.Errorf("folder path is required")
	}
	info, err := os.Stat(c.FolderPath)
	if err != nil {
		return fmt.Errorf("failed to access folder %q: %w", c.FolderPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", c.FolderPath)
	}
	return nil
}
