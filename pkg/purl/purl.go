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

package purl

import (
	"errors"
	"fmt"
	"strings"

	packageurl "github.com/package-url/packageurl-go"
)

// ManagerType is the package manager ecosystem derived from the purl type token.
type ManagerType string

const (
	Alpm      ManagerType = "ALPM"
	Apk       ManagerType = "APK"
	Bitbucket ManagerType = "BITBUCKET"
	Cargo     ManagerType = "CARGO"
	Cocoapods ManagerType = "COCOAPODS"
	Composer  ManagerType = "COMPOSER"
	Conan     ManagerType = "CONAN"
	Conda     ManagerType = "CONDA"
	Cran      ManagerType = "CRAN"
	Deb       ManagerType = "DEB"
	Docker    ManagerType = "DOCKER"
	Gem       ManagerType = "GEM"
	Generic   ManagerType = "GENERIC"
	Github    ManagerType = "GITHUB"
	Gitlab    ManagerType = "GITLAB"
	Golang    ManagerType = "GOLANG"
	Hackage   ManagerType = "HACKAGE"
	Hex       ManagerType = "HEX"
	Maven     ManagerType = "MAVEN"
	Npm       ManagerType = "NPM"
	Nuget     ManagerType = "NUGET"
	Oci       ManagerType = "OCI"
	Pub       ManagerType = "PUB"
	Pypi      ManagerType = "PYPI"
	Rpm       ManagerType = "RPM"
	Swift     ManagerType = "SWIFT"
	Yarn      ManagerType = "YARN"
)

var managerTypes = map[string]ManagerType{
	"alpm":      Alpm,
	"apk":       Apk,
	"bitbucket": Bitbucket,
	"cargo":     Cargo,
	"cocoapods": Cocoapods,
	"composer":  Composer,
	"conan":     Conan,
	"conda":     Conda,
	"cran":      Cran,
	"deb":       Deb,
	"docker":    Docker,
	"gem":       Gem,
	"generic":   Generic,
	"github":    Github,
	"gitlab":    Gitlab,
	"golang":    Golang,
	"hackage":   Hackage,
	"hex":       Hex,
	"maven":     Maven,
	"npm":       Npm,
	"nuget":     Nuget,
	"oci":       Oci,
	"pub":       Pub,
	"pypi":      Pypi,
	"rpm":       Rpm,
	"swift":     Swift,
	"yarn":      Yarn,
}

// ErrMalformed reports a purl that cannot be parsed or whose type token does not
// map to a known package manager.
var ErrMalformed = errors.New("malformed purl")

// Coordinates is the validated decomposition of a purl string.
type Coordinates struct {
	Manager ManagerType
	Name    string
	Version string
	Purl    string // canonical, lower-cased input
}

// IsValid reports whether the token maps to a known package manager type.
func IsValid(typeToken string) bool {
	_, ok := managerTypes[strings.ToLower(typeToken)]
	return ok
}

// Decompose parses a purl string into package coordinates. The composed name
// prefers purl namespace, then the component group, then publisher, joined with
// "/" for npm and golang (preserving scoped-package conventions) and "." for
// every other manager type. Residual slashes in non-npm/golang names become dots.
func Decompose(rawPurl, group, publisher string) (Coordinates, error) {
	purl := strings.ToLower(strings.TrimSpace(rawPurl))
	if purl == "" {
		return Coordinates{}, fmt.Errorf("%w: empty purl", ErrMalformed)
	}

	parsed, err := packageurl.FromString(purl)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	manager, ok := managerTypes[strings.ToLower(parsed.Type)]
	if !ok {
		return Coordinates{}, fmt.Errorf("%w: unknown package manager type %q", ErrMalformed, parsed.Type)
	}

	var name string
	if manager == Npm || manager == Golang {
		name = strings.TrimSpace(composeName(parsed.Namespace, group, publisher, parsed.Name, "/"))
	} else {
		name = strings.TrimSpace(strings.ReplaceAll(composeName(parsed.Namespace, group, publisher, parsed.Name, "."), "/", "."))
	}

	return Coordinates{
		Manager: manager,
		Name:    name,
		Version: parsed.Version,
		Purl:    purl,
	}, nil
}

func composeName(namespace, group, publisher, name, delimiter string) string {
	switch {
	case strings.TrimSpace(namespace) != "":
		return namespace + delimiter + name
	case strings.TrimSpace(group) != "":
		return group + delimiter + name
	case strings.TrimSpace(publisher) != "":
		return publisher + delimiter + name
	default:
		return name
	}
}
