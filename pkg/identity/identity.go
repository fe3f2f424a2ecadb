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

// Package identity derives stable grouping keys for SBOM components so that
// multiple entries referring to the same upstream project collapse into one
// catalog component. Pure string work, no I/O.
package identity

import (
	"regexp"
	"strings"
)

var (
	// strips the URI scheme including transport prefixes like "git+https://"
	schemeRegex = regexp.MustCompile(`.+://(\w*(?:[-@.\s,_:/][/(.\-)A-Za-z0-9]+)*)`)

	// first three path segments: host/org/repo
	thirdSlashRegex = regexp.MustCompile(`[^/]*(/[^/]*){2}`)

	// everything after the leading segment (drops the host)
	firstSlashRegex = regexp.MustCompile(`/(.*)`)

	htmlTagRegex = regexp.MustCompile(`<[^>]+>`)

	anySchemeRegex = regexp.MustCompile(`^[^:]+://`)
)

// GroupKey normalizes a VCS URL into a grouping key, e.g.
//
//	git+https://github.com/microsoft/ApplicationInsights-JS.git/tree/master/shared/AppInsightsCommon
//	        --> microsoft.applicationinsights-js
//
// The second return is false when the URL does not carry enough path segments
// to form a key; such URLs contribute nothing to grouping.
func GroupKey(vcsURL string) (string, bool) {
	url := strings.ToLower(strings.TrimSpace(vcsURL))
	if url == "" {
		return "", false
	}

	url = schemeRegex.ReplaceAllString(url, "$1")

	truncated := thirdSlashRegex.FindString(url)
	if truncated == "" {
		return "", false
	}

	match := firstSlashRegex.FindStringSubmatch(truncated)
	if match == nil {
		return "", false
	}

	key := match[1]
	if i := strings.Index(key, "#"); i >= 0 {
		key = key[:i]
	}
	key = strings.TrimSuffix(key, ".git")
	key = strings.ReplaceAll(key, "/", ".")
	if key == "" {
		return "", false
	}
	return key, true
}

// FallbackName builds a component name when no VCS identity is available:
// group, else publisher, else author (HTML tags stripped), each joined with
// the component name by ".". A bare name is returned when no qualifier exists.
func FallbackName(group, publisher, author, name string) string {
	name = strings.TrimSpace(name)

	qualifier := strings.TrimSpace(group)
	if qualifier == "" {
		qualifier = strings.TrimSpace(StripHTML(publisher))
	}
	if qualifier == "" {
		qualifier = strings.TrimSpace(StripHTML(author))
	}
	if qualifier == "" {
		return name
	}
	return qualifier + "." + name
}

// StripHTML removes HTML tags, e.g. publisher strings like "Jane <jane@corp>".
func StripHTML(s string) string {
	return htmlTagRegex.ReplaceAllString(s, "")
}

// NormalizeHTTPS rewrites any URI scheme (git://, ssh://, git+https://) to https://.
func NormalizeHTTPS(url string) string {
	return anySchemeRegex.ReplaceAllString(url, "https://")
}
