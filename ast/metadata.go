//  Copyright (c) 2023 Uber Technologies, Inc.
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

package ast

import (
	"sort"
	"strings"
)

// Metadata is a string-to-string map attached to a Node. An empty-string
// value is the same as not having that key at all; the normal form is to
// not have it. Keys and values are identifier-shaped tokens (letters and
// digits).
type Metadata map[string]string

// NewMetadata returns a normalized, possibly-empty Metadata.
func NewMetadata(data map[string]string) Metadata {
	m := Metadata{}
	for k, v := range data {
		m[k] = v
	}
	m.normalize()
	return m
}

// normalize drops every empty-string value, restoring invariant 4: no
// empty-string values survive in persisted metadata.
func (m Metadata) normalize() {
	for k, v := range m {
		if v == "" {
			delete(m, k)
		}
	}
}

// Edit merges newEntries over the current map, then normalizes. Setting a
// key to "" is therefore equivalent to deleting it.
func (m Metadata) Edit(newEntries map[string]string) {
	for k, v := range newEntries {
		m[k] = v
	}
	m.normalize()
}

// Delete removes a single key, if present.
func (m Metadata) Delete(key string) {
	delete(m, key)
}

// String renders the sidecar comment display form: "(k1: v1,k2: v2,)".
// Keys are sorted for deterministic output (the original Rust HashMap
// iteration order was incidental, not a guaranteed invariant).
func (m Metadata) String() string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('(')
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(m[k])
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}
