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

// StringificationOptions controls how ToLatex renders a Document.
type StringificationOptions struct {
	// IncludeComments controls whether regular LaTeX comments are
	// emitted.
	IncludeComments bool
	// IncludeMetadata controls whether TeXLa metadata sidecar comments
	// are emitted.
	IncludeMetadata bool
}

// DefaultStringificationOptions returns the spec default: both comments
// and metadata included.
func DefaultStringificationOptions() StringificationOptions {
	return StringificationOptions{IncludeComments: true, IncludeMetadata: true}
}
