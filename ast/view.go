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
	"encoding/json"
	"fmt"

	"golang.org/x/mod/semver"
)

// CurrentFormatVersion is embedded in every View so a client can detect
// whether its own understanding of the tree shape is stale. It follows
// golang.org/x/mod/semver's "vMAJOR.MINOR.PATCH" form.
const CurrentFormatVersion = "v1.0.0"

// View is the JSON shape sent to a TeXLa client: a plain tree that
// mirrors Document/Node but carries no mutexes, back-references, or raw
// LaTeX spans.
type View struct {
	FormatVersion string     `json:"format_version"`
	HighestLevel  int8       `json:"highest_level"`
	Root          *NodeView  `json:"root"`
}

// NodeView is one node of View's tree.
type NodeView struct {
	ID       Identifier        `json:"uuid"`
	Metadata map[string]string `json:"meta_data,omitempty"`
	Type     string            `json:"type"`
	Data     any               `json:"data"`
	Children []*NodeView       `json:"children,omitempty"`
}

// ToView renders doc as a client-facing View.
func ToView(doc *Document) *View {
	return &View{
		FormatVersion: CurrentFormatVersion,
		HighestLevel:  doc.HighestLevel,
		Root:          nodeToView(doc.Root),
	}
}

func nodeToView(n *Node) *NodeView {
	v := &NodeView{ID: n.ID}
	if len(n.Metadata) > 0 {
		v.Metadata = map[string]string(n.Metadata)
	}

	if n.IsExpandable() {
		switch data := n.Expandable.(type) {
		case *DocumentData:
			v.Type = "document"
			v.Data = data
		case *SegmentData:
			v.Type = "segment"
			v.Data = data
		case *FileData:
			v.Type = "file"
			v.Data = data
		case *EnvironmentData:
			v.Type = "environment"
			v.Data = data
		case *DummyData:
			v.Type = "dummy"
			v.Data = data
		}
		v.Children = make([]*NodeView, len(n.Children))
		for i, c := range n.Children {
			v.Children[i] = nodeToView(c)
		}
		return v
	}

	switch data := n.Leaf.(type) {
	case *TextData:
		v.Type = "text"
		v.Data = data
	case *MathData:
		v.Type = "math"
		v.Data = struct {
			Kind    string `json:"kind"`
			Content string `json:"content"`
		}{Kind: data.Kind.String(), Content: data.Content}
	case *ImageData:
		v.Type = "image"
		v.Data = data
	case *LabelData:
		v.Type = "label"
		v.Data = data
	case *CaptionData:
		v.Type = "caption"
		v.Data = data
	case *CommentData:
		v.Type = "comment"
		v.Data = data
	}
	return v
}

// MarshalJSON lets a *Document be passed straight to json.Marshal/an HTTP
// handler without callers needing to remember to call ToView first.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToView(d))
}

// ValidateFormatVersion reports an error if a client-supplied format
// version is not compatible with CurrentFormatVersion (its semver.Major
// differs): semver is used the same way golang.org/x/mod/semver would gate a module's own
// compatibility checks, here for the document format instead of a Go
// module.
func ValidateFormatVersion(clientVersion string) error {
	if !semver.IsValid(clientVersion) {
		return fmt.Errorf("invalid format version %q", clientVersion)
	}
	if semver.Major(clientVersion) != semver.Major(CurrentFormatVersion) {
		return fmt.Errorf("incompatible format version %q, server is at %q", clientVersion, CurrentFormatVersion)
	}
	return nil
}
