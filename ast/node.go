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

import "sync"

// ExpandableData is the closed union of node variants that carry
// children. Only types defined in this package implement it; the marker
// method keeps the union closed the same way analyzer/core/mast/common.go
// closes its Node/Declaration/Statement/Expression unions.
type ExpandableData interface {
	isExpandableData()
	// increasesLevel reports whether children of a node carrying this
	// data are expected to satisfy the next segment level (true for
	// Segment, conditionally for Dummy, false otherwise).
	increasesLevel() bool
}

// LeafData is the closed union of childless node variants.
type LeafData interface {
	isLeafData()
}

// DocumentData is the root node's payload: free text that precedes
// "\begin{document}" and free text that follows "\end{document}".
type DocumentData struct {
	Preamble  string
	Postamble string
}

func (*DocumentData) isExpandableData()  {}
func (*DocumentData) increasesLevel() bool { return false }

// SegmentData is a sectioning command (\part ... \subparagraph). Counted
// is false iff the source used the starred form, e.g. "\section*{...}".
// A Segment always raises the expected level of its children by one.
type SegmentData struct {
	Heading string
	Counted bool
}

func (*SegmentData) isExpandableData()  {}
func (*SegmentData) increasesLevel() bool { return true }

// FileData marks a "\input{...}" boundary rendered as a pair of TeXLa
// comment sentinels by the (out-of-scope) filesystem multiplexer. File
// nodes are level-transparent: they never raise the expected level.
type FileData struct {
	Path string
}

func (*FileData) isExpandableData()  {}
func (*FileData) increasesLevel() bool { return false }

// EnvironmentData renders as "\begin{Name}...\end{Name}".
type EnvironmentData struct {
	Name string
}

func (*EnvironmentData) isExpandableData()  {}
func (*EnvironmentData) increasesLevel() bool { return false }

// DummyData is an edit placeholder produced by AddNode/EditNode. It
// carries raw pre/post-children text and survives only until the next
// reparse, at which point its text is reinterpreted into proper variants.
type DummyData struct {
	PreChildren    string
	PostChildren   string
	IncreasesLevel bool
}

func (*DummyData) isExpandableData()  {}
func (d *DummyData) increasesLevel() bool { return d.IncreasesLevel }

// TextData is a run of free-form prose.
type TextData struct {
	Text string
}

func (*TextData) isLeafData() {}

// MathKind distinguishes the four LaTeX math delimiter flavors spec.md
// names, plus the align environment recognized via the environment
// grammar but retagged as Math by name.
type MathKind int

const (
	MathDoubleDollars MathKind = iota
	MathSquareBrackets
	MathDisplaymath
	MathEquation
	MathAlign
)

func (k MathKind) String() string {
	switch k {
	case MathDoubleDollars:
		return "double_dollars"
	case MathSquareBrackets:
		return "square_brackets"
	case MathDisplaymath:
		return "displaymath"
	case MathEquation:
		return "equation"
	case MathAlign:
		return "align"
	default:
		return "unknown"
	}
}

// MathData is one of the four (plus align) math flavors.
type MathData struct {
	Kind    MathKind
	Content string
}

func (*MathData) isLeafData() {}

// ImageData is "\includegraphics[Options]{Path}"; Options is nil when no
// bracket argument was present.
type ImageData struct {
	Path    string
	Options *string
}

func (*ImageData) isLeafData() {}

// LabelData is "\label{Label}".
type LabelData struct {
	Label string
}

func (*LabelData) isLeafData() {}

// CaptionData is "\caption{Caption}".
type CaptionData struct {
	Caption string
}

func (*CaptionData) isLeafData() {}

// CommentData is a "%..." line comment, stored including its leading "%".
type CommentData struct {
	Comment string
}

func (*CommentData) isLeafData() {}

// Node is one element of the document tree. Exactly one of Expandable or
// Leaf is non-nil; Children is only meaningful when Expandable is set.
//
// Parent is a plain, non-owning back-reference: Go's garbage collector
// makes the Rust original's Weak<Mutex<Node>> unnecessary to avoid
// reference cycles, but the pointer is still documented as non-owning and
// must never be used to keep a detached subtree's parent alive (following
// a dangling Parent after the parent itself was removed from the tree is
// a structural bug). Nothing checks for a detached parent at the point a
// Parent pointer is followed; Document.Validate reports back-references
// that disagree with their parent's child list.
type Node struct {
	mu sync.Mutex

	ID       Identifier
	Metadata Metadata
	Parent   *Node
	RawLatex string

	Expandable ExpandableData
	Children   []*Node

	Leaf LeafData
}

// IsExpandable reports whether this node can have children.
func (n *Node) IsExpandable() bool {
	return n.Expandable != nil
}

// newLeaf builds a Leaf node and registers it in idx, mirroring
// Node::new_leaf in original_source/ast/src/node.rs.
func newLeaf(data LeafData, gen *IDGenerator, idx map[Identifier]*Node, rawLatex string, metadata map[string]string) *Node {
	n := &Node{
		ID:       gen.Next(),
		Metadata: NewMetadata(metadata),
		Leaf:     data,
		RawLatex: rawLatex,
	}
	idx[n.ID] = n
	return n
}

// newExpandable builds an Expandable node, wires parent back-references
// for its children, and registers it in idx, mirroring
// Node::new_expandable in original_source/ast/src/node.rs.
func newExpandable(data ExpandableData, children []*Node, gen *IDGenerator, idx map[Identifier]*Node, rawLatex string, metadata map[string]string) *Node {
	n := &Node{
		ID:         gen.Next(),
		Metadata:   NewMetadata(metadata),
		Expandable: data,
		Children:   children,
		RawLatex:   rawLatex,
	}
	for _, child := range children {
		child.Parent = n
	}
	idx[n.ID] = n
	return n
}
