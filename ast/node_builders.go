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

// NewDummyNode builds a placeholder Expandable node carrying literal,
// not-yet-reinterpreted LaTeX text. AddNode uses this for freshly inserted
// content: once Document.Refresh serializes and reparses the tree, the
// Dummy's text is parsed into whatever real node variant it actually
// describes (spec.md §4.6). The returned node is already registered in
// doc's identifier index.
func (d *Document) NewDummyNode(preChildren, postChildren string, increasesLevel bool, children []*Node) *Node {
	data := &DummyData{PreChildren: preChildren, PostChildren: postChildren, IncreasesLevel: increasesLevel}
	return newExpandable(data, children, d.idgen, d.idIndex, preChildren+postChildren, nil)
}

// ReplaceWithDummy builds the Dummy placeholder EditNode substitutes for an
// existing node. Unlike NewDummyNode, it keeps target's identifier,
// metadata, and (for an Expandable target) children unconditionally,
// mirroring original_source/ast/src/operation/edit_node.rs, which rebuilds
// the node at the same uuid with the same meta_data and children regardless
// of whether raw_latex embeds a "..." children split mark. The returned
// node is registered in doc's identifier index under target's original ID.
func (d *Document) ReplaceWithDummy(target *Node, preChildren, postChildren string) *Node {
	var children []*Node
	increasesLevel := false
	if target.IsExpandable() {
		children = target.Children
		increasesLevel = target.Expandable.increasesLevel()
	}

	n := &Node{
		ID:         target.ID,
		Metadata:   target.Metadata,
		Expandable: &DummyData{PreChildren: preChildren, PostChildren: postChildren, IncreasesLevel: increasesLevel},
		Children:   children,
		RawLatex:   preChildren + postChildren,
	}
	for _, child := range children {
		child.Parent = n
	}
	d.idIndex[n.ID] = n
	return n
}
