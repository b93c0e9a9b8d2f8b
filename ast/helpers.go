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

// FindByContent walks doc's tree depth-first and returns the first Text,
// Math or Comment leaf whose content exactly matches content, or nil if
// none does; Label, Caption and Image leaves are not searched. It
// exists to let operation tests locate a node by its visible text rather
// than by a brittle hard-coded identifier, mirroring the test-support
// helpers in original_source/ast/src/operation/test.go.
func FindByContent(doc *Document, content string) *Node {
	return findByContent(doc.Root, content)
}

func findByContent(n *Node, content string) *Node {
	if !n.IsExpandable() {
		switch d := n.Leaf.(type) {
		case *TextData:
			if d.Text == content {
				return n
			}
		case *MathData:
			if d.Content == content {
				return n
			}
		case *CommentData:
			if d.Comment == content {
				return n
			}
		}
		return nil
	}
	for _, child := range n.Children {
		if found := findByContent(child, content); found != nil {
			return found
		}
	}
	return nil
}

// CountChildren returns the number of direct children of the node with
// the given identifier, or -1 if the node does not exist or is a leaf.
func CountChildren(doc *Document, id Identifier) int {
	n, ok := doc.idIndex[id]
	if !ok || !n.IsExpandable() {
		return -1
	}
	return len(n.Children)
}
