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

package operation

import "github.com/PSE-Team-TeXLa/texla-backend-sub000/ast"

// MergeNodes joins a text node with the one immediately preceding it,
// appending the second node's text onto the first and removing the
// second from the tree. Only second_node is client-supplied: the engine
// derives the predecessor itself from the position Remove reports,
// mirroring original_source/ast/src/operation/merge_nodes.rs ("the first
// node precedes implicitly"). Both nodes must be Text leaves; anything
// else is a precondition error, not deferred to the refresh cycle.
type MergeNodes struct {
	SecondID ast.Identifier `json:"second_node"`
}

func (op *MergeNodes) Execute(doc *ast.Document) *ast.OperationError {
	second, opErr := doc.GetNode(op.SecondID)
	if opErr != nil {
		return opErr
	}
	secondText, ok := second.Leaf.(*ast.TextData)
	if !ok {
		return ast.Precondition("only text nodes can be merged")
	}

	pos, opErr := doc.Remove(second)
	if opErr != nil {
		return opErr
	}
	if pos.AfterSibling == nil {
		return ast.Precondition("no predecessor found to merge into")
	}

	first, opErr := doc.GetNode(*pos.AfterSibling)
	if opErr != nil {
		return opErr
	}
	firstText, ok := first.Leaf.(*ast.TextData)
	if !ok {
		return ast.Precondition("only text nodes can be merged")
	}

	firstText.Text = firstText.Text + "\n" + secondText.Text
	return nil
}
