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

import (
	"strings"

	"github.com/PSE-Team-TeXLa/texla-backend-sub000/ast"
)

// childrenSplitMark is the literal placeholder a client embeds in
// EditNode's new LaTeX to mark where the target's existing children are
// re-inserted, letting an edit change a wrapping construct (e.g. rename an
// environment) without having to re-type its whole subtree. The split only
// affects where the before/after text falls: the children themselves are
// always kept, mark or no mark.
const childrenSplitMark = "..."

// EditNode replaces an existing node's raw LaTeX. The replacement always
// keeps the target's identifier, metadata, and (if the target is
// Expandable) its children, exactly as
// original_source/ast/src/operation/edit_node.rs does: only the node's
// before/after-children text changes. The replacement is a Dummy node; the
// mandatory post-operation refresh reinterprets it into its real variant.
type EditNode struct {
	TargetID ast.Identifier `json:"target_id"`
	NewLatex string         `json:"new_latex"`
}

func (op *EditNode) Execute(doc *ast.Document) *ast.OperationError {
	target, opErr := doc.GetNode(op.TargetID)
	if opErr != nil {
		return opErr
	}

	pre, post := splitOnMark(op.NewLatex)
	dummy := doc.ReplaceWithDummy(target, pre, post)

	if target.Parent == nil {
		doc.ReplaceRoot(dummy)
		return nil
	}

	pos, opErr := doc.Remove(target)
	if opErr != nil {
		return opErr
	}
	return doc.Insert(dummy, pos)
}

// splitOnMark splits s on the first occurrence of childrenSplitMark. If
// the mark is absent, the whole string is the pre-children text.
func splitOnMark(s string) (pre, post string) {
	idx := strings.Index(s, childrenSplitMark)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx+len(childrenSplitMark):]
}
