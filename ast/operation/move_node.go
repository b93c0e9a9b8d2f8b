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

// MoveNode relocates an existing node to a new position in the tree,
// without altering its content or identifier.
type MoveNode struct {
	TargetID    ast.Identifier `json:"target_id"`
	NewPosition ast.Position   `json:"new_position"`
}

func (op *MoveNode) Execute(doc *ast.Document) *ast.OperationError {
	target, opErr := doc.GetNode(op.TargetID)
	if opErr != nil {
		return opErr
	}
	if target.Parent == nil {
		return ast.Precondition("cannot move the root node")
	}
	if op.NewPosition.Parent == op.TargetID {
		return ast.Precondition("cannot move a node to be its own child")
	}

	if _, opErr := doc.Remove(target); opErr != nil {
		return opErr
	}
	return doc.Insert(target, op.NewPosition)
}
