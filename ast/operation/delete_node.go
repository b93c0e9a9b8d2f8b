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

// DeleteNode removes a node (and its whole subtree) from the document.
// Deleting the root is a fatal error, surfaced by Document.Remove itself.
type DeleteNode struct {
	TargetID ast.Identifier `json:"target_id"`
}

func (op *DeleteNode) Execute(doc *ast.Document) *ast.OperationError {
	target, opErr := doc.GetNode(op.TargetID)
	if opErr != nil {
		return opErr
	}
	_, opErr = doc.Remove(target)
	return opErr
}
