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

// AddNode inserts brand-new content as a child of Position.Parent, after
// Position.AfterSibling if given. The new content is wrapped as a Dummy
// node; the mandatory refresh afterwards reinterprets its LaTeX into
// whatever real node variant it describes.
type AddNode struct {
	Position ast.Position `json:"position"`
	Latex    string       `json:"latex"`
}

func (op *AddNode) Execute(doc *ast.Document) *ast.OperationError {
	dummy := doc.NewDummyNode(op.Latex, "", false, nil)
	return doc.Insert(dummy, op.Position)
}
