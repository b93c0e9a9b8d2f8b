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

// Package operation implements the seven JSON-dispatched document
// mutations (spec.md §4.7): EditNode, AddNode, DeleteNode, MoveNode,
// MergeNodes, EditMetadata, DeleteMetadata. Each one mutates an
// *ast.Document in place and is applied through Apply, which wraps
// execution in the mandatory refresh-and-rollback cycle.
package operation

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/PSE-Team-TeXLa/texla-backend-sub000/ast"
)

// Operation is one document mutation, already decoded from its JSON
// arguments and ready to execute against a document.
type Operation interface {
	// Execute applies the mutation to doc. The caller holds doc's lock
	// for the duration of the call.
	Execute(doc *ast.Document) *ast.OperationError
}

// envelope is the wire shape dispatched by Parse: {"type": "...",
// "arguments": {...}}.
type envelope struct {
	Type      string          `json:"type"`
	Arguments json.RawMessage `json:"arguments"`
}

// Parse decodes a JSON operation envelope into the matching Operation
// variant.
func Parse(data []byte) (Operation, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("operation: malformed envelope: %w", err)
	}

	var op Operation
	switch env.Type {
	case "editNode":
		op = &EditNode{}
	case "addNode":
		op = &AddNode{}
	case "deleteNode":
		op = &DeleteNode{}
	case "moveNode":
		op = &MoveNode{}
	case "mergeNodes":
		op = &MergeNodes{}
	case "editMetadata":
		op = &EditMetadata{}
	case "deleteMetadata":
		op = &DeleteMetadata{}
	default:
		return nil, fmt.Errorf("operation: unknown type %q", env.Type)
	}

	if len(env.Arguments) > 0 {
		if err := json.Unmarshal(env.Arguments, op); err != nil {
			return nil, fmt.Errorf("operation: malformed arguments for %q: %w", env.Type, err)
		}
	}
	return op, nil
}

// Apply runs op against doc under doc's document-level mutex, then runs
// the mandatory serialize-reparse refresh cycle. If either step fails,
// doc is rolled back to the snapshot taken before op ran, so the client
// never sees a half-mutated document. A refresh failure is returned as
// client-recoverable, per spec.md §9's resolution of the refresh-failure
// open question; an Execute error is returned with its own kind (a stale
// identifier stays fatal).
func Apply(doc *ast.Document, op Operation, opts ast.StringificationOptions, log *zap.SugaredLogger) *ast.OperationError {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	doc.Lock()
	defer doc.Unlock()

	snapshot, serr := ast.ToLatex(doc, opts)
	if serr != nil {
		return &ast.OperationError{Kind: ast.OperationErrorFatal, Message: fmt.Sprintf("could not snapshot document: %v", serr)}
	}

	if opErr := op.Execute(doc); opErr != nil {
		log.Warnw("operation execute failed, rolling back", "error", opErr)
		rollback(doc, snapshot, log)
		return opErr
	}

	if opErr := doc.Refresh(opts); opErr != nil {
		log.Warnw("post-operation refresh failed, rolling back", "error", opErr)
		rollback(doc, snapshot, log)
		return asPrecondition(opErr)
	}

	return nil
}

// rollback restores doc to the pre-operation snapshot. A failure here
// (the snapshot itself no longer parses, which should never happen since
// it was produced by ToLatex moments earlier) is logged but otherwise
// swallowed: there is nothing better Apply's caller can do with it.
func rollback(doc *ast.Document, snapshot string, log *zap.SugaredLogger) {
	fresh, err := ast.Parse(snapshot)
	if err != nil {
		log.Errorw("could not reparse pre-operation snapshot during rollback", "error", err)
		return
	}
	doc.ReplaceWith(fresh)
}

// asPrecondition normalizes a refresh failure to client-recoverable: the
// tree itself was never left inconsistent (it was rolled back), so the
// caller should treat this the same as any other rejected operation.
func asPrecondition(err *ast.OperationError) *ast.OperationError {
	if err.Kind == ast.OperationErrorFatal {
		return &ast.OperationError{Kind: ast.OperationErrorPrecondition, Message: err.Message}
	}
	return err
}
