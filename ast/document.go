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
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Document owns the root node, the identifier service, and the
// identifier-to-node index. By conventionally reparsing from its own
// serialization after every operation, every weak reference in idIndex
// stays valid and consistent (see spec.md §4.6).
type Document struct {
	mu sync.Mutex

	Root         *Node
	HighestLevel int8

	idgen   *IDGenerator
	idIndex map[Identifier]*Node
	log     *zap.SugaredLogger
}

// SetLogger installs a structured logger used for parse/operation
// diagnostics. A nil logger is replaced with a no-op one; Document is
// always safe to use without calling this.
func (d *Document) SetLogger(log *zap.SugaredLogger) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	d.log = log
}

func (d *Document) logger() *zap.SugaredLogger {
	if d.log == nil {
		return zap.NewNop().Sugar()
	}
	return d.log
}

// GetNode looks up a node by identifier. Per spec.md §4.7, a missing
// identifier is a fatal (invariant-violation) error: it is only
// reachable if the client sent a stale identifier or the tree is
// corrupt.
func (d *Document) GetNode(id Identifier) (*Node, *OperationError) {
	n, ok := d.idIndex[id]
	if !ok {
		return nil, fatalf("unknown identifier %d", id)
	}
	return n, nil
}

// Insert looks up pos.Parent (which must be Expandable), finds the
// insertion index (0 if AfterSibling is absent, else one past the
// sibling's position), inserts node there, sets node's parent
// back-reference, and registers it in the identifier index.
func (d *Document) Insert(node *Node, pos Position) *OperationError {
	parent, opErr := d.GetNode(pos.Parent)
	if opErr != nil {
		return opErr
	}
	if !parent.IsExpandable() {
		return fatalf("insert position parent %d is a leaf", pos.Parent)
	}

	index := 0
	if pos.AfterSibling != nil {
		sibling, opErr := d.GetNode(*pos.AfterSibling)
		if opErr != nil {
			return opErr
		}
		found := -1
		for i, child := range parent.Children {
			if child == sibling {
				found = i
				break
			}
		}
		if found == -1 {
			return fatalf("after_sibling %d is not a child of %d", *pos.AfterSibling, pos.Parent)
		}
		index = found + 1
	}

	node.Parent = parent
	children := parent.Children
	children = append(children, nil)
	copy(children[index+1:], children[index:])
	children[index] = node
	parent.Children = children

	d.idIndex[node.ID] = node
	d.logger().Debugw("inserted node", "id", node.ID, "parent", pos.Parent, "index", index)
	return nil
}

// Remove detaches node from its parent's child list, evicts it (and, by
// convention of the surrounding reparse, its whole subtree) from the
// identifier index, and returns the Position it used to occupy. Removing
// the root is fatal.
func (d *Document) Remove(node *Node) (Position, *OperationError) {
	parent := node.Parent
	if parent == nil {
		return Position{}, fatalf("cannot remove the root node")
	}

	index := -1
	for i, child := range parent.Children {
		if child == node {
			index = i
			break
		}
	}
	if index == -1 {
		return Position{}, fatalf("node %d is not a child of its recorded parent", node.ID)
	}

	parent.Children = append(parent.Children[:index], parent.Children[index+1:]...)
	d.evict(node)

	pos := Position{Parent: parent.ID}
	if index > 0 {
		sibling := parent.Children[index-1].ID
		pos.AfterSibling = &sibling
	}
	d.logger().Debugw("removed node", "id", node.ID, "position", pos)
	return pos, nil
}

// evict removes node and its whole subtree from the identifier index.
func (d *Document) evict(node *Node) {
	delete(d.idIndex, node.ID)
	for _, child := range node.Children {
		d.evict(child)
	}
}

// ReplaceRoot swaps in a brand-new root node built from raw_latex by
// EditNode when the target was the root itself (there is no parent child
// slot to overwrite in that case).
func (d *Document) ReplaceRoot(node *Node) {
	d.Root = node
	d.idIndex[node.ID] = node
}

// Lock acquires the document's single mutual-exclusion guard for the
// duration of an operation's execute-plus-refresh cycle (spec.md §5).
func (d *Document) Lock() { d.mu.Lock() }

// Unlock releases the guard acquired by Lock.
func (d *Document) Unlock() { d.mu.Unlock() }

// Refresh re-serializes and re-parses d in place. This is the mandatory
// post-operation cycle every operation in ast/operation runs so that any
// Dummy placeholder left behind by AddNode/EditNode gets reinterpreted
// into its real node variant (spec.md §4.6). If the reparse fails, d is
// left completely untouched.
func (d *Document) Refresh(opts StringificationOptions) *OperationError {
	latex, err := ToLatex(d, opts)
	if err != nil {
		return fatalf("refresh: %v", err)
	}
	fresh, perr := Parse(latex)
	if perr != nil {
		return preconditionf("refresh: reparse failed: %v", perr)
	}
	d.ReplaceWith(fresh)
	return nil
}

// ReplaceWith swaps in another document's tree, level, identifier
// generator and index wholesale. It is used both by Refresh and by the
// operation layer's rollback path, which reparses a pre-operation
// snapshot and replaces the live document with it when the mandatory
// refresh fails.
func (d *Document) ReplaceWith(other *Document) {
	d.Root = other.Root
	d.HighestLevel = other.HighestLevel
	d.idgen = other.idgen
	d.idIndex = other.idIndex
}

// Validate checks the structural tree invariants and aggregates every
// violation found (rather than stopping at the first), using multierr the
// same way analyzer/analyzer.go aggregates multiple diff-parsing failures.
// It checks that the root has no parent and carries Document data, that
// every child's parent back-reference points at its parent, that the
// identifier index and the tree contain the same nodes, and that no
// metadata value is empty. It does not check segment-level ordering or
// the serialize/parse round-trip property.
func (d *Document) Validate() error {
	var errs error
	if d.Root == nil {
		return fmt.Errorf("document has no root")
	}
	if d.Root.Parent != nil {
		errs = multierr.Append(errs, fmt.Errorf("root has a non-nil parent"))
	}
	if _, ok := d.Root.Expandable.(*DocumentData); !ok {
		errs = multierr.Append(errs, fmt.Errorf("root is not a Document node"))
	}

	seen := map[Identifier]*Node{}
	errs = multierr.Append(errs, d.validateSubtree(d.Root, seen))

	for id := range d.idIndex {
		if _, ok := seen[id]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("identifier %d is indexed but not reachable from the root", id))
		}
	}
	for id := range seen {
		if _, ok := d.idIndex[id]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("node %d is reachable but not indexed", id))
		}
	}
	return errs
}

func (d *Document) validateSubtree(n *Node, seen map[Identifier]*Node) error {
	var errs error
	seen[n.ID] = n

	for k, v := range n.Metadata {
		if v == "" {
			errs = multierr.Append(errs, fmt.Errorf("node %d has an empty-string metadata value for key %q", n.ID, k))
		}
	}

	for _, child := range n.Children {
		if child.Parent != n {
			errs = multierr.Append(errs, fmt.Errorf("node %d's child %d has a mismatched parent back-reference", n.ID, child.ID))
		}
		errs = multierr.Append(errs, d.validateSubtree(child, seen))
	}
	return errs
}
