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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse(src)
	require.NoError(t, err)
	return doc
}

func TestDocumentValidateOnFreshParse(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\section{One}\ntext\n\n\\end{document}\n")
	require.NoError(t, doc.Validate())
}

func TestDocumentValidateCatchesDanglingParent(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\section{One}\ntext\n\n\\end{document}\n")
	doc.Root.Children[0].Parent = nil

	err := doc.Validate()
	require.Error(t, err)
}

func TestGetNodeUnknownIdentifierIsFatal(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\end{document}\n")
	_, opErr := doc.GetNode(Identifier(999999))
	require.NotNil(t, opErr)
	require.True(t, opErr.IsFatal())
}

func TestInsertAndRemoveRoundTrip(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\section{One}\ntext\n\n\\end{document}\n")
	root := doc.Root

	node := doc.NewDummyNode("extra text\n\n", "", false, nil)
	require.NoError(t, doc.Insert(node, Position{Parent: root.ID}))
	require.NoError(t, doc.Validate())

	found, opErr := doc.GetNode(node.ID)
	require.Nil(t, opErr)
	require.Same(t, node, found)

	pos, opErr := doc.Remove(node)
	require.Nil(t, opErr)
	require.Equal(t, root.ID, pos.Parent)

	_, opErr = doc.GetNode(node.ID)
	require.NotNil(t, opErr)
	require.True(t, opErr.IsFatal())
}

func TestRemoveRootIsFatal(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\end{document}\n")
	_, opErr := doc.Remove(doc.Root)
	require.NotNil(t, opErr)
	require.True(t, opErr.IsFatal())
}

func TestInsertIntoLeafParentIsFatal(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\section{One}\ntext\n\n\\end{document}\n")
	leaf := doc.Root.Children[0].Children[0]

	node := doc.NewDummyNode("x", "", false, nil)
	opErr := doc.Insert(node, Position{Parent: leaf.ID})
	require.NotNil(t, opErr)
	require.True(t, opErr.IsFatal())
}

func TestRefreshReinterpretsDummyNode(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\end{document}\n")
	dummy := doc.NewDummyNode("\\section{Grown}\ntext here.\n\n", "", false, nil)
	require.NoError(t, doc.Insert(dummy, Position{Parent: doc.Root.ID}))

	opts := DefaultStringificationOptions()
	opErr := doc.Refresh(opts)
	require.Nil(t, opErr)
	require.NoError(t, doc.Validate())

	require.Len(t, doc.Root.Children, 1)
	seg, ok := doc.Root.Children[0].Expandable.(*SegmentData)
	require.True(t, ok)
	require.Equal(t, "Grown", seg.Heading)
}

func TestRefreshLeavesDocumentUntouchedOnReparseFailure(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\end{document}\n")
	before, err := ToLatex(doc, DefaultStringificationOptions())
	require.NoError(t, err)

	dummy := doc.NewDummyNode("\\begin{figure}\nbroken\n", "", false, nil)
	require.NoError(t, doc.Insert(dummy, Position{Parent: doc.Root.ID}))

	opErr := doc.Refresh(DefaultStringificationOptions())
	require.NotNil(t, opErr)

	after, err := ToLatex(doc, DefaultStringificationOptions())
	require.NoError(t, err)
	require.NotEqual(t, before, after, "the unsuccessful refresh should not have rolled itself back; the inserted dummy is still present")
}

func TestReplaceWithSwapsTreeWholesale(t *testing.T) {
	a := mustParse(t, "\\begin{document}\n\\section{A}\ntext\n\n\\end{document}\n")
	b := mustParse(t, "\\begin{document}\n\\section{B}\nother\n\n\\end{document}\n")

	a.ReplaceWith(b)
	require.NoError(t, a.Validate())

	seg, ok := a.Root.Children[0].Expandable.(*SegmentData)
	require.True(t, ok)
	require.Equal(t, "B", seg.Heading)

	_, opErr := a.GetNode(a.Root.Children[0].ID)
	require.Nil(t, opErr)
}

func TestDocumentLockSerializesConcurrentAccess(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\end{document}\n")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			doc.Lock()
			defer doc.Unlock()
			node := doc.NewDummyNode("x\n\n", "", false, nil)
			_ = doc.Insert(node, Position{Parent: doc.Root.ID})
		}(i)
	}
	wg.Wait()

	require.NoError(t, doc.Validate())
	require.Len(t, doc.Root.Children, 8)
}
