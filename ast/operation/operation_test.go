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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PSE-Team-TeXLa/texla-backend-sub000/ast"
)

func mustParse(t *testing.T, src string) *ast.Document {
	t.Helper()
	doc, err := ast.Parse(src)
	require.NoError(t, err)
	return doc
}

func TestParseDispatchesAllSevenTypes(t *testing.T) {
	testCases := []struct {
		envelope string
		want     Operation
	}{
		{`{"type":"editNode","arguments":{"target_id":1,"new_latex":"x"}}`, &EditNode{}},
		{`{"type":"addNode","arguments":{"position":{"parent":1},"latex":"x"}}`, &AddNode{}},
		{`{"type":"deleteNode","arguments":{"target_id":1}}`, &DeleteNode{}},
		{`{"type":"moveNode","arguments":{"target_id":1,"new_position":{"parent":2}}}`, &MoveNode{}},
		{`{"type":"mergeNodes","arguments":{"second_node":2}}`, &MergeNodes{}},
		{`{"type":"editMetadata","arguments":{"target_id":1,"entries":{"k":"v"}}}`, &EditMetadata{}},
		{`{"type":"deleteMetadata","arguments":{"target_id":1,"key":"k"}}`, &DeleteMetadata{}},
	}

	for _, tc := range testCases {
		op, err := Parse([]byte(tc.envelope))
		require.NoError(t, err)
		require.IsType(t, tc.want, op)
	}
}

func TestParseUnknownTypeIsAnError(t *testing.T) {
	_, err := Parse([]byte(`{"type":"frobnicate","arguments":{}}`))
	require.Error(t, err)
}

func TestParseMalformedEnvelopeIsAnError(t *testing.T) {
	_, err := Parse([]byte(`not json`))
	require.Error(t, err)
}

func TestApplyAddNodeInsertsAndReinterprets(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\end{document}\n")

	op := &AddNode{
		Position: ast.Position{Parent: doc.Root.ID},
		Latex:    "\\section{New}\nbody text.\n\n",
	}
	opErr := Apply(doc, op, ast.DefaultStringificationOptions(), nil)
	require.Nil(t, opErr)

	node := ast.FindByContent(doc, "body text.")
	require.NotNil(t, node)
}

func TestApplyDeleteNodeRemovesSubtree(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\section{One}\ntext\n\n\\end{document}\n")
	target := doc.Root.Children[0]

	opErr := Apply(doc, &DeleteNode{TargetID: target.ID}, ast.DefaultStringificationOptions(), nil)
	require.Nil(t, opErr)
	require.Empty(t, doc.Root.Children)
}

func TestApplyDeleteRootIsRejected(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\end{document}\n")

	opErr := Apply(doc, &DeleteNode{TargetID: doc.Root.ID}, ast.DefaultStringificationOptions(), nil)
	require.NotNil(t, opErr)
	require.True(t, opErr.IsFatal())
}

func TestApplyEditNodeReplacesContentKeepingChildren(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\section{Old}\nbody.\n\n\\end{document}\n")
	target := doc.Root.Children[0]

	op := &EditNode{TargetID: target.ID, NewLatex: "\\section{New}\n...\n"}
	opErr := Apply(doc, op, ast.DefaultStringificationOptions(), nil)
	require.Nil(t, opErr)

	require.Len(t, doc.Root.Children, 1)
	seg, ok := doc.Root.Children[0].Expandable.(*ast.SegmentData)
	require.True(t, ok)
	require.Equal(t, "New", seg.Heading)
	require.NotNil(t, ast.FindByContent(doc, "body."))
}

func TestApplyEditNodeKeepsChildrenEvenWithoutSplitMark(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\section{Old}\nbody.\n\n\\end{document}\n")
	target := doc.Root.Children[0]

	// new_latex has no "..." mark: the old implementation dropped the
	// target's children in this case, silently deleting "body." below.
	op := &EditNode{TargetID: target.ID, NewLatex: "\\section{New}\n"}
	opErr := Apply(doc, op, ast.DefaultStringificationOptions(), nil)
	require.Nil(t, opErr)

	require.Len(t, doc.Root.Children, 1)
	seg, ok := doc.Root.Children[0].Expandable.(*ast.SegmentData)
	require.True(t, ok)
	require.Equal(t, "New", seg.Heading)
	require.NotNil(t, ast.FindByContent(doc, "body."))
}

func TestEditNodeExecutePreservesIdentifierAndMetadataBeforeRefresh(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\section{Old}\nbody.\n\n\\end{document}\n")
	target := doc.Root.Children[0]
	target.Metadata = ast.NewMetadata(map[string]string{"key": "value"})
	targetID := target.ID
	childID := target.Children[0].ID

	op := &EditNode{TargetID: target.ID, NewLatex: "\\section{New}\n"}
	opErr := op.Execute(doc)
	require.Nil(t, opErr)

	replaced := doc.Root.Children[0]
	require.Equal(t, targetID, replaced.ID)
	require.Equal(t, "value", replaced.Metadata["key"])
	require.Len(t, replaced.Children, 1)
	require.Equal(t, childID, replaced.Children[0].ID)
}

func TestApplyMoveNodeRelocatesWithoutChangingContent(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\section{A}\nfirst.\n\n\\section{B}\nsecond.\n\n\\end{document}\n")
	moved := doc.Root.Children[0]
	destination := doc.Root.Children[1]

	op := &MoveNode{TargetID: moved.ID, NewPosition: ast.Position{Parent: destination.ID}}
	opErr := Apply(doc, op, ast.DefaultStringificationOptions(), nil)
	require.Nil(t, opErr)

	require.Len(t, doc.Root.Children, 1)
	require.NotNil(t, ast.FindByContent(doc, "first."))
}

func TestApplyMoveNodeRejectsSelfParenting(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\section{A}\ntext.\n\n\\end{document}\n")
	target := doc.Root.Children[0]

	op := &MoveNode{TargetID: target.ID, NewPosition: ast.Position{Parent: target.ID}}
	opErr := Apply(doc, op, ast.DefaultStringificationOptions(), nil)
	require.NotNil(t, opErr)
	require.False(t, opErr.IsFatal())
}

func TestApplyMergeNodesConcatenatesSiblings(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\nfirst.\n\nsecond.\n\n\\end{document}\n")
	require.Len(t, doc.Root.Children, 2)

	// Only the second node is supplied; the engine derives its predecessor.
	op := &MergeNodes{SecondID: doc.Root.Children[1].ID}
	opErr := Apply(doc, op, ast.DefaultStringificationOptions(), nil)
	require.Nil(t, opErr)

	require.Len(t, doc.Root.Children, 1)
	merged := doc.Root.Children[0].Leaf.(*ast.TextData)
	require.Equal(t, "first.\nsecond.", merged.Text)
}

func TestApplyMergeNodesRejectsNonTextTargets(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\ntext.\n\n\\section{A}\nnested.\n\n\\end{document}\n")
	require.Len(t, doc.Root.Children, 2)

	op := &MergeNodes{SecondID: doc.Root.Children[1].ID}
	opErr := Apply(doc, op, ast.DefaultStringificationOptions(), nil)
	require.NotNil(t, opErr)
	require.False(t, opErr.IsFatal())
}

func TestApplyMergeNodesRejectsNodeWithNoPredecessor(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\nfirst.\n\n\\end{document}\n")
	require.Len(t, doc.Root.Children, 1)

	op := &MergeNodes{SecondID: doc.Root.Children[0].ID}
	opErr := Apply(doc, op, ast.DefaultStringificationOptions(), nil)
	require.NotNil(t, opErr)
	require.False(t, opErr.IsFatal())
}

func TestApplyEditMetadataMergesEntries(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\section{A}\ntext.\n\n\\end{document}\n")
	target := doc.Root.Children[0]

	op := &EditMetadata{TargetID: target.ID, Entries: map[string]string{"key": "value"}}
	opErr := Apply(doc, op, ast.DefaultStringificationOptions(), nil)
	require.Nil(t, opErr)

	require.Equal(t, "value", doc.Root.Children[0].Metadata["key"])
}

func TestApplyDeleteMetadataRemovesKey(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n% TEXLA METADATA (key: value,)\n\\section{A}\ntext.\n\n\\end{document}\n")
	target := doc.Root.Children[0]
	require.Equal(t, "value", target.Metadata["key"])

	op := &DeleteMetadata{TargetID: target.ID, Key: "key"}
	opErr := Apply(doc, op, ast.DefaultStringificationOptions(), nil)
	require.Nil(t, opErr)
	require.Empty(t, doc.Root.Children[0].Metadata)
}

func TestApplyUnknownIdentifierIsFatalAndLeavesDocumentUntouched(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\end{document}\n")
	before, err := ast.ToLatex(doc, ast.DefaultStringificationOptions())
	require.NoError(t, err)

	opErr := Apply(doc, &DeleteNode{TargetID: ast.Identifier(999999)}, ast.DefaultStringificationOptions(), nil)
	require.NotNil(t, opErr)
	require.True(t, opErr.IsFatal())

	after, err := ast.ToLatex(doc, ast.DefaultStringificationOptions())
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestApplyRollsBackWhenPostOperationRefreshFails(t *testing.T) {
	doc := mustParse(t, "\\begin{document}\n\\end{document}\n")
	before, err := ast.ToLatex(doc, ast.DefaultStringificationOptions())
	require.NoError(t, err)

	op := &AddNode{
		Position: ast.Position{Parent: doc.Root.ID},
		Latex:    "\\begin{figure}\nunterminated\n",
	}
	opErr := Apply(doc, op, ast.DefaultStringificationOptions(), nil)
	require.NotNil(t, opErr)
	require.False(t, opErr.IsFatal(), "a refresh-failure rollback is surfaced as client-recoverable, not fatal")

	after, err := ast.ToLatex(doc, ast.DefaultStringificationOptions())
	require.NoError(t, err)
	require.Equal(t, before, after, "a failed refresh must roll the document all the way back to its pre-operation snapshot")
}
