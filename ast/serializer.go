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

import "strings"

// ToLatex serializes doc back into a LaTeX string, starting the root walk
// at doc.HighestLevel so that the outermost Segment's keyword lookup
// succeeds (spec.md §4.4).
func ToLatex(doc *Document, opts StringificationOptions) (string, error) {
	var b strings.Builder
	if err := serializeNode(&b, doc.Root, doc.HighestLevel, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

// serializeNode emits one node's metadata sidecar (if any) followed by
// its body, recursing into children at the appropriate level.
func serializeNode(b *strings.Builder, n *Node, level int8, opts StringificationOptions) error {
	if opts.IncludeMetadata && len(n.Metadata) > 0 {
		b.WriteString(metadataMark)
		b.WriteString(n.Metadata.String())
		b.WriteByte('\n')
	}

	if n.IsExpandable() {
		return serializeExpandable(b, n, level, opts)
	}
	serializeLeaf(b, n.Leaf, opts)
	return nil
}

func serializeChildren(b *strings.Builder, children []*Node, level int8, opts StringificationOptions) error {
	for _, child := range children {
		if err := serializeNode(b, child, level, opts); err != nil {
			return err
		}
	}
	return nil
}

func serializeExpandable(b *strings.Builder, n *Node, level int8, opts StringificationOptions) error {
	childLevel := level
	if n.Expandable.increasesLevel() {
		childLevel++
	}

	switch data := n.Expandable.(type) {
	case *DocumentData:
		b.WriteString(data.Preamble)
		b.WriteString(documentBegin)
		b.WriteByte('\n')
		if err := serializeChildren(b, n.Children, childLevel, opts); err != nil {
			return err
		}
		b.WriteString(documentEnd)
		b.WriteByte('\n')
		b.WriteString(data.Postamble)
		return nil

	case *SegmentData:
		keyword, ok := keywordForLevel(level)
		if !ok {
			return &StringificationError{Message: "invalid nesting level: " + itoa(int(level))}
		}
		b.WriteByte('\\')
		b.WriteString(keyword)
		if !data.Counted {
			b.WriteString(uncountedSegmentMarker)
		}
		b.WriteByte('{')
		b.WriteString(data.Heading)
		b.WriteString("}\n")
		return serializeChildren(b, n.Children, childLevel, opts)

	case *FileData:
		b.WriteString(fileBeginMark)
		b.WriteByte('{')
		b.WriteString(data.Path)
		b.WriteString("}\n")
		if err := serializeChildren(b, n.Children, childLevel, opts); err != nil {
			return err
		}
		b.WriteString(fileEndMark)
		b.WriteByte('{')
		b.WriteString(data.Path)
		b.WriteString("}\n")
		return nil

	case *EnvironmentData:
		b.WriteString(beginKeyword)
		b.WriteByte('{')
		b.WriteString(data.Name)
		b.WriteString("}\n")
		if err := serializeChildren(b, n.Children, childLevel, opts); err != nil {
			return err
		}
		b.WriteString(endKeyword)
		b.WriteByte('{')
		b.WriteString(data.Name)
		b.WriteString("}\n")
		return nil

	case *DummyData:
		b.WriteString(data.PreChildren)
		b.WriteByte('\n')
		if err := serializeChildren(b, n.Children, childLevel, opts); err != nil {
			return err
		}
		b.WriteString(data.PostChildren)
		b.WriteByte('\n')
		return nil

	default:
		return &StringificationError{Message: "unknown expandable node variant"}
	}
}

func serializeLeaf(b *strings.Builder, data LeafData, opts StringificationOptions) {
	switch d := data.(type) {
	case *TextData:
		b.WriteString(d.Text)
		b.WriteString("\n\n")

	case *ImageData:
		b.WriteString(includegraphics)
		if d.Options != nil {
			b.WriteByte('[')
			b.WriteString(*d.Options)
			b.WriteByte(']')
		}
		b.WriteByte('{')
		b.WriteString(d.Path)
		b.WriteString("}\n")

	case *LabelData:
		b.WriteString(labelKeyword)
		b.WriteByte('{')
		b.WriteString(d.Label)
		b.WriteString("}\n")

	case *CaptionData:
		b.WriteString(captionKeyword)
		b.WriteByte('{')
		b.WriteString(d.Caption)
		b.WriteString("}\n")

	case *MathData:
		serializeMath(b, d)

	case *CommentData:
		if opts.IncludeComments {
			b.WriteString(d.Comment)
			b.WriteByte('\n')
		}
	}
}

// serializeMath emits a math leaf in the form matching how parseItemBody
// consumed it: the two inline forms ($$...$$ and \[...\]) keep their
// content on one line, while the three named math environments put
// their content on its own line between the \begin/\end markers.
func serializeMath(b *strings.Builder, d *MathData) {
	switch d.Kind {
	case MathDoubleDollars:
		b.WriteString(doubleDollars)
		b.WriteString(d.Content)
		b.WriteString(doubleDollars)
		b.WriteByte('\n')
	case MathSquareBrackets:
		b.WriteString(squareBracketL)
		b.WriteString(d.Content)
		b.WriteString(squareBracketR)
		b.WriteByte('\n')
	case MathDisplaymath:
		writeMathEnvironment(b, displaymathBegin, displaymathEnd, d.Content)
	case MathEquation:
		writeMathEnvironment(b, equationBegin, equationEnd, d.Content)
	case MathAlign:
		writeMathEnvironment(b, alignBegin, alignEnd, d.Content)
	}
}

func writeMathEnvironment(b *strings.Builder, begin, end, content string) {
	b.WriteString(begin)
	b.WriteByte('\n')
	b.WriteString(content)
	b.WriteByte('\n')
	b.WriteString(end)
	b.WriteByte('\n')
}

// itoa avoids pulling in strconv just for this one error-path formatting.
func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var digits [8]byte
	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		digits[i] = '-'
	}
	return string(digits[i:])
}
