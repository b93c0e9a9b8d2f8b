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

// Package ast implements the TeXLa LaTeX document model: a round-trip
// parser/serializer that converts a normalized LaTeX source string into a
// hierarchical tree of document elements, together with the structural
// primitives (Insert/Remove) that the operation layer builds on.
package ast

// levelKeyword pairs a segment nesting level with the LaTeX command that
// introduces it.
type levelKeyword struct {
	level   int8
	keyword string
}

// segmentLevels is the fixed level table from the outermost sectioning
// command (part, at level -1) to the innermost (subparagraph, level 5).
// Nodes do not store a level: the serializer derives each Segment's level
// during its walk from the document's HighestLevel.
var segmentLevels = [...]levelKeyword{
	{-1, "part"},
	{0, "chapter"},
	{1, "section"},
	{2, "subsection"},
	{3, "subsubsection"},
	{4, "paragraph"},
	{5, "subparagraph"},
}

// LevelKeyword pairs a segment nesting level with the LaTeX command that
// introduces it. Exported so internal/config can surface the table a
// client-facing schema describes (spec.md §6), even though parsing and
// serialization always use the unexported table above internally.
type LevelKeyword struct {
	Level   int8
	Keyword string
}

// DefaultLevelKeywords returns the fixed level→keyword table used by the
// parser and serializer, in outermost-to-innermost order.
func DefaultLevelKeywords() []LevelKeyword {
	out := make([]LevelKeyword, len(segmentLevels))
	for i, lk := range segmentLevels {
		out[i] = LevelKeyword{Level: lk.level, Keyword: lk.keyword}
	}
	return out
}

// leafLevel is used as the document's HighestLevel when no segment
// command is present anywhere in the source.
const leafLevel int8 = 6

// uncountedSegmentMarker is appended to a segment keyword for the starred
// (uncounted) form, e.g. "\section*{...}".
const uncountedSegmentMarker = "*"

// keywordForLevel looks up the LaTeX sectioning keyword for a level.
func keywordForLevel(level int8) (string, bool) {
	for _, lk := range segmentLevels {
		if lk.level == level {
			return lk.keyword, true
		}
	}
	return "", false
}

// KeywordForLevel is the exported form of keywordForLevel, used by
// internal/config to describe the level table it ships without
// duplicating it.
func KeywordForLevel(level int8) (string, bool) {
	return keywordForLevel(level)
}

// levelForKeyword looks up the nesting level for a sectioning keyword.
func levelForKeyword(keyword string) (int8, bool) {
	for _, lk := range segmentLevels {
		if lk.keyword == keyword {
			return lk.level, true
		}
	}
	return 0, false
}

// TeXLa sentinel tokens. These delimit TeXLa's own extensions to plain
// LaTeX: metadata sidecar comments and file-inclusion boundary markers
// left behind by the (out-of-scope) filesystem multiplexer.
const (
	texlaCommentPrefix = "% TEXLA"

	metadataMark           = "% TEXLA METADATA "
	metadataDelimiterLeft  = '('
	metadataDelimiterRight = ')'
	metadataSepKeyValue    = ':'
	metadataSepValues      = ','

	fileBeginMark = "% TEXLA FILE BEGIN "
	fileEndMark   = "% TEXLA FILE END "
)

// LaTeX structural tokens used by both the parser and the serializer.
const (
	documentBegin    = "\\begin{document}"
	documentEnd      = "\\end{document}"
	beginKeyword     = "\\begin"
	endKeyword       = "\\end"
	includegraphics  = "\\includegraphics"
	labelKeyword     = "\\label"
	captionKeyword   = "\\caption"
	doubleDollars    = "$$"
	squareBracketL   = "\\["
	squareBracketR   = "\\]"
	displaymathBegin = "\\begin{displaymath}"
	displaymathEnd   = "\\end{displaymath}"
	equationBegin    = "\\begin{equation}"
	equationEnd      = "\\end{equation}"
	alignBegin       = "\\begin{align}"
	alignEnd         = "\\end{align}"
)
