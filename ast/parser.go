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
	"strings"
)

// topFloor is one level outer than the outermost real segment level
// (part, at -1). Passing topFloor as the ambient floor means "any real
// segment header starts a new nested segment here" — used at the
// document root and whenever a container (Environment, File) resets
// the nesting context.
const topFloor int8 = -2

// Parse converts a normalized LaTeX source string into a Document,
// mirroring parse() in original_source/ast/src/parser.go. Parsing either
// succeeds wholesale or fails wholesale: there is no partial result.
func Parse(src string) (*Document, error) {
	p := &parser{src: src, gen: NewIDGenerator(), idx: map[Identifier]*Node{}}
	root, highest, err := p.parseDocument()
	if err != nil {
		return nil, err
	}
	return &Document{
		Root:         root,
		HighestLevel: highest,
		idgen:        p.gen,
		idIndex:      p.idx,
		log:          nil,
	}, nil
}

type parser struct {
	src string
	pos int
	gen *IDGenerator
	idx map[Identifier]*Node
}

func (p *parser) atEOF() bool { return p.pos >= len(p.src) }

func (p *parser) rest() string { return p.src[p.pos:] }

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Span: Span{Start: p.pos, End: p.pos}, Message: fmt.Sprintf(format, args...)}
}

// skipBlank advances past blank lines (whitespace-only lines), which carry
// no structural meaning between elements.
func (p *parser) skipBlank() {
	for !p.atEOF() {
		lineEnd := indexOrEnd(p.rest(), '\n')
		line := p.rest()[:lineEnd]
		if strings.TrimSpace(line) != "" {
			return
		}
		p.pos += lineEnd
		if !p.atEOF() {
			p.pos++ // consume the newline itself
		}
	}
}

// takeLine consumes and returns the current line's content (without its
// trailing newline), advancing past the newline.
func (p *parser) takeLine() string {
	lineEnd := indexOrEnd(p.rest(), '\n')
	line := p.rest()[:lineEnd]
	p.pos += lineEnd
	if !p.atEOF() {
		p.pos++
	}
	return line
}

func indexOrEnd(s string, b byte) int {
	if i := strings.IndexByte(s, b); i >= 0 {
		return i
	}
	return len(s)
}

// parseDocument parses the root Document node: preamble text, the
// "\begin{document}"/"\end{document}" bracketed body, and postamble text.
func (p *parser) parseDocument() (*Node, int8, error) {
	start := p.pos
	beginIdx := strings.Index(p.rest(), documentBegin)
	if beginIdx < 0 {
		return nil, 0, p.errorf("missing %s", documentBegin)
	}
	preamble := p.rest()[:beginIdx]
	p.pos += beginIdx + len(documentBegin)
	if !p.atEOF() && p.src[p.pos] == '\n' {
		p.pos++
	}

	children, highest, err := p.parseChildren(topFloor, terminator{kind: termDocument})
	if err != nil {
		return nil, 0, err
	}

	if !strings.HasPrefix(p.rest(), documentEnd) {
		return nil, 0, p.errorf("expected %s", documentEnd)
	}
	p.pos += len(documentEnd)
	if !p.atEOF() && p.src[p.pos] == '\n' {
		p.pos++
	}
	postamble := p.rest()

	root := newExpandable(&DocumentData{Preamble: preamble, Postamble: postamble}, children, p.gen, p.idx, p.src[start:], nil)
	return root, highest, nil
}

type terminatorKind int

const (
	termDocument terminatorKind = iota
	termEnv
	termFile
)

type terminator struct {
	kind terminatorKind
	name string // environment name, or file path
}

// matches reports whether the parser is currently positioned at the
// closing marker this terminator describes.
func (t terminator) matches(rest string) bool {
	switch t.kind {
	case termDocument:
		return strings.HasPrefix(rest, documentEnd)
	case termEnv:
		return strings.HasPrefix(rest, endKeyword+"{"+t.name+"}")
	case termFile:
		return strings.HasPrefix(rest, fileEndMark+"{"+t.name+"}")
	}
	return false
}

// parseChildren parses a maximal run of sibling nodes belonging to one
// container (the document body, an Environment, a File, or a Segment),
// stopping when term's closing marker is seen (left unconsumed, for the
// caller to consume); reaching EOF first is a parse error. floor is the nesting level
// already claimed by an ancestor Segment: a sectioning header whose level
// is <= floor belongs to that ancestor and is likewise left unconsumed.
// It returns the minimum (most outer) segment level encountered directly
// or in any descendant, or leafLevel if none was found.
func (p *parser) parseChildren(floor int8, term terminator) ([]*Node, int8, error) {
	var children []*Node
	minLevel := int8(leafLevel)

	for {
		p.skipBlank()
		if p.atEOF() {
			if term.kind == termDocument && term.name == "" {
				return nil, 0, p.errorf("unexpected end of input, expected %s", documentEnd)
			}
			return nil, 0, p.errorf("unexpected end of input while parsing %s", term.describe())
		}
		if term.matches(p.rest()) {
			return children, minLevel, nil
		}

		// A sectioning header may itself carry a metadata prefix; peek
		// past one (without consuming anything) before deciding whether
		// the header belongs to this tier or to an ancestor.
		if level, _, _, ok := peekSegmentHeaderIn(p.restAfterMetadata()); ok && level <= floor {
			return children, minLevel, nil
		}

		metadata := p.consumeMetadataPrefix()

		if level, heading, counted, ok := p.peekSegmentHeader(); ok {
			p.consumeSegmentHeader()
			segStart := p.pos
			segChildren, childMin, err := p.parseChildren(level, term)
			if err != nil {
				return nil, 0, err
			}
			if level < minLevel {
				minLevel = level
			}
			if childMin < minLevel {
				minLevel = childMin
			}
			seg := newExpandable(&SegmentData{Heading: heading, Counted: counted}, segChildren, p.gen, p.idx, p.src[segStart:p.pos], metadata)
			children = append(children, seg)
			continue
		}

		posBefore := p.pos
		node, childMin, err := p.parseItemBody(metadata)
		if err != nil {
			return nil, 0, err
		}
		if p.pos == posBefore {
			// parseItemBody fell through to parseText against input that
			// startsSpecial rejects outright (e.g. a "\end{...}" or "%
			// TEXLA FILE END ..." marker that does not match term): without
			// this check the loop would spin forever at the same position.
			return nil, 0, p.errorf("unexpected input while parsing %s", term.describe())
		}
		if childMin < minLevel {
			minLevel = childMin
		}
		children = append(children, node)
	}
}

// restAfterMetadata returns the source remaining after skipping one
// leading "% TEXLA METADATA (...)" line, without advancing the parser.
func (p *parser) restAfterMetadata() string {
	rest := p.rest()
	if !strings.HasPrefix(rest, metadataMark) {
		return rest
	}
	lineEnd := indexOrEnd(rest, '\n')
	if lineEnd >= len(rest) {
		return ""
	}
	return rest[lineEnd+1:]
}

// peekSegmentHeaderIn reports whether s begins with a sectioning header,
// independent of any live parser position.
func peekSegmentHeaderIn(s string) (level int8, heading string, counted bool, ok bool) {
	tmp := &parser{src: s}
	return tmp.peekSegmentHeader()
}

func (t terminator) describe() string {
	switch t.kind {
	case termEnv:
		return "\\begin{" + t.name + "}"
	case termFile:
		return "file " + t.name
	default:
		return "document"
	}
}

// peekSegmentHeader reports whether the parser is positioned at a
// sectioning command ("\part"..."\subparagraph", optionally starred),
// without consuming it.
func (p *parser) peekSegmentHeader() (level int8, heading string, counted bool, ok bool) {
	rest := p.rest()
	if !strings.HasPrefix(rest, "\\") {
		return 0, "", false, false
	}
	for _, lk := range segmentLevels {
		kw := "\\" + lk.keyword
		if !strings.HasPrefix(rest, kw) {
			continue
		}
		after := rest[len(kw):]
		star := false
		if strings.HasPrefix(after, "*") {
			star = true
			after = after[1:]
		}
		if !strings.HasPrefix(after, "{") {
			continue
		}
		closeIdx := strings.IndexByte(after, '}')
		if closeIdx < 0 {
			continue
		}
		return lk.level, after[1:closeIdx], !star, true
	}
	return 0, "", false, false
}

// consumeSegmentHeader re-parses and advances past the header peeked by
// peekSegmentHeader.
func (p *parser) consumeSegmentHeader() {
	_, heading, _, _ := p.peekSegmentHeader()
	rest := p.rest()
	openIdx := strings.IndexByte(rest, '{')
	p.pos += openIdx + 1 + len(heading) + 1 // up to '{' (incl. any '*'), then heading, then '}'
	if !p.atEOF() && p.src[p.pos] == '\n' {
		p.pos++
	}
}

// parseItemBody parses one non-segment element: environment, file
// boundary, or leaf, attaching a metadata map already consumed by the
// caller. It returns the minimum segment level found in its (possible)
// subtree, for File/Environment transparency bubbling.
func (p *parser) parseItemBody(metadata map[string]string) (*Node, int8, error) {
	rest := p.rest()
	switch {
	case strings.HasPrefix(rest, fileBeginMark):
		node, minLevel, err := p.parseFile(metadata)
		return node, minLevel, err

	case strings.HasPrefix(rest, beginKeyword+"{"):
		node, minLevel, err := p.parseBeginEnvironment(metadata)
		return node, minLevel, err

	case strings.HasPrefix(rest, labelKeyword+"{"):
		return p.parseBraced(labelKeyword, func(s string) LeafData { return &LabelData{Label: s} }, metadata), leafLevel, nil

	case strings.HasPrefix(rest, captionKeyword+"{"):
		return p.parseBraced(captionKeyword, func(s string) LeafData { return &CaptionData{Caption: s} }, metadata), leafLevel, nil

	case strings.HasPrefix(rest, includegraphics):
		return p.parseImage(metadata), leafLevel, nil

	case strings.HasPrefix(rest, squareBracketL):
		return p.parseDelimitedMath(squareBracketL, squareBracketR, MathSquareBrackets, metadata), leafLevel, nil

	case strings.HasPrefix(rest, doubleDollars):
		return p.parseDelimitedMath(doubleDollars, doubleDollars, MathDoubleDollars, metadata), leafLevel, nil

	case strings.HasPrefix(rest, "%"):
		node, err := p.parseComment(metadata)
		if err != nil {
			return nil, 0, err
		}
		return node, leafLevel, nil

	default:
		return p.parseText(metadata), leafLevel, nil
	}
}

// consumeMetadataPrefix consumes a leading "% TEXLA METADATA (...)" line,
// if present, returning its decoded key/value pairs.
func (p *parser) consumeMetadataPrefix() map[string]string {
	if !strings.HasPrefix(p.rest(), metadataMark) {
		return nil
	}
	line := p.takeLine()
	body := strings.TrimPrefix(line, metadataMark)
	body = strings.TrimSpace(body)
	body = strings.TrimPrefix(body, string(metadataDelimiterLeft))
	body = strings.TrimSuffix(body, string(metadataDelimiterRight))

	out := map[string]string{}
	for _, entry := range strings.Split(body, string(metadataSepValues)) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		kv := strings.SplitN(entry, string(metadataSepKeyValue), 2)
		if len(kv) != 2 {
			continue
		}
		out[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return out
}

// parseFile parses a "% TEXLA FILE BEGIN {path}" ... "% TEXLA FILE END
// {path}" bracketed region. Its children are parsed with a fresh floor:
// a File's contents are self-contained, and any segment levels found
// within still bubble up into the enclosing minLevel computation, which
// is what spec.md means by File nodes being level-transparent.
func (p *parser) parseFile(metadata map[string]string) (*Node, int8, error) {
	start := p.pos
	line := p.takeLine()
	path, err := extractBraced(line, fileBeginMark)
	if err != nil {
		return nil, 0, p.errorf("malformed %s: %s", strings.TrimSpace(fileBeginMark), err)
	}

	children, minLevel, err := p.parseChildren(topFloor, terminator{kind: termFile, name: path})
	if err != nil {
		return nil, 0, err
	}

	line = p.takeLine()
	endPath, err := extractBraced(line, fileEndMark)
	if err != nil {
		return nil, 0, p.errorf("malformed %s: %s", strings.TrimSpace(fileEndMark), err)
	}
	if endPath != path {
		return nil, 0, p.errorf("mismatched file boundary: begin %q, end %q", path, endPath)
	}

	node := newExpandable(&FileData{Path: path}, children, p.gen, p.idx, p.src[start:p.pos], metadata)
	return node, minLevel, nil
}

// parseBeginEnvironment parses "\begin{Name}...\end{Name}". The three
// TeXLa-recognized math environment names are retagged as Math leaves
// rather than generic Environment nodes; everything else becomes an
// Environment, with its children parsed at a fresh floor.
func (p *parser) parseBeginEnvironment(metadata map[string]string) (*Node, int8, error) {
	start := p.pos
	line := p.rest()
	closeIdx := strings.IndexByte(line, '}')
	if !strings.HasPrefix(line, beginKeyword+"{") || closeIdx < 0 {
		return nil, 0, p.errorf("malformed %s", beginKeyword)
	}
	name := line[len(beginKeyword)+1 : closeIdx]
	p.pos += closeIdx + 1
	if !p.atEOF() && p.src[p.pos] == '\n' {
		p.pos++
	}

	switch name {
	case "displaymath":
		return p.finishMathEnvironment(start, name, MathDisplaymath, metadata), leafLevel, nil
	case "equation":
		return p.finishMathEnvironment(start, name, MathEquation, metadata), leafLevel, nil
	case "align":
		return p.finishMathEnvironment(start, name, MathAlign, metadata), leafLevel, nil
	}

	children, minLevel, err := p.parseChildren(topFloor, terminator{kind: termEnv, name: name})
	if err != nil {
		return nil, 0, err
	}
	if !strings.HasPrefix(p.rest(), endKeyword+"{"+name+"}") {
		return nil, 0, p.errorf("expected %s{%s}", endKeyword, name)
	}
	p.pos += len(endKeyword) + len(name) + 2
	if !p.atEOF() && p.src[p.pos] == '\n' {
		p.pos++
	}

	node := newExpandable(&EnvironmentData{Name: name}, children, p.gen, p.idx, p.src[start:p.pos], metadata)
	return node, minLevel, nil
}

// finishMathEnvironment consumes content up to the matching "\end{name}"
// for one of the three named math environments, which are leaves (their
// content is opaque math source, not a child tree).
func (p *parser) finishMathEnvironment(start int, name string, kind MathKind, metadata map[string]string) *Node {
	closer := endKeyword + "{" + name + "}"
	idx := strings.Index(p.rest(), closer)
	content := p.rest()
	if idx >= 0 {
		content = p.rest()[:idx]
		p.pos += idx + len(closer)
	} else {
		p.pos = len(p.src)
	}
	content = strings.TrimSuffix(content, "\n")
	if !p.atEOF() && p.src[p.pos] == '\n' {
		p.pos++
	}
	return newLeaf(&MathData{Kind: kind, Content: content}, p.gen, p.idx, p.src[start:p.pos], metadata)
}

// parseDelimitedMath parses inline/display math bracketed by a pair of
// plain-text delimiters ("$$"..."$$" or "\["..."\]").
func (p *parser) parseDelimitedMath(open, close string, kind MathKind, metadata map[string]string) *Node {
	start := p.pos
	p.pos += len(open)
	idx := strings.Index(p.rest(), close)
	var content string
	if idx >= 0 {
		content = p.rest()[:idx]
		p.pos += idx + len(close)
	} else {
		content = p.rest()
		p.pos = len(p.src)
	}
	if !p.atEOF() && p.src[p.pos] == '\n' {
		p.pos++
	}
	return newLeaf(&MathData{Kind: kind, Content: content}, p.gen, p.idx, p.src[start:p.pos], metadata)
}

// parseBraced parses a single-argument command like "\label{x}" or
// "\caption{x}".
func (p *parser) parseBraced(keyword string, build func(string) LeafData, metadata map[string]string) *Node {
	start := p.pos
	line := p.takeLine()
	arg, err := extractBraced(line, keyword)
	if err != nil {
		arg = ""
	}
	return newLeaf(build(arg), p.gen, p.idx, p.src[start:p.pos], metadata)
}

// parseImage parses "\includegraphics[options]{path}"; options is
// omitted when there is no bracket argument.
func (p *parser) parseImage(metadata map[string]string) *Node {
	start := p.pos
	line := p.takeLine()
	rest := strings.TrimPrefix(line, includegraphics)

	var options *string
	if strings.HasPrefix(rest, "[") {
		closeIdx := strings.IndexByte(rest, ']')
		if closeIdx >= 0 {
			opt := rest[1:closeIdx]
			options = &opt
			rest = rest[closeIdx+1:]
		}
	}
	path, err := extractBraced(rest, "")
	if err != nil {
		path = ""
	}
	return newLeaf(&ImageData{Path: path, Options: options}, p.gen, p.idx, p.src[start:p.pos], metadata)
}

// parseComment parses a single "%..." line comment. The recognized TeXLa
// sentinel forms (metadata, file boundaries) are already dispatched
// elsewhere, so any comment that still starts with texlaCommentPrefix here
// is a malformed/unrecognized sentinel, not a regular comment, and is a
// parse error (spec.md §4.5, §8; original_source/ast/src/parser.rs's
// comment parser errors the same way on a stray "TEXLA"-prefixed line).
func (p *parser) parseComment(metadata map[string]string) (*Node, error) {
	start := p.pos
	line := p.takeLine()
	if strings.HasPrefix(line, texlaCommentPrefix) {
		return nil, p.errorf("found TEXLA metadata instead of a regular comment: %q", line)
	}
	return newLeaf(&CommentData{Comment: line}, p.gen, p.idx, p.src[start:p.pos], metadata), nil
}

// parseText consumes a run of plain-prose lines up to (but not
// including) the next line that starts a recognized special form, and
// packages it as one TextData leaf.
func (p *parser) parseText(metadata map[string]string) *Node {
	start := p.pos
	var lines []string
	for !p.atEOF() {
		rest := p.rest()
		trimmed := strings.TrimSpace(rest[:indexOrEnd(rest, '\n')])
		if trimmed == "" {
			break
		}
		if startsSpecial(rest) {
			break
		}
		lines = append(lines, p.takeLine())
	}
	text := strings.Join(lines, "\n")
	return newLeaf(&TextData{Text: text}, p.gen, p.idx, p.src[start:p.pos], metadata)
}

// startsSpecial reports whether rest begins a line that parseItemBody's
// dispatch would treat as something other than plain text.
func startsSpecial(rest string) bool {
	switch {
	case strings.HasPrefix(rest, "%"),
		strings.HasPrefix(rest, beginKeyword+"{"),
		strings.HasPrefix(rest, endKeyword+"{"),
		strings.HasPrefix(rest, labelKeyword+"{"),
		strings.HasPrefix(rest, captionKeyword+"{"),
		strings.HasPrefix(rest, includegraphics),
		strings.HasPrefix(rest, squareBracketL),
		strings.HasPrefix(rest, doubleDollars):
		return true
	}
	if _, _, _, ok := (&parser{src: rest}).peekSegmentHeader(); ok {
		return true
	}
	return false
}

// extractBraced extracts the single {...} argument following prefix on a
// line, e.g. extractBraced("\\label{fig:1}", "\\label") == "fig:1".
func extractBraced(line, prefix string) (string, error) {
	rest := strings.TrimPrefix(line, prefix)
	if !strings.HasPrefix(rest, "{") {
		return "", errMalformed
	}
	closeIdx := strings.IndexByte(rest, '}')
	if closeIdx < 0 {
		return "", errMalformed
	}
	return rest[1:closeIdx], nil
}

var errMalformed = &ParseError{Message: "expected a {...} argument"}
