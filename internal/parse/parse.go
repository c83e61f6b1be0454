// Package parse turns Python source text into a tree-sitter syntax tree.
package parse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pythcheck/internal/lang"
	"github.com/phobologic/pythcheck/internal/model"
)

// ErrSyntax is wrapped by every parse failure caused by invalid source.
var ErrSyntax = errors.New("invalid syntax")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Tree is a parsed source file. It must be closed once extraction is done.
type Tree struct {
	tree   *sitter.Tree
	Source []byte
}

// Root returns the module node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Close releases the tree's C memory.
func (t *Tree) Close() {
	t.tree.Close()
}

// Parser wraps a tree-sitter parser for Python.
// A Parser is not safe for concurrent use; give each goroutine its own.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a Python parser.
func NewParser() *Parser {
	return &Parser{parser: lang.Python.NewParser()}
}

// Close releases the parser's C memory.
func (p *Parser) Close() {
	p.parser.Close()
}

// Parse parses source. Source that tree-sitter cannot parse cleanly yields a
// *model.FileError of kind model.ParseError wrapping ErrSyntax, positioned at
// the first error in the tree.
func (p *Parser) Parse(source []byte) (*Tree, error) {
	source = bytes.TrimPrefix(source, utf8BOM)

	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, model.NewFileError(model.ParseError, "tree-sitter parse failed", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		defer tree.Close()
		fe := &model.FileError{Kind: model.ParseError, Message: "invalid syntax", Err: ErrSyntax}
		if bad := firstError(root); bad != nil {
			pos := Position(bad, source)
			fe.Pos = &pos
			if bad.IsMissing() {
				fe.Message = fmt.Sprintf("missing %q", bad.Type())
			}
		}
		return nil, fe
	}

	return &Tree{tree: tree, Source: source}, nil
}

// firstError returns the first ERROR or missing node in pre-order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

// Position returns the 1-based line and rune column where node starts.
func Position(node *sitter.Node, source []byte) model.Position {
	start := int(node.StartByte())
	if start > len(source) {
		start = len(source)
	}
	lineStart := bytes.LastIndexByte(source[:start], '\n') + 1
	return model.Position{
		Line:   int(node.StartPoint().Row) + 1,
		Column: utf8.RuneCount(source[lineStart:start]) + 1,
	}
}
