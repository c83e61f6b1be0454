// Package extract collects function definitions from a parsed Python tree.
package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pythcheck/internal/lang"
	"github.com/phobologic/pythcheck/internal/model"
	"github.com/phobologic/pythcheck/internal/parse"
)

// nodeKind is the closed set of syntax node kinds the extractor inspects.
type nodeKind int

const (
	kindOther nodeKind = iota
	kindFunctionDef
	kindIdentifier
	kindTypedParameter
	kindDefaultParameter
	kindTypedDefaultParameter
	kindListSplat
	kindDictSplat
	kindKeywordSeparator
	kindPositionalSeparator
)

var kinds = map[string]nodeKind{
	"function_definition":      kindFunctionDef,
	"identifier":               kindIdentifier,
	"typed_parameter":          kindTypedParameter,
	"default_parameter":        kindDefaultParameter,
	"typed_default_parameter":  kindTypedDefaultParameter,
	"list_splat_pattern":       kindListSplat,
	"dictionary_splat_pattern": kindDictSplat,
	"keyword_separator":        kindKeywordSeparator,
	"positional_separator":     kindPositionalSeparator,
}

func kindOf(n *sitter.Node) nodeKind {
	if k, ok := kinds[n.Type()]; ok {
		return k
	}
	return kindOther
}

// Functions returns every function definition in tree, in depth-first
// pre-order: an enclosing function always precedes the functions nested in it.
// Lambdas have no annotation slots and are never returned.
func Functions(tree *parse.Tree) []model.FunctionNode {
	var fns []model.FunctionNode

	cursor := sitter.NewTreeCursor(tree.Root())
	defer cursor.Close()

	walk(cursor, tree.Source, 0, &fns)
	return fns
}

func walk(cursor *sitter.TreeCursor, source []byte, depth int, fns *[]model.FunctionNode) {
	node := cursor.CurrentNode()

	childDepth := depth
	if kindOf(node) == kindFunctionDef {
		if fn, ok := function(node, source, depth); ok {
			*fns = append(*fns, fn)
		}
		childDepth++
	}

	if cursor.GoToFirstChild() {
		walk(cursor, source, childDepth, fns)
		for cursor.GoToNextSibling() {
			walk(cursor, source, childDepth, fns)
		}
		cursor.GoToParent()
	}
}

func function(node *sitter.Node, source []byte, depth int) (model.FunctionNode, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return model.FunctionNode{}, false
	}

	fn := model.FunctionNode{
		Name:       lang.NodeText(nameNode, source),
		Pos:        parse.Position(node, source),
		Method:     lang.Python.FindMethodClass(node, source) != "",
		Decorators: lang.Python.Decorators(node, source),
		Depth:      depth,
	}
	if first := node.Child(0); first != nil && first.Type() == "async" {
		fn.Async = true
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		fn.ReturnAnnotation = lang.CollapseWhitespace(lang.NodeText(ret, source))
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Params = parameters(params, source)
	}
	return fn, true
}

func parameters(list *sitter.Node, source []byte) []model.ParameterNode {
	var params []model.ParameterNode
	keywordOnly := false

	for i := 0; i < int(list.NamedChildCount()); i++ {
		child := list.NamedChild(i)
		p, ok := parameter(child, source)
		if !ok {
			continue
		}
		switch p.Kind {
		case model.Separator:
			if kindOf(child) == kindKeywordSeparator {
				keywordOnly = true
			}
		case model.VarArgs:
			keywordOnly = true
		case model.Positional:
			if keywordOnly {
				p.Kind = model.KeywordOnly
			}
		}
		params = append(params, p)
	}
	return params
}

// parameter describes one child of a parameters node. It reports false for
// nodes that are not parameters, such as comments.
func parameter(n *sitter.Node, source []byte) (model.ParameterNode, bool) {
	p := model.ParameterNode{Kind: model.Positional, Pos: parse.Position(n, source)}

	switch kindOf(n) {
	case kindIdentifier:
		p.Name = lang.NodeText(n, source)
	case kindListSplat, kindDictSplat:
		p.Name, p.Kind = splat(n, source)
	case kindTypedParameter:
		// typed_parameter has no name field: the target is its first named child.
		if target := n.NamedChild(0); target != nil {
			switch kindOf(target) {
			case kindListSplat, kindDictSplat:
				p.Name, p.Kind = splat(target, source)
			default:
				p.Name = lang.NodeText(target, source)
			}
		}
		p.Annotation = annotation(n, source)
	case kindDefaultParameter:
		p.Name = fieldText(n, "name", source)
		p.HasDefault = true
	case kindTypedDefaultParameter:
		p.Name = fieldText(n, "name", source)
		p.Annotation = annotation(n, source)
		p.HasDefault = true
	case kindKeywordSeparator:
		p.Name, p.Kind = "*", model.Separator
	case kindPositionalSeparator:
		p.Name, p.Kind = "/", model.Separator
	default:
		return model.ParameterNode{}, false
	}
	return p, true
}

func splat(n *sitter.Node, source []byte) (string, model.ParamKind) {
	kind := model.VarArgs
	if kindOf(n) == kindDictSplat {
		kind = model.VarKwargs
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); kindOf(child) == kindIdentifier {
			return lang.NodeText(child, source), kind
		}
	}
	return "", kind
}

func annotation(n *sitter.Node, source []byte) string {
	t := n.ChildByFieldName("type")
	if t == nil {
		return ""
	}
	return lang.CollapseWhitespace(lang.NodeText(t, source))
}

func fieldText(n *sitter.Node, field string, source []byte) string {
	if f := n.ChildByFieldName(field); f != nil {
		return lang.NodeText(f, source)
	}
	return ""
}
