package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Python is the registry entry for Python sources and stubs.
var Python = &Language{
	Name:            "python",
	Extensions:      []string{".py", ".pyi"},
	lang:            python.GetLanguage(),
	FindMethodClass: pythonFindMethodClass,
	Decorators:      pythonDecorators,
}

func init() {
	languages[Python.Name] = Python
}

func pythonFindMethodClass(funcNode *sitter.Node, source []byte) string {
	classNode := pythonFindEnclosingClass(funcNode)
	if classNode == nil {
		return ""
	}
	if name := classNode.ChildByFieldName("name"); name != nil {
		return NodeText(name, source)
	}
	return ""
}

func pythonFindEnclosingClass(funcNode *sitter.Node) *sitter.Node {
	parent := funcNode.Parent()
	if parent == nil {
		return nil
	}

	// Direct: func -> block -> class_definition
	if parent.Type() == "block" && parent.Parent() != nil && parent.Parent().Type() == "class_definition" {
		return parent.Parent()
	}

	// Decorated: func -> decorated_definition -> block -> class_definition
	if parent.Type() == "decorated_definition" {
		gp := parent.Parent()
		if gp != nil && gp.Type() == "block" && gp.Parent() != nil && gp.Parent().Type() == "class_definition" {
			return gp.Parent()
		}
	}

	return nil
}

// pythonDecorators returns the decorator expressions wrapping a definition,
// without the leading "@" and without call arguments, so
// "@functools.lru_cache(maxsize=1)" yields "functools.lru_cache".
func pythonDecorators(defNode *sitter.Node, source []byte) []string {
	parent := defNode.Parent()
	if parent == nil || parent.Type() != "decorated_definition" {
		return nil
	}
	var names []string
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		child := parent.NamedChild(i)
		if child.Type() != "decorator" {
			continue
		}
		text := strings.TrimPrefix(NodeText(child, source), "@")
		if idx := strings.IndexByte(text, '('); idx >= 0 {
			text = text[:idx]
		}
		names = append(names, CollapseWhitespace(text))
	}
	return names
}
