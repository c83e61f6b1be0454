package lang

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".py", "python"},
		{".pyi", "python"},
		{".pyc", ""},
		{".go", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got := ForExtension(tt.ext)
			if got != tt.want {
				t.Errorf("ForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	py, ok := languages["python"]
	if !ok {
		t.Fatal("python language not registered")
	}
	if py.lang == nil {
		t.Error("python language is nil")
	}
}

func TestNewParser(t *testing.T) {
	t.Parallel()

	p := Python.NewParser()
	if p == nil {
		t.Fatal("NewParser returned nil")
	}
	p.Close()
}

// firstOfType returns the first node of the given type in pre-order.
func firstOfType(n *sitter.Node, typ string) *sitter.Node {
	if n.Type() == typ {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if found := firstOfType(n.NamedChild(i), typ); found != nil {
			return found
		}
	}
	return nil
}

func parseFunction(t *testing.T, source string) (*sitter.Node, []byte) {
	t.Helper()
	p := Python.NewParser()
	t.Cleanup(p.Close)
	src := []byte(source)
	tree, err := p.ParseCtx(context.Background(), nil, src)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	fn := firstOfType(tree.RootNode(), "function_definition")
	require.NotNil(t, fn, "no function_definition in %q", source)
	return fn, src
}

func TestPythonFindMethodClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"method", "class Foo:\n    def m(self): pass\n", "Foo"},
		{"decorated method", "class Foo:\n    @property\n    def m(self): pass\n", "Foo"},
		{"function", "def f(x): pass\n", ""},
		{"nested in method", "def outer():\n    def inner(self): pass\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fn, src := parseFunction(t, tt.source)
			if tt.name == "nested in method" {
				fn = firstOfType(fn.ChildByFieldName("body"), "function_definition")
				require.NotNil(t, fn)
			}
			assert.Equal(t, tt.want, Python.FindMethodClass(fn, src))
		})
	}
}

func TestPythonDecorators(t *testing.T) {
	t.Parallel()

	fn, src := parseFunction(t, "@staticmethod\n@functools.lru_cache(maxsize=1)\ndef f(x): pass\n")
	assert.Equal(t, []string{"staticmethod", "functools.lru_cache"}, Python.Decorators(fn, src))

	plain, src := parseFunction(t, "def g(): pass\n")
	assert.Empty(t, Python.Decorators(plain, src))
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dict[str, int]", CollapseWhitespace("  dict[str,\n\t    int]  "))
}
