package analyzer

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/ladoc-dev/ladoc/pkg/types"
)

// PythonAnalyzer extracts symbols from Python source via tree-sitter
type PythonAnalyzer struct{}

// NewPythonAnalyzer creates a Python analyzer
func NewPythonAnalyzer() *PythonAnalyzer {
	return &PythonAnalyzer{}
}

// Language implements Analyzer
func (a *PythonAnalyzer) Language() string { return "python" }

// Extensions implements Analyzer
func (a *PythonAnalyzer) Extensions() []string { return []string{".py", ".pyw"} }

// Analyze implements Analyzer. Top-level functions map to KindFunction,
// class definitions to KindClass, and functions inside a class body to
// KindMethod.
func (a *PythonAnalyzer) Analyze(relPath string, content []byte) (*types.FileModel, error) {
	// tree-sitter parsers are not safe for concurrent use, so each call
	// gets its own
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())

	tree, err := p.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrAnalysis, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w: syntax error in %s", types.ErrAnalysis, relPath)
	}

	ex := &pyExtractor{relPath: relPath, content: content}
	ex.walk(root, "")

	return &types.FileModel{
		Path:     relPath,
		Language: a.Language(),
		Symbols:  ex.symbols,
	}, nil
}

type pyExtractor struct {
	relPath string
	content []byte
	symbols []types.SymbolRecord
}

func (e *pyExtractor) walk(node *sitter.Node, className string) {
	switch node.Type() {
	case "function_definition":
		if sym := e.extractFunction(node, className); sym != nil {
			e.symbols = append(e.symbols, *sym)
		}
		// Nested functions are implementation detail, skip them
		return

	case "class_definition":
		sym := e.extractClass(node)
		if sym == nil {
			return
		}
		e.symbols = append(e.symbols, *sym)
		if body := node.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.ChildCount()); i++ {
				e.walk(body.Child(i), sym.Name)
			}
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		e.walk(node.Child(i), className)
	}
}

func (e *pyExtractor) extractFunction(node *sitter.Node, className string) *types.SymbolRecord {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	kind := types.KindFunction
	if className != "" {
		kind = types.KindMethod
	}

	sym := &types.SymbolRecord{
		Name:       nameNode.Content(e.content),
		Kind:       kind,
		Receiver:   className,
		Signature:  e.parameters(node),
		ReturnType: e.returnType(node),
		Span:       e.span(node),
		Snippet:    node.Content(e.content),
	}
	return sym
}

func (e *pyExtractor) extractClass(node *sitter.Node) *types.SymbolRecord {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	return &types.SymbolRecord{
		Name:      nameNode.Content(e.content),
		Kind:      types.KindClass,
		Signature: []types.Parameter{},
		Span:      e.span(node),
		Snippet:   node.Content(e.content),
	}
}

// parameters extracts the ordered parameter list, including type
// annotations and default values where present
func (e *pyExtractor) parameters(node *sitter.Node) []types.Parameter {
	params := []types.Parameter{}

	paramList := node.ChildByFieldName("parameters")
	if paramList == nil {
		return params
	}

	for i := 0; i < int(paramList.NamedChildCount()); i++ {
		child := paramList.NamedChild(i)
		switch child.Type() {
		case "identifier":
			params = append(params, types.Parameter{Name: child.Content(e.content)})
		case "typed_parameter":
			p := types.Parameter{}
			if nn := child.NamedChild(0); nn != nil {
				p.Name = nn.Content(e.content)
			}
			if tn := child.ChildByFieldName("type"); tn != nil {
				p.Type = tn.Content(e.content)
			}
			params = append(params, p)
		case "default_parameter", "typed_default_parameter":
			p := types.Parameter{}
			if nn := child.ChildByFieldName("name"); nn != nil {
				p.Name = nn.Content(e.content)
			}
			if tn := child.ChildByFieldName("type"); tn != nil {
				p.Type = tn.Content(e.content)
			}
			if dn := child.ChildByFieldName("value"); dn != nil {
				p.Default = dn.Content(e.content)
			}
			params = append(params, p)
		case "list_splat_pattern", "dictionary_splat_pattern":
			params = append(params, types.Parameter{Name: strings.TrimSpace(child.Content(e.content))})
		}
	}

	return params
}

// returnType extracts the annotated return type, if any
func (e *pyExtractor) returnType(node *sitter.Node) string {
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		return rt.Content(e.content)
	}
	return ""
}

func (e *pyExtractor) span(node *sitter.Node) types.SourceSpan {
	return types.SourceSpan{
		File:      e.relPath,
		StartLine: int(node.StartPoint().Row) + 1,
		StartCol:  int(node.StartPoint().Column) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		EndCol:    int(node.EndPoint().Column) + 1,
	}
}
