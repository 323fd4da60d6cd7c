package analyzer

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/ladoc-dev/ladoc/pkg/types"
)

// GoAnalyzer extracts symbols from Go source via go/ast
type GoAnalyzer struct{}

// NewGoAnalyzer creates a Go analyzer
func NewGoAnalyzer() *GoAnalyzer {
	return &GoAnalyzer{}
}

// Language implements Analyzer
func (a *GoAnalyzer) Language() string { return "go" }

// Extensions implements Analyzer
func (a *GoAnalyzer) Extensions() []string { return []string{".go"} }

// Analyze implements Analyzer. Functions map to KindFunction, methods
// to KindMethod, and struct/interface type declarations to KindClass.
func (a *GoAnalyzer) Analyze(relPath string, content []byte) (*types.FileModel, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, relPath, content, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrAnalysis, err)
	}

	lines := strings.Split(string(content), "\n")
	ex := &goExtractor{fset: fset, relPath: relPath, lines: lines}
	ast.Inspect(file, ex.visit)

	return &types.FileModel{
		Path:     relPath,
		Language: a.Language(),
		Symbols:  ex.symbols,
	}, nil
}

// goExtractor walks the AST collecting symbol records
type goExtractor struct {
	fset    *token.FileSet
	relPath string
	lines   []string
	symbols []types.SymbolRecord
}

func (e *goExtractor) visit(node ast.Node) bool {
	if node == nil {
		return false
	}

	switch n := node.(type) {
	case *ast.FuncDecl:
		e.extractFunc(n)
	case *ast.GenDecl:
		for _, spec := range n.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				e.extractType(ts)
			}
		}
	}
	return true
}

func (e *goExtractor) extractFunc(decl *ast.FuncDecl) {
	sym := types.SymbolRecord{
		Name: decl.Name.Name,
		Kind: types.KindFunction,
		Span: e.span(decl.Pos(), decl.End()),
	}

	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		sym.Kind = types.KindMethod
		sym.Receiver = receiverName(decl.Recv.List[0].Type)
	}

	if decl.Type.Params != nil {
		sym.Signature = e.parameters(decl.Type.Params)
	} else {
		sym.Signature = []types.Parameter{}
	}
	sym.ReturnType = e.results(decl.Type.Results)
	sym.Snippet = e.snippet(sym.Span)

	e.symbols = append(e.symbols, sym)
}

func (e *goExtractor) extractType(ts *ast.TypeSpec) {
	switch ts.Type.(type) {
	case *ast.StructType, *ast.InterfaceType:
	default:
		return
	}

	sym := types.SymbolRecord{
		Name:      ts.Name.Name,
		Kind:      types.KindClass,
		Signature: []types.Parameter{},
		Span:      e.span(ts.Pos(), ts.End()),
	}
	sym.Snippet = e.snippet(sym.Span)

	e.symbols = append(e.symbols, sym)
}

// parameters flattens a field list into the ordered parameter list
func (e *goExtractor) parameters(fields *ast.FieldList) []types.Parameter {
	params := make([]types.Parameter, 0, fields.NumFields())
	for _, field := range fields.List {
		typeStr := exprString(field.Type)
		if len(field.Names) == 0 {
			params = append(params, types.Parameter{Type: typeStr})
			continue
		}
		for _, name := range field.Names {
			params = append(params, types.Parameter{Name: name.Name, Type: typeStr})
		}
	}
	return params
}

// results renders the return type list as a single string
func (e *goExtractor) results(fields *ast.FieldList) string {
	if fields == nil || fields.NumFields() == 0 {
		return ""
	}

	parts := make([]string, 0, fields.NumFields())
	for _, field := range fields.List {
		typeStr := exprString(field.Type)
		n := len(field.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			parts = append(parts, typeStr)
		}
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// span converts token positions to a SourceSpan
func (e *goExtractor) span(start, end token.Pos) types.SourceSpan {
	s := e.fset.Position(start)
	ed := e.fset.Position(end)
	return types.SourceSpan{
		File:      e.relPath,
		StartLine: s.Line,
		StartCol:  s.Column,
		EndLine:   ed.Line,
		EndCol:    ed.Column,
	}
}

// snippet extracts the raw source for a span by line range
func (e *goExtractor) snippet(span types.SourceSpan) string {
	start := span.StartLine - 1
	end := span.EndLine
	if start < 0 || start >= len(e.lines) {
		return ""
	}
	if end > len(e.lines) {
		end = len(e.lines)
	}
	return strings.Join(e.lines[start:end], "\n")
}

// receiverName extracts the receiver type name from a method
func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	}
	return ""
}

// exprString renders a type expression
func exprString(expr ast.Expr) string {
	if expr == nil {
		return ""
	}

	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + exprString(t.X)
	case *ast.ArrayType:
		return "[]" + exprString(t.Elt)
	case *ast.MapType:
		return fmt.Sprintf("map[%s]%s", exprString(t.Key), exprString(t.Value))
	case *ast.ChanType:
		return "chan " + exprString(t.Value)
	case *ast.FuncType:
		return "func(...)"
	case *ast.InterfaceType:
		return "interface{}"
	case *ast.SelectorExpr:
		return exprString(t.X) + "." + t.Sel.Name
	case *ast.Ellipsis:
		return "..." + exprString(t.Elt)
	case *ast.IndexExpr:
		return exprString(t.X) + "[" + exprString(t.Index) + "]"
	default:
		return "..."
	}
}
