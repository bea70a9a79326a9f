package parser

import (
	"fmt"
	"reflect"
	"strings"

	"lox/internal/ast"
)

// RenderProgramAsText renders every top-level statement on its own line(s).
func RenderProgramAsText(statements []ast.Stmt) string {
	var sb strings.Builder
	for i, s := range statements {
		if i > 0 {
			sb.WriteString("\n")
		}
		// Root level statements start at indent 0
		sb.WriteString(RenderASTAsText(s, 0))
	}
	return sb.String()
}

// RenderASTAsText produces a human-centric, indented, source-like representation of the AST.
// Expressions are fully parenthesized, which makes it useful for debugging precedence.
func RenderASTAsText(node ast.Node, indent int) string {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return "nil"
	}

	sp := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *ast.Var:
		if _, ok := n.Initializer.(*ast.Unknown); ok {
			return fmt.Sprintf("%svar %s", sp, n.Name.Lexeme)
		}
		return fmt.Sprintf("%svar %s = %s", sp, n.Name.Lexeme, RenderASTAsText(n.Initializer, 0))

	case *ast.Print:
		return fmt.Sprintf("%sprint %s", sp, RenderASTAsText(n.Expression, 0))

	case *ast.Expression:
		// The statement handles the line's starting indentation
		return sp + RenderASTAsText(n.Expression, 0)

	case *ast.Block:
		var sb strings.Builder
		sb.WriteString(sp + "{\n")
		for _, s := range n.Statements {
			// Statements inside the block are indented +1
			sb.WriteString(RenderASTAsText(s, indent+1))
			sb.WriteString("\n")
		}
		// The closing brace aligns with the parent's indent
		sb.WriteString(sp + "}")
		return sb.String()

	case *ast.If:
		var sb strings.Builder
		fmt.Fprintf(&sb, "%sif %s\n", sp, RenderASTAsText(n.Condition, 0))
		sb.WriteString(RenderASTAsText(n.Then, indent+1))
		if n.Else != nil {
			fmt.Fprintf(&sb, "\n%selse\n", sp)
			sb.WriteString(RenderASTAsText(n.Else, indent+1))
		}
		return sb.String()

	case *ast.While:
		return fmt.Sprintf("%swhile#%d %s\n%s", sp, n.ID, RenderASTAsText(n.Condition, 0), RenderASTAsText(n.Body, indent+1))

	case *ast.Break:
		return fmt.Sprintf("%sbreak#%d", sp, n.Loop)

	case *ast.Binary:
		return fmt.Sprintf("(%s %s %s)", RenderASTAsText(n.Left, 0), n.Operator.Lexeme, RenderASTAsText(n.Right, 0))

	case *ast.Logical:
		return fmt.Sprintf("(%s %s %s)", RenderASTAsText(n.Left, 0), n.Operator.Lexeme, RenderASTAsText(n.Right, 0))

	case *ast.Unary:
		return fmt.Sprintf("(%s%s)", n.Operator.Lexeme, RenderASTAsText(n.Right, 0))

	case *ast.Grouping:
		return fmt.Sprintf("(group %s)", RenderASTAsText(n.Expression, 0))

	case *ast.Ternary:
		return fmt.Sprintf("(%s ? %s : %s)", RenderASTAsText(n.Clause, 0), RenderASTAsText(n.Then, 0), RenderASTAsText(n.Else, 0))

	case *ast.Assign:
		return fmt.Sprintf("(%s = %s)", n.Name.Lexeme, RenderASTAsText(n.Value, 0))

	case *ast.Variable, *ast.Literal, *ast.Unknown:
		return n.String()

	default:
		return fmt.Sprintf("<unknown node %T>", node)
	}
}
