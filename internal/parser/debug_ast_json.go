package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"

	"lox/internal/ast"
	"lox/internal/object"
)

// WalkAST recursively traverses an AST and serializes it into a machine-centric map structure.
// This output is designed for stability, canonical representation, and tool-chain consumption.
func WalkAST(node ast.Node) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	switch n := node.(type) {
	case *ast.Var:
		return map[string]interface{}{
			"type":        "Var",
			"line":        n.Name.Line,
			"name":        n.Name.Lexeme,
			"initializer": WalkAST(n.Initializer),
		}

	case *ast.Print:
		return map[string]interface{}{
			"type":       "Print",
			"line":       n.Keyword.Line,
			"expression": WalkAST(n.Expression),
		}

	case *ast.Expression:
		return map[string]interface{}{
			"type":       "Expression",
			"expression": WalkAST(n.Expression),
		}

	case *ast.Block:
		return map[string]interface{}{
			"type":       "Block",
			"statements": walkStatements(n.Statements),
		}

	case *ast.If:
		return map[string]interface{}{
			"type":      "If",
			"condition": WalkAST(n.Condition),
			"then":      WalkAST(n.Then),
			"else":      WalkAST(n.Else),
		}

	case *ast.While:
		return map[string]interface{}{
			"type":      "While",
			"id":        n.ID,
			"condition": WalkAST(n.Condition),
			"body":      WalkAST(n.Body),
		}

	case *ast.Break:
		return map[string]interface{}{
			"type": "Break",
			"line": n.Keyword.Line,
			"loop": n.Loop,
		}

	case *ast.Binary:
		return map[string]interface{}{
			"type":     "Binary",
			"operator": n.Operator.Lexeme,
			"line":     n.Operator.Line,
			"left":     WalkAST(n.Left),
			"right":    WalkAST(n.Right),
		}

	case *ast.Logical:
		return map[string]interface{}{
			"type":     "Logical",
			"operator": n.Operator.Lexeme,
			"line":     n.Operator.Line,
			"left":     WalkAST(n.Left),
			"right":    WalkAST(n.Right),
		}

	case *ast.Unary:
		return map[string]interface{}{
			"type":     "Unary",
			"operator": n.Operator.Lexeme,
			"line":     n.Operator.Line,
			"right":    WalkAST(n.Right),
		}

	case *ast.Grouping:
		return map[string]interface{}{
			"type":       "Grouping",
			"expression": WalkAST(n.Expression),
		}

	case *ast.Ternary:
		return map[string]interface{}{
			"type":   "Ternary",
			"line":   n.Token.Line,
			"clause": WalkAST(n.Clause),
			"then":   WalkAST(n.Then),
			"else":   WalkAST(n.Else),
		}

	case *ast.Variable:
		return map[string]interface{}{
			"type": "Variable",
			"name": n.Name.Lexeme,
			"line": n.Name.Line,
		}

	case *ast.Assign:
		return map[string]interface{}{
			"type":  "Assign",
			"name":  n.Name.Lexeme,
			"line":  n.Name.Line,
			"value": WalkAST(n.Value),
		}

	case *ast.Literal:
		return map[string]interface{}{
			"type":      "Literal",
			"valueType": string(n.Value.Type()),
			"value":     literalValue(n.Value),
		}

	case *ast.Unknown:
		return map[string]interface{}{
			"type": "Unknown",
		}

	default:
		return map[string]interface{}{
			"type": fmt.Sprintf("%T", node),
		}
	}
}

func walkStatements(statements []ast.Stmt) []interface{} {
	result := make([]interface{}, len(statements))
	for i, s := range statements {
		result[i] = WalkAST(s)
	}
	return result
}

func literalValue(obj object.Object) interface{} {
	switch v := obj.(type) {
	case *object.Boolean:
		return v.Value
	case *object.Number:
		// encoding/json rejects NaN and infinities
		if math.IsInf(v.Value, 0) || math.IsNaN(v.Value) {
			return object.FormatNumber(v.Value)
		}
		return v.Value
	case *object.String:
		return v.Value
	default:
		return nil
	}
}

func RenderASTAsJSON(statements []ast.Stmt) (string, error) {
	buf := new(bytes.Buffer)
	if err := encodeAST(buf, statements); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteASTToJSON writes the program's AST to a JSON file.
func WriteASTToJSON(statements []ast.Stmt, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	return encodeAST(file, statements)
}

func encodeAST(w io.Writer, statements []ast.Stmt) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")  // Pretty-print the JSON
	encoder.SetEscapeHTML(false) // Disable escaping of characters like <, >, &

	program := map[string]interface{}{
		"type":       "Program",
		"statements": walkStatements(statements),
	}
	if err := encoder.Encode(program); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
