package evaluator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"lox/internal/ast"
	"lox/internal/diag"
	"lox/internal/object"
	"lox/internal/token"
)

// RuntimeError aborts the current run. Token locates the failure for the diagnostic.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", e.Message, e.Token.Line)
}

func newError(tok token.Token, message string) *RuntimeError {
	return &RuntimeError{Token: tok, Message: message}
}

// breakSignal unwinds execution from a `break` to the While it belongs to.
type breakSignal struct {
	Loop int
}

func (b *breakSignal) Error() string {
	return fmt.Sprintf("break outside loop %d", b.Loop)
}

type Evaluator struct {
	env      *object.Environment
	out      io.Writer
	reporter diag.Reporter
}

// New returns an Evaluator whose global scope lives as long as the Evaluator, so
// successive Interpret calls see each other's top-level bindings.
func New(out io.Writer, reporter diag.Reporter) *Evaluator {
	if out == nil {
		out = io.Discard
	}
	if reporter == nil {
		reporter = diag.Discard
	}
	return &Evaluator{
		env:      object.NewEnvironment(),
		out:      out,
		reporter: reporter,
	}
}

// Environment exposes the evaluator's scopes, mostly for inspection in tests.
func (e *Evaluator) Environment() *object.Environment {
	return e.env
}

// Interpret executes statements in order. The first runtime error stops the run, is
// reported with the failing token's line and is returned.
func (e *Evaluator) Interpret(statements []ast.Stmt) error {
	for _, stmt := range statements {
		if err := e.execute(stmt); err != nil {
			var rtErr *RuntimeError
			if errors.As(err, &rtErr) {
				e.reporter.ReportRuntime(rtErr.Token.Line, rtErr.Message)
				slog.Debug("runtime error",
					slog.Int("line", rtErr.Token.Line),
					slog.String("message", rtErr.Message))
				return rtErr
			}
			var brk *breakSignal
			if errors.As(err, &brk) {
				// a break that escaped every loop means the parser let it through
				panic(fmt.Sprintf("unhandled control signal: %v", err))
			}
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}

func (e *Evaluator) execute(stmt ast.Stmt) error {
	switch stmt := stmt.(type) {
	case *ast.Expression:
		_, err := e.evaluate(stmt.Expression)
		return err

	case *ast.Print:
		val, err := e.evaluate(stmt.Expression)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(e.out, val.Inspect())
		return err

	case *ast.Var:
		val, err := e.evaluate(stmt.Initializer)
		if err != nil {
			return err
		}
		e.env.Define(stmt.Name.Lexeme, val)
		return nil

	case *ast.Block:
		return e.executeBlock(stmt.Statements)

	case *ast.If:
		condition, err := e.evaluate(stmt.Condition)
		if err != nil {
			return err
		}
		if object.IsTruthy(condition) {
			return e.execute(stmt.Then)
		}
		if stmt.Else != nil {
			return e.execute(stmt.Else)
		}
		return nil

	case *ast.While:
		return e.executeWhile(stmt)

	case *ast.Break:
		return &breakSignal{Loop: stmt.Loop}

	default:
		panic(fmt.Sprintf("unknown statement type %T", stmt))
	}
}

// executeBlock runs statements in a fresh scope. The scope is popped however the
// block exits: normally, on a runtime error, or on a break.
func (e *Evaluator) executeBlock(statements []ast.Stmt) error {
	e.env.Push()
	defer e.env.Pop()

	for _, stmt := range statements {
		if err := e.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) executeWhile(loop *ast.While) error {
	for {
		condition, err := e.evaluate(loop.Condition)
		if err != nil {
			return err
		}
		if !object.IsTruthy(condition) {
			return nil
		}

		if err := e.execute(loop.Body); err != nil {
			var brk *breakSignal
			if errors.As(err, &brk) && brk.Loop == loop.ID {
				return nil
			}
			return err
		}
	}
}

func (e *Evaluator) evaluate(expr ast.Expr) (object.Object, error) {
	switch expr := expr.(type) {
	case *ast.Literal:
		return expr.Value, nil

	case *ast.Grouping:
		return e.evaluate(expr.Expression)

	case *ast.Unknown:
		return object.BINDING_UNINITIALIZED, nil

	case *ast.Variable:
		val, err := e.env.Get(expr.Name.Lexeme)
		if err != nil {
			return nil, newError(expr.Name, err.Error())
		}
		return val, nil

	case *ast.Assign:
		val, err := e.evaluate(expr.Value)
		if err != nil {
			return nil, err
		}
		if err := e.env.Assign(expr.Name.Lexeme, val); err != nil {
			return nil, newError(expr.Name, err.Error())
		}
		return val, nil

	case *ast.Unary:
		right, err := e.evaluate(expr.Right)
		if err != nil {
			return nil, err
		}
		return e.evalUnaryExpression(expr.Operator, right)

	case *ast.Logical:
		return e.evalLogicalExpression(expr)

	case *ast.Ternary:
		clause, err := e.evaluate(expr.Clause)
		if err != nil {
			return nil, err
		}
		if object.IsTruthy(clause) {
			return e.evaluate(expr.Then)
		}
		return e.evaluate(expr.Else)

	case *ast.Binary:
		left, err := e.evaluate(expr.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.evaluate(expr.Right)
		if err != nil {
			return nil, err
		}
		return e.evalBinaryExpression(expr.Operator, left, right)

	default:
		panic(fmt.Sprintf("unknown expression type %T", expr))
	}
}

func (e *Evaluator) evalUnaryExpression(operator token.Token, right object.Object) (object.Object, error) {
	switch operator.Type {
	case token.BANG:
		return object.NativeBoolToBooleanObject(!object.IsTruthy(right)), nil
	case token.MINUS:
		num, ok := right.(*object.Number)
		if !ok {
			return nil, newError(operator, "Operand must be a number.")
		}
		return &object.Number{Value: -num.Value}, nil
	default:
		panic(fmt.Sprintf("unknown unary operator %s", operator.Lexeme))
	}
}

func (e *Evaluator) evalLogicalExpression(expr *ast.Logical) (object.Object, error) {
	left, err := e.evaluate(expr.Left)
	if err != nil {
		return nil, err
	}

	if expr.Operator.Type == token.OR {
		if object.IsTruthy(left) {
			return left, nil
		}
	} else if !object.IsTruthy(left) {
		return left, nil
	}

	return e.evaluate(expr.Right)
}

func (e *Evaluator) evalBinaryExpression(operator token.Token, left, right object.Object) (object.Object, error) {
	switch operator.Type {
	case token.COMMA:
		return right, nil
	case token.EQUAL_EQUAL:
		return object.NativeBoolToBooleanObject(object.Equal(left, right)), nil
	case token.BANG_EQUAL:
		return object.NativeBoolToBooleanObject(!object.Equal(left, right)), nil
	case token.PLUS:
		return e.evalPlusExpression(operator, left, right)
	}

	l, r, err := numberOperands(operator, left, right)
	if err != nil {
		return nil, err
	}

	switch operator.Type {
	case token.MINUS:
		return &object.Number{Value: l - r}, nil
	case token.STAR:
		return &object.Number{Value: l * r}, nil
	case token.SLASH:
		return &object.Number{Value: l / r}, nil
	case token.GREATER:
		return object.NativeBoolToBooleanObject(l > r), nil
	case token.GREATER_EQUAL:
		return object.NativeBoolToBooleanObject(l >= r), nil
	case token.LESS:
		return object.NativeBoolToBooleanObject(l < r), nil
	case token.LESS_EQUAL:
		return object.NativeBoolToBooleanObject(l <= r), nil
	default:
		panic(fmt.Sprintf("unknown binary operator %s", operator.Lexeme))
	}
}

func (e *Evaluator) evalPlusExpression(operator token.Token, left, right object.Object) (object.Object, error) {
	switch l := left.(type) {
	case *object.Number:
		if r, ok := right.(*object.Number); ok {
			return &object.Number{Value: l.Value + r.Value}, nil
		}
	case *object.String:
		if r, ok := right.(*object.String); ok {
			return &object.String{Value: l.Value + r.Value}, nil
		}
	}
	return nil, newError(operator, "Operands must be two numbers or two strings.")
}

func numberOperands(operator token.Token, left, right object.Object) (float64, float64, error) {
	l, lok := left.(*object.Number)
	r, rok := right.(*object.Number)
	if !lok || !rok {
		return 0, 0, newError(operator, "Operands must be numbers.")
	}
	return l.Value, r.Value, nil
}
