package predicate

import (
	"strings"

	"github.com/syssam/quillsql/qerr"
	"github.com/syssam/quillsql/render"
)

// Evaluate recursively converts node into a SQL fragment, dispatching
// by Go type switch on the sealed Node interface.
func Evaluate(ctx *Context, node Node) (string, error) {
	switch n := node.(type) {
	case *Where:
		return evaluateWhere(ctx, n)
	case *And:
		return evaluateFold(ctx, "and", n.Children)
	case *Or:
		return evaluateFold(ctx, "or", n.Children)
	case *Not:
		return evaluateNot(ctx, n.Child)
	case *Exists:
		return "", qerr.New(qerr.ErrUnsupportedNode, "exists", "exists nodes have no compiled behavior")
	case *CustomMethodCall:
		return evaluateCustomMethod(ctx, n)
	default:
		return "", qerr.New(qerr.ErrBadValue, "", "unknown predicate node type %T", node)
	}
}

func evaluateFold(ctx *Context, joiner string, children []Node) (string, error) {
	parts := make([]string, len(children))
	for i, child := range children {
		frag, err := Evaluate(ctx, child)
		if err != nil {
			return "", err
		}
		parts[i] = "(" + frag + ")"
	}
	sep := " " + joiner + " "
	return "(" + strings.Join(parts, sep) + ")", nil
}

func evaluateNot(ctx *Context, child Node) (string, error) {
	frag, err := Evaluate(ctx, child)
	if err != nil {
		return "", err
	}
	return "not (" + frag + ")", nil
}

func evaluateCustomMethod(ctx *Context, cm *CustomMethodCall) (string, error) {
	method, err := ctx.Registry.CustomMethod(cm.TemplateID)
	if err != nil {
		return "", err
	}
	sql, touched, err := render.Bind(method.Template, method.Params, cm.Parameters, ctx.Registry)
	if err != nil {
		return "", err
	}
	for _, table := range touched {
		ctx.Touch(table)
	}
	return sql, nil
}
