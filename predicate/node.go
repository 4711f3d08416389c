// Package predicate implements the recursive condition AST and its
// evaluator: a predicate node is a tagged variant matched exhaustively
// by Go type switch.
package predicate

import (
	"encoding/json"

	"github.com/syssam/quillsql/qerr"
	"github.com/syssam/quillsql/render"
)

// Node is the sealed interface implemented by every predicate node
// kind. It cannot be implemented outside this package.
type Node interface {
	isNode()
}

// Where is a leaf condition.
type Where struct {
	Field          string          `json:"field"`
	Operator       string          `json:"operator"`
	Value          json.RawMessage `json:"value"`
	SecondaryValue json.RawMessage `json:"secondary_value,omitempty"`
	AggregateLHS   string          `json:"aggregate_lhs,omitempty"`
	Subquery       string          `json:"subquery,omitempty"`
	Alias          string          `json:"alias,omitempty"`
}

func (*Where) isNode() {}

// And is a non-empty ordered AND of children.
type And struct{ Children []Node }

func (*And) isNode() {}

// Or is a non-empty ordered OR of children.
type Or struct{ Children []Node }

func (*Or) isNode() {}

// Not wraps a single child with logical negation.
type Not struct{ Child Node }

func (*Not) isNode() {}

// Exists wraps a single child. Currently unimplemented — Evaluate
// always returns qerr.ErrUnsupportedNode for it.
type Exists struct{ Child Node }

func (*Exists) isNode() {}

// CustomMethodCall instantiates a registered CustomMethod template.
// "questionnaire" is an alias of "custom_method" on the wire and
// decodes to the same Go type.
type CustomMethodCall struct {
	TemplateID string                        `json:"template_id"`
	Parameters map[string]render.ParamValue  `json:"parameters"`
}

func (*CustomMethodCall) isNode() {}

// Decode parses data as a predicate node using the single-key-dict
// convention: each node is a JSON object with exactly one recognized
// key selecting the variant.
func Decode(data []byte) (Node, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, qerr.New(qerr.ErrBadValue, "", "predicate node is not a JSON object: %v", err)
	}
	if len(raw) != 1 {
		return nil, qerr.New(qerr.ErrMissingKey, "", "predicate node must have exactly one key, got %d", len(raw))
	}

	var key string
	var val json.RawMessage
	for k, v := range raw {
		key, val = k, v
	}

	switch key {
	case "where":
		return decodeWhere(val)
	case "and":
		return decodeAndOr(val, "and")
	case "or":
		return decodeAndOr(val, "or")
	case "not":
		child, err := decodeSingleChild(val, "not")
		if err != nil {
			return nil, err
		}
		return &Not{Child: child}, nil
	case "exists":
		child, err := decodeSingleChild(val, "exists")
		if err != nil {
			return nil, err
		}
		return &Exists{Child: child}, nil
	case "custom_method", "questionnaire":
		return decodeCustomMethod(val)
	default:
		return nil, qerr.New(qerr.ErrBadValue, "", "unrecognized predicate node key %q", key)
	}
}

func decodeWhere(val json.RawMessage) (Node, error) {
	var w Where
	if err := json.Unmarshal(val, &w); err != nil {
		return nil, qerr.New(qerr.ErrBadValue, "where", "malformed where leaf: %v", err)
	}
	if w.Field == "" || w.Operator == "" || len(w.Value) == 0 {
		return nil, qerr.New(qerr.ErrMissingKey, "where", "where leaf requires field, operator and value")
	}
	return &w, nil
}

func decodeChildren(val json.RawMessage) ([]Node, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(val, &raws); err != nil {
		return nil, qerr.New(qerr.ErrBadValue, "", "expected a JSON array of child nodes: %v", err)
	}
	children := make([]Node, 0, len(raws))
	for _, r := range raws {
		n, err := Decode(r)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return children, nil
}

func decodeAndOr(val json.RawMessage, key string) (Node, error) {
	children, err := decodeChildren(val)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, qerr.New(qerr.ErrMissingKey, key, "%q requires at least one child", key)
	}
	if key == "and" {
		return &And{Children: children}, nil
	}
	return &Or{Children: children}, nil
}

func decodeSingleChild(val json.RawMessage, key string) (Node, error) {
	children, err := decodeChildren(val)
	if err != nil {
		return nil, err
	}
	if len(children) != 1 {
		return nil, qerr.New(qerr.ErrMissingKey, key, "%q requires exactly one child, got %d", key, len(children))
	}
	return children[0], nil
}

func decodeCustomMethod(val json.RawMessage) (Node, error) {
	var cm CustomMethodCall
	if err := json.Unmarshal(val, &cm); err != nil {
		return nil, qerr.New(qerr.ErrBadValue, "custom_method", "malformed custom method call: %v", err)
	}
	if cm.TemplateID == "" {
		return nil, qerr.New(qerr.ErrMissingKey, "custom_method", "custom method call requires template_id")
	}
	return &cm, nil
}
