package quillsql

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/syssam/quillsql/joinplan"
	"github.com/syssam/quillsql/predicate"
	"github.com/syssam/quillsql/qerr"
	"github.com/syssam/quillsql/render"
	"github.com/syssam/quillsql/schema"
	"github.com/syssam/quillsql/subquery"
)

// Compiler wraps an immutable *schema.Registry and exposes the
// compilation entry point. It is a value a caller constructs once and
// shares across any number of concurrent Compile calls.
type Compiler struct {
	registry *schema.Registry
	logger   *slog.Logger

	strictVariables bool
	slowThreshold   time.Duration
	stats           *CompileStats
}

// Option configures a Compiler at construction.
type Option func(*Compiler) error

// WithLogger overrides the Compiler's diagnostic logger (default
// slog.Default()). The logger is used only for the slow-compile
// warning recorded through WithStats; it is never on the path that
// decides compilation correctness.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) error {
		if l == nil {
			return qerr.New(qerr.ErrBadValue, "", "WithLogger: logger must not be nil")
		}
		c.logger = l
		return nil
	}
}

// WithStrictVariables makes Compile fail with ErrUnknownVariable when
// a VARIABLE_TEMPLATE placeholder survives Options.AliasParams
// substitution. Off by default: a downstream post-processor may
// resolve {keyword} placeholders later.
func WithStrictVariables(strict bool) Option {
	return func(c *Compiler) error {
		c.strictVariables = strict
		return nil
	}
}

// WithSlowCompileThreshold sets the duration WithStats logging treats
// as a slow compile. Default 50ms.
func WithSlowCompileThreshold(d time.Duration) Option {
	return func(c *Compiler) error {
		c.slowThreshold = d
		return nil
	}
}

// WithStats attaches a CompileStats that every Compile call records
// into.
func WithStats(stats *CompileStats) Option {
	return func(c *Compiler) error {
		c.stats = stats
		return nil
	}
}

// New builds a Compiler around reg. reg must already be validated
// (schema.NewRegistry does this at construction); New itself performs
// no further validation, only applies opts.
func New(reg *schema.Registry, opts ...Option) (*Compiler, error) {
	c := &Compiler{
		registry:      reg,
		logger:        slog.Default(),
		slowThreshold: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// variablePlaceholderRe matches a surviving {keyword} placeholder
// after alias-param substitution.
var variablePlaceholderRe = regexp.MustCompile(`\{(\w+)\}`)

// Compile assembles SELECT <select> FROM <base> <subquery-joins>
// <left-joins> WHERE <where> <group-by>.
func (c *Compiler) Compile(req Request, baseTable string, opts Options) (sql string, err error) {
	start := time.Now()
	defer func() {
		if c.stats != nil {
			c.stats.record(time.Since(start), c.slowThreshold, err, c.logger)
		}
	}()

	sql, err = c.compile(req, baseTable, opts)
	return sql, err
}

func (c *Compiler) compile(req Request, baseTable string, opts Options) (string, error) {
	if len(req.WhereData) == 0 {
		return "", qerr.New(qerr.ErrMissingKey, "where_data", "request requires where_data")
	}

	ctx := predicate.NewContext(c.registry)

	for _, id := range req.Fields {
		f, err := c.registry.Field(id)
		if err != nil {
			return "", err
		}
		ctx.Touch(f.Table)
	}

	whereNode, err := predicate.Decode(req.WhereData)
	if err != nil {
		return "", err
	}
	whereFrag, err := predicate.Evaluate(ctx, whereNode)
	if err != nil {
		return "", err
	}

	subqueryJoins, subqueryAliases, err := c.composeSubqueries(ctx, req, baseTable)
	if err != nil {
		return "", err
	}

	selectSQL, err := c.buildSelect(ctx, baseTable, opts.SelectFields)
	if err != nil {
		return "", err
	}

	groupBySQL, grouped, err := c.buildGroupBy(ctx, req.GroupByFields)
	if err != nil {
		return "", err
	}

	if len(req.Having) > 0 {
		ctx.Mode = predicate.ModeHaving
		ctx.Grouped = grouped
		havingNode, err := predicate.Decode(req.Having)
		if err != nil {
			return "", err
		}
		havingFrag, err := predicate.Evaluate(ctx, havingNode)
		if err != nil {
			return "", err
		}
		groupBySQL += " HAVING " + havingFrag
	}

	referenced := excludeAliases(ctx.TouchedTables(), subqueryAliases)
	edges, err := joinplan.Plan(baseTable, referenced, c.registry.Paths(), req.PathHints)
	if err != nil {
		return "", err
	}

	var joinParts []string
	joinParts = append(joinParts, subqueryJoins...)
	for _, e := range edges {
		joinParts = append(joinParts, e.Fragment)
	}
	joinsSQL := strings.Join(joinParts, " ")

	whereSQL := whereFrag
	if opts.AdditionalWhereClause != "" {
		whereSQL = whereFrag + " " + opts.AdditionalWhereClause
	}

	out := fmt.Sprintf("SELECT %s FROM %s %s WHERE %s %s", selectSQL, baseTable, joinsSQL, whereSQL, groupBySQL)

	out, err = substituteAliasParams(out, opts.AliasParams)
	if err != nil {
		return "", err
	}
	if c.strictVariables {
		if m := variablePlaceholderRe.FindString(out); m != "" {
			return "", qerr.New(qerr.ErrUnknownVariable, "", "unresolved variable template placeholder %s", m)
		}
	}

	return out, nil
}

// compileNested implements subquery.NestedCompiler: a non-SQL
// subquery's Tree is itself a full nested Request, compiled
// recursively against the same base_table.
func (c *Compiler) compileNested(tree json.RawMessage, baseTable string) (string, error) {
	var nested Request
	if err := json.Unmarshal(tree, &nested); err != nil {
		return "", qerr.New(qerr.ErrBadValue, "", "malformed nested subquery request: %v", err)
	}
	return c.compile(nested, baseTable, Options{})
}

func (c *Compiler) composeSubqueries(ctx *predicate.Context, req Request, baseTable string) ([]string, map[string]bool, error) {
	joins := make([]string, 0, len(req.SubQueries))
	aliases := map[string]bool{}
	for _, ref := range req.SubQueries {
		ref = subquery.EnsureAlias(ref)
		aliases[ref.Alias] = true
		join, err := subquery.Compose(ctx, c.compileNested, baseTable, ref)
		if err != nil {
			return nil, nil, err
		}
		joins = append(joins, join)
	}
	return joins, aliases, nil
}

func (c *Compiler) buildSelect(ctx *predicate.Context, baseTable string, fields []SelectField) (string, error) {
	if len(fields) == 0 {
		base := schema.Field{ID: "id", Table: baseTable, Column: "id", Type: schema.TypeInteger}
		ctx.Touch(baseTable)
		return fmt.Sprintf("COUNT(DISTINCT %s)", base.Qualified()), nil
	}

	parts := make([]string, len(fields))
	for i, sf := range fields {
		col, err := c.resolveSelectField(ctx, baseTable, sf)
		if err != nil {
			return "", err
		}
		parts[i] = col
	}
	return strings.Join(parts, ", "), nil
}

func (c *Compiler) resolveSelectField(ctx *predicate.Context, baseTable string, sf SelectField) (string, error) {
	var f schema.Field
	if sf.FieldID == "member_id" {
		f = schema.Field{ID: "member_id", Table: baseTable, Column: "id", Type: schema.TypeInteger}
	} else {
		var err error
		f, err = c.registry.Field(sf.FieldID)
		if err != nil {
			return "", err
		}
	}
	ctx.Touch(f.Table)

	col, err := render.Column(f, sf.Aggregate)
	if err != nil {
		return "", err
	}
	alias := sf.Alias
	if alias == "" {
		alias = f.ID
	}
	return col + " AS " + alias, nil
}

func (c *Compiler) buildGroupBy(ctx *predicate.Context, fieldIDs []string) (string, map[string]bool, error) {
	if len(fieldIDs) == 0 {
		return "", nil, nil
	}
	cols := make([]string, len(fieldIDs))
	grouped := make(map[string]bool, len(fieldIDs))
	for i, id := range fieldIDs {
		f, err := c.registry.Field(id)
		if err != nil {
			return "", nil, err
		}
		ctx.Touch(f.Table)
		cols[i] = f.Qualified()
		grouped[f.Qualified()] = true
	}
	return "GROUP BY " + strings.Join(cols, ", "), grouped, nil
}

func excludeAliases(tables []string, aliases map[string]bool) []string {
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		if aliases[t] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// substituteAliasParams replaces {keyword} placeholders left by
// render.Dynamic's VARIABLE_TEMPLATE handling with the caller-supplied
// value, escaping it first regardless of the surrounding quotes the
// placeholder was originally wrapped in.
func substituteAliasParams(sql string, aliasParams map[string]render.ParamValue) (string, error) {
	for keyword, pv := range aliasParams {
		s, err := scalarAliasValue(pv.Value)
		if err != nil {
			return "", err
		}
		sql = strings.ReplaceAll(sql, "{"+keyword+"}", render.Escape(s))
	}
	return sql, nil
}

func scalarAliasValue(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return "TRUE", nil
		}
		return "FALSE", nil
	}
	return "", qerr.New(qerr.ErrBadValue, "", "alias param value %s is not a scalar", raw)
}
