package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kuhumcst/DanNet-sub001/internal/prefix"
	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
	"github.com/kuhumcst/DanNet-sub001/internal/querysql"
	"github.com/kuhumcst/DanNet-sub001/internal/store"
)

// Executor runs validated queries against a read-only store handle.
//
// One Executor serves many concurrent queries; it holds no per-query state.
type Executor struct {
	store     *store.Store
	validator *Validator
	limits    Limits
	logger    *slog.Logger
}

// NewExecutor creates an executor over a read-only store handle.
//
// A writable handle is refused outright. The gateway's no-mutation
// guarantee rests on the handle rejecting writes at the SQLite level, and
// an executor on a writable handle would quietly lose that backstop.
func NewExecutor(s *store.Store, limits Limits, prefixes *prefix.Registry, logger *slog.Logger) (*Executor, error) {
	if !s.ReadOnly() {
		return nil, fmt.Errorf("gateway: executor requires a read-only store handle")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{
		store:     s,
		validator: NewValidator(limits, prefixes),
		limits:    limits,
		logger:    logger,
	}, nil
}

// Execute validates, bounds, and runs one untrusted query string.
//
// The whole execution happens inside a single scoped read transaction with
// a deadline; the transaction is released on every exit path and the
// returned Response is fully materialized before release. Errors are
// always QueryErrors: rejections keep their validation code, a deadline
// overrun maps to TIMEOUT, and any other failure maps to ENGINE_FAILURE.
func (e *Executor) Execute(ctx context.Context, text string) (*Response, error) {
	execID := uuid.Must(uuid.NewV7()).String()

	q, err := e.validator.Validate(text)
	if err != nil {
		e.logger.Info("query rejected",
			"execution_id", execID,
			"code", string(CodeOf(err)))
		return nil, err
	}

	if q.Kind == queryir.KindSelect {
		Bound(q, e.limits.MaxResults)
	}

	ctx, cancel := context.WithTimeout(ctx, e.limits.Timeout)
	defer cancel()

	start := time.Now()
	var result Result
	viewErr := e.store.View(ctx, func(tx *store.ReadTx) error {
		var err error
		switch q.Kind {
		case queryir.KindSelect:
			result, err = e.runSelect(ctx, tx, q)
		case queryir.KindAsk:
			result, err = e.runAsk(ctx, tx, q)
		case queryir.KindConstruct:
			result, err = e.runConstruct(ctx, tx, q)
		case queryir.KindDescribe:
			result, err = e.runDescribe(ctx, tx, q)
		default:
			err = fmt.Errorf("unexpected query form %s", q.Kind)
		}
		return err
	})
	elapsed := time.Since(start)

	if viewErr != nil {
		// The driver may surface a deadline as its own interrupt error;
		// the context is the authority on whether time ran out.
		if errors.Is(viewErr, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			e.logger.Warn("query timed out",
				"execution_id", execID,
				"elapsed", elapsed)
			return nil, NewTimeoutError(viewErr)
		}
		e.logger.Error("query failed",
			"execution_id", execID,
			"error", viewErr)
		return nil, NewEngineFailureError(viewErr)
	}

	e.logger.Info("query executed",
		"execution_id", execID,
		"form", q.Kind.String(),
		"elapsed", elapsed)
	return &Response{ExecutionID: execID, Result: result, Elapsed: elapsed}, nil
}

// scanDest builds scan destinations for a compiled binding query. A
// projection without variables still yields one row per solution; the
// compiled SELECT emits a constant "1" that needs a destination of its own.
func scanDest(cols []string) []any {
	if len(cols) == 0 {
		return []any{new(int)}
	}
	dest := make([]any, len(cols))
	for i := range cols {
		dest[i] = &cols[i]
	}
	return dest
}

// runSelect materializes every binding row before returning.
func (e *Executor) runSelect(ctx context.Context, tx *store.ReadTx, q *queryir.Query) (*SelectResult, error) {
	compiled, err := querysql.CompileSelect(q)
	if err != nil {
		return nil, fmt.Errorf("compile select: %w", err)
	}

	rows, err := tx.Query(ctx, compiled.SQL, compiled.Args...)
	if err != nil {
		return nil, fmt.Errorf("run select: %w", err)
	}
	defer rows.Close()

	result := &SelectResult{Vars: compiled.Vars, Rows: [][]queryir.Term{}}
	cols := make([]string, len(compiled.Vars)*4)
	dest := scanDest(cols)

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan binding row: %w", err)
		}
		row := make([]queryir.Term, len(compiled.Vars))
		for i := range compiled.Vars {
			row[i] = store.DecodeObject(cols[i*4], cols[i*4+1], cols[i*4+2], cols[i*4+3])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read binding rows: %w", err)
	}
	return result, nil
}

// runAsk probes for a single solution.
func (e *Executor) runAsk(ctx context.Context, tx *store.ReadTx, q *queryir.Query) (*AskResult, error) {
	compiled, err := querysql.CompileAsk(q.Where)
	if err != nil {
		return nil, fmt.Errorf("compile ask: %w", err)
	}

	rows, err := tx.Query(ctx, compiled.SQL, compiled.Args...)
	if err != nil {
		return nil, fmt.Errorf("run ask: %w", err)
	}
	defer rows.Close()

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read ask result: %w", err)
	}
	return &AskResult{Value: found}, nil
}

// runConstruct evaluates the WHERE pattern and instantiates the template
// once per solution. Triples are deduplicated in first-occurrence order
// and capped at the result maximum.
//
// A template triple referencing a variable the pattern never binds is
// dropped, matching SPARQL's treatment of incomplete instantiations.
// Blank nodes in the template are freshened per solution.
func (e *Executor) runConstruct(ctx context.Context, tx *store.ReadTx, q *queryir.Query) (*GraphResult, error) {
	patternVars := make(map[string]struct{})
	for _, v := range q.Where.Vars() {
		patternVars[v] = struct{}{}
	}

	var vars []string
	seen := make(map[string]struct{})
	for _, t := range q.Template {
		for _, term := range []queryir.Term{t.Subject, t.Predicate, t.Object} {
			if !term.IsVar() {
				continue
			}
			if _, inPattern := patternVars[term.Value]; !inPattern {
				continue
			}
			if _, dup := seen[term.Value]; dup {
				continue
			}
			seen[term.Value] = struct{}{}
			vars = append(vars, term.Value)
		}
	}

	// A declared LIMIT/OFFSET on a CONSTRUCT applies to the solutions of
	// the WHERE pattern, before template instantiation.
	compiled, err := querysql.CompileBindings(q.Where, vars, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("compile construct pattern: %w", err)
	}

	rows, err := tx.Query(ctx, compiled.SQL, compiled.Args...)
	if err != nil {
		return nil, fmt.Errorf("run construct pattern: %w", err)
	}
	defer rows.Close()

	result := &GraphResult{Form: queryir.KindConstruct, Triples: []store.Triple{}}
	emitted := make(map[string]struct{})
	cols := make([]string, len(vars)*4)
	dest := scanDest(cols)

	solution := 0
	for rows.Next() && int64(len(result.Triples)) < e.limits.MaxResults {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan construct binding: %w", err)
		}
		binding := make(map[string]queryir.Term, len(vars))
		for i, v := range vars {
			binding[v] = store.DecodeObject(cols[i*4], cols[i*4+1], cols[i*4+2], cols[i*4+3])
		}

		for _, tmpl := range q.Template {
			triple, ok := instantiate(tmpl, binding, solution)
			if !ok {
				continue
			}
			key := triple.String()
			if _, dup := emitted[key]; dup {
				continue
			}
			emitted[key] = struct{}{}
			result.Triples = append(result.Triples, triple)
			if int64(len(result.Triples)) >= e.limits.MaxResults {
				break
			}
		}
		solution++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read construct bindings: %w", err)
	}
	return result, nil
}

// instantiate substitutes one solution into a template triple. The second
// return value is false when a variable is unbound or the substitution
// yields an invalid triple (a literal subject or a non-IRI predicate).
func instantiate(tmpl queryir.TriplePattern, binding map[string]queryir.Term, solution int) (store.Triple, bool) {
	resolve := func(term queryir.Term) (queryir.Term, bool) {
		switch term.Type {
		case queryir.TermVar:
			bound, ok := binding[term.Value]
			return bound, ok
		case queryir.TermBlank:
			return queryir.Blank(fmt.Sprintf("%s_s%d", term.Value, solution)), true
		default:
			return term, true
		}
	}

	s, ok := resolve(tmpl.Subject)
	if !ok || s.Type == queryir.TermLiteral {
		return store.Triple{}, false
	}
	p, ok := resolve(tmpl.Predicate)
	if !ok || p.Type != queryir.TermIRI {
		return store.Triple{}, false
	}
	o, ok := resolve(tmpl.Object)
	if !ok {
		return store.Triple{}, false
	}
	return store.Triple{Subject: s, Predicate: p, Object: o}, true
}

// runDescribe resolves the target resources and returns every triple in
// which a target occurs as subject or non-literal object, deduplicated and
// capped at the result maximum.
func (e *Executor) runDescribe(ctx context.Context, tx *store.ReadTx, q *queryir.Query) (*GraphResult, error) {
	resources, err := e.describeTargets(ctx, tx, q)
	if err != nil {
		return nil, err
	}

	result := &GraphResult{Form: queryir.KindDescribe, Triples: []store.Triple{}}
	emitted := make(map[string]struct{})

	for _, resource := range resources {
		if int64(len(result.Triples)) >= e.limits.MaxResults {
			break
		}
		if err := e.describeOne(ctx, tx, resource, emitted, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// describeTargets resolves the DESCRIBE clause to concrete resource
// values: IRI targets directly, variable targets by evaluating the WHERE
// pattern. Literals bound to a variable target are not resources and are
// skipped, as are variables the pattern never binds.
func (e *Executor) describeTargets(ctx context.Context, tx *store.ReadTx, q *queryir.Query) ([]string, error) {
	patternVars := make(map[string]struct{})
	for _, v := range q.Where.Vars() {
		patternVars[v] = struct{}{}
	}

	var resources []string
	seen := make(map[string]struct{})
	add := func(value string) {
		if _, dup := seen[value]; dup {
			return
		}
		seen[value] = struct{}{}
		resources = append(resources, value)
	}

	for _, target := range q.Describe {
		switch target.Type {
		case queryir.TermIRI:
			add(target.Value)

		case queryir.TermVar:
			if _, ok := patternVars[target.Value]; !ok {
				continue
			}
			// A declared LIMIT on a DESCRIBE bounds the solutions the
			// variable binds to; the gateway cap still applies on top.
			max := e.limits.MaxResults
			if declared, ok := q.DeclaredLimit(); ok && declared < max {
				max = declared
			}
			compiled, err := querysql.CompileBindings(q.Where, []string{target.Value}, &max, q.Offset)
			if err != nil {
				return nil, fmt.Errorf("compile describe pattern: %w", err)
			}
			rows, err := tx.Query(ctx, compiled.SQL, compiled.Args...)
			if err != nil {
				return nil, fmt.Errorf("run describe pattern: %w", err)
			}
			var tType, val, lang, dt string
			for rows.Next() {
				if err := rows.Scan(&tType, &val, &lang, &dt); err != nil {
					rows.Close()
					return nil, fmt.Errorf("scan describe binding: %w", err)
				}
				if tType != "literal" {
					add(val)
				}
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return nil, fmt.Errorf("read describe bindings: %w", err)
			}
			rows.Close()
		}
	}
	return resources, nil
}

// describeOne appends the triples around one resource value. The value is
// already column-encoded ("_:" sigil included for blank nodes).
func (e *Executor) describeOne(ctx context.Context, tx *store.ReadTx, resource string, emitted map[string]struct{}, result *GraphResult) error {
	rows, err := tx.Query(ctx, querysql.DescribeResourceSQL(), resource, resource)
	if err != nil {
		return fmt.Errorf("describe %s: %w", resource, err)
	}
	defer rows.Close()

	var s, p, oType, o, lang, dt string
	for rows.Next() && int64(len(result.Triples)) < e.limits.MaxResults {
		if err := rows.Scan(&s, &p, &oType, &o, &lang, &dt); err != nil {
			return fmt.Errorf("scan described triple: %w", err)
		}
		triple := store.Triple{
			Subject:   store.DecodeSubject(s),
			Predicate: queryir.IRI(p),
			Object:    store.DecodeObject(oType, o, lang, dt),
		}
		key := triple.String()
		if _, dup := emitted[key]; dup {
			continue
		}
		emitted[key] = struct{}{}
		result.Triples = append(result.Triples, triple)
	}
	return rows.Err()
}
