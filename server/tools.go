// Package server exposes the compiler as JSON tool calls for agent
// frameworks, over plain function calls or HTTP.
package server

import (
	"encoding/json"
	"fmt"

	"github.com/njchilds90/symgen/deriv"
	"github.com/njchilds90/symgen/emit"
	"github.com/njchilds90/symgen/expr"
	"github.com/njchilds90/symgen/lower"
)

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func fail(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

// HandleToolCall executes one tool call. Errors are reported in the
// response, never returned.
func HandleToolCall(req ToolRequest) ToolResponse {
	// An expression is either a tagged JSON object or an infix string.
	getExpr := func(key string) (expr.Node, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		return toExpr(key, v)
	}
	getString := func(key, def string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			if def != "" {
				return def, nil
			}
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getBool := func(key string) bool {
		b, _ := req.Params[key].(bool)
		return b
	}
	getSymbols := func(key string) ([]*expr.Symbol, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]*expr.Symbol, len(raw))
		for i, r := range raw {
			s, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be string", key, i)
			}
			result[i] = expr.Sym(s)
		}
		return result, nil
	}
	getExprList := func(key string) ([]expr.Node, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]expr.Node, len(raw))
		for i, r := range raw {
			n, err := toExpr(fmt.Sprintf("%s[%d]", key, i), r)
			if err != nil {
				return nil, err
			}
			result[i] = n
		}
		return result, nil
	}
	getMatrix := func(key string) (*expr.Matrix, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be matrix object", key)
		}
		return expr.MatrixFromJSON(raw)
	}
	getDecl := func(key string) (emit.Declaration, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array of {name, dim}", key)
		}
		decl := make(emit.Declaration, len(raw))
		for i, r := range raw {
			m, ok := r.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be {name, dim}", key, i)
			}
			name, _ := m["name"].(string)
			dim, ok := m["dim"].(float64)
			if !ok || dim != float64(int(dim)) {
				return nil, fmt.Errorf("param %s[%d].dim must be an integer", key, i)
			}
			decl[i] = emit.Group{Name: name, Dim: int(dim)}
		}
		return decl, nil
	}
	getDialect := func() (*lower.Dialect, error) {
		name, err := getString("dialect", lower.Eigen.Name)
		if err != nil {
			return nil, err
		}
		d, ok := lower.DialectByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown dialect %q", name)
		}
		return d, nil
	}
	respond := func(n expr.Node) ToolResponse {
		enc, err := expr.Encode(n)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: enc, String: n.String()}
	}
	respondMatrix := func(m *expr.Matrix) ToolResponse {
		enc, err := expr.EncodeMatrix(m)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: enc, String: m.String()}
	}

	switch req.Tool {
	case "parse":
		src, err := getString("source", "")
		if err != nil {
			return fail(err)
		}
		n, err := expr.Parse(src)
		if err != nil {
			return fail(err)
		}
		return respond(n)

	case "simplify":
		n, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(deriv.Simplify(n))

	case "lower":
		n, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		d, err := getDialect()
		if err != nil {
			return fail(err)
		}
		text, err := lower.New(d, lower.Permissive(getBool("permissive"))).Lower(n)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: text, String: text}

	case "emit":
		m, err := getMatrix("matrix")
		if err != nil {
			return fail(err)
		}
		decl, err := getDecl("vars")
		if err != nil {
			return fail(err)
		}
		name, err := getString("name", "")
		if err != nil {
			return fail(err)
		}
		d, err := getDialect()
		if err != nil {
			return fail(err)
		}
		pkg, err := getString("package", "generated")
		if err != nil {
			return fail(err)
		}
		p, err := emit.Emit(m, decl, name, emit.WithDialect(d), emit.WithPackage(pkg), emit.Permissive(getBool("permissive")))
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: procedureJSON(p), String: p.Body}

	case "jacobian":
		fs, err := getExprList("exprs")
		if err != nil {
			return fail(err)
		}
		vars, err := getSymbols("vars")
		if err != nil {
			return fail(err)
		}
		m, err := deriv.Jacobian(fs, vars)
		if err != nil {
			return fail(err)
		}
		return respondMatrix(m)

	case "hessian":
		f, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		a, err := getSymbols("vars")
		if err != nil {
			return fail(err)
		}
		b := a
		if _, ok := req.Params["vars2"]; ok {
			if b, err = getSymbols("vars2"); err != nil {
				return fail(err)
			}
		}
		m, err := deriv.Hessian(f, a, b)
		if err != nil {
			return fail(err)
		}
		return respondMatrix(m)

	case "tools":
		return ToolResponse{String: ToolSpec()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func toExpr(key string, v interface{}) (expr.Node, error) {
	switch val := v.(type) {
	case string:
		return expr.Parse(val)
	case map[string]interface{}:
		return expr.FromJSON(val)
	}
	return nil, fmt.Errorf("invalid type for param %s", key)
}

func procedureJSON(p *emit.Procedure) map[string]interface{} {
	triplets := make([]interface{}, len(p.Triplets))
	for i, t := range p.Triplets {
		triplets[i] = map[string]interface{}{"row": t.Row, "col": t.Col, "expr": t.Expr}
	}
	params := make([]interface{}, len(p.Params))
	for i, g := range p.Params {
		params[i] = map[string]interface{}{"name": g.Name, "dim": g.Dim}
	}
	return map[string]interface{}{
		"name":     p.Name,
		"dialect":  p.Dialect,
		"params":   params,
		"rows":     p.Rows,
		"cols":     p.Cols,
		"nnz":      p.NonZeros,
		"triplets": triplets,
	}
}

// ToolSpec returns the JSON schema of every tool, for agent registration.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("parse", "Parse infix source such as x0*cos(x2) into an expression", []string{"source"}, map[string]string{"source": "string"}),
		ts("simplify", "Fold constants and collect like terms", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("lower", "Lower one expression to target-language text. Optional: dialect, permissive", []string{"expr"}, map[string]string{"expr": "object", "dialect": "string", "permissive": "boolean"}),
		ts("emit", "Generate a sparse-matrix procedure. matrix={rows,cols,entries}, vars=[{name,dim}]", []string{"matrix", "vars", "name"}, map[string]string{"matrix": "object", "vars": "array", "name": "string", "dialect": "string", "package": "string", "permissive": "boolean"}),
		ts("jacobian", "Jacobian matrix. Requires exprs (array) and vars (string[])", []string{"exprs", "vars"}, map[string]string{"exprs": "array", "vars": "array"}),
		ts("hessian", "Hessian matrix of second partials. Optional vars2 for mixed blocks", []string{"expr", "vars"}, map[string]string{"expr": "object", "vars": "array", "vars2": "array"}),
		ts("tools", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
