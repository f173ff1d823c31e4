package expr

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ============================================================
// JSON Serialization
// ============================================================

// The wire form is a tagged object per node:
//
//	{"type":"num","value":0.5}
//	{"type":"sym","name":"x3"}            (+ "group","index" for Var symbols)
//	{"type":"add","terms":[...]}
//	{"type":"mul","factors":[...]}
//	{"type":"pow","base":{...},"exp":{...}}
//	{"type":"func","name":"cos","args":[...]}

// ToJSON encodes n as a JSON string.
func ToJSON(n Node) (string, error) {
	obj, err := Encode(n)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(obj)
	return string(b), err
}

// Encode converts n into its generic JSON object form.
func Encode(n Node) (map[string]interface{}, error) {
	switch v := n.(type) {
	case *Number:
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return nil, fmt.Errorf("num: non-finite value %v", v.val)
		}
		return map[string]interface{}{"type": "num", "value": v.val}, nil
	case *Symbol:
		obj := map[string]interface{}{"type": "sym", "name": v.name}
		if g, i, ok := v.Group(); ok {
			obj["group"] = g
			obj["index"] = i
		}
		return obj, nil
	case *Sum:
		ts, err := encodeAll("add", "terms", v.terms)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"type": "add", "terms": ts}, nil
	case *Product:
		fs, err := encodeAll("mul", "factors", v.factors)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"type": "mul", "factors": fs}, nil
	case *Power:
		b, err := Encode(v.base)
		if err != nil {
			return nil, fmt.Errorf("pow: base: %w", err)
		}
		e, err := Encode(v.exp)
		if err != nil {
			return nil, fmt.Errorf("pow: exp: %w", err)
		}
		return map[string]interface{}{"type": "pow", "base": b, "exp": e}, nil
	case *Call:
		as, err := encodeAll("func", "args", v.args)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"type": "func", "name": v.name, "args": as}, nil
	}
	return nil, fmt.Errorf("cannot encode expression of type %T", n)
}

func encodeAll(typ, field string, nodes []Node) ([]map[string]interface{}, error) {
	out := make([]map[string]interface{}, len(nodes))
	for i, c := range nodes {
		obj, err := Encode(c)
		if err != nil {
			return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
		}
		out[i] = obj
	}
	return out, nil
}

// ParseJSON decodes a node from its JSON text.
func ParseJSON(data []byte) (Node, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return FromJSON(obj)
}

// FromJSON decodes a node from its generic JSON object form.
func FromJSON(data map[string]interface{}) (Node, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (Node, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		n, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return n, nil
	}

	subObjArray := func(field string) ([]Node, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Node, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			n, err := FromJSON(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = n
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		switch v := data["value"].(type) {
		case float64:
			return Num(v), nil
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid num value: %s", v)
			}
			return Num(f), nil
		case nil:
			return nil, fmt.Errorf("num: missing 'value'")
		}
		return nil, fmt.Errorf("num: 'value' must be a number or numeric string")

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		g, hasGroup := data["group"].(string)
		i, hasIndex := data["index"].(float64)
		if hasGroup && hasIndex {
			if i < 0 || i != math.Trunc(i) {
				return nil, fmt.Errorf("sym: 'index' must be a non-negative integer")
			}
			v := Var(g, int(i))
			if v.name != name {
				return nil, fmt.Errorf("sym: name %q does not match group %q index %d", name, g, int(i))
			}
			return v, nil
		}
		return Sym(name), nil

	case "add":
		terms, err := subObjArray("terms")
		if err != nil {
			return nil, err
		}
		return Add(terms...), nil

	case "mul":
		factors, err := subObjArray("factors")
		if err != nil {
			return nil, err
		}
		return Mul(factors...), nil

	case "pow":
		base, err := subObj("base")
		if err != nil {
			return nil, err
		}
		exp, err := subObj("exp")
		if err != nil {
			return nil, err
		}
		return Pow(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		// Single-argument objects may use "arg" instead of "args".
		if _, single := data["arg"]; single {
			arg, err := subObj("arg")
			if err != nil {
				return nil, err
			}
			return Fn(name, arg), nil
		}
		args, err := subObjArray("args")
		if err != nil {
			return nil, err
		}
		return Fn(name, args...), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

// EncodeMatrix converts m into {"rows","cols","entries"} with row-major
// entries; structural zeros encode as null.
func EncodeMatrix(m *Matrix) (map[string]interface{}, error) {
	entries := make([]interface{}, len(m.cells))
	for i, c := range m.cells {
		if c == nil {
			continue
		}
		obj, err := Encode(c)
		if err != nil {
			return nil, fmt.Errorf("entries[%d]: %w", i, err)
		}
		entries[i] = obj
	}
	return map[string]interface{}{"rows": m.rows, "cols": m.cols, "entries": entries}, nil
}

// MatrixFromJSON decodes the form produced by EncodeMatrix. Entries may also
// be infix strings, which are parsed with Parse.
func MatrixFromJSON(data map[string]interface{}) (*Matrix, error) {
	rows, ok1 := dimension(data["rows"])
	cols, ok2 := dimension(data["cols"])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("matrix: 'rows' and 'cols' must be non-negative integers")
	}
	if !validShape(rows, cols) {
		return nil, fmt.Errorf("matrix: shape %dx%d is too large", rows, cols)
	}
	raw, ok := data["entries"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("matrix: 'entries' must be an array")
	}
	if len(raw) != rows*cols {
		return nil, fmt.Errorf("matrix: need %d entries, got %d", rows*cols, len(raw))
	}
	m := NewMatrix(rows, cols)
	for i, it := range raw {
		switch v := it.(type) {
		case nil:
		case string:
			n, err := Parse(v)
			if err != nil {
				return nil, fmt.Errorf("matrix: entries[%d]: %w", i, err)
			}
			m.cells[i] = n
		case map[string]interface{}:
			n, err := FromJSON(v)
			if err != nil {
				return nil, fmt.Errorf("matrix: entries[%d]: %w", i, err)
			}
			m.cells[i] = n
		default:
			return nil, fmt.Errorf("matrix: entries[%d] must be an object, string or null", i)
		}
	}
	return m, nil
}

// dimension accepts a JSON number that is a non-negative integer no larger
// than math.MaxInt32, so the conversion to int is exact on every platform.
func dimension(v interface{}) (int, bool) {
	f, ok := v.(float64)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
