package core

import (
	"fmt"
	"sort"
)

// ParseTree makes an Expr from its generic form, which is what you
// get from JSON or YAML:
//
//	{"sym":"a"}         a Symbol (a one-byte string or a number 0-255)
//	{"alt":[X,Y,...]}   Alternation, nested to the left
//	{"cat":[X,Y,...]}   Concatenation, nested to the left
//	{"star":X}          Iteration
//	{"eps":true}        Epsilon
//	{"empty":true}      Empty
//	"abc"               shorthand for {"cat":[{"sym":"a"},{"sym":"b"},{"sym":"c"}]}
//
// Maps with interface{} keys (from gopkg.in/yaml.v2) are accepted.
//
// Outside of "sym", a bare number or boolean is not a tree.  YAML
// reads unquoted 0, 011, y and no as numbers or booleans, so literals
// like those must be quoted ("0", "011", "y").
func ParseTree(x interface{}) (Expr, error) {
	return parseTree(x, "root")
}

func parseTree(x interface{}, path string) (Expr, error) {
	switch vv := x.(type) {
	case string:
		return Lit(vv), nil
	case map[string]interface{}:
		return parseTreeMap(vv, path)
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			s, is := k.(string)
			if !is {
				return nil, &BadTree{Path: path, Reason: fmt.Sprintf("key %#v (%T) isn't a string", k, k)}
			}
			m[s] = v
		}
		return parseTreeMap(m, path)
	case nil:
		return nil, &BadTree{Path: path, Reason: "missing tree"}
	case bool, int, int64, uint64, float64:
		return nil, &BadTree{Path: path, Reason: fmt.Sprintf("a %T (%v) isn't a tree; quote literals that look like numbers or booleans", x, x)}
	default:
		return nil, &BadTree{Path: path, Reason: fmt.Sprintf("a %T isn't a tree", x)}
	}
}

func parseTreeMap(m map[string]interface{}, path string) (Expr, error) {
	if len(m) != 1 {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, &BadTree{Path: path, Reason: fmt.Sprintf("need exactly one property, not %v", keys)}
	}

	for op, arg := range m {
		path := path + "." + op
		switch op {
		case "sym":
			b, err := parseSymbol(arg, path)
			if err != nil {
				return nil, err
			}
			return Sym(b), nil
		case "alt", "cat":
			xs, is := arg.([]interface{})
			if !is {
				return nil, &BadTree{Path: path, Reason: fmt.Sprintf("need an array, not %T", arg)}
			}
			es := make([]Expr, len(xs))
			for i, x := range xs {
				e, err := parseTree(x, fmt.Sprintf("%s[%d]", path, i))
				if err != nil {
					return nil, err
				}
				es[i] = e
			}
			if op == "alt" {
				return Alt(es...), nil
			}
			return Cat(es...), nil
		case "star":
			e, err := parseTree(arg, path)
			if err != nil {
				return nil, err
			}
			return Star(e), nil
		case "eps":
			if b, is := arg.(bool); !is || !b {
				return nil, &BadTree{Path: path, Reason: "eps wants true"}
			}
			return Eps(), nil
		case "empty":
			if b, is := arg.(bool); !is || !b {
				return nil, &BadTree{Path: path, Reason: "empty wants true"}
			}
			return Nothing(), nil
		default:
			return nil, &BadTree{Path: path, Reason: "unknown operator " + op}
		}
	}

	panic("unreachable")
}

func parseSymbol(x interface{}, path string) (byte, error) {
	var n int
	switch vv := x.(type) {
	case string:
		if len(vv) != 1 {
			return 0, &BadTree{Path: path, Reason: fmt.Sprintf("symbol %q isn't one byte", vv)}
		}
		return vv[0], nil
	case int:
		n = vv
	case int64:
		n = int(vv)
	case float64:
		if vv != float64(int(vv)) {
			return 0, &BadTree{Path: path, Reason: fmt.Sprintf("symbol %v isn't an integer", vv)}
		}
		n = int(vv)
	default:
		return 0, &BadTree{Path: path, Reason: fmt.Sprintf("symbol %#v (%T) isn't a string or number", x, x)}
	}
	if n < 0 || 255 < n {
		return 0, &BadTree{Path: path, Reason: fmt.Sprintf("symbol %d out of range", n)}
	}
	return byte(n), nil
}

// TreeOf returns the generic form of an expression.
//
// Left-nested chains of Alternations or Concatenations come out as
// one array, and a chain of printable Symbols as a string, so
// ParseTree(TreeOf(e)) has exactly the structure of e.
func TreeOf(e Expr) (interface{}, error) {
	return treeOf(e, "root")
}

func treeOf(e Expr, path string) (interface{}, error) {
	switch vv := e.(type) {
	case *Symbol:
		if vv != nil {
			if printable(vv.Value) {
				return map[string]interface{}{"sym": string(rune(vv.Value))}, nil
			}
			return map[string]interface{}{"sym": int(vv.Value)}, nil
		}
	case *Alternation:
		if vv != nil {
			xs, err := chain(vv, path+".alt")
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"alt": xs}, nil
		}
	case *Concatenation:
		if vv != nil {
			if s, is := literal(vv); is {
				return s, nil
			}
			xs, err := chain(vv, path+".cat")
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"cat": xs}, nil
		}
	case *Iteration:
		if vv != nil {
			x, err := treeOf(vv.Body, path+".star")
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"star": x}, nil
		}
	case *Epsilon:
		if vv != nil {
			return map[string]interface{}{"eps": true}, nil
		}
	case *Empty:
		if vv != nil {
			return map[string]interface{}{"empty": true}, nil
		}
	}
	return nil, &InvalidTree{Path: path, Node: e}
}

// chain flattens a left-nested run of nodes with the same kind as e.
func chain(e Expr, path string) ([]interface{}, error) {
	var es []Expr
	for {
		var left, right Expr
		switch vv := e.(type) {
		case *Alternation:
			left, right = vv.Left, vv.Right
		case *Concatenation:
			left, right = vv.Left, vv.Right
		}
		es = append(es, right)
		if left == nil || left.Kind() != e.Kind() || isNilNode(left) {
			es = append(es, left)
			break
		}
		e = left
	}

	acc := make([]interface{}, len(es))
	for i := range es {
		// es was collected right to left.
		x, err := treeOf(es[len(es)-1-i], fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		acc[i] = x
	}
	return acc, nil
}

func isNilNode(e Expr) bool {
	switch vv := e.(type) {
	case *Alternation:
		return vv == nil
	case *Concatenation:
		return vv == nil
	}
	return false
}

// literal renders a left-nested Concatenation of two or more printable
// Symbols as a string.
func literal(e *Concatenation) (string, bool) {
	var acc []byte
	var x Expr = e
	for {
		c, is := x.(*Concatenation)
		if !is || c == nil {
			break
		}
		s, is := c.Right.(*Symbol)
		if !is || s == nil || !printable(s.Value) {
			return "", false
		}
		acc = append(acc, s.Value)
		x = c.Left
	}
	s, is := x.(*Symbol)
	if !is || s == nil || !printable(s.Value) {
		return "", false
	}
	acc = append(acc, s.Value)
	for i, j := 0, len(acc)-1; i < j; i, j = i+1, j-1 {
		acc[i], acc[j] = acc[j], acc[i]
	}
	return string(acc), true
}

func printable(b byte) bool {
	return 0x20 <= b && b <= 0x7e
}
