package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/match"

	"github.com/dop251/goja"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// init adds a Interpreter as one of the DefaultInterpreters
func init() {
	core.DefaultInterpreters["goja"] = NewInterpreter()
}

// Interpreter implements core.Interpreter using Goja, which is a Go
// implementation of ECMAScript 5.1+.
//
// The code builds an expression tree with the constructors at _ (see
// Exec) and returns it.
//
// See https://github.com/dop251/goja.
type Interpreter struct {

	// Testing is used to expose or hide some runtime
	// capabilities.
	Testing bool

	// InlineRequires turns on rewriting top-level require("...")
	// statements into the text of the named library.  The code is
	// then run as a script, and its completion value (rather than
	// a returned value) is the tree.  See InlineRequires.
	InlineRequires bool

	// LibraryProvider is a pluggable library provider, which can
	// be used instead of DefaultLibraryProvider.
	LibraryProvider func(ctx context.Context, i *Interpreter, libraryName string) (string, error)
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// ProvideLibrary resolves the library name into a library.
func (i *Interpreter) ProvideLibrary(ctx context.Context, name string) (string, error) {
	if i.LibraryProvider != nil {
		return i.LibraryProvider(ctx, i, name)
	}
	return DefaultLibraryProvider(ctx, i, name)
}

var DefaultLibraryProvider = MakeFileLibraryProvider(".")

// MakeFileLibraryProvider makes a library provider that supports
// (barely) names that are URLs with protocols of "file", "http", and
// "https".  File names are relative to the given directory.
func MakeFileLibraryProvider(dir string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		parts := strings.SplitN(name, "://", 2)
		if 2 != len(parts) {
			return "", fmt.Errorf("bad link '%s'", name)
		}
		switch parts[0] {
		case "file":
			if strings.Contains(parts[1], "..") {
				return "", fmt.Errorf("bad library file '%s'", parts[1])
			}
			bs, err := ioutil.ReadFile(dir + "/" + parts[1])
			if err != nil {
				return "", err
			}
			return string(bs), nil
		case "http", "https":
			req, err := http.NewRequest("GET", name, nil)
			if err != nil {
				return "", err
			}
			req = req.WithContext(ctx)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return "", err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return "", fmt.Errorf("library fetch status %s %d", resp.Status, resp.StatusCode)
			}
			bs, err := ioutil.ReadAll(resp.Body)
			if err != nil {
				return "", err
			}
			return string(bs), nil
		default:
			return "", fmt.Errorf("unknown protocol '%s'", parts[0])
		}
	}
}

// MakeMapLibraryProvider makes a library provider backed by the given
// map.
func MakeMapLibraryProvider(srcs map[string]string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// parseSource looks into the given map to try to find "requires" and
// "code" properties.
func parseSource(vv map[string]interface{}) (code string, libs []string, err error) {
	if s, is := vv["code"].(string); is {
		code = s
	} else {
		err = errors.New("bad Goja code")
		return
	}

	switch vv := vv["requires"].(type) {
	case nil:
	case string:
		libs = []string{vv}
	case []string:
		libs = vv
	case []interface{}:
		libs = make([]string, 0, len(vv))
		for _, x := range vv {
			s, is := x.(string)
			if !is {
				err = fmt.Errorf("bad library (%T)", x)
				return
			}
			libs = append(libs, s)
		}
	default:
		err = fmt.Errorf("bad requires (%T)", vv)
	}

	return
}

// AsSource accepts either a string of code or a map with "code" and
// optional "requires" properties.
//
// Maps with interface{} keys (from gopkg.in/yaml.v2) are accepted so
// that callers don't need the YAML fork that makes string keys.
func AsSource(src interface{}) (code string, libs []string, err error) {
	switch vv := src.(type) {
	case string:
		code = vv
		return
	case map[interface{}]interface{}:
		m := make(map[string]interface{})
		for k, v := range vv {
			str, ok := k.(string)
			if !ok {
				err = fmt.Errorf("bad src key (%T)", k)
				return
			}
			m[str] = v
		}
		return parseSource(m)
	case map[string]interface{}:
		return parseSource(vv)
	default:
		err = fmt.Errorf("bad Goja source (%T)", src)
		return
	}
}

// Compile prepends any required libraries and calls goja.Compile.
//
// This method can block if the interpreter's library provider blocks
// in order to obtain external libraries.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	code, libs, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	if i.InlineRequires {
		// The code is a script whose completion value is the
		// tree, since require() statements have to be at the
		// top level.
		if code, err = InlineRequires(ctx, code, i.ProvideLibrary); err != nil {
			return nil, err
		}
	} else {
		code = wrapSrc(code)
	}

	var libsSrc string
	for _, lib := range libs {
		libSrc, err := i.ProvideLibrary(ctx, lib)
		if err != nil {
			return nil, err
		}
		libsSrc += libSrc + "\n"
	}

	code = libsSrc + code

	obj, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return obj, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

// tree exports a goja value as a generic tree, with a string becoming
// a literal.
func tree(o *goja.Runtime, v goja.Value) interface{} {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		protest(o, "missing expression")
	}
	x, err := canonicalize(v.Export())
	if err != nil {
		protest(o, err.Error())
	}
	return x
}

// Exec implements the Interpreter method of the same name.
//
// The following constructors are available from the runtime at _.
// Each returns the generic form of an expression (see
// core.ParseTree), and a string argument anywhere stands for a
// literal.
//
//    sym(c): a symbol given as a one-character string or a number.
//    alt(x, y, ...): alternation.
//    cat(x, y, ...): concatenation.
//    star(x): iteration.
//    eps(): the empty word.
//    empty(): nothing at all.
//    lit(s): the concatenation of the characters in s.
//
// Some useful utilities:
//
//    matches(x, word): whether the expression matches the word.
//    log(x): log the given value as JSON.
//
// For testing only:
//
//    sleep(ms): sleep for the given number of milliseconds.
//
// The Testing flag must be set to see sleep().
//
// The code's value, which can be a string, is the tree.
func (i *Interpreter) Exec(ctx context.Context, src interface{}, compiled interface{}) (core.Expr, error) {
	var p *goja.Program
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, src); err != nil {
			return nil, err
		}
	}
	var is bool
	if p, is = compiled.(*goja.Program); !is {
		return nil, fmt.Errorf("Goja bad compilation: %T %#v", compiled, compiled)
	}

	o := goja.New()

	env := map[string]interface{}{}

	if i.Testing {
		o.Set("sleep", func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		})
	}

	env["sym"] = func(c goja.Value) interface{} {
		x := tree(o, c)
		switch vv := x.(type) {
		case string:
			if len(vv) != 1 {
				protest(o, fmt.Sprintf("symbol %q isn't one character", vv))
			}
		case float64:
		default:
			protest(o, fmt.Sprintf("bad symbol %#v", x))
		}
		return map[string]interface{}{"sym": x}
	}

	nary := func(op string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			xs := make([]interface{}, len(call.Arguments))
			for j, v := range call.Arguments {
				xs[j] = tree(o, v)
			}
			return o.ToValue(map[string]interface{}{op: xs})
		}
	}
	env["alt"] = nary("alt")
	env["cat"] = nary("cat")

	env["star"] = func(x goja.Value) interface{} {
		return map[string]interface{}{"star": tree(o, x)}
	}

	env["eps"] = func() interface{} {
		return map[string]interface{}{"eps": true}
	}

	env["empty"] = func() interface{} {
		return map[string]interface{}{"empty": true}
	}

	env["lit"] = func(s string) interface{} {
		return s
	}

	env["matches"] = func(x goja.Value, w string) bool {
		e, err := core.ParseTree(tree(o, x))
		if err != nil {
			protest(o, err.Error())
		}
		a, err := core.Build(e)
		if err != nil {
			protest(o, err.Error())
		}
		return match.Matches(a, core.Word(w))
	}

	env["log"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		js, err := json.Marshal(&x)
		if err != nil {
			log.Println("goja.log (can't marshal: " + err.Error() + ")")
		} else {
			log.Println(string(js))
		}

		return x
	}

	o.Set("_", env)

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If this Exec method calls cancel() after RunProgram
		// returns, then we'll never see this
		// InterruptedMessage, which is actually the behavior
		// we want.  In this case, we weren't actually interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, errors.New("Goja code returned no expression")
	}

	x, err := canonicalize(v.Export())
	if err != nil {
		return nil, err
	}

	return core.ParseTree(x)
}

// canonicalize is an abomination
func canonicalize(x interface{}) (interface{}, error) {
	js, err := json.Marshal(&x)
	if err != nil {
		return nil, err
	}
	var y interface{}
	if err = json.Unmarshal(js, &y); err != nil {
		return nil, err
	}
	return y, nil
}
