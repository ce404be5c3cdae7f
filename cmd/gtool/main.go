// Package main is a tool for working with def files.
//
//   gtool yamltojson -p < defs/ab.yaml
//   gtool analyze < defs/binary.yaml
//   gtool dot -o binary.dot < defs/binary.yaml
//   gtool freeze < defs/binary.yaml
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"sort"

	"github.com/Comcast/glushkov/core"
	"github.com/Comcast/glushkov/tools"

	"github.com/jsccast/yaml"
)

func main() {

	if len(os.Args) < 2 {
		Usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "yamltojson":
		pretty := false

		switch len(os.Args) {
		case 2:
		case 3:
			switch os.Args[2] {
			case "-p":
				pretty = true
			default:
				fmt.Fprintf(os.Stderr, "unsupported args: %v\n", os.Args[1:])
				os.Exit(1)
			}
		default:
			fmt.Fprintf(os.Stderr, "unsupported args: %v\n", os.Args[1:])
			os.Exit(1)
		}

		if err := yamlToJSON(os.Stdin, os.Stdout, pretty); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

	case "jsontoyaml":
		if err := jsonToYAML(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

	case "inline":
		bs, err := tools.ReadAllWithInlines(os.Stdin, ".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if _, err = os.Stdout.Write(bs); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

	default:

		mod, have := Mods[os.Args[1]]
		if !have {
			fmt.Printf("Unknown subcommand \"%s\"\n", os.Args[1])
			Usage()
			os.Exit(1)
		}

		if err := mod.Flags().Parse(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		d, err := readDef(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		if err := mod.F(context.Background(), d, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// readDef reads a def (with %inline directives resolved against the
// current directory) and compiles it.
func readDef(in io.Reader) (*core.Def, error) {
	bs, err := tools.ReadAllWithInlines(in, ".")
	if err != nil {
		return nil, err
	}

	if len(bs) == 0 {
		bs = []byte(DefaultDefYAML)
	}

	d, err := core.ParseDef(bs)
	if err != nil {
		return nil, err
	}

	if err = d.Compile(context.Background(), Interpreters(), true); err != nil {
		return nil, err
	}

	return d, nil
}

func yamlToJSON(in io.Reader, out io.Writer, pretty bool) error {
	bs, err := ioutil.ReadAll(in)
	if err != nil {
		return err
	}

	if len(bs) == 0 {
		bs = []byte(DefaultDefYAML)
	}

	var d *core.Def

	if err = yaml.Unmarshal(bs, &d); err != nil {
		return err
	}

	if pretty {
		bs, err = json.MarshalIndent(&d, "", "  ")
	} else {
		bs, err = json.Marshal(&d)
	}
	if err != nil {
		return err
	}

	_, err = out.Write(append(bs, '\n'))
	return err
}

func jsonToYAML(in io.Reader, out io.Writer) error {
	bs, err := ioutil.ReadAll(in)
	if err != nil {
		return err
	}

	var d *core.Def

	if err = json.Unmarshal(bs, &d); err != nil {
		return err
	}

	if bs, err = yaml.Marshal(&d); err != nil {
		return err
	}

	_, err = out.Write(bs)
	return err
}

func Usage() {
	fmt.Printf("Subcommands:\n\n")

	names := make([]string, 0, len(Mods))
	for name := range Mods {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mod := Mods[name]
		mod.Flags().Usage()
		fmt.Println("  " + mod.Doc())
		fmt.Println()
	}
	fmt.Println("Usage of yamltojson:")
	fmt.Printf("  -p    pretty-print\n\n")
	fmt.Printf("Usage of jsontoyaml: (no arguments)\n\n")
	fmt.Printf("Usage of inline: (no arguments)\n\n")
}

// DefaultDefYAML is used when stdin is empty.  It matches nothing.
var DefaultDefYAML = `name: empty
tree:
  empty: true
`
