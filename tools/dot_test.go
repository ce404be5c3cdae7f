/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/glushkov/core"
)

func TestDot(t *testing.T) {
	dir, err := ioutil.TempDir("", "dot")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	filename := filepath.Join(dir, "g.dot")
	out, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}

	def, err := core.NewDef("ab", core.ExampleAB())
	if err != nil {
		t.Fatal(err)
	}

	if err := Dot(def, out, core.NewPositions(3)); err != nil {
		t.Fatal(err)
	}

	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(bs)
	for _, want := range []string{
		"q0 -> q3",
		"q4 -> q5",
		`q3 [shape="circle", color="red"`,
		`q4 [shape="doublecircle"`,
	} {
		if !strings.Contains(dot, want) {
			t.Fatalf("no %q in\n%s", want, dot)
		}
	}
}

func TestDotUncompiled(t *testing.T) {
	f, err := ioutil.TempFile("", "dot")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err = Dot(&core.Def{Name: "raw"}, f, core.Positions{}); err == nil {
		t.Fatal("didn't protest")
	}
}
