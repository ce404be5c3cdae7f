/* Copyright 2018 Comcast Cable Communications Management, LLC
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
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
)

var inlinePattern = regexp.MustCompile(`%inline *\("([^"]*)"\)`)

// Inline replaces '%inline("NAME")' with f(NAME).
//
// When the directive is the first thing on its line, every line of
// the replacement gets the directive's indentation, so a multi-line
// file can be inlined into a YAML block scalar.
func Inline(bs []byte, f func(string) ([]byte, error)) ([]byte, error) {
	acc := make([]byte, 0, len(bs))
	i := 0
	for _, loc := range inlinePattern.FindAllSubmatchIndex(bs, -1) {
		acc = append(acc, bs[i:loc[0]]...)
		i = loc[1]

		replacement, err := f(string(bs[loc[2]:loc[3]]))
		if err != nil {
			return nil, err
		}
		replacement = bytes.TrimRight(replacement, "\n")

		if indent := indentation(acc); indent != nil {
			nl := append([]byte{'\n'}, indent...)
			replacement = bytes.Replace(replacement, []byte{'\n'}, nl, -1)
		}
		acc = append(acc, replacement...)
	}
	return append(acc, bs[i:]...), nil
}

// indentation returns the whitespace at the end of bs if that's all
// there is on the last line.
func indentation(bs []byte) []byte {
	j := bytes.LastIndexByte(bs, '\n')
	line := bs[j+1:]
	if len(line) == 0 || len(bytes.TrimLeft(line, " \t")) != 0 {
		return nil
	}
	return line
}

// ReadFileWithInlines is a replacement for ioutil.ReadFile that adds
// automatic Inline()ing based on the directory obtained from the
// filename.
//
// '%inline("NAME")' is replaced with ReadFile(NAME).
func ReadFileWithInlines(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAllWithInlines(f, filepath.Dir(filename))
}

// ReadAllWithInlines is a replacement for ioutil.ReadAll that adds
// automatic Inline()ing based on the given directory.
func ReadAllWithInlines(in io.Reader, dir string) ([]byte, error) {
	bs, err := ioutil.ReadAll(in)
	if err != nil {
		return nil, err
	}

	f := func(name string) ([]byte, error) {
		return ioutil.ReadFile(filepath.Join(dir, name))
	}

	return Inline(bs, f)
}
