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

// Package core builds position automata from regular expression
// trees.
//
// An expression is a tree of six kinds of node: Symbol, Alternation,
// Concatenation, Iteration, Epsilon, and Empty.  There is no parser
// for textual syntax.  Build the tree with the constructors (Sym,
// Alt, Cat, Star, Eps, Nothing, Lit), decode it from its generic form
// with ParseTree, or let an Interpreter produce it from a Source.
//
// A Builder walks the tree once.  Every Symbol occurrence becomes a
// Position.  For each subtree the Builder computes a NodeInfo:
// whether the subtree matches the empty word, which positions can
// come first, and which can come last.  Concatenation and Iteration
// nodes also add edges to a follower relation that says which
// position can immediately follow which.  This is the classical
// Glushkov (McNaughton-Yamada) construction.
//
// The result is an Automaton, which is read-only and safe to share.
// Package match simulates an Automaton against words.
//
// A Def is a named, documented expression that can be read from YAML
// and then Compile()ed into an Automaton.
package core
