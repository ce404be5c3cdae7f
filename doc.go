// Package glushkov builds position automata from regular expression
// trees and matches words against them.
//
// The construction is in package 'core', simulation is in 'match',
// and some command-line tools are in `cmd`.
package glushkov
