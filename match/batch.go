package match

import (
	"context"
	"sort"

	"github.com/Comcast/glushkov/core"
	"golang.org/x/sync/errgroup"
)

// Indices lists the positions of matching words in a batch, in
// ascending order without duplicates.
type Indices []int

// Has reports whether i is in the list.
func (is Indices) Has(i int) bool {
	j := sort.SearchInts(is, i)
	return j < len(is) && is[j] == i
}

// checkEvery is how many words a worker matches between looks at its
// context.
const checkEvery = 64

// MatchAll returns the indices of the words the automaton accepts.
//
// With more than one Worker, the words are divided among goroutines
// that share the automaton.  The result doesn't depend on Workers.
// The only error comes from the context.
func (m *Matcher) MatchAll(ctx context.Context, a *core.Automaton, words []core.Word) (Indices, error) {
	hits := make([]bool, len(words))

	workers := m.Workers
	if len(words) < workers {
		workers = len(words)
	}

	if workers <= 1 {
		for i, w := range words {
			if i%checkEvery == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			hits[i] = m.Matches(a, w)
		}
	} else {
		g, ctx := errgroup.WithContext(ctx)
		for k := 0; k < workers; k++ {
			k := k
			g.Go(func() error {
				// Each worker owns the indices k, k+workers, ...
				for n, i := 0, k; i < len(words); n, i = n+1, i+workers {
					if n%checkEvery == 0 {
						if err := ctx.Err(); err != nil {
							return err
						}
					}
					hits[i] = m.Matches(a, words[i])
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	acc := make(Indices, 0, len(words))
	for i, hit := range hits {
		if hit {
			acc = append(acc, i)
		}
	}
	return acc, nil
}

// WordsMatch builds a fresh automaton for the expression and returns
// the indices of the words it accepts.
//
// The only error is a *core.InvalidTree.  A word that doesn't match
// is never an error.
func WordsMatch(e core.Expr, words []core.Word) (Indices, error) {
	a, err := core.Build(e)
	if err != nil {
		return nil, err
	}
	return DefaultMatcher.MatchAll(context.Background(), a, words)
}
