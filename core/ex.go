package core

// ExampleAB makes (a|b)*ab(a|b)*, which matches every word over {a,b}
// that contains "ab".
func ExampleAB() Expr {
	ab := func() Expr {
		return Star(Alt(Sym('a'), Sym('b')))
	}
	return Cat(ab(), Sym('a'), Sym('b'), ab())
}

// ExampleStarAB makes ((a|b)*ab(a|b)*)*, which is ExampleAB iterated
// and therefore also matches the empty word.
func ExampleStarAB() Expr {
	return Star(ExampleAB())
}

// ExampleBinary makes 011(011|10*1|0)*.
func ExampleBinary() Expr {
	return Cat(
		Sym('0'), Sym('1'), Sym('1'),
		Star(Alt(
			Lit("011"),
			Cat(Sym('1'), Star(Sym('0')), Sym('1')),
			Sym('0'),
		)),
	)
}

// ExampleDeadEnd makes (a|b)*∅(a|b)*, which matches nothing: the
// Empty in the middle cuts every path.
func ExampleDeadEnd() Expr {
	ab := func() Expr {
		return Star(Alt(Sym('a'), Sym('b')))
	}
	return Cat(ab(), Nothing(), ab())
}

// Examples maps names to the example expressions.
func Examples() map[string]Expr {
	return map[string]Expr{
		"ab":      ExampleAB(),
		"star-ab": ExampleStarAB(),
		"binary":  ExampleBinary(),
		"deadend": ExampleDeadEnd(),
	}
}
