package ast

// Unparse renders a node back to source text. Every node's String method
// already produces valid, fully-parenthesized surface syntax, so Unparse is
// the identity over that rendering; it exists as a named entry point for the
// parser round-trip property (parse(unparse(a)) == a
// modulo whitespace and redundant left-associative parens).
func Unparse(n Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}
