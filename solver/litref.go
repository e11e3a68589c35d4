package solver

import "github.com/go-air/gini/z"

// posLit returns v's positive literal. Lit's own encoding (documented on
// Lit.Var: "m >> 1") guarantees a positive literal is a variable shifted
// left by one, so this needs no help from the z package.
func posLit(v z.Var) z.Lit {
	return z.Lit(v) << 1
}

// noVar is the sentinel returned where a z.Var would normally go but none
// was allocated (mirroring z.LitNull's reservation of variable 0).
const noVar z.Var = 0
