package test

import (
	"io"
	"math/rand"
)

// Rand returns a deterministic io.Reader, so that failing executions can be reproduced.
func Rand(seed int64) io.Reader {
	return rand.New(rand.NewSource(seed))
}
