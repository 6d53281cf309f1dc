// Package testutil provides testing utilities for blockstore.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for block payloads and allocation patterns.
//
//	rng := testutil.NewRNG(seed)
//	buf := rng.Block(256)            // random payload
//	ids := rng.Perm(255)[:16]        // random distinct block ids
//	buf = testutil.PatternBlock(256, 0xAB)
package testutil
