// Package stream frames a lazily produced record sequence as a JSON array.
//
// The array is generated incrementally: each element is serialized and
// flushed before the next upstream page is requested, so arbitrarily large
// collections stream through in constant memory. The output is restart-only;
// there is no way to resume a partially consumed stream.
package stream
