package secured

// OverwriteEncodedForTest replaces the stored bytes without touching the
// shadow copy or the key epoch, which is exactly what an external memory
// editor does. It exists so detector tests in other packages can simulate
// tampering; production code must use Set or SetEncoded.
func OverwriteEncodedForTest[T any](c *Cell[T], enc []byte) {
	c.encoded = append(c.encoded[:0], enc...)
}
