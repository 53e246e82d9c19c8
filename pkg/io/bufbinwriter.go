package io

import "bytes"

// BufBinWriter is a BinWriter writing into an in-memory buffer, useful for
// one-shot serialization where the final byte slice is the desired result.
type BufBinWriter struct {
	*BinWriter
	buf *bytes.Buffer
}

// NewBufBinWriter creates a BufBinWriter ready for writes.
func NewBufBinWriter() *BufBinWriter {
	b := new(bytes.Buffer)
	return &BufBinWriter{
		BinWriter: NewBinWriterFromIO(b),
		buf:       b,
	}
}

// Len returns the number of bytes written so far.
func (w *BufBinWriter) Len() int {
	return w.buf.Len()
}

// Bytes returns the accumulated bytes, or nil if an error occurred along
// the way.
func (w *BufBinWriter) Bytes() []byte {
	if w.Err != nil {
		return nil
	}
	b := w.buf.Bytes()
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Reset clears both the buffer and any latched error, allowing re-use.
func (w *BufBinWriter) Reset() {
	w.Err = nil
	w.buf.Reset()
}

// SetError injects an error, as if a write had failed; used by callers that
// detect a domain-level problem (e.g. an overflowing field) after some
// bytes have already been emitted.
func (w *BufBinWriter) SetError(err error) {
	w.Err = err
}
