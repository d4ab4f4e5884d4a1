package utils

import "io"

// FlushingWriter wraps the report output stream so each key=value line is
// flushed as soon as it is written; CI log collectors read the stream live.
type FlushingWriter struct {
	writer io.Writer
}

// NewFlushingWriter wraps the provided writer. A nil writer yields nil.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	return &FlushingWriter{writer: writer}
}

// Write delegates to the underlying writer and flushes it when supported.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	if flushableWriter, implementsFlush := flushingWriter.writer.(interface{ Flush() error }); implementsFlush {
		if flushError := flushableWriter.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}

	return bytesWritten, nil
}
