package codec

import (
	"errors"
	"fmt"
)

// DataError describes malformed input handed to a codec. Codecs never return
// it; they panic with it, because malformed input means a contract bug or
// a host protocol violation rather than a condition to branch on.
type DataError struct {
	Type string
	Data []byte
	Off  int
	Msg  string
	Err  error
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	msg := e.Msg
	if e.Type != "" {
		msg = e.Type + ": " + msg
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	n := len(e.Data)
	if n == 0 {
		return msg
	}
	if n <= prefixLen+suffixLen {
		return fmt.Sprintf("%s: (%d@%d) %x", msg, n, e.Off, e.Data)
	}
	p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
	return fmt.Sprintf("%s: (%d@%d) %x...%x", msg, n, e.Off, p, s)
}

func dataErrf(typ string, data []byte, off int, err error, format string, args ...any) *DataError {
	return &DataError{typ, data, off, fmt.Sprintf(format, args...), err}
}

func abortf(typ string, data []byte, format string, args ...any) {
	panic(dataErrf(typ, data, 0, nil, format, args...))
}

func abortErr(typ string, data []byte, err error, msg string) {
	panic(dataErrf(typ, data, 0, err, "%s", msg))
}

// IsDataError reports whether err (or anything it wraps) is a *DataError.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}
