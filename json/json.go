// Package json provides thin wrappers around buger/jsonparser for the
// hand-rolled append-only encoders and streaming decoders used by the msg
// package. Cloned and trimmed from bgpfix's json package.
package json

import (
	"errors"
	"fmt"
	"strconv"
	"unsafe"

	jsp "github.com/buger/jsonparser"
)

type Type = jsp.ValueType

const (
	STRING = jsp.String
	NUMBER = jsp.Number
	OBJECT = jsp.Object
	ARRAY  = jsp.Array
	BOOL   = jsp.Boolean
	NULL   = jsp.Null
)

var (
	ErrValue = errors.New("invalid value")

	True  = []byte("true")
	False = []byte("false")
	Null  = []byte("null")
)

func Int(dst []byte, src int) []byte {
	return strconv.AppendInt(dst, int64(src), 10)
}

func UnInt(src []byte) (int, error) {
	v, err := strconv.ParseInt(SQ(src), 0, 0)
	return int(v), err
}

func Bool(dst []byte, val bool) []byte {
	if val {
		return append(dst, True...)
	}
	return append(dst, False...)
}

func UnBool(src []byte) (bool, error) {
	switch SQ(src) {
	case "true", "TRUE", "1":
		return true, nil
	case "false", "FALSE", "0":
		return false, nil
	default:
		return false, ErrValue
	}
}

func String(dst []byte, s string) []byte {
	dst = append(dst, '"')
	dst = Ascii(dst, B(s))
	return append(dst, '"')
}

// Ascii appends ASCII characters from src to a JSON string in dst, escaping
// as needed. Good enough for the dotted-quad and enum text this codec ever
// sees.
func Ascii(dst, src []byte) []byte {
	const hextable = "0123456789abcdef"
	for _, c := range src {
		switch {
		case c == '"' || c == '\\':
			dst = append(dst, '\\', c)
		case c == '\r':
			dst = append(dst, '\\', 'r')
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c >= 0x20 && c <= 0x7e:
			dst = append(dst, c)
		default:
			dst = append(dst, "\\u00"...)
			dst = append(dst, hextable[c>>4], hextable[c&0x0f])
		}
	}
	return dst
}

// S returns a string view of buf without copying.
func S(buf []byte) string {
	if len(buf) == 0 {
		return ""
	}
	return unsafe.String(&buf[0], len(buf))
}

// B returns a byte-slice view of str without copying.
func B(str string) []byte {
	return unsafe.Slice(unsafe.StringData(str), len(str))
}

// Q strips surrounding double quotes from buf, if present.
func Q(buf []byte) []byte {
	if l := len(buf); l > 1 && buf[0] == '"' && buf[l-1] == '"' {
		return buf[1 : l-1]
	}
	return buf
}

// SQ returns a string view of buf, unquoting if necessary.
func SQ(buf []byte) string {
	return S(Q(buf))
}

// ArrayEach calls cb for each non-null value in the src JSON array.
func ArrayEach(src []byte, cb func(key int, val []byte, typ Type) error) (reterr error) {
	var key int
	defer func() {
		switch v := recover().(type) {
		case nil:
		case error:
			reterr = fmt.Errorf("[%d]: %w", key, v)
		default:
			reterr = fmt.Errorf("[%d]: %v", key, v)
		}
	}()

	key = -1
	_, reterr = jsp.ArrayEach(src, func(val []byte, typ Type, _ int, _ error) {
		key++
		if typ == NULL {
			return
		}
		if err := cb(key, val, typ); err != nil {
			panic(err)
		}
	})
	return
}

// ObjectEach calls cb for each non-null value in the src JSON object.
func ObjectEach(src []byte, cb func(key string, val []byte, typ Type) error) (reterr error) {
	var panikey []byte
	defer func() {
		switch v := recover().(type) {
		case nil:
		case error:
			reterr = fmt.Errorf("[%s]: %w", panikey, v)
		default:
			reterr = fmt.Errorf("[%s]: %v", panikey, v)
		}
	}()

	return jsp.ObjectEach(src, func(key, val []byte, typ Type, _ int) error {
		panikey = key
		if typ == NULL {
			return nil
		}
		if err := cb(S(key), val, typ); err != nil {
			panic(err)
		}
		return nil
	})
}

// Get returns the raw JSON value at the given key path, or nil if absent.
func Get(src []byte, path ...string) []byte {
	val, typ, _, err := jsp.Get(src, path...)
	if err != nil || typ == NULL {
		return nil
	}
	return val
}

// GetString returns the unquoted string at the given key path.
func GetString(src []byte, path ...string) string {
	v, err := jsp.GetString(src, path...)
	if err != nil {
		return ""
	}
	return v
}
