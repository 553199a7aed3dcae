package interactive

import (
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

// ParseParams parses key=value arguments into a parameter dictionary.
//
// Keys are 0-255. Values are typed by an optional prefix:
//
//	s:text   string
//	i:42     int32
//	l:42     int64
//	f:1.5    float64
//	b:true   bool
//	x:0a0b   byte array (hex)
//
// Without a prefix, integers that fit int32 become int32, true/false become
// bool, other numbers become float64 and everything else is a string.
func ParseParams(args []string) (wire.ParameterDictionary, error) {
	params := make(wire.ParameterDictionary, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("parameter %q: want key=value", arg)
		}
		key, err := strconv.ParseUint(k, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: key must be 0-255", arg)
		}
		val, err := ParseValue(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", arg, err)
		}
		params[byte(key)] = val
	}
	return params, nil
}

// ParseValue converts one shell argument into a wire value.
func ParseValue(s string) (any, error) {
	if prefix, rest, ok := strings.Cut(s, ":"); ok && len(prefix) == 1 {
		switch prefix {
		case "s":
			return rest, nil
		case "i":
			n, err := strconv.ParseInt(rest, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("bad int32 %q", rest)
			}
			return int32(n), nil
		case "l":
			n, err := strconv.ParseInt(rest, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad int64 %q", rest)
			}
			return n, nil
		case "f":
			f, err := strconv.ParseFloat(rest, 64)
			if err != nil {
				return nil, fmt.Errorf("bad float %q", rest)
			}
			return f, nil
		case "b":
			b, err := strconv.ParseBool(rest)
			if err != nil {
				return nil, fmt.Errorf("bad bool %q", rest)
			}
			return b, nil
		case "x":
			data, err := hex.DecodeString(rest)
			if err != nil {
				return nil, fmt.Errorf("bad hex %q", rest)
			}
			return data, nil
		}
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return int32(n), nil
		}
		return n, nil
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	return s, nil
}

// FormatParams renders a parameter dictionary in key order.
func FormatParams(params wire.ParameterDictionary) string {
	if len(params) == 0 {
		return "{}"
	}
	keys := make([]int, 0, len(params))
	for k := range params {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d: %s", k, FormatValue(params[byte(k)]))
	}
	sb.WriteByte('}')
	return sb.String()
}

// FormatValue renders one wire value with its Go type.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case []byte:
		return "0x" + hex.EncodeToString(v)
	default:
		return fmt.Sprintf("%T(%v)", v, v)
	}
}
