package argv

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"unicode/utf8"

	"github.com/Iron-Ham/singleton/internal/errors"
)

// Encode serializes an argument batch as a JSON array. Arguments that are
// valid UTF-8 are JSON strings; any other argument is an object
// {"b64": "<standard base64 of its bytes>"} so no byte is lost. A nil
// batch encodes as an empty array.
func Encode(args []string) ([]byte, error) {
	elems := make([]any, len(args))
	for i, arg := range args {
		if utf8.ValidString(arg) {
			elems[i] = arg
		} else {
			elems[i] = rawArg{B64: base64.StdEncoding.EncodeToString([]byte(arg))}
		}
	}
	data, err := json.Marshal(elems)
	if err != nil {
		return nil, errors.Wrap(err, "encode arguments")
	}
	return data, nil
}

// rawArg carries an argument that is not valid UTF-8.
type rawArg struct {
	B64 string `json:"b64"`
}

// Decode parses a payload produced by Encode. Trailing commas before a
// closing bracket are tolerated. The result is never nil.
//
// Decode is not hardened against hostile input; anything that is not a JSON
// array of strings and {"b64": ...} objects is reported as ErrPayloadCorrupt.
func Decode(data []byte) ([]string, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(stripTrailingCommas(data), &elems); err != nil {
		return nil, corrupt(err)
	}

	args := make([]string, len(elems))
	for i, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) > 0 && elem[0] == '{' {
			var raw rawArg
			if err := json.Unmarshal(elem, &raw); err != nil {
				return nil, corrupt(err)
			}
			b, err := base64.StdEncoding.DecodeString(raw.B64)
			if err != nil {
				return nil, corrupt(err)
			}
			args[i] = string(b)
			continue
		}
		if err := json.Unmarshal(elem, &args[i]); err != nil {
			return nil, corrupt(err)
		}
	}
	return args, nil
}

func corrupt(err error) error {
	return errors.Wrapf(errors.ErrPayloadCorrupt, "decode arguments: %v", err)
}

// stripTrailingCommas removes commas that are followed only by whitespace
// and then a closing ']' or '}'. String contents are left untouched.
func stripTrailingCommas(data []byte) []byte {
	if bytes.IndexByte(data, ',') < 0 {
		return data
	}

	out := make([]byte, 0, len(data))
	inString, escaped := false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case ',':
			j := i + 1
			for j < len(data) && isJSONSpace(data[j]) {
				j++
			}
			if j < len(data) && (data[j] == ']' || data[j] == '}') {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
