package coverletter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// escapePattern matches a \uXXXX escape anywhere in serialized JSON, including
// one that is literal text inside a string value.
var escapePattern = regexp.MustCompile(`\\u[0-9a-fA-F]{4}`)

// hasEscapes reports whether serialized JSON still contains \uXXXX sequences.
func hasEscapes(data []byte) bool {
	return escapePattern.Match(data)
}

// stripFences drops a leading and a trailing ``` line.
func stripFences(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// cleanString NFKC-normalizes s and decodes literal \uXXXX text the model left
// inside a value. Characters the JSON encoder would escape again are replaced
// or dropped so a clean pass stays clean.
func cleanString(s string) string {
	s = norm.NFKC.String(decodeEscapes(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\u2028' || r == '\u2029':
			return '\n'
		case r == '\n' || r == '\r' || r == '\t':
			return r
		case r < 0x20:
			return -1
		}
		return r
	}, s)
}

// decodeEscapes replaces literal \uXXXX sequences with the characters they
// name. Surrogate pairs are combined; lone surrogates and control characters
// are left as text.
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); {
		r, n := parseEscape(s[i:])
		if n == 0 {
			sb.WriteByte(s[i])
			i++
			continue
		}
		if utf16.IsSurrogate(r) {
			low, m := parseEscape(s[i+n:])
			if m == 0 {
				sb.WriteString(s[i : i+n])
				i += n
				continue
			}
			pair := utf16.DecodeRune(r, low)
			if pair == unicode.ReplacementChar {
				sb.WriteString(s[i : i+n])
				i += n
				continue
			}
			sb.WriteRune(pair)
			i += n + m
			continue
		}
		if r < 0x20 || r == 0x7f {
			sb.WriteString(s[i : i+n])
			i += n
			continue
		}
		sb.WriteRune(r)
		i += n
	}
	return sb.String()
}

// parseEscape reads a \uXXXX sequence at the start of s.
func parseEscape(s string) (rune, int) {
	if len(s) < 6 || s[0] != '\\' || s[1] != 'u' {
		return 0, 0
	}
	v, err := strconv.ParseUint(s[2:6], 16, 32)
	if err != nil {
		return 0, 0
	}
	return rune(v), 6
}

// reencode rewrites a JSON document with every string (keys included) passed
// through transform. Key order and number literals are preserved; non-ASCII is
// written unescaped. The result is compact.
func reencode(data []byte, transform func(string) string) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var buf bytes.Buffer
	if err := writeValue(dec, &buf, transform); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return buf.Bytes(), nil
}

func writeValue(dec *json.Decoder, buf *bytes.Buffer, transform func(string) string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			buf.WriteByte('{')
			for first := true; dec.More(); first = false {
				if !first {
					buf.WriteByte(',')
				}
				key, err := dec.Token()
				if err != nil {
					return err
				}
				if err := writeString(buf, transform(key.(string))); err != nil {
					return err
				}
				buf.WriteByte(':')
				if err := writeValue(dec, buf, transform); err != nil {
					return err
				}
			}
			buf.WriteByte('}')
		case '[':
			buf.WriteByte('[')
			for first := true; dec.More(); first = false {
				if !first {
					buf.WriteByte(',')
				}
				if err := writeValue(dec, buf, transform); err != nil {
					return err
				}
			}
			buf.WriteByte(']')
		default:
			return fmt.Errorf("unexpected delimiter %v", v)
		}
		// closing delimiter
		if _, err := dec.Token(); err != nil {
			return err
		}
	case string:
		return writeString(buf, transform(v))
	case json.Number:
		buf.WriteString(v.String())
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case nil:
		buf.WriteString("null")
	default:
		return fmt.Errorf("unexpected token %T", tok)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

// normalizeLetter re-serializes the parsed letter, cleaning every string,
// until no escapes remain or maxPasses is reached. It returns the last output,
// the number of passes made, and whether escapes survived.
func normalizeLetter(data []byte, maxPasses int) ([]byte, int, bool, error) {
	passes := 0
	for passes < maxPasses {
		out, err := reencode(data, cleanString)
		if err != nil {
			return nil, passes, false, err
		}
		data = out
		passes++
		if !hasEscapes(data) {
			return data, passes, false, nil
		}
	}
	return data, passes, true, nil
}

// indent formats compact JSON with the given indent.
func indent(data []byte, step string) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", step); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
