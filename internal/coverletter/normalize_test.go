package coverletter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"indented fence", "  ```json\n{}\n  ```  ", `{}`},
		{"opening only", "```json\n{}", `{}`},
		{"no fence", "  {}  ", `{}`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.input))
		})
	}
}

func TestDecodeEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"apostrophe", `I\u2019m`, "I’m"},
		{"uppercase hex", `caf\u00E9`, "café"},
		{"surrogate pair", `\ud83d\ude00`, "😀"},
		{"lone surrogate kept", `\ud800x`, `\ud800x`},
		{"control kept", `a\u0007b`, `a\u0007b`},
		{"not hex", `C:\users`, `C:\users`},
		{"short", `\u12`, `\u12`},
		{"plain", "hello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeEscapes(tt.input))
		})
	}
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "fi", cleanString("ﬁ"), "NFKC folds ligatures")
	assert.Equal(t, "a\nb", cleanString("a\u2028b"))
	assert.Equal(t, "ab\tc", cleanString("a\x01b\tc"))
	assert.Equal(t, "I’m", cleanString(`I\u2019m`))
}

func TestReencode(t *testing.T) {
	out, err := reencode([]byte(`{"b": "<x> & y", "a": [1e3, -0.5, "é"]}`), func(s string) string { return s })
	require.NoError(t, err)
	assert.Equal(t, `{"b":"<x> & y","a":[1e3,-0.5,"é"]}`, string(out))

	_, err = reencode([]byte(`{"a": 1} {"b": 2}`), func(s string) string { return s })
	assert.Error(t, err)

	_, err = reencode([]byte(`{"a": `), func(s string) string { return s })
	assert.Error(t, err)
}

func TestNormalizeLetter(t *testing.T) {
	out, passes, warning, err := normalizeLetter([]byte(`{"a": "x\\u00e9"}`), 5)
	require.NoError(t, err)
	assert.False(t, warning)
	assert.Equal(t, 1, passes)
	assert.Equal(t, `{"a":"xé"}`, string(out))

	_, passes, warning, err = normalizeLetter([]byte(`{"a": "\\udc00"}`), 2)
	require.NoError(t, err)
	assert.True(t, warning)
	assert.Equal(t, 2, passes)
}

func TestHasEscapes(t *testing.T) {
	assert.True(t, hasEscapes([]byte(`"\u2019"`)))
	assert.True(t, hasEscapes([]byte(`"\\u2019"`)))
	assert.False(t, hasEscapes([]byte(`"C:\\users"`)))
	assert.False(t, hasEscapes([]byte(`"’"`)))
}
