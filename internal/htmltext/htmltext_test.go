package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"", ""},
		{"plain text, no markup", "plain text, no markup"},
		{"<div>\n  Line one\n  <br>\n  Line   two\n</div>", "Line one Line two"},
		{"<html><head><title>T</title><style>p{}</style></head><body><p>Body</p><script>x()</script></body></html>", "Body"},
		{"<p>caf&eacute; &amp; bar</p>", "café & bar"},
		{"<ul><li>a</li><li>b</li></ul><!-- note -->", "a b"},
		{"   <p>  padded  </p>   ", "padded"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FromHTML(tc.in), "FromHTML(%q)", tc.in)
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("<p>Hello <b>world</b></p>")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got)

	got, err = Normalize([]byte("<i>bytes</i>"))
	require.NoError(t, err)
	assert.Equal(t, "bytes", got)
}

func TestNormalize_RejectsNonString(t *testing.T) {
	_, err := Normalize(123)
	require.Error(t, err)

	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, 123, typeErr.Got)
	assert.Contains(t, err.Error(), "int")

	_, err = Normalize(nil)
	assert.ErrorAs(t, err, &typeErr)
}
