package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/quillsql/render"
)

func TestEscape(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"o'brien", `o\'brien`},
		{`back\slash`, `back\\slash`},
		{"line\nbreak", `line\nbreak`},
		{"carriage\rreturn", `carriage\rreturn`},
		{"null\x00byte", `null\0byte`},
		{"ctrl\x1aZ", `ctrl\ZZ`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, render.Escape(tc.in))
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, `'o\'brien'`, render.String("o'brien"))
	assert.Equal(t, "'plain'", render.String("plain"))
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "`users`.`id`", render.Identifier("users", "id"))
}
