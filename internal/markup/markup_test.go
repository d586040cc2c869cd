package markup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "heading and paragraph",
			in:   "# Economia\n\nO **mercado** reagiu _bem_.\n",
			want: "Economia. O mercado reagiu bem.",
		},
		{
			name: "soft line breaks",
			in:   "Uma frase que\ncontinua aqui.\n",
			want: "Uma frase que continua aqui.",
		},
		{
			name: "list items",
			in:   "- primeiro ponto\n- segundo ponto!\n",
			want: "primeiro ponto. segundo ponto!",
		},
		{
			name: "code dropped",
			in:   "Texto.\n\n```go\nfmt.Println()\n```\n\n    indentado\n",
			want: "Texto.",
		},
		{
			name: "links keep their text",
			in:   "Leia [o relatório](https://exemplo.org) hoje.",
			want: "Leia o relatório hoje.",
		},
		{
			name: "html dropped",
			in:   "<div>\nbloco\n</div>\n\nFim.",
			want: "Fim.",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, PlainText(tc.in), tc.name)
	}
}
