package gate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roasbeef/resumo/internal/engine"
)

const prose = "O governo anunciou novas medidas econômicas. O mercado " +
	"reagiu bem às notícias."

func TestCheckDefaults(t *testing.T) {
	t.Parallel()

	g := New(DefaultConfig())
	req, err := g.Check(Request{Text: "  " + prose + "\n"})
	require.NoError(t, err)
	require.Equal(t, engine.Request{
		Text:      prose,
		Method:    engine.MethodAuto,
		MaxLength: 150,
		MinLength: 30,
	}, req)
}

func TestCheckRejects(t *testing.T) {
	t.Parallel()

	g := New(DefaultConfig())

	tests := []struct {
		name string
		req  Request
		msg  string
	}{
		{"empty", Request{Text: ""}, "text must not be empty"},
		{"blank", Request{Text: "   \n"}, "text must not be empty"},
		{
			"method",
			Request{Text: prose, Method: "hybrid"},
			"method must be one of: extractive, abstractive, auto",
		},
		{
			"format",
			Request{Text: prose, Format: "html"},
			"format must be one of",
		},
		{
			"max too large",
			Request{Text: prose, MaxLength: 1001, MinLength: 30},
			"max_length must not exceed 1000",
		},
		{
			"min too small",
			Request{Text: prose, MaxLength: 100, MinLength: 5},
			"min_length must be at least 10",
		},
		{
			"max not above min",
			Request{Text: prose, MaxLength: 50, MinLength: 50},
			"max_length must be greater than min_length",
		},
		{
			"script",
			Request{Text: "Olá <script>alert(1)</script> mundo."},
			"suspicious",
		},
		{
			"javascript url",
			Request{Text: "Clique em JavaScript:void(0) agora."},
			"suspicious",
		},
		{
			"handler",
			Request{Text: "Uma imagem <img onerror = x> aqui."},
			"suspicious",
		},
		{
			"data url",
			Request{Text: "Veja data:text/html;base64,AAAA agora."},
			"suspicious",
		},
	}
	for _, tc := range tests {
		_, err := g.Check(tc.req)
		require.ErrorIs(t, err, ErrInvalidInput, tc.name)
		require.Contains(t, err.Error(), tc.msg, tc.name)
	}
}

func TestTextLength(t *testing.T) {
	t.Parallel()

	g := New(Config{MaxTextLength: 10})

	_, err := g.Text("ãããããããããã")
	require.NoError(t, err)

	_, err = g.Text("ããããããããããã")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestTextNonPrintable(t *testing.T) {
	t.Parallel()

	g := New(DefaultConfig())

	// Line breaks and tabs are fine.
	_, err := g.Text("linha um\nlinha dois\tfim\r\n")
	require.NoError(t, err)

	// One control character in ten is the limit.
	_, err = g.Text("abcdefghi\x01")
	require.NoError(t, err)

	_, err = g.Text("abcdefgh\x01\x02")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestBounds(t *testing.T) {
	t.Parallel()

	require.NoError(t, Bounds(150, 30))
	require.NoError(t, Bounds(1000, 10))
	require.ErrorIs(t, Bounds(30, 30), ErrInvalidInput)
	require.ErrorIs(t, Bounds(1001, 30), ErrInvalidInput)
	require.ErrorIs(t, Bounds(150, 9), ErrInvalidInput)
}

func TestCheckBoundsAgainstDefaults(t *testing.T) {
	t.Parallel()

	g := New(DefaultConfig())

	// An explicit max below the default min fails the pair check.
	_, err := g.Check(Request{Text: prose, MaxLength: 20})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Contains(t, err.Error(),
		"max_length must be greater than min_length")

	req, err := g.Check(Request{Text: prose, MaxLength: 40})
	require.NoError(t, err)
	require.Equal(t, 40, req.MaxLength)
	require.Equal(t, 30, req.MinLength)
}

func TestMethod(t *testing.T) {
	t.Parallel()

	m, err := Method("extractive")
	require.NoError(t, err)
	require.Equal(t, engine.MethodExtractive, m)

	_, err = Method("summary")
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, engine.ErrUnknownMethod)
}

func TestCheckMarkdown(t *testing.T) {
	t.Parallel()

	g := New(DefaultConfig())
	req, err := g.Check(Request{
		Text:   "# Economia\n\nO **mercado** reagiu bem.\n\n```\ncode()\n```\n",
		Format: FormatMarkdown,
	})
	require.NoError(t, err)
	require.Equal(t, "Economia. O mercado reagiu bem.", req.Text)

	_, err = g.Check(Request{
		Text:   "```\nsó código\n```",
		Format: FormatMarkdown,
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.True(t, strings.Contains(err.Error(), "no prose"))
}
