// Package gate validates summarization requests before they reach the
// engine.
package gate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/roasbeef/resumo/internal/engine"
	"github.com/roasbeef/resumo/internal/markup"
)

const (
	// DefaultMaxTextLength is the longest accepted text in characters.
	DefaultMaxTextLength = 50000

	// MaxSummaryLength caps the requested max length.
	MaxSummaryLength = 1000

	// MinSummaryLength is the smallest accepted min length.
	MinSummaryLength = 10

	// maxNonPrintableRatio is the share of control characters above
	// which a text is refused.
	maxNonPrintableRatio = 0.1
)

// Formats of request text.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script.*?>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)data:text/html`),
}

// Request is a summarization request as received from a client.
type Request struct {
	Text      string `json:"text" validate:"required"`
	Method    string `json:"method" validate:"omitempty,oneof=extractive abstractive auto"`
	Format    string `json:"format" validate:"omitempty,oneof=text markdown"`
	MaxLength int    `json:"max_length"`
	MinLength int    `json:"min_length"`
}

// Config holds configuration for the Gate.
type Config struct {
	MaxTextLength    int
	DefaultMaxLength int
	DefaultMinLength int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTextLength:    DefaultMaxTextLength,
		DefaultMaxLength: 150,
		DefaultMinLength: 30,
	}
}

// Gate checks requests. It is safe for concurrent use.
type Gate struct {
	cfg      Config
	validate *validator.Validate
}

// New creates a Gate.
func New(cfg Config) *Gate {
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = DefaultMaxTextLength
	}

	return &Gate{
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Check validates req and converts it to an engine request. Zero lengths
// take the configured defaults and markdown text is reduced to prose.
func (g *Gate) Check(req Request) (engine.Request, error) {
	if req.MaxLength == 0 {
		req.MaxLength = g.cfg.DefaultMaxLength
	}
	if req.MinLength == 0 {
		req.MinLength = g.cfg.DefaultMinLength
	}
	req.Method = strings.ToLower(strings.TrimSpace(req.Method))

	if err := g.validate.Struct(req); err != nil {
		return engine.Request{}, translate(err)
	}
	if err := Bounds(req.MaxLength, req.MinLength); err != nil {
		return engine.Request{}, err
	}

	text, err := g.Text(req.Text)
	if err != nil {
		return engine.Request{}, err
	}
	if req.Format == FormatMarkdown {
		text = markup.PlainText(text)
		if text == "" {
			return engine.Request{}, fmt.Errorf("%w: markdown has "+
				"no prose", ErrInvalidInput)
		}
	}

	method, err := Method(req.Method)
	if err != nil {
		return engine.Request{}, err
	}

	return engine.Request{
		Text:      text,
		Method:    method,
		MaxLength: req.MaxLength,
		MinLength: req.MinLength,
	}, nil
}

// Text checks raw request text and returns it trimmed.
func (g *Gate) Text(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("%w: text must not be empty",
			ErrInvalidInput)
	}

	if n := utf8.RuneCountInString(text); n > g.cfg.MaxTextLength {
		return "", fmt.Errorf("%w: text has %d characters, limit is %d",
			ErrInvalidInput, n, g.cfg.MaxTextLength)
	}

	for _, re := range suspiciousPatterns {
		if re.MatchString(text) {
			return "", fmt.Errorf("%w: text contains suspicious "+
				"content", ErrInvalidInput)
		}
	}

	if nonPrintableRatio(text) > maxNonPrintableRatio {
		return "", fmt.Errorf("%w: text contains too many "+
			"non-printable characters", ErrInvalidInput)
	}

	return trimmed, nil
}

// Bounds checks a max/min length pair.
func Bounds(maxLen, minLen int) error {
	switch {
	case maxLen <= minLen:
		return fmt.Errorf("%w: max_length must be greater than "+
			"min_length", ErrInvalidInput)

	case maxLen > MaxSummaryLength:
		return fmt.Errorf("%w: max_length must not exceed %d",
			ErrInvalidInput, MaxSummaryLength)

	case minLen < MinSummaryLength:
		return fmt.Errorf("%w: min_length must be at least %d",
			ErrInvalidInput, MinSummaryLength)
	}

	return nil
}

// Method parses a method name.
func Method(s string) (engine.Method, error) {
	m, err := engine.ParseMethod(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return m, nil
}

// nonPrintableRatio is the share of control characters other than line
// breaks and tabs.
func nonPrintableRatio(text string) float64 {
	var total, control int
	for _, r := range text {
		total++
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			control++
		}
	}
	if total == 0 {
		return 0
	}

	return float64(control) / float64(total)
}

// translate turns validator errors into ErrInvalidInput messages.
func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}

	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return field + " must not be empty"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field,
			strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
