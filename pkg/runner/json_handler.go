package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/ikenthis/bmsagent/pkg/domain"
)

// JSONHandler implements IOHandler over JSON Lines.
// Each input line is a JSON string or raw text; each output line is an ExecutionResult.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder

	pending map[string]any
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// jsonRequest is the object form of an input line.
type jsonRequest struct {
	Text    string         `json:"text"`
	Context map[string]any `json:"context,omitempty"`
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line, err := h.Reader.ReadString('\n')
		if line == "" && err != nil {
			return "", err
		}
		text := strings.TrimSpace(line)

		var quoted string
		var obj jsonRequest
		switch {
		case json.Unmarshal([]byte(text), &quoted) == nil:
			text = quoted
		case json.Unmarshal([]byte(text), &obj) == nil && obj.Text != "":
			text = obj.Text
			h.pending = obj.Context
		}

		clean, serr := SanitizeRequest(text)
		if serr == ErrEmptyInput {
			if err != nil {
				return "", err
			}
			continue
		}
		if serr != nil {
			_ = h.SystemOutput(ctx, serr.Error())
			continue
		}
		return clean, nil
	}
}

// TakeContext returns the context object sent with the last request, once.
func (h *JSONHandler) TakeContext() map[string]any {
	extra := h.pending
	h.pending = nil
	return extra
}

func (h *JSONHandler) Output(ctx context.Context, res domain.ExecutionResult) error {
	return h.Encoder.Encode(res)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(map[string]string{"type": "system", "message": msg})
}
