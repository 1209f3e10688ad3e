package logging

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
)

func TestEventCtxIncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	ctx := WithRequestID(context.Background(), "req-42")
	EventCtx(ctx, "booking", "transition", "pending->confirmed")

	line := buf.String()
	for _, want := range []string{"[BOOKING]", "action=transition", "request_id=req-42", "msg=pending->confirmed"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestRequestIDEmptyWithoutValue(t *testing.T) {
	if got := RequestID(context.Background()); got != "" {
		t.Errorf("expected empty request id, got %q", got)
	}
}
