package timing

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestTrackLogsElapsed(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf)

	done := Track(logger, "encode", "rate", 40)
	time.Sleep(time.Millisecond)
	elapsed := done()

	if elapsed < time.Millisecond {
		t.Errorf("Expected at least 1ms elapsed, got %v", elapsed)
	}

	out := buf.String()
	for _, want := range []string{`msg="encode ..."`, "msg=encode", "rate=40", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRunReturnsValueAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf)

	v, _, err := Run(logger, "multiply", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("Expected (7, nil), got (%d, %v)", v, err)
	}

	boom := errors.New("boom")
	_, _, err = Run(logger, "decode", func() (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if !strings.Contains(buf.String(), `msg="decode failed"`) {
		t.Errorf("Expected failure to be logged, got:\n%s", buf.String())
	}
}
