package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
)

type annotation struct {
	SubmissionID string
	Notes        string
}

func TestNew_MasksNotes(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON, false)

	logger.Info("saved", "annotation", annotation{
		SubmissionID: "sub-1",
		Notes:        "called patient, advised A&E",
	})

	out := buf.String()
	gt.S(t, out).Contains("sub-1")
	gt.S(t, out).NotContains("advised A&E")
}

func TestFrom(t *testing.T) {
	t.Run("falls back to default", func(t *testing.T) {
		gt.V(t, logging.From(context.Background())).Equal(logging.Default())
	})

	t.Run("returns embedded logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(&buf, slog.LevelDebug, logging.FormatJSON, false)
		ctx := logging.With(context.Background(), logger)
		gt.V(t, logging.From(ctx)).Equal(logger)
	})
}
