package besteffort

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"salon_booking_backend/platform/logger"
)

func TestRun_SwallowsErrorAndLogs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("production", &buf)

	ok := Run(context.Background(), log, "lead.score", func(context.Context) error {
		return errors.New("db down")
	}, "leadId", "abc")

	if ok {
		t.Fatalf("expected failure to be reported")
	}
	if !strings.Contains(buf.String(), "automation_failure") || !strings.Contains(buf.String(), "db down") {
		t.Fatalf("expected automation failure log, got %q", buf.String())
	}
}

func TestRun_RecoversPanic(t *testing.T) {
	ok := Run(context.Background(), logger.Nop(), "lead.activity", func(context.Context) error {
		panic("nil map")
	})
	if ok {
		t.Fatalf("expected panic to be reported as failure")
	}
}

func TestRun_Success(t *testing.T) {
	if !Run(context.Background(), logger.Nop(), "noop", func(context.Context) error { return nil }) {
		t.Fatalf("expected success")
	}
}
