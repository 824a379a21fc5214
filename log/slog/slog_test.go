package slog

import (
	"bytes"
	"encoding/json"
	"errors"
	stdslog "log/slog"
	"testing"

	"github.com/unkn0wn-root/airdropcache"
)

func TestSlogLoggerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	base := stdslog.New(stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo}))
	l := New(base)

	l.Debug("hidden", airdropcache.Fields{"x": 1})
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered, got %s", buf.String())
	}

	l.Warn("populate dropped", airdropcache.Fields{"count": 3, "err": errors.New("full")})
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "populate dropped" || rec["level"] != "WARN" {
		t.Fatalf("record: %v", rec)
	}
	if rec["component"] != "airdropcache" || rec["err"] != "full" || rec["count"] != float64(3) {
		t.Fatalf("fields: %v", rec)
	}
}
