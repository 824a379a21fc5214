package zap

import (
	"sort"

	"github.com/unkn0wn-root/airdropcache"
	"go.uber.org/zap"
)

var _ airdropcache.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

// New names the logger "airdropcache"; a nil l yields a no-op logger.
func New(l *zap.Logger) ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return ZapLogger{L: l.Named("airdropcache")}
}

func (z ZapLogger) Debug(msg string, f airdropcache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f airdropcache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f airdropcache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f airdropcache.Fields) { z.L.Error(msg, zf(f)...) }

// zf emits fields in key order; errors become zap error fields.
func zf(f airdropcache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]zap.Field, 0, len(f))
	for _, k := range names {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
