package logger

import "ChordDHT/internal/domain"

// Field is a structured key/value log field.
type Field struct {
	Key string
	Val any
}

// Logger is the minimal logging interface shared across internal packages.
type Logger interface {
	Named(name string) Logger
	With(fields ...Field) Logger
	WithNode(n domain.Node) Logger
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// F builds a single Field concisely.
func F(key string, val any) Field { return Field{Key: key, Val: val} }

// FNode serializes a domain.Node into a readable structured field.
func FNode(key string, n domain.Node) Field {
	return Field{
		Key: key,
		Val: map[string]any{
			"id":   n.ID.ToHexString(false),
			"addr": n.Addr,
		},
	}
}

// FResource serializes a domain.Resource into a readable structured field,
// without dumping the raw value bytes.
func FResource(key string, r domain.Resource) Field {
	return Field{
		Key: key,
		Val: map[string]any{
			"key":        r.Key.ToHexString(false),
			"raw_key":    r.RawKey,
			"value_len":  len(r.Value),
			"expires_at": r.ExpiresAtUnix,
		},
	}
}

// ----------------------------------------------------------------
// NopLogger is a Logger implementation that discards everything.
type NopLogger struct{}

func (l *NopLogger) Named(name string) Logger           { return l }
func (l *NopLogger) With(fields ...Field) Logger        { return l }
func (l *NopLogger) WithNode(n domain.Node) Logger      { return l }
func (l *NopLogger) Debug(msg string, fields ...Field)  {}
func (l *NopLogger) Info(msg string, fields ...Field)   {}
func (l *NopLogger) Warn(msg string, fields ...Field)   {}
func (l *NopLogger) Error(msg string, fields ...Field)  {}
