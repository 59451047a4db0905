package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type logCall struct {
	level  string
	format string
	args   []any
}

type captureLogger struct {
	calls []logCall
}

func (l *captureLogger) record(level, format string, args ...any) {
	l.calls = append(l.calls, logCall{level: level, format: format, args: args})
}

func (l *captureLogger) Debug(format string, args ...any) { l.record("debug", format, args...) }
func (l *captureLogger) Info(format string, args ...any)  { l.record("info", format, args...) }
func (l *captureLogger) Warn(format string, args ...any)  { l.record("warn", format, args...) }
func (l *captureLogger) Error(format string, args ...any) { l.record("error", format, args...) }

func (l *captureLogger) levels() []string {
	out := make([]string, 0, len(l.calls))
	for _, c := range l.calls {
		out = append(out, c.level)
	}
	return out
}

// notifyingProvider captures the watcher callback so tests can invoke it.
type notifyingProvider struct {
	fn func(Identity)
}

func (p *notifyingProvider) CreateAccount(ctx context.Context, email, password string) (Identity, error) {
	return nil, nil
}

func (p *notifyingProvider) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	return nil, nil
}

func (p *notifyingProvider) InvalidateSession(ctx context.Context) error { return nil }

func (p *notifyingProvider) UpdateDisplayName(ctx context.Context, id Identity, name string) error {
	return nil
}

func (p *notifyingProvider) RequestPasswordReset(ctx context.Context, email string) error { return nil }

func (p *notifyingProvider) OnSessionChange(fn func(Identity)) Unsubscribe {
	p.fn = fn
	return func() {}
}

func TestNewline(t *testing.T) {
	assert.Equal(t, "hello\n", newline("hello"))
	assert.Equal(t, "hello\n", newline("hello\n"))
	assert.Equal(t, "", newline(""))
}

func TestWatcherLoggerOption(t *testing.T) {
	logger := &captureLogger{}
	provider := &notifyingProvider{}

	w := NewSessionWatcher(provider, WithWatcherLogger(logger))
	defer w.Close()

	provider.fn(nil)
	assert.Equal(t, []string{"debug"}, logger.levels())
}

func TestWatcherLoggerOptionIgnoresNil(t *testing.T) {
	logger := &captureLogger{}
	provider := &notifyingProvider{}

	w := NewSessionWatcher(provider, WithWatcherLogger(logger), WithWatcherLogger(nil))
	defer w.Close()

	provider.fn(nil)
	assert.Len(t, logger.calls, 1)
}

func TestFlowLoggerOption(t *testing.T) {
	logger := &captureLogger{}
	flow := NewAuthFlow(WithFlowLogger(logger))

	assert.NoError(t, flow.Begin())
	assert.Equal(t, []string{"debug"}, logger.levels())
}
