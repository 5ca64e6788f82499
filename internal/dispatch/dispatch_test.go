package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timvw/pane-send/internal/model"
	"github.com/timvw/pane-send/internal/mux"
)

// call records one injection made through the fake sender.
type call struct {
	kind string // "literal", "key" or "paste"
	text string
}

type fakeSender struct {
	calls  []call
	failAt int // 1-based call number that fails; 0 never fails
}

func (f *fakeSender) record(kind, text string) error {
	f.calls = append(f.calls, call{kind, text})
	if f.failAt > 0 && len(f.calls) == f.failAt {
		return errors.New("can't find pane: dev:0.9")
	}
	return nil
}

func (f *fakeSender) SendLiteral(_ context.Context, _ model.Target, text string) error {
	return f.record("literal", text)
}

func (f *fakeSender) SendKey(_ context.Context, _ model.Target, key string) error {
	return f.record("key", key)
}

func (f *fakeSender) PasteText(_ context.Context, _ model.Target, text string) error {
	return f.record("paste", text)
}

var target = model.Target{Session: "dev", Window: "0", Pane: "1"}

func TestSend_SingleLine(t *testing.T) {
	s := &fakeSender{}
	r, err := New(s).Send(context.Background(), target, "echo hi", "")
	require.NoError(t, err)

	assert.Equal(t, []call{{"literal", "echo hi"}}, s.calls)
	assert.Equal(t, 1, r.Injections)
	assert.False(t, r.Partial())
}

func TestSend_MultiLineWithFinalEnter(t *testing.T) {
	s := &fakeSender{}
	r, err := New(s).Send(context.Background(), target, "a\nb\nc", "Enter")
	require.NoError(t, err)

	assert.Equal(t, []call{
		{"literal", "a"},
		{"key", "Enter"},
		{"literal", "b"},
		{"key", "Enter"},
		{"literal", "c"},
		{"key", "Enter"},
	}, s.calls)
	assert.Equal(t, 3, r.LinesSent)
	assert.Equal(t, 3, r.KeysSent)
	assert.Equal(t, 6, r.Injections)
}

func TestSend_PreservesWhitespaceAndQuotes(t *testing.T) {
	s := &fakeSender{}
	text := "def f():\n    return 'it''s'  \n\t\\done"
	_, err := New(s).Send(context.Background(), target, text, "")
	require.NoError(t, err)

	assert.Equal(t, []call{
		{"literal", "def f():"},
		{"key", "Enter"},
		{"literal", "    return 'it''s'  "},
		{"key", "Enter"},
		{"literal", "\t\\done"},
	}, s.calls)
}

func TestSend_CRLF(t *testing.T) {
	s := &fakeSender{}
	_, err := New(s).Send(context.Background(), target, "x\r\ny", "")
	require.NoError(t, err)

	assert.Equal(t, []call{{"literal", "x"}, {"key", "Enter"}, {"literal", "y"}}, s.calls)
}

func TestSend_EmptyLineIsOnlyALineBreak(t *testing.T) {
	s := &fakeSender{}
	r, err := New(s).Send(context.Background(), target, "a\n\nb", "")
	require.NoError(t, err)

	assert.Equal(t, []call{{"literal", "a"}, {"key", "Enter"}, {"key", "Enter"}, {"literal", "b"}}, s.calls)
	assert.Equal(t, 3, r.LinesSent)
	assert.Equal(t, 2, r.KeysSent)
	assert.Equal(t, 4, r.Injections)
	assert.Equal(t, len(s.calls), r.Injections)
}

func TestSend_LiteralEnterIsNotAKey(t *testing.T) {
	s := &fakeSender{}
	_, err := New(s).Send(context.Background(), target, "Enter", "")
	require.NoError(t, err)

	assert.Equal(t, []call{{"literal", "Enter"}}, s.calls)
}

func TestSend_FinalKeysNormalized(t *testing.T) {
	s := &fakeSender{}
	_, err := New(s).Send(context.Background(), target, "ls", "Enter, Space ,")
	require.NoError(t, err)

	assert.Equal(t, []call{{"literal", "ls"}, {"key", "Enter"}, {"key", "Space"}}, s.calls)
}

func TestSend_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n", "\t \r\n"} {
		s := &fakeSender{}
		_, err := New(s).Send(context.Background(), target, text, "Enter")
		assert.True(t, errors.Is(err, ErrEmptyInput), "text %q", text)
		assert.Empty(t, s.calls)
	}
}

func TestSend_FailureMidSequenceIsPartial(t *testing.T) {
	s := &fakeSender{failAt: 3} // literal a, Enter, literal b fails
	r, err := New(s).Send(context.Background(), target, "a\nb\nc", "Enter")
	require.Error(t, err)

	assert.True(t, errors.Is(err, mux.ErrDispatch))
	assert.Len(t, s.calls, 3, "no retries and no further calls after a failure")
	assert.Equal(t, 1, r.LinesSent)
	assert.Equal(t, 2, r.Injections)
	assert.True(t, r.Partial())
}

func TestSend_FinalKeyFailure(t *testing.T) {
	s := &fakeSender{failAt: 2}
	r, err := New(s).Send(context.Background(), target, "ls", "Enter")
	require.Error(t, err)

	assert.True(t, errors.Is(err, mux.ErrDispatch))
	assert.Equal(t, 1, r.LinesSent)
	assert.False(t, r.Partial())
}

func TestSend_PasteMode(t *testing.T) {
	s := &fakeSender{}
	d := &Dispatcher{Mux: s, Mode: ModePaste}
	r, err := d.Send(context.Background(), target, "a\n  b", "Enter")
	require.NoError(t, err)

	assert.Equal(t, []call{{"paste", "a\n  b"}, {"key", "Enter"}}, s.calls)
	assert.Equal(t, 2, r.LinesSent)
}

func TestParseKeys(t *testing.T) {
	assert.Equal(t, []string{"Enter", "Space"}, ParseKeys("Enter, Space ,"))
	assert.Equal(t, []string{"C-c"}, ParseKeys(" C-c "))
	assert.Empty(t, ParseKeys(""))
	assert.Empty(t, ParseKeys(" , ,"))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a"}, SplitLines("a"))
	assert.Equal(t, []string{"  a", "b  ", ""}, SplitLines("  a\nb  \n"))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb"))
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]SendMode{
		"":             ModeLineByLine,
		"line-by-line": ModeLineByLine,
		"all-at-once":  ModeLineByLine,
		"Paste":        ModePaste,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", in)
	}
	_, err := ParseMode("telepathy")
	assert.Error(t, err)
}
