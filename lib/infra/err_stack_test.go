package infra

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestFrameFormat(t *testing.T) {
	es := NewErrorStack("boom").(ErrorStack)
	require.NotEmpty(t, es.Frames())
	frame := es.Frames()[0]

	require.Equal(t, "err_stack_test.go", fmt.Sprintf("%s", frame))
	require.Equal(t, "TestFrameFormat", fmt.Sprintf("%n", frame))
	require.True(t, strings.HasPrefix(fmt.Sprintf("%v", frame), "err_stack_test.go:"))
	require.Contains(t, fmt.Sprintf("%+s", frame), "lib/infra.TestFrameFormat\n\t")

	require.Equal(t, "unknownFile", fmt.Sprintf("%s", Frame(0)))
	require.Equal(t, "unknownFunc", fmt.Sprintf("%n", Frame(0)))
	require.Equal(t, "0", fmt.Sprintf("%d", Frame(0)))
	text, err := Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(text))
}

func TestErrorStackWrap(t *testing.T) {
	base := errors.New("base")
	require.Nil(t, WrapErrorStack(nil))
	require.Nil(t, WrapErrorStackWithMessage(nil, "ignored"))

	wrapped := WrapErrorStack(base)
	require.ErrorIs(t, wrapped, base)
	require.Equal(t, "base", wrapped.Error())
	require.Same(t, wrapped, WrapErrorStack(wrapped))

	withMsg := WrapErrorStackWithMessage(base, "ctx")
	require.ErrorIs(t, withMsg, base)
	require.Equal(t, "ctx: base", withMsg.Error())
}

func TestErrorStackMarshalLogObject(t *testing.T) {
	err := WrapErrorStackWithMessage(errors.New("base"), "ctx")
	es, ok := err.(ErrorStack)
	require.True(t, ok)

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, es.MarshalLogObject(enc))
	require.Equal(t, "ctx: base", enc.Fields["error"])
	stack, ok := enc.Fields["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, stack)
	require.Contains(t, stack[0], "TestErrorStackMarshalLogObject")
}
