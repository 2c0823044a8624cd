package component

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"opencsg.com/auth-exerciser/common/errorx"
	"opencsg.com/auth-exerciser/common/types"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
		_ = tp.Shutdown(context.TODO())
	})
	return sr
}

func spanNamed(spans []sdktrace.ReadOnlySpan, name string) sdktrace.ReadOnlySpan {
	for _, s := range spans {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

func TestExerciserComponent_Run_Spans(t *testing.T) {
	sr := recordSpans(t)
	te := newTestExerciser(t)

	_, err := te.Run(context.TODO(), types.ScenarioRegisterDelete)
	require.NoError(t, err)

	spans := sr.Ended()
	root := spanNamed(spans, "scenario register-delete")
	require.NotNil(t, root)
	require.Equal(t, codes.Unset, root.Status().Code)

	for _, name := range []string{"send-code", "obtain-code", "register", "delete-account"} {
		s := spanNamed(spans, name)
		require.NotNil(t, s, name)
		require.Equal(t, root.SpanContext().SpanID(), s.Parent().SpanID(), name)
	}

	var clientSpans int
	for _, s := range spans {
		if s.SpanKind() == trace.SpanKindClient {
			clientSpans++
			require.Equal(t, root.SpanContext().TraceID(), s.SpanContext().TraceID())
		}
	}
	// send-code, register and delete-account go over the wire
	require.Equal(t, 3, clientSpans)
}

func TestExerciserComponent_Run_SpanRecordsFailure(t *testing.T) {
	sr := recordSpans(t)
	me := newMockedExerciser(t)
	me.auth.On("Login", mock.Anything, mock.Anything).Return(nil, errors.Join(errorx.ErrTransport, errors.New("connection refused")))

	_, err := me.Run(context.TODO(), types.ScenarioLoginDelete)
	require.Error(t, err)

	spans := sr.Ended()
	login := spanNamed(spans, "login")
	require.NotNil(t, login)
	require.Equal(t, codes.Error, login.Status().Code)
	root := spanNamed(spans, "scenario login-delete")
	require.NotNil(t, root)
	require.Equal(t, codes.Error, root.Status().Code)
	require.Nil(t, spanNamed(spans, "delete-account"))
}
