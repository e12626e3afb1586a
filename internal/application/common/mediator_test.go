package common

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingRequest struct{ Value int }

type pingHandler struct{ err error }

func (h *pingHandler) Handle(ctx context.Context, request Request) (Response, error) {
	if h.err != nil {
		return nil, h.err
	}
	return request.(*pingRequest).Value * 2, nil
}

type captureLogger struct {
	levels   []string
	messages []string
}

func (c *captureLogger) Log(level, message string, metadata map[string]interface{}) {
	c.levels = append(c.levels, level)
	c.messages = append(c.messages, message)
}

func TestMediator_DispatchesByRequestType(t *testing.T) {
	m := NewMediator()
	require.NoError(t, RegisterHandler[*pingRequest](m, &pingHandler{}))

	resp, err := m.Send(context.Background(), &pingRequest{Value: 21})

	require.NoError(t, err)
	assert.Equal(t, 42, resp)
}

func TestMediator_RejectsDuplicateAndNil(t *testing.T) {
	m := NewMediator()
	require.NoError(t, RegisterHandler[*pingRequest](m, &pingHandler{}))

	assert.Error(t, RegisterHandler[*pingRequest](m, &pingHandler{}))
	assert.Error(t, m.Register(nil, &pingHandler{}))
	assert.Error(t, m.Register(reflect.TypeOf(&pingRequest{}), nil))

	_, err := m.Send(context.Background(), nil)
	assert.Error(t, err)
}

func TestMediator_MiddlewareOrder(t *testing.T) {
	// Arrange
	m := NewMediator()
	require.NoError(t, RegisterHandler[*pingRequest](m, &pingHandler{}))
	calls := make([]string, 0)
	for _, name := range []string{"outer", "inner"} {
		name := name
		m.Use(func(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
			calls = append(calls, name)
			return next(ctx, request)
		})
	}

	// Act
	_, err := m.Send(context.Background(), &pingRequest{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

func TestLoggingMiddleware_LogsFailures(t *testing.T) {
	// Arrange
	logger := &captureLogger{}
	ctx := WithLogger(context.Background(), logger)
	m := NewMediator()
	m.Use(LoggingMiddleware)
	require.NoError(t, RegisterHandler[*pingRequest](m, &pingHandler{err: errors.New("boom")}))

	// Act
	_, err := m.Send(ctx, &pingRequest{})

	// Assert
	require.Error(t, err)
	assert.Equal(t, []string{LevelDebug, LevelError}, logger.levels)
	assert.Contains(t, logger.messages[1], "boom")
}

func TestLoggerFromContext_FallsBackToNoOp(t *testing.T) {
	assert.NotNil(t, LoggerFromContext(context.Background()))
	assert.NotPanics(t, func() {
		LoggerFromContext(context.Background()).Log(LevelInfo, "ignored", nil)
	})
}
