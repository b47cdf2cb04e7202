package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/hob/internal/adapters/telemetry"
	"go.trai.ch/hob/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_StartAndEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	tracer := tp.Tracer("test")

	var parentID string
	gomock.InOrder(
		renderer.EXPECT().OnTaskStart(gomock.Any(), "", "zlib", gomock.Any()).
			Do(func(id, _, _ string, _ time.Time) { parentID = id }),
		renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "zlib:build", gomock.Any()).
			Do(func(_, parent, _ string, _ time.Time) { assert.Equal(t, parentID, parent) }),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any()).
			Do(func(_ string, _ time.Time, err error) {
				require.Error(t, err)
				assert.Equal(t, "exit status 1", err.Error())
			}),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil),
	)

	ctx, recipe := tracer.Start(context.Background(), "zlib")
	_, phase := tracer.Start(ctx, "zlib:build")
	phase.SetStatus(codes.Error, "exit status 1")
	phase.End()
	recipe.End()
}

func TestBridge_ErrorWithoutDescription(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))

	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ string, _ time.Time, err error) {
			require.Error(t, err)
			assert.Equal(t, "phase failed", err.Error())
		})

	_, span := tp.Tracer("test").Start(context.Background(), "zlib")
	span.SetStatus(codes.Error, "")
	span.End()
}

func TestBridge_NilRenderer(t *testing.T) {
	bridge := telemetry.NewBridge(nil)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))

	_, span := tp.Tracer("test").Start(context.Background(), "zlib")
	span.End()

	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}
