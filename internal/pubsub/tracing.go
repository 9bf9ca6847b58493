package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// The bus copies messages between goroutines without their context, so the
// trace travels in the metadata.
var propagator = propagation.TraceContext{}

// Span names are "event.publish <topic>" and "event.process <topic>". The
// payload itself is never recorded: events carry customer names.
func startEventSpan(tracer trace.Tracer, op, topic string, msg *message.Message, kind trace.SpanKind) (context.Context, trace.Span) {
	ctx := msg.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return tracer.Start(ctx, "event."+op+" "+topic,
		trace.WithSpanKind(kind),
		trace.WithAttributes(
			attribute.String("messaging.system", "watermill"),
			attribute.String("messaging.operation", op),
			attribute.String("messaging.destination.name", topic),
			attribute.String("messaging.message.id", msg.UUID),
			attribute.Int("messaging.message.body.size", len(msg.Payload)),
			attribute.String("zina.customer_id", msg.Metadata.Get(metaKeyUserID)),
		),
	)
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// traceProcess wraps a subscription handler in a consumer span that becomes
// the parent of everything the handler does.
func traceProcess(tracer trace.Tracer, topic string, h message.NoPublishHandlerFunc) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		msg.SetContext(propagator.Extract(msg.Context(), propagation.MapCarrier(msg.Metadata)))
		ctx, span := startEventSpan(tracer, "process", topic, msg, trace.SpanKindConsumer)
		defer span.End()

		msg.SetContext(ctx)
		if err := h(msg); err != nil {
			fail(span, err)
			return err
		}
		return nil
	}
}

// tracedPublisher records a producer span per published message.
type tracedPublisher struct {
	message.Publisher
	tracer trace.Tracer
}

func (p tracedPublisher) Publish(topic string, messages ...*message.Message) error {
	spans := make([]trace.Span, 0, len(messages))
	for _, msg := range messages {
		ctx, span := startEventSpan(p.tracer, "publish", topic, msg, trace.SpanKindProducer)
		msg.SetContext(ctx)
		propagator.Inject(ctx, propagation.MapCarrier(msg.Metadata))
		spans = append(spans, span)
	}

	err := p.Publisher.Publish(topic, messages...)
	for _, span := range spans {
		if err != nil {
			fail(span, err)
		}
		span.End()
	}
	return err
}
