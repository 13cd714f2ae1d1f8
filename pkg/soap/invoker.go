package soap

import (
	"context"
	"encoding/xml"
	"errors"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InvokerOption configures an Invoker
type InvokerOption func(*Invoker)

// WithInvokerLogger sets the logger used to trace calls
func WithInvokerLogger(logger zerolog.Logger) InvokerOption {
	return func(i *Invoker) {
		i.logger = logger
	}
}

// Invoker builds namespaced request messages, dispatches them and unwraps the response.
// It holds no state beyond the message namespace and never retries.
type Invoker struct {
	transport Transport
	namespace string
	logger    zerolog.Logger
}

// NewInvoker creates an invoker whose messages are qualified by namespace
func NewInvoker(transport Transport, namespace string, options ...InvokerOption) *Invoker {
	invoker := &Invoker{
		transport: transport,
		namespace: namespace,
		logger:    log.Logger,
	}

	for _, option := range options {
		option(invoker)
	}

	return invoker
}

// Namespace returns the message namespace
func (i *Invoker) Namespace() string {
	return i.namespace
}

// Name qualifies a local name with the message namespace
func (i *Invoker) Name(local string) xml.Name {
	return xml.Name{Space: i.namespace, Local: local}
}

// Invoke sends operation with children appended in the given order and returns the
// {operation}Response element. Transport failures are returned as *CommunicationError,
// server faults as *Fault.
func (i *Invoker) Invoke(ctx context.Context, operation string, children ...*Element) (*Element, error) {
	message := NewElement(i.Name(operation), children...)
	action := i.namespace + "/" + operation
	callID := xid.New().String()
	started := time.Now()

	i.logger.Debug().
		Str("operation", operation).
		Str("call_id", callID).
		Msg("invoking SOAP operation")

	envelope, err := i.transport.RoundTrip(ctx, action, NewEnvelope(message))
	if err != nil {
		var commErr *CommunicationError
		if !errors.As(err, &commErr) {
			err = &CommunicationError{Operation: operation, Err: err}
		}
		i.logger.Error().
			Err(err).
			Str("operation", operation).
			Str("call_id", callID).
			Dur("duration", time.Since(started)).
			Msg("SOAP transport failure")
		return nil, err
	}

	response, err := EnvelopeMessage(envelope)
	if err != nil {
		if fault, ok := IsFault(err); ok {
			fault.Operation = operation
			i.logger.Warn().
				Str("operation", operation).
				Str("call_id", callID).
				Str("code", fault.Code).
				Str("message", fault.Message).
				Msg("SOAP fault")
		}
		return nil, err
	}

	if response.Name != i.Name(operation+"Response") {
		return nil, Malformed(operation, "unexpected response element %s", response.Name.Local)
	}

	i.logger.Debug().
		Str("operation", operation).
		Str("call_id", callID).
		Dur("duration", time.Since(started)).
		Msg("SOAP operation completed")

	return response, nil
}
