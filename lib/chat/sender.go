package chat

import (
	"context"
	"time"

	"github.com/chatlink/chatlink/lib/payload"
	"github.com/chatlink/chatlink/lib/random"
	"github.com/chatlink/chatlink/link"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"
)

// Transport is the chat channel messages are sent over
type Transport interface {
	SendMessage(ctx context.Context, text string) error
}

// Sender sends payloads as paced chat messages
type Sender struct {
	transport Transport
	limiter   *rate.Limiter
	maxLen    int
	method    payload.Method
	timeout   time.Duration
}

// NewSender makes a Sender for t using the message length, rate and
// compression from the config in ctx
func NewSender(ctx context.Context, t Transport) *Sender {
	ci := link.GetConfig(ctx)
	limit := rate.Limit(ci.MessageRate)
	if ci.MessageRate <= 0 {
		limit = rate.Inf
	}
	burst := ci.MessageBurst
	if burst < 1 {
		burst = 1
	}
	return &Sender{
		transport: t,
		limiter:   rate.NewLimiter(limit, burst),
		maxLen:    ci.MessageLength,
		method:    ci.Compression,
		timeout:   ci.TransferTimeout,
	}
}

// Messages packs data and splits it into the messages for transfer id
func (s *Sender) Messages(id uint32, data []byte) ([]string, error) {
	text, err := payload.Pack(data, s.method)
	if err != nil {
		return nil, err
	}
	msgs, err := Split(id, text, s.maxLen)
	if err != nil {
		return nil, err
	}
	for _, msg := range msgs {
		if !norm.NFC.IsNormalString(msg) {
			return nil, errors.Errorf("transfer %08x: message not in normal form", id)
		}
	}
	return msgs, nil
}

// Send data over the transport returning the transfer id used. It
// blocks until all the messages are sent, the transfer timeout
// expires or ctx is cancelled.
func (s *Sender) Send(ctx context.Context, data []byte) (uint32, error) {
	id, err := random.Uint32()
	if err != nil {
		return 0, err
	}
	msgs, err := s.Messages(id, data)
	if err != nil {
		return id, err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	link.Infof(nil, "transfer %08x: sending %s as %v messages", id, humanize.Bytes(uint64(len(data))), link.LogValue("parts", len(msgs)))
	for i, msg := range msgs {
		if err := s.limiter.Wait(ctx); err != nil {
			return id, errors.Wrapf(err, "transfer %08x: waiting to send part %d/%d", id, i+1, len(msgs))
		}
		if err := s.transport.SendMessage(ctx, msg); err != nil {
			return id, errors.Wrapf(err, "transfer %08x: sending part %d/%d", id, i+1, len(msgs))
		}
	}
	return id, nil
}
