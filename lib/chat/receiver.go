package chat

import (
	"context"
	"sync"

	"github.com/chatlink/chatlink/link"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Receiver feeds chat messages to a Reassembler and hands completed
// payloads to its listeners
type Receiver struct {
	reassembler *Reassembler
	mu          sync.RWMutex
	listeners   []func(data []byte)
}

// NewReceiver makes a Receiver which drops partial transfers after the
// transfer timeout in the config in ctx
func NewReceiver(ctx context.Context) *Receiver {
	return &Receiver{
		reassembler: NewReassembler(link.GetConfig(ctx).TransferTimeout),
	}
}

// Listen registers fn to be called with every completed payload
func (r *Receiver) Listen(fn func(data []byte)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Pending returns the number of incomplete transfers
func (r *Receiver) Pending() int {
	return r.reassembler.Pending()
}

// Handle a chat message. Messages which aren't frames are ignored.
func (r *Receiver) Handle(msg string) error {
	data, complete, err := r.reassembler.Add(msg)
	if errors.Is(err, ErrNotAFrame) {
		return nil
	}
	if err != nil {
		link.Debugf(nil, "bad frame: %v", err)
		return err
	}
	if !complete {
		return nil
	}
	link.Infof(nil, "received payload of %s", humanize.Bytes(uint64(len(data))))
	r.mu.RLock()
	listeners := make([]func([]byte), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn(data)
	}
	return nil
}
