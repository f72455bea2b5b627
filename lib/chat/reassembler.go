package chat

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chatlink/chatlink/lib/payload"
	"github.com/chatlink/chatlink/link"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

// ErrInconsistentCount is returned when frames of one transfer
// disagree on the number of parts
var ErrInconsistentCount = errors.New("frame part count differs from earlier frames")

// transfer is a partially received payload
type transfer struct {
	id    uint32
	count int
	parts []string
	got   []bool
	have  int
	done  bool
}

// Reassembler collects the frames of transfers and returns each
// payload once all of its parts have arrived. Frames may arrive in
// any order and repeats are ignored, including repeats of a transfer
// which has already completed until it expires.
type Reassembler struct {
	mu      sync.Mutex
	pending *cache.Cache
}

// NewReassembler makes a Reassembler which forgets transfers which
// are not complete within expiry. An expiry of 0 keeps them forever.
func NewReassembler(expiry time.Duration) *Reassembler {
	r := &Reassembler{
		pending: cache.New(expiry, expiry),
	}
	r.pending.OnEvicted(func(key string, value interface{}) {
		t := value.(*transfer)
		r.mu.Lock()
		defer r.mu.Unlock()
		if !t.done {
			link.Infof(nil, "transfer %08x abandoned with %d/%d parts", t.id, t.have, t.count)
		}
	})
	return r
}

// Pending returns the number of incomplete transfers
func (r *Reassembler) Pending() (n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.pending.Items() {
		if !item.Object.(*transfer).done {
			n++
		}
	}
	return n
}

// Add a chat message. When msg completes a transfer the unpacked
// payload is returned with true.
func (r *Reassembler) Add(msg string) ([]byte, bool, error) {
	f, err := ParseFrame(msg)
	if err != nil {
		return nil, false, err
	}
	key := strconv.FormatUint(uint64(f.ID), 16)
	text, complete, err := r.add(key, f)
	if err != nil || !complete {
		return nil, false, err
	}
	data, err := payload.Unpack(text)
	if err != nil {
		return nil, false, errors.Wrapf(err, "transfer %08x", f.ID)
	}
	return data, true, nil
}

// add f to its transfer returning the packed text when complete
func (r *Reassembler) add(key string, f Frame) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var t *transfer
	if value, found := r.pending.Get(key); found {
		t = value.(*transfer)
	} else {
		t = &transfer{
			id:    f.ID,
			count: int(f.Count),
			parts: make([]string, f.Count),
			got:   make([]bool, f.Count),
		}
		r.pending.SetDefault(key, t)
	}
	if int(f.Count) != t.count {
		return "", false, errors.Wrapf(ErrInconsistentCount, "%v: expecting %d parts", f, t.count)
	}
	if t.done {
		link.Debugf(f, "transfer already complete")
		return "", false, nil
	}
	if t.got[f.Index] {
		link.Debugf(f, "duplicate ignored")
		return "", false, nil
	}
	t.parts[f.Index] = f.Chunk
	t.got[f.Index] = true
	t.have++
	link.Debugf(f, "received")
	if t.have < t.count {
		return "", false, nil
	}
	// keep the finished transfer so repeats of it are recognised
	text := strings.Join(t.parts, "")
	t.done = true
	t.parts, t.got = nil, nil
	return text, true, nil
}
