package session

import (
	"sync"
	"time"
)

// NoticeKind classifies messages published to the user.
type NoticeKind string

const (
	NoticeInfo NoticeKind = "info"
	// NoticeWarning is informational and does not require acknowledgement.
	NoticeWarning NoticeKind = "warning"
	// NoticeError is a blocking notice the user has to see.
	NoticeError NoticeKind = "error"
)

// Notice is a sequenced user-facing message.
type Notice struct {
	Seq       int64      `json:"seq"`
	Timestamp time.Time  `json:"timestamp"`
	Kind      NoticeKind `json:"kind"`
	Op        string     `json:"op,omitempty"`
	JobID     string     `json:"jobId,omitempty"`
	Message   string     `json:"message"`
}

// Notices stores recent notices and provides incremental reads.
type Notices struct {
	mu         sync.RWMutex
	nextSeq    int64
	maxNotices int
	notices    []Notice
}

// NewNotices creates a bounded in-memory notice buffer.
func NewNotices(maxNotices int) *Notices {
	if maxNotices <= 0 {
		maxNotices = 100
	}

	return &Notices{
		maxNotices: maxNotices,
		notices:    make([]Notice, 0, maxNotices),
	}
}

// Publish appends one notice and assigns sequence and timestamp.
func (n *Notices) Publish(notice Notice) Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextSeq++
	notice.Seq = n.nextSeq
	if notice.Timestamp.IsZero() {
		notice.Timestamp = time.Now().UTC()
	}

	n.notices = append(n.notices, notice)
	if len(n.notices) > n.maxNotices {
		trim := len(n.notices) - n.maxNotices
		n.notices = append([]Notice(nil), n.notices[trim:]...)
	}

	return notice
}

// Since returns notices with sequence strictly greater than seq.
func (n *Notices) Since(seq int64) []Notice {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]Notice, 0, len(n.notices))
	for _, notice := range n.notices {
		if notice.Seq > seq {
			out = append(out, notice)
		}
	}
	return out
}
