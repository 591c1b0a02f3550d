// Package conversation keeps short-lived chat context in memory for analyst
// threads that are not attached to a saved dashboard. Dashboard-bound
// history is persisted with the dashboard itself.
package conversation

import (
	"sync"
	"time"
)

// Message is a single chat turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type thread struct {
	messages     []Message
	lastAccessed time.Time
}

// Store holds per-thread message history with a message cap and an age
// limit. Expired threads are dropped by a background sweep.
type Store struct {
	mu          sync.Mutex
	threads     map[string]*thread
	maxMessages int
	maxAge      time.Duration
	done        chan struct{}
}

func NewStore(maxMessages int, maxAge time.Duration) *Store {
	s := &Store{
		threads:     make(map[string]*thread),
		maxMessages: maxMessages,
		maxAge:      maxAge,
		done:        make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Add appends a message to a thread, creating it on first use and trimming
// to the message cap.
func (s *Store) Add(threadID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.threads[threadID]
	now := time.Now()
	if t == nil || now.Sub(t.lastAccessed) > s.maxAge {
		t = &thread{}
		s.threads[threadID] = t
	}
	t.lastAccessed = now
	t.messages = append(t.messages, Message{Role: role, Content: content, Timestamp: now})
	if len(t.messages) > s.maxMessages {
		t.messages = t.messages[len(t.messages)-s.maxMessages:]
	}
}

// History returns up to n most recent messages for a thread. Expired or
// unknown threads yield nothing.
func (s *Store) History(threadID string, n int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.threads[threadID]
	if t == nil || time.Since(t.lastAccessed) > s.maxAge {
		return nil
	}
	messages := t.messages
	if n > 0 && len(messages) > n {
		messages = messages[len(messages)-n:]
	}
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

// Close stops the background sweep.
func (s *Store) Close() {
	close(s.done)
}

func (s *Store) sweep() {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for id, t := range s.threads {
				if time.Since(t.lastAccessed) > s.maxAge {
					delete(s.threads, id)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}
