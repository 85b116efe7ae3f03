package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// StubClient is a deterministic, concurrency-safe test double. Replies are
// queued against prompt substrings and consumed in order, so a test can
// script an entire episode.
type StubClient struct {
	mu      sync.Mutex
	queue   []stubReply
	Default string
	Err     error
	calls   []string
}

type stubReply struct {
	match string
	reply string
}

// NewStubClient builds a stub whose unmatched calls return fallback.
func NewStubClient(fallback string) *StubClient {
	return &StubClient{Default: fallback}
}

// Queue registers a reply for the first future prompt containing match.
// An empty match matches any prompt.
func (s *StubClient) Queue(match, reply string) *StubClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, stubReply{match: match, reply: reply})
	return s
}

// Generate records the rendered prompt and pops the first queued reply
// whose match is contained in it.
func (s *StubClient) Generate(_ context.Context, req Request) (string, error) {
	prompt := req.Template.Render(req.Variables)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	for i, r := range s.queue {
		if r.match == "" || strings.Contains(prompt, r.match) {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return r.reply, nil
		}
	}
	if s.Default != "" {
		return s.Default, nil
	}
	return "", fmt.Errorf("llm: stub has no reply for prompt")
}

// Calls returns the rendered prompts seen so far.
func (s *StubClient) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount counts prompts containing match.
func (s *StubClient) CallCount(match string) int {
	n := 0
	for _, c := range s.Calls() {
		if strings.Contains(c, match) {
			n++
		}
	}
	return n
}
