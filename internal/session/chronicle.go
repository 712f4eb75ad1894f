package session

import "sync"

const OpeningLine = "The armies assemble. The Kingdom of Light prepares to strike."

// Chronicle is the display log of a game: every narrative delivered, in order,
// including placeholders for failed generations.
type Chronicle struct {
	mu       sync.RWMutex
	passages []string
}

func NewChronicle() *Chronicle {
	return &Chronicle{passages: []string{OpeningLine}}
}

func (c *Chronicle) Append(passage string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passages = append(c.passages, passage)
}

func (c *Chronicle) Passages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := make([]string, len(c.passages))
	copy(res, c.passages)
	return res
}
