// prompt_set.go - Prompt collection with a single tagged selection

package settings

import "fmt"

// NoActivePrompt marks a PromptSet without a selection
const NoActivePrompt = -1

// PromptSet holds the configured prompts and the index of the active one.
// IsEnabled flags on the stored prompts are ignored; Export rebuilds them from active.
type PromptSet struct {
	prompts []Prompt
	active  int
}

// NewPromptSet builds a set from persisted prompts. The first prompt flagged
// IsEnabled becomes active; any later flags are dropped.
func NewPromptSet(prompts []Prompt) PromptSet {
	set := PromptSet{
		prompts: make([]Prompt, len(prompts)),
		active:  NoActivePrompt,
	}
	for i, p := range prompts {
		set.prompts[i] = p.Clone()
		set.prompts[i].IsEnabled = false
		if p.IsEnabled && set.active == NoActivePrompt {
			set.active = i
		}
	}
	return set
}

// Len returns the number of prompts
func (s PromptSet) Len() int {
	return len(s.prompts)
}

// ActiveIndex returns the active index or NoActivePrompt
func (s PromptSet) ActiveIndex() int {
	return s.active
}

// Active returns a copy of the active prompt
func (s PromptSet) Active() (Prompt, bool) {
	if s.active < 0 || s.active >= len(s.prompts) {
		return Prompt{}, false
	}
	p := s.prompts[s.active].Clone()
	p.IsEnabled = true
	return p, true
}

// Select makes the prompt at index the only active one
func (s *PromptSet) Select(index int) error {
	if index < 0 || index >= len(s.prompts) {
		return fmt.Errorf("prompt index %d out of range (have %d prompts)", index, len(s.prompts))
	}
	s.active = index
	return nil
}

// Export returns the prompts in persisted form with exactly one IsEnabled flag
func (s PromptSet) Export() []Prompt {
	out := make([]Prompt, len(s.prompts))
	for i, p := range s.prompts {
		out[i] = p.Clone()
		out[i].IsEnabled = i == s.active
	}
	return out
}
