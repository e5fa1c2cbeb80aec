package propagate

import (
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// frameStack is an ordered sequence of pushed Contexts, oldest first. The
// last frame is the innermost scope and wins lookups. Frames are cloned on
// push and never mutated afterwards.
type frameStack struct {
	frames []Context
}

func (s *frameStack) push(c Context) {
	s.frames = append(s.frames, c.Clone())
}

// pop removes the innermost frame. Popping an empty stack is a no-op and
// reports false, so a desynchronized guard cannot crash the logging path.
func (s *frameStack) pop() bool {
	if len(s.frames) == 0 {
		return false
	}
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return true
}

// lookup scans frames innermost-first and short-circuits on the first match.
// Precedence is identical to merged(), without building the full merge.
func (s *frameStack) lookup(key string) mo.Option[string] {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if value, ok := s.frames[i][key]; ok {
			return mo.Some(value)
		}
	}
	return mo.None[string]()
}

// merged folds all frames bottom-to-top into one effective Context; frames
// pushed later overwrite keys set by earlier ones.
func (s *frameStack) merged() Context {
	result := Context{}
	for _, frame := range s.frames {
		result = lo.Assign(result, frame)
	}
	return result
}

func (s *frameStack) empty() bool {
	return len(s.frames) == 0
}
