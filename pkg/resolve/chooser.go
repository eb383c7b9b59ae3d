// Package resolve implements the two entity-resolution policies, CHOOSE and
// MERGE, over a set of ingested Packs.
package resolve

import "github.com/packforge/combiner/pkg/model"

// Holder is the set of packs that contain a given entity, keyed by pack
// display name.
type Holder map[string]*model.Entity

// Chooser abstracts the single interactive decision point both resolution
// policies need: picking one pack out of several that conflict, and
// surfacing a message. Every prompt in the core goes through this so the
// engines themselves stay deterministic and testable with a scripted
// chooser.
type Chooser interface {
	Pick(entityName string, holder Holder) (packName string, err error)
	Notify(message string)
}

// ScriptedChooser replays a fixed sequence of answers, for tests driving the
// resolution engines without a terminal.
type ScriptedChooser struct {
	Answers []string
	Notices []string

	next int
}

// NewScriptedChooser returns a Chooser that answers each Pick call with the
// next entry of answers, in order.
func NewScriptedChooser(answers ...string) *ScriptedChooser {
	return &ScriptedChooser{Answers: answers}
}

func (s *ScriptedChooser) Pick(_ string, holder Holder) (string, error) {
	if s.next >= len(s.Answers) {
		for name := range holder {
			return name, nil
		}
		return "", nil
	}
	answer := s.Answers[s.next]
	s.next++
	return answer, nil
}

func (s *ScriptedChooser) Notify(message string) {
	s.Notices = append(s.Notices, message)
}
