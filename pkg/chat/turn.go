package chat

// Turn pairs one user utterance with up to two competing assistant
// responses. User is nil for an implicit leading turn, formed when
// assistant output precedes any user input in the log.
type Turn struct {
	User      *Message `json:"user,omitempty"`
	ResponseA *Message `json:"response_a,omitempty"`
	ResponseB *Message `json:"response_b,omitempty"`
}

// Reconstruct folds an ordered message log into an ordered sequence of
// turns in a single linear pass:
//
//   - A user message flushes the open turn (if any) and opens a new one.
//   - An assistant message attaches to the open turn, opening an implicit
//     user-less turn when none is open. Its variant decides the slot;
//     a later message of the same variant within one turn overwrites the
//     earlier occupant (last write wins, no accumulation).
//   - Messages with any other role are ignored.
//
// The trailing open turn is flushed after the pass. A nil or empty log
// yields an empty sequence. Reconstruct never fails and is idempotent:
// the same log always produces a structurally identical result.
func Reconstruct(messages []Message) []Turn {
	turns := []Turn{}
	var current *Turn

	for i := range messages {
		msg := &messages[i]

		switch msg.Role {
		case RoleUser:
			if current != nil {
				turns = append(turns, *current)
			}
			current = &Turn{User: msg}

		case RoleAssistant:
			if current == nil {
				// Assistant output before any user input collects
				// into an implicit leading turn.
				current = &Turn{}
			}
			if NormalizeVariant(msg.Variant) == VariantB {
				current.ResponseB = msg
			} else {
				current.ResponseA = msg
			}
		}
	}

	if current != nil {
		turns = append(turns, *current)
	}

	return turns
}
