package chat

import "fmt"

// Renderer formats finished assistant text for display. Markdown
// rendering is an external collaborator; the presenter only hands it
// completed content.
type Renderer interface {
	Render(text string) (string, error)
}

// ResponseState describes what a response column shows for one turn.
type ResponseState string

const (
	// ResponseEmpty means this turn never requested the variant; the
	// column stays blank. Distinct from still waiting.
	ResponseEmpty ResponseState = "empty"

	// ResponseContent means the response arrived and Content holds the
	// rendered text.
	ResponseContent ResponseState = "content"

	// ResponseTyping means the response is still in flight and the
	// column shows a transient typing placeholder.
	ResponseTyping ResponseState = "typing"
)

// ResponseView is one response column of a presented turn.
type ResponseView struct {
	Variant Variant       `json:"variant"`
	State   ResponseState `json:"state"`
	Content string        `json:"content,omitempty"`
}

// TurnView is a renderable turn: the user utterance (when the turn has
// one) and the two response columns side by side.
type TurnView struct {
	HasUser   bool         `json:"has_user"`
	User      string       `json:"user,omitempty"`
	ResponseA ResponseView `json:"response_a"`
	ResponseB ResponseView `json:"response_b"`
}

// Transcript is the full renderable view of a turn sequence. Empty is
// set when the log held no turns at all, so callers show an explicit
// empty state instead of silently rendering nothing.
type Transcript struct {
	Turns []TurnView `json:"turns"`
	Empty bool       `json:"empty"`
}

// Present maps turns onto a Transcript. For each response slot,
// independently: a filled slot renders its content through r; an empty
// slot on the last turn shows a typing placeholder while awaiting is
// true; an empty slot anywhere else renders nothing. A missing user in
// the leading implicit turn renders no utterance block but both response
// columns are still present.
func Present(turns []Turn, awaiting bool, r Renderer) (Transcript, error) {
	if len(turns) == 0 {
		return Transcript{Turns: []TurnView{}, Empty: true}, nil
	}

	views := make([]TurnView, 0, len(turns))
	for i, turn := range turns {
		last := i == len(turns)-1

		view := TurnView{}
		if turn.User != nil {
			view.HasUser = true
			view.User = turn.User.Content
		}

		a, err := presentResponse(VariantA, turn.ResponseA, awaiting && last, r)
		if err != nil {
			return Transcript{}, err
		}
		b, err := presentResponse(VariantB, turn.ResponseB, awaiting && last, r)
		if err != nil {
			return Transcript{}, err
		}
		view.ResponseA = a
		view.ResponseB = b

		views = append(views, view)
	}

	return Transcript{Turns: views}, nil
}

func presentResponse(variant Variant, msg *Message, pending bool, r Renderer) (ResponseView, error) {
	if msg == nil {
		state := ResponseEmpty
		if pending {
			state = ResponseTyping
		}
		return ResponseView{Variant: variant, State: state}, nil
	}

	rendered, err := r.Render(msg.Content)
	if err != nil {
		return ResponseView{}, fmt.Errorf("rendering response %s: %w", variant, err)
	}

	return ResponseView{Variant: variant, State: ResponseContent, Content: rendered}, nil
}
