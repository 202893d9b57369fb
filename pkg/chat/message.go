// Package chat reconstructs a flat, chronologically-ordered message log
// into conversational turns, each pairing one user utterance with up to
// two competing assistant responses (variant A and variant B).
package chat

import "strings"

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Variant labels one of the two concurrently generated assistant
// responses being compared.
type Variant string

const (
	VariantA Variant = "A"
	VariantB Variant = "B"
)

// Message is a single entry in the conversation log.
type Message struct {
	ID      string  `json:"id,omitempty"`      // Opaque identifier, may be empty for transient items
	Role    Role    `json:"role"`              // "user" or "assistant"
	Variant Variant `json:"variant,omitempty"` // Assistant messages only: "A" or "B"
	Content string  `json:"content"`           // Text payload, may be empty
}

// NormalizeVariant maps a raw variant label onto VariantA or VariantB.
// Matching is case-insensitive; anything that is not exactly "B" after
// uppercasing (including a missing label) falls back to VariantA.
func NormalizeVariant(v Variant) Variant {
	if strings.ToUpper(string(v)) == string(VariantB) {
		return VariantB
	}
	return VariantA
}
