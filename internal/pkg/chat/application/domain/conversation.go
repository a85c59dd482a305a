package chat

import "time"

// Conversation is the canonical thread identity for an unordered pair of
// subjects. The pair is stored sorted so {A,B} and {B,A} always map to the
// same record; uniqueness of the sorted pair is enforced by the store.
type Conversation struct {
	ID             string    `db:"id"`
	ParticipantLow string    `db:"participant_low"`
	ParticipantHi  string    `db:"participant_high"`
	CreatedAt      time.Time `db:"created_at"`
}

// Participants returns the sorted pair as a slice.
func (c Conversation) Participants() []string {
	return []string{c.ParticipantLow, c.ParticipantHi}
}

// Includes tells whether subjectID is one of the two participants.
func (c Conversation) Includes(subjectID string) bool {
	return subjectID == c.ParticipantLow || subjectID == c.ParticipantHi
}

// CanonicalPair sorts two distinct subject ids into their canonical (low, high)
// order. Both ids must be non-empty and distinct.
func CanonicalPair(idA, idB string) (low, high string, err error) {
	if idA == "" || idB == "" {
		return "", "", ErrEmptyParticipant
	}
	if idA == idB {
		return "", "", ErrSameParticipant
	}
	if idA < idB {
		return idA, idB, nil
	}
	return idB, idA, nil
}

// ConversationSummary pairs a conversation with its most recent message for
// listing views. LastMessage is nil when the conversation has no messages yet.
type ConversationSummary struct {
	Conversation Conversation
	LastMessage  *Message
}
