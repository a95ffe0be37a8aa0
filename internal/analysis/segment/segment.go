// Package segment orders a conversation's message stream and partitions it
// into visitor and counterparty turns ahead of signal extraction.
package segment

import (
	"fmt"
	"sort"
	"strings"

	"chatleads/internal/analysis/normalize"
	"chatleads/internal/models"
)

// Config controls author classification and noise filtering.
type Config struct {
	// NonVisitorAuthorIDs is the set of author identifiers known to belong
	// to operators, bots or system accounts. Any author outside the set,
	// or an absent author, is treated as a visitor.
	NonVisitorAuthorIDs map[int64]bool

	// NoiseMarkers are substrings that mark system lifecycle messages
	// ("restarting", "visitor left"). Matching messages carry no semantic
	// signal and are dropped before analysis.
	NoiseMarkers []string
}

// DefaultConfig mirrors the production livechat deployment: operator
// partner IDs 2, 7 and 8, Spanish lifecycle markers.
func DefaultConfig() Config {
	return Config{
		NonVisitorAuthorIDs: map[int64]bool{2: true, 7: true, 8: true},
		NoiseMarkers:        []string{"Reiniciando", "abandonó"},
	}
}

// NewConfig builds a Config from flat lists, the shape configuration
// files carry.
func NewConfig(nonVisitorIDs []int64, noiseMarkers []string) Config {
	ids := make(map[int64]bool, len(nonVisitorIDs))
	for _, id := range nonVisitorIDs {
		ids[id] = true
	}
	return Config{NonVisitorAuthorIDs: ids, NoiseMarkers: noiseMarkers}
}

// Turns is the segmented view of one conversation.
type Turns struct {
	// Visitor holds normalized visitor-authored texts in chronological
	// order.
	Visitor []string
	// Counterparty holds normalized operator/bot texts in chronological
	// order.
	Counterparty []string
	// Transcript interleaves both sides as "[author]: text" lines.
	Transcript []string
	// MessageCount is the total number of fetched messages, noise
	// included; it feeds the engagement term of the score.
	MessageCount int
}

// LeadCandidate reports whether the conversation has any visitor turn left
// after filtering. Conversations without one are excluded from lead output
// but still counted in corpus session statistics.
func (t Turns) LeadCandidate() bool { return len(t.Visitor) > 0 }

// VisitorJoined returns all visitor turns joined with single spaces, the
// text the classifier's lexical rules run against.
func (t Turns) VisitorJoined() string { return strings.Join(t.Visitor, " ") }

// Role derives the author role of a message under cfg. Missing or unknown
// authors default to visitor: over-detecting visitor signal is preferred
// over losing it.
func Role(m models.Message, cfg Config) models.AuthorRole {
	if m.AuthorID == 0 || !cfg.NonVisitorAuthorIDs[m.AuthorID] {
		return models.RoleVisitor
	}
	return models.RoleOperator
}

// Split sorts the conversation's messages by timestamp ascending (stable on
// ties, preserving fetch order), drops noise messages and partitions the
// rest into visitor and counterparty turns.
func Split(conv models.Conversation, cfg Config) Turns {
	msgs := make([]models.Message, len(conv.Messages))
	copy(msgs, conv.Messages)
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].FetchIndex < msgs[j].FetchIndex
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})

	turns := Turns{MessageCount: len(msgs)}
	for _, m := range msgs {
		text := normalize.Text(m.RawBody)
		if text == "" || isNoise(text, cfg.NoiseMarkers) {
			continue
		}

		if Role(m, cfg) == models.RoleVisitor {
			turns.Visitor = append(turns.Visitor, text)
			turns.Transcript = append(turns.Transcript, fmt.Sprintf("[Visitante]: %s", text))
		} else {
			turns.Counterparty = append(turns.Counterparty, text)
			name := m.AuthorName
			if name == "" {
				name = "Bot"
			}
			turns.Transcript = append(turns.Transcript, fmt.Sprintf("[%s]: %s", name, text))
		}
	}
	return turns
}

func isNoise(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
