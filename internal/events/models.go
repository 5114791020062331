// Package events carries the append-only notification stream: one event per
// successful mutation, ordering matching mutation order. Keep events
// transport-agnostic so stores and sinks can fan out.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"chainpass/internal/domain"
	id "chainpass/pkg/domain"
)

// Kind names an event type.
type Kind string

const (
	KindProjectAdded     Kind = "project_added"
	KindCredentialIssued Kind = "credential_issued"
)

// Event is the envelope written to sinks. Key groups events for partition
// ordering (project id or owner address).
type Event struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// ProjectAdded is emitted after a successful registry append.
type ProjectAdded struct {
	ProjectID  int       `json:"project_id"`
	Title      string    `json:"title"`
	ContentRef string    `json:"content_ref"`
	CreatedAt  time.Time `json:"created_at"`
}

// CredentialIssued is emitted after a successful credential issuance.
type CredentialIssued struct {
	Owner   id.Address  `json:"owner"`
	TokenID uint64      `json:"token_id"`
	Tier    domain.Tier `json:"tier"`
	Score   int         `json:"score"`
}

// NewProjectAdded builds the envelope for a registry append.
func NewProjectAdded(entry domain.ProjectEntry) Event {
	payload, _ := json.Marshal(ProjectAdded{
		ProjectID:  entry.ID,
		Title:      entry.Title,
		ContentRef: entry.ContentRef,
		CreatedAt:  entry.CreatedAt,
	})
	return Event{
		ID:         uuid.NewString(),
		Kind:       KindProjectAdded,
		Key:        "project",
		OccurredAt: entry.CreatedAt,
		Payload:    payload,
	}
}

// NewCredentialIssued builds the envelope for a credential issuance.
func NewCredentialIssued(cred domain.Credential) Event {
	payload, _ := json.Marshal(CredentialIssued{
		Owner:   cred.Owner,
		TokenID: cred.TokenID,
		Tier:    cred.Tier,
		Score:   cred.Score,
	})
	return Event{
		ID:         uuid.NewString(),
		Kind:       KindCredentialIssued,
		Key:        cred.Owner.String(),
		OccurredAt: cred.IssuedAt,
		Payload:    payload,
	}
}
