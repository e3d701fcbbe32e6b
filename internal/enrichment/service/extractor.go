package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"estate_portal_backend/internal/enrichment/repository"
)

// loadSignals fetches a lead together with its interaction history. A missing
// lead surfaces repository.ErrLeadNotFound and aborts the calling stage.
func (s *Service) loadSignals(ctx context.Context, leadID uuid.UUID) (repository.Lead, []repository.Interaction, error) {
	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return repository.Lead{}, nil, err
	}
	interactions, err := s.repo.ListInteractions(ctx, leadID)
	if err != nil {
		return repository.Lead{}, nil, err
	}
	return lead, interactions, nil
}

// buildScanBuffer flattens the textual surface of a lead into one lowercased
// buffer: description, notes and every interaction's subject and description.
func buildScanBuffer(lead repository.Lead, interactions []repository.Interaction) string {
	var b strings.Builder
	b.WriteString(lead.Description)
	if lead.Notes != nil {
		b.WriteByte(' ')
		b.WriteString(*lead.Notes)
	}
	for _, item := range interactions {
		b.WriteByte(' ')
		b.WriteString(item.Subject)
		if item.Description != nil {
			b.WriteByte(' ')
			b.WriteString(*item.Description)
		}
	}
	return strings.ToLower(b.String())
}
