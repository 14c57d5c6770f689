package interfaces

import (
	"context"
)

// RewriteInput carries the scraped text offered to the rewrite collaborator
type RewriteInput struct {
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
}

// RewriteResult carries the rewritten text. Empty fields mean the collaborator
// chose not to change that field.
type RewriteResult struct {
	Title            string `json:"title,omitempty"`
	ShortDescription string `json:"short_description,omitempty"`
	LongDescription  string `json:"long_description,omitempty"`
}

// RewriteService improves low-quality scraped descriptions. It is best effort:
// callers keep the scraped text on any error, and a nil service means the
// collaborator is absent (a constructor-time decision, not a runtime check).
type RewriteService interface {
	Rewrite(ctx context.Context, in *RewriteInput) (*RewriteResult, error)
}
