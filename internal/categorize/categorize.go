package categorize

import (
	"context"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"
)

// Categorizer assigns a category to observation text and flags spam.
type Categorizer interface {
	Categorize(ctx context.Context, text, fallbackType string) (category string, spam bool, err error)
}

// Noop returns the caller-supplied type and never flags spam.
type Noop struct{}

func (Noop) Categorize(_ context.Context, _ string, fallbackType string) (string, bool, error) {
	return domain.NormalizeCategory(fallbackType), false, nil
}
