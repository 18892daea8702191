package standardize

import (
	"context"
	"fmt"

	"frigo/internal/domain"
	"frigo/internal/port"
)

// PhotoStandardizer downloads an uploaded recipe photo from object storage
// and transcribes it with a vision model into the same standardized shape the
// web variant produces. It implements port.SourceStandardizer.
type PhotoStandardizer struct {
	storage     port.ObjectStorage
	transcriber port.PhotoTranscriber
}

var _ port.SourceStandardizer = (*PhotoStandardizer)(nil)

// NewPhotoStandardizer creates a photo standardizer.
func NewPhotoStandardizer(storage port.ObjectStorage, transcriber port.PhotoTranscriber) *PhotoStandardizer {
	return &PhotoStandardizer{storage: storage, transcriber: transcriber}
}

func (p *PhotoStandardizer) Standardize(ctx context.Context, job *domain.ImportJob) (*domain.StandardizedRecipeData, error) {
	imageBytes, err := p.storage.Download(ctx, job.PhotoBucket, job.PhotoKey)
	if err != nil {
		return nil, fmt.Errorf("%w: downloading photo %s: %v", domain.ErrExtraction, job.PhotoKey, err)
	}

	raw, err := p.transcriber.Transcribe(ctx, imageBytes, job.PhotoContentType)
	if err != nil {
		return nil, fmt.Errorf("transcribing photo %s: %w", job.PhotoKey, err)
	}
	if len(raw.Ingredients) == 0 || len(raw.Instructions) == 0 {
		return nil, fmt.Errorf("%w: no readable recipe in photo %s", domain.ErrExtraction, job.PhotoKey)
	}

	return &domain.StandardizedRecipeData{
		Source: domain.RecipeSource{
			Type:     domain.SourceTypePhoto,
			PhotoKey: job.PhotoKey,
		},
		RawText: *raw,
	}, nil
}
