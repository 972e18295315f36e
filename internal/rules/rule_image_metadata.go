package rules

import (
	"context"
	"errors"
	"fmt"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/hintscan/hintscan/internal/hintlet"
	"github.com/hintscan/hintscan/internal/model"
)

// ImageMetadataRule flags images served with embedded EXIF metadata.
// Camera metadata is dead weight on the wire and occasionally a privacy
// leak (GPS tags); stripping it is free bytes.
//
// The rule only sees images whose body was captured in the trace.
type ImageMetadataRule struct{}

// NewImageMetadataRule creates the image_metadata rule.
func NewImageMetadataRule() *ImageMetadataRule {
	return &ImageMetadataRule{}
}

// Name returns the rule name.
func (r *ImageMetadataRule) Name() string {
	return "image_metadata"
}

// Concerns returns the record types the rule inspects.
func (r *ImageMetadataRule) Concerns() []model.EventType {
	return []model.EventType{model.EventNetworkResourceResponse}
}

// OnRecord scans a captured image body for EXIF metadata.
func (r *ImageMetadataRule) OnRecord(ctx context.Context, record *model.Record, emitter *hintlet.Emitter) error {
	if model.ClassifyResourceType(record) != model.ResourceImage {
		return nil
	}
	if len(record.Data.Body) == 0 {
		return nil
	}

	rawExif, err := exif.SearchAndExtractExif(record.Data.Body)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return nil
		}
		return fmt.Errorf("failed to scan image %s: %w", record.Data.URL, err)
	}

	tags, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		// Present but unparseable EXIF still means extra bytes on the
		// wire; report the block size alone.
		description := fmt.Sprintf(
			"Image %s carries %d bytes of EXIF metadata that could be stripped",
			record.Data.URL, len(rawExif))
		return emitter.AddHint(ctx, r.Name(), record.Time, description, record.Sequence, model.SeverityInfo)
	}

	description := fmt.Sprintf(
		"Image %s carries %d bytes of EXIF metadata (%d tags) that could be stripped",
		record.Data.URL, len(rawExif), len(tags))
	return emitter.AddHint(ctx, r.Name(), record.Time, description, record.Sequence, model.SeverityInfo)
}
