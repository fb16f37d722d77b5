package imagemeta

import (
	"fmt"

	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/registry"
	"github.com/simonhull/imagemeta/internal/types"
)

// Preview is an embedded secondary image. It is a snapshot: later changes
// to the document do not affect it.
type Preview = types.Preview

// Previews lists the embedded previews, smallest first.
//
// Previews larger than the WithMaxPreviewSize limit are skipped with a
// warning. Formats without previews return an empty list.
func (d *Document) Previews() ([]Preview, error) {
	const op = "Previews"
	img, err := d.image(op)
	if err != nil {
		return nil, err
	}

	extractor, ok := d.codec.(registry.PreviewExtractor)
	if !ok {
		return nil, nil
	}
	previews, err := extractor.Previews(img)
	if err != nil {
		return nil, codes.Classify(op, err)
	}

	limit := d.opts.maxPreviewSize
	if limit <= 0 {
		return previews, nil
	}
	kept := previews[:0]
	for _, p := range previews {
		if int64(p.Size) > limit {
			msg := fmt.Sprintf("preview %s exceeds the %d byte limit", p, limit)
			d.log.Warn("preview skipped", "size", p.Size, "limit", limit)
			if !d.opts.ignoreWarnings {
				d.Warnings = append(d.Warnings, Warning{Stage: "preview", Message: msg})
			}
			continue
		}
		kept = append(kept, p)
	}
	return kept, nil
}
