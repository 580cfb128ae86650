package asset

import (
	"io"
	"strings"
	"time"
)

// Variant identifies one physical rendition of an asset.
type Variant string

const (
	VariantOriginal  Variant = "original"
	VariantResized   Variant = "resized"
	VariantThumbnail Variant = "thumbnail"
)

// Variants lists every rendition in deletion/reporting order.
var Variants = []Variant{VariantOriginal, VariantResized, VariantThumbnail}

// dir is the storage subdirectory of the variant under the image root.
func (v Variant) dir() string {
	switch v {
	case VariantResized:
		return "resized"
	case VariantThumbnail:
		return "thumbnails"
	default:
		return "original"
	}
}

// ParseVariant maps a route segment to a Variant.
func ParseVariant(raw string) (Variant, bool) {
	switch Variant(strings.ToLower(strings.TrimSpace(raw))) {
	case VariantOriginal:
		return VariantOriginal, true
	case VariantResized:
		return VariantResized, true
	case VariantThumbnail:
		return VariantThumbnail, true
	}
	return "", false
}

// Asset is the logical identity of one uploaded image.
type Asset struct {
	Name      string    `json:"name"`
	Extension string    `json:"extension"`
	CreatedAt time.Time `json:"created_at"`
}

// Upload is an inbound image as received from a multipart form.
type Upload struct {
	FieldName   string
	Filename    string
	ContentType string
	Body        io.Reader
}

// DeleteStatus is the per-variant result of a deletion.
type DeleteStatus string

const (
	StatusDeleted  DeleteStatus = "deleted"
	StatusNotFound DeleteStatus = "not_found"
	StatusError    DeleteStatus = "error"
)

// Outcome aggregates per-variant deletion results.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomePartialSuccess Outcome = "partial_success"
	OutcomeFailure        Outcome = "failure"
)

// VariantDeletion reports what happened to one variant during a delete.
type VariantDeletion struct {
	Variant Variant      `json:"variant"`
	Status  DeleteStatus `json:"status"`
	Error   string       `json:"error,omitempty"`
}

// DeleteOutcome is the itemized result of deleting every variant of an asset.
type DeleteOutcome struct {
	Asset    string            `json:"asset"`
	Outcome  Outcome           `json:"outcome"`
	Variants []VariantDeletion `json:"variants"`
}

// Missing lists variants that were already absent before the delete.
func (d DeleteOutcome) Missing() []Variant {
	return d.withStatus(StatusNotFound)
}

// Failed lists variants whose removal hit an I/O error.
func (d DeleteOutcome) Failed() []Variant {
	return d.withStatus(StatusError)
}

func (d DeleteOutcome) withStatus(status DeleteStatus) []Variant {
	var out []Variant
	for _, v := range d.Variants {
		if v.Status == status {
			out = append(out, v.Variant)
		}
	}
	return out
}

// Warning describes a partial success, or "" when there is nothing to report.
func (d DeleteOutcome) Warning() string {
	if d.Outcome != OutcomePartialSuccess {
		return ""
	}
	return "variants already missing: " + joinVariants(d.Missing())
}

// aggregateDeletions applies the outcome rule: any error fails the delete, otherwise any
// missing variant makes it a partial success.
func aggregateDeletions(name string, results []VariantDeletion) DeleteOutcome {
	out := DeleteOutcome{Asset: name, Outcome: OutcomeSuccess, Variants: results}
	for _, r := range results {
		switch r.Status {
		case StatusError:
			out.Outcome = OutcomeFailure
		case StatusNotFound:
			if out.Outcome == OutcomeSuccess {
				out.Outcome = OutcomePartialSuccess
			}
		}
	}
	return out
}

// VariantReport describes the presence of a variant after create or inspection.
type VariantReport struct {
	Variant Variant `json:"variant"`
	Present bool    `json:"present"`
	Error   string  `json:"error,omitempty"`
}

// CreateOutcome is returned by Lifecycle.Create. Asset is nil when the upload could not be kept.
type CreateOutcome struct {
	Asset    *Asset          `json:"asset,omitempty"`
	Variants []VariantReport `json:"variants"`
	Degraded bool            `json:"degraded"`
	Warnings []string        `json:"warnings,omitempty"`
}

// AssetName returns the created asset name, if any.
func (c CreateOutcome) AssetName() *string {
	if c.Asset == nil {
		return nil
	}
	name := c.Asset.Name
	return &name
}

// AssetReport lists which variants of an asset are on disk.
type AssetReport struct {
	Asset    string          `json:"asset"`
	Variants []VariantReport `json:"variants"`
}

// Absent lists variants not present on disk.
func (r AssetReport) Absent() []Variant {
	var out []Variant
	for _, v := range r.Variants {
		if !v.Present {
			out = append(out, v.Variant)
		}
	}
	return out
}

func joinVariants(vs []Variant) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
