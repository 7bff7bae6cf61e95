package fetch

import (
	"context"
	"fmt"

	"github.com/danthegoodman1/relfetch/blob"
	"github.com/danthegoodman1/relfetch/heading"
	"github.com/danthegoodman1/relfetch/table"
)

type (
	// Decoder turns one raw attribute value into its logical value
	Decoder interface {
		Decode(ctx context.Context, raw any, squeeze bool) (any, error)
	}

	passThrough struct{}

	blobDecoder struct{}

	// externalDecoder resolves hashes through the external table of the attribute's database.
	// The stored payload is the final value, no blob unpack follows.
	externalDecoder struct {
		expr     table.Expression
		database string
		ext      table.ExternalGetter
	}
)

func (passThrough) Decode(_ context.Context, raw any, _ bool) (any, error) {
	return raw, nil
}

func (blobDecoder) Decode(_ context.Context, raw any, squeeze bool) (any, error) {
	v, err := blob.Unpack(raw, squeeze)
	if err != nil {
		return nil, fmt.Errorf("error in blob.Unpack: %w", err)
	}
	return v, nil
}

func (d *externalDecoder) Decode(ctx context.Context, raw any, _ bool) (any, error) {
	if d.ext == nil {
		ext, err := d.expr.ExternalTable(d.database)
		if err != nil {
			return nil, fmt.Errorf("error in ExternalTable for %s: %w", d.database, err)
		}
		d.ext = ext
	}
	v, err := d.ext.Get(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("error in external Get: %w", err)
	}
	return v, nil
}

// decoderFor checks external before blob
func decoderFor(expr table.Expression, attr heading.Attribute) Decoder {
	switch {
	case attr.IsExternal:
		return &externalDecoder{expr: expr, database: attr.Database}
	case attr.IsBlob:
		return blobDecoder{}
	default:
		return passThrough{}
	}
}

// decodersFor returns one decoder per heading attribute, in declaration order
func decodersFor(expr table.Expression, h *heading.Heading) []Decoder {
	attrs := h.Attributes()
	decoders := make([]Decoder, len(attrs))
	for i, a := range attrs {
		decoders[i] = decoderFor(expr, a)
	}
	return decoders
}

// decodeRecord decodes a raw row into a Record in heading order
func decodeRecord(ctx context.Context, h *heading.Heading, decoders []Decoder, row table.Row, squeeze bool) (Record, error) {
	names := h.Names()
	rec := Record{
		Names:  names,
		Values: make([]any, len(names)),
	}
	for i, name := range names {
		raw, ok := row.Get(name)
		if !ok {
			return Record{}, fmt.Errorf("%w: missing attribute %s", ErrRowShape, name)
		}
		v, err := decoders[i].Decode(ctx, raw, squeeze)
		if err != nil {
			return Record{}, fmt.Errorf("error decoding %s: %w", name, err)
		}
		rec.Values[i] = v
	}
	return rec, nil
}

func isPassThrough(d Decoder) bool {
	_, ok := d.(passThrough)
	return ok
}
