// Package colid implements the column-id codec (spec component C1):
// packing a (tableId, columnIndex) pair into a single 32-bit id, and a
// registry that resolves table/column ids back to human-readable
// names for pretty-printing.
package colid

import "github.com/vishalbelsare/sindy-3/pkg/sindyerr"

// ID is a packed (tableId, columnIndex) identifier. The low
// numColumnBits encode the column index within a table; the high bits
// encode the table id.
type ID = uint32

// Codec packs and unpacks column ids for a fixed numColumnBits.
type Codec struct {
	numColumnBits uint
	mask          uint32
	tableStride   uint32
}

// NewCodec builds a Codec for the given column-index bit width, which
// must be in [1, 31].
func NewCodec(numColumnBits int) (*Codec, error) {
	if numColumnBits < 1 || numColumnBits > 31 {
		return nil, sindyerr.MarkConfiguration("numColumnBits must be in [1, 31], got %d", numColumnBits)
	}
	mask := uint32(1)<<uint(numColumnBits) - 1
	return &Codec{
		numColumnBits: uint(numColumnBits),
		mask:          mask,
		tableStride:   mask + 1,
	}, nil
}

// ColumnBitMask returns (1 << numColumnBits) - 1.
func (c *Codec) ColumnBitMask() uint32 { return c.mask }

// TableID returns the table id assigned to the table with the given
// zero-based ordinal. Table ids are mask, mask+tableStride,
// mask+2*tableStride, ... so that the low bits are all-ones on the
// table-marker id.
func (c *Codec) TableID(ordinal int) uint32 {
	return c.mask + uint32(ordinal)*c.tableStride
}

// BaseColumnID returns the column-0 id for the table with the given
// table id: the zero-low-bits anchor of that table's id range.
func (c *Codec) BaseColumnID(tableID uint32) uint32 {
	return tableID &^ c.mask
}

// ColumnID returns the id of column i (zero-based) of the table with
// the given table id.
func (c *Codec) ColumnID(tableID uint32, i int) uint32 {
	return c.BaseColumnID(tableID) + uint32(i)
}

// Decode splits a column id c back into its owning table id and
// zero-based column index.
func (c *Codec) Decode(id uint32) (tableID uint32, columnIndex int) {
	base := id &^ c.mask
	return base | c.mask, int(id - base)
}
