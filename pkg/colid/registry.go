package colid

import "fmt"

// Registry resolves table ids to relation names and column ids to
// column names, for pretty-printing INDs (spec.md §4.1's "pretty form
// resolves table and column names via C1"). It is populated once at
// table indexing time from each input's RowIterator metadata.
type Registry struct {
	codec       *Codec
	relation    map[uint32]string
	columnNames map[uint32][]string
}

// NewRegistry creates an empty Registry bound to codec.
func NewRegistry(codec *Codec) *Registry {
	return &Registry{
		codec:       codec,
		relation:    make(map[uint32]string),
		columnNames: make(map[uint32][]string),
	}
}

// Register associates a table id with its relation name and ordered
// column-name list.
func (r *Registry) Register(tableID uint32, relationName string, columnNames []string) {
	r.relation[tableID] = relationName
	cp := make([]string, len(columnNames))
	copy(cp, columnNames)
	r.columnNames[tableID] = cp
}

// RelationName returns the relation name registered for a column id's
// owning table, or a synthetic placeholder if unknown.
func (r *Registry) RelationName(columnID uint32) string {
	tableID, _ := r.codec.Decode(columnID)
	if name, ok := r.relation[tableID]; ok {
		return name
	}
	return fmt.Sprintf("table#%d", tableID)
}

// ColumnName returns the column name registered for a column id, or a
// synthetic placeholder if unknown.
func (r *Registry) ColumnName(columnID uint32) string {
	tableID, idx := r.codec.Decode(columnID)
	if names, ok := r.columnNames[tableID]; ok && idx < len(names) {
		return names[idx]
	}
	return fmt.Sprintf("col#%d", idx)
}
