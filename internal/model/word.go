package model

// WordEntry is a single word/definition pair.  It corresponds to one
// document (or row, or item) in the words table of whichever datastore the
// service is bound to.
//
// Fields:
//  ID         datastore-assigned record identity, opaque to clients.
//  Word       the word itself; not unique.
//  Definition free text definition.
type WordEntry struct {
	ID         string `json:"id,omitempty" db:"id"`
	Word       string `json:"word" db:"word"`
	Definition string `json:"definition" db:"definition"`
}

// Orderable fields accepted by the list operation.
const (
	FieldWord       = "word"
	FieldDefinition = "definition"
)

// IsOrderField reports whether name can be used to sort a word listing.
func IsOrderField(name string) bool {
	return name == FieldWord || name == FieldDefinition
}

// Value returns the value of the named orderable field.
func (w WordEntry) Value(field string) string {
	if field == FieldDefinition {
		return w.Definition
	}
	return w.Word
}
