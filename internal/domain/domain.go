package domain

// Domain is a named, independently indexed corpus partition. One storage
// collection and one vector index back each domain.
type Domain struct {
	Name        string
	Description string
	// Documents follow storage enumeration order; the order is not
	// guaranteed stable across concurrent rebuilds.
	Documents []*Document
}

// NewDomain creates a domain over an already-enumerated document list.
func NewDomain(name, description string, documents []*Document) *Domain {
	return &Domain{
		Name:        name,
		Description: description,
		Documents:   documents,
	}
}

// Document returns the named document, or nil when absent.
func (d *Domain) Document(name string) *Document {
	for _, doc := range d.Documents {
		if doc.Name == name {
			return doc
		}
	}
	return nil
}
