package domain

// Document is a lazily-loaded text unit belonging to a domain.
//
// Content and Chunks are populated only between the lazy load and the
// post-index eviction: the corpus may exceed available memory, so a document
// must not hold both full content and its chunk set outside the indexing
// window.
type Document struct {
	ID       string
	Name     string
	Domain   string
	Title    string
	Keywords []string

	// Content is nil until loaded from storage.
	Content *string
	// Chunks is transient; populated during the indexing pass only.
	Chunks []Chunk
}

// NewDocument creates a document in the unloaded state.
// The ID is derived from the domain name and the document's ordinal within
// its collection, which keeps chunk IDs stable across indexing passes.
func NewDocument(domainName, name string, ordinal int) *Document {
	return &Document{
		ID:     DocumentID(domainName, ordinal),
		Name:   name,
		Domain: domainName,
		Title:  name,
	}
}

// ContentLoaded reports whether the document content is resident in memory.
func (d *Document) ContentLoaded() bool {
	return d.Content != nil
}

// SetContent marks the document as loaded.
func (d *Document) SetContent(content string) {
	d.Content = &content
}

// Evict releases the document's content and chunks after indexing.
func (d *Document) Evict() {
	d.Content = nil
	d.Chunks = nil
}
