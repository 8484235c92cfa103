package domain

import "fmt"

// Metadata keys stamped on every chunk.
const (
	MetaDocumentID   = "document_id"
	MetaDocumentName = "document_name"
	MetaChunkIndex   = "chunk_index"
	MetaStart        = "start"
	MetaEnd          = "end"
	MetaSentenceFrom = "sentence_from"
	MetaSentenceTo   = "sentence_to"
	MetaTokenCount   = "token_count"
)

// Chunk is a bounded slice of document text, the unit of embedding and
// retrieval.
type Chunk struct {
	ID         string
	DocumentID string
	Index      int
	Content    string
	Metadata   map[string]interface{}
}

// DocumentID derives the stable id for the nth document of a domain.
func DocumentID(domainName string, ordinal int) string {
	return fmt.Sprintf("%s_doc_%d", domainName, ordinal)
}

// ChunkID derives the id of the nth chunk of a document. IDs are
// deterministic so re-indexing an unchanged document rewrites the same rows.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}
