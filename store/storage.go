package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"docchat/types"
)

// DocumentStorer is the retrieval-facing view of the corpus. A new
// upload replaces the corpus by constructing a fresh store, so there is
// no in-place mutation beyond Index.
type DocumentStorer interface {
	Index(context.Context, types.Document) error
	Search(ctx context.Context, query string, limit int) ([]types.Document, error)
	Close() error
}

// BleveStore keeps the corpus in an in-memory bleve index. Lexical
// ranking is bleve's job; the store only holds documents and answers
// ranked queries.
//
// Uploads are the single writer, questions are readers; all access goes
// through the RWMutex.
type BleveStore struct {
	mu   sync.RWMutex
	idx  bleve.Index
	docs map[string]types.Document
}

type indexedDocument struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func NewBleveStore() (*BleveStore, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("error creating index: %w", err)
	}
	return &BleveStore{
		idx:  idx,
		docs: make(map[string]types.Document),
	}, nil
}

func (s *BleveStore) Index(ctx context.Context, doc types.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := doc.ID.String()
	if err := s.idx.Index(id, indexedDocument{Title: doc.Title, Content: doc.Content}); err != nil {
		return fmt.Errorf("error indexing document: %w", err)
	}
	s.docs[id] = doc
	return nil
}

// Search returns up to limit documents ranked by lexical relevance to
// the query. With a corpus this small a question may share no terms with
// the document at all; in that case the resident documents are returned
// as-is so the model always sees the uploaded content.
func (s *BleveStore) Search(ctx context.Context, query string, limit int) ([]types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)
	res, err := s.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("error searching index: %w", err)
	}

	var docs []types.Document
	for _, hit := range res.Hits {
		if doc, ok := s.docs[hit.ID]; ok {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		for _, doc := range s.docs {
			docs = append(docs, doc)
			if len(docs) == limit {
				break
			}
		}
	}
	return docs, nil
}

func (s *BleveStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Close()
}
