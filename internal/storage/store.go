package storage

import "context"

// Store is the corpus backend: named collections of named text items.
// One collection backs one domain.
type Store interface {
	// GetAllCollections lists collection names.
	GetAllCollections(ctx context.Context) ([]string, error)

	// GetCollectionItems lists item names within a collection, in the
	// backend's enumeration order.
	GetCollectionItems(ctx context.Context, collection string) ([]string, error)

	// GetItem returns an item's content. Returns domain.ErrItemNotFound
	// when the item is absent.
	GetItem(ctx context.Context, collection, item string) (string, error)
}
