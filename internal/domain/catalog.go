package domain

import "time"

// CatalogKind enumerates the strategy content collections.
type CatalogKind string

const (
	CatalogKindHero     CatalogKind = "hero"
	CatalogKindMap      CatalogKind = "map"
	CatalogKindWeapon   CatalogKind = "weapon"
	CatalogKindPosition CatalogKind = "position"
)

// Valid reports whether k is a known catalog kind.
func (k CatalogKind) Valid() bool {
	switch k {
	case CatalogKindHero, CatalogKindMap, CatalogKindWeapon, CatalogKindPosition:
		return true
	}
	return false
}

// CatalogItem is one entry of the content catalog.
type CatalogItem struct {
	ID          int64
	Kind        CatalogKind
	Name        string
	Summary     string
	Body        string
	CreatedByID int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
