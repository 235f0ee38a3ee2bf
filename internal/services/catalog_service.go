package services

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"lendstock/internal/models"
	"lendstock/internal/repositories"
)

// ─── Sentinel Errors ──────────────────────────────────────────────────────────

var (
	// ErrItemNotFound is returned when the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrDuplicateItem is returned when an item with the same (name, category)
	// pair already exists. The check is application-level by design; there is
	// no unique constraint backing it.
	ErrDuplicateItem = errors.New("item already exists")
)

// ─── Service Interface ────────────────────────────────────────────────────────

// ItemUpdate carries the fields of a partial item update. Nil fields are left
// untouched.
type ItemUpdate struct {
	Name        *string
	Category    *string
	Status      *string
	Description *string
	Amount      *int
}

// CatalogService defines CRUD and search over the item catalog.
type CatalogService interface {
	ListItems() ([]models.Item, error)
	GetItem(id uint) (*models.Item, error)
	CreateItem(name, category, description string, amount int) (*models.Item, error)
	UpdateItem(id uint, update ItemUpdate) (*models.Item, error)
	DeleteItem(id uint) error
	SearchItems(query string) ([]models.Item, error)
}

// ─── Implementation ───────────────────────────────────────────────────────────

type catalogService struct {
	db       *gorm.DB
	itemRepo repositories.ItemRepository
}

// NewCatalogService wires up the catalog service.
func NewCatalogService(db *gorm.DB, itemRepo repositories.ItemRepository) CatalogService {
	return &catalogService{db: db, itemRepo: itemRepo}
}

// ListItems returns every item in the catalog.
func (s *catalogService) ListItems() ([]models.Item, error) {
	return s.itemRepo.List(nil)
}

// GetItem returns a single item by id.
func (s *catalogService) GetItem(id uint) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// CreateItem creates a catalog entry with the default "available" status.
// The (name, category) pair must not already exist.
func (s *catalogService) CreateItem(name, category, description string, amount int) (*models.Item, error) {
	if _, err := s.itemRepo.GetByNameAndCategory(nil, name, category); err == nil {
		log.Printf("[WARN] CreateItem: duplicate (name=%q, category=%q)", name, category)
		return nil, ErrDuplicateItem
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &models.Item{
		Name:        name,
		Category:    category,
		Amount:      amount,
		Status:      models.ItemStatusAvailable,
		Description: description,
	}
	if err := s.itemRepo.Create(nil, item); err != nil {
		log.Printf("[ERROR] CreateItem: failed to create item %q: %v", name, err)
		return nil, err
	}
	log.Printf("[INFO] CreateItem: created item %q (id=%d) with %d units", item.Name, item.ID, amount)
	return item, nil
}

// UpdateItem applies a partial update to an existing item. Field validation
// (non-negative amount) happens at the boundary; this method only resolves the
// record and persists the provided fields.
func (s *catalogService) UpdateItem(id uint, update ItemUpdate) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Category != nil {
		item.Category = *update.Category
	}
	if update.Status != nil {
		item.Status = *update.Status
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.Amount != nil {
		item.Amount = *update.Amount
	}

	if err := s.itemRepo.Save(nil, item); err != nil {
		log.Printf("[ERROR] UpdateItem: failed to save item %d: %v", id, err)
		return nil, err
	}
	log.Printf("[INFO] UpdateItem: updated item %d", id)
	return item, nil
}

// DeleteItem removes an item. Ledger entries referencing it are kept; the
// transaction log is append-only history.
func (s *catalogService) DeleteItem(id uint) error {
	if _, err := s.itemRepo.GetByID(nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	if err := s.itemRepo.Delete(nil, id); err != nil {
		log.Printf("[ERROR] DeleteItem: failed to delete item %d: %v", id, err)
		return err
	}
	log.Printf("[INFO] DeleteItem: deleted item %d", id)
	return nil
}

// SearchItems runs a case-insensitive substring search across name, category,
// description and status.
func (s *catalogService) SearchItems(query string) ([]models.Item, error) {
	return s.itemRepo.Search(nil, query)
}
