package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"lendstock/internal/models"
	"lendstock/internal/repositories"
)

var (
	// ErrItemNotAvailable is returned when a borrow finds no units left.
	ErrItemNotAvailable = errors.New("item not available")

	// ErrNothingToReturn is returned when a return has no unmatched borrow:
	// the ledger shows borrow_count <= return_count for the (user, item) pair.
	ErrNothingToReturn = errors.New("no borrowed item to return")
)

// LedgerService owns the borrow/return workflow and all reads over the
// transaction log. The per-pair balance (borrows minus returns) is always
// derived by counting ledger rows, never stored: the log is the single source
// of truth and cannot drift from a redundant aggregate.
type LedgerService interface {
	Borrow(userID, itemID uint) (*models.Item, error)
	Return(userID, itemID uint) (*models.Item, error)

	ListTransactions() ([]models.Transaction, error)
	ListUserTransactions(userID uint) ([]models.Transaction, error)
	ListItemTransactions(itemID uint) ([]models.Transaction, error)
}

type ledgerService struct {
	db              *gorm.DB
	itemRepo        repositories.ItemRepository
	userRepo        repositories.UserRepository
	transactionRepo repositories.TransactionRepository
}

// NewLedgerService wires up all dependencies and returns a LedgerService.
func NewLedgerService(
	db *gorm.DB,
	itemRepo repositories.ItemRepository,
	userRepo repositories.UserRepository,
	transactionRepo repositories.TransactionRepository,
) LedgerService {
	return &ledgerService{
		db:              db,
		itemRepo:        itemRepo,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
	}
}

// ─── Borrow ───────────────────────────────────────────────────────────────────

// Borrow takes one unit of an item and appends a borrow entry to the ledger,
// as a single unit of work.
//
// The decrement is a conditional single-statement update (amount = amount - 1
// WHERE amount >= 1), so two concurrent borrows of the last unit cannot both
// succeed: the second one affects zero rows and is rejected.
func (s *ledgerService) Borrow(userID, itemID uint) (*models.Item, error) {
	var item *models.Item

	err := s.db.Transaction(func(tx *gorm.DB) error {
		affected, err := s.itemRepo.AdjustAmount(tx, itemID, -1)
		if err != nil {
			log.Printf("[ERROR] Borrow: failed to decrement item %d: %v", itemID, err)
			return err
		}
		if affected == 0 {
			// Zero rows means the item is missing or has no units left.
			if _, err := s.itemRepo.GetByID(tx, itemID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrItemNotFound
				}
				return err
			}
			log.Printf("[WARN] Borrow: item %d has no available units (user=%d)", itemID, userID)
			return ErrItemNotAvailable
		}

		entry := &models.Transaction{
			UserID:    userID,
			ItemID:    itemID,
			Action:    models.ActionBorrow,
			Quantity:  1,
			Timestamp: time.Now().UTC(),
		}
		if err := s.transactionRepo.Create(tx, entry); err != nil {
			log.Printf("[ERROR] Borrow: failed to append ledger entry for user %d / item %d: %v", userID, itemID, err)
			return err
		}

		updated, err := s.itemRepo.GetByID(tx, itemID)
		if err != nil {
			return err
		}
		item = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[INFO] Borrow: user %d borrowed item %d, %d units remaining", userID, itemID, item.Amount)
	return item, nil
}

// ─── Return ───────────────────────────────────────────────────────────────────

// Return gives one unit of an item back and appends a return entry, as a
// single unit of work. The return is accepted only while the ledger holds an
// unmatched borrow for the (user, item) pair.
func (s *ledgerService) Return(userID, itemID uint) (*models.Item, error) {
	var item *models.Item

	err := s.db.Transaction(func(tx *gorm.DB) error {
		borrows, err := s.transactionRepo.CountByAction(tx, userID, itemID, models.ActionBorrow)
		if err != nil {
			return err
		}
		returns, err := s.transactionRepo.CountByAction(tx, userID, itemID, models.ActionReturn)
		if err != nil {
			return err
		}
		if borrows <= returns {
			log.Printf("[WARN] Return: no unmatched borrow for user %d / item %d (borrows=%d, returns=%d)",
				userID, itemID, borrows, returns)
			return ErrNothingToReturn
		}

		affected, err := s.itemRepo.AdjustAmount(tx, itemID, 1)
		if err != nil {
			log.Printf("[ERROR] Return: failed to increment item %d: %v", itemID, err)
			return err
		}
		if affected == 0 {
			return ErrItemNotFound
		}

		entry := &models.Transaction{
			UserID:    userID,
			ItemID:    itemID,
			Action:    models.ActionReturn,
			Quantity:  1,
			Timestamp: time.Now().UTC(),
		}
		if err := s.transactionRepo.Create(tx, entry); err != nil {
			log.Printf("[ERROR] Return: failed to append ledger entry for user %d / item %d: %v", userID, itemID, err)
			return err
		}

		updated, err := s.itemRepo.GetByID(tx, itemID)
		if err != nil {
			return err
		}
		item = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[INFO] Return: user %d returned item %d, %d units available", userID, itemID, item.Amount)
	return item, nil
}

// ─── Queries ──────────────────────────────────────────────────────────────────

// ListTransactions returns the full ledger.
func (s *ledgerService) ListTransactions() ([]models.Transaction, error) {
	return s.transactionRepo.List(nil)
}

// ListUserTransactions returns the ledger entries for a user. The user must
// exist; an existing user with no entries is an empty, non-error result.
func (s *ledgerService) ListUserTransactions(userID uint) ([]models.Transaction, error) {
	if _, err := s.userRepo.GetByID(nil, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.transactionRepo.ListByUser(nil, userID)
}

// ListItemTransactions returns the ledger entries for an item with the User
// and Item associations preloaded for denormalized summaries. The item must
// exist.
func (s *ledgerService) ListItemTransactions(itemID uint) ([]models.Transaction, error) {
	if _, err := s.itemRepo.GetByID(nil, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return s.transactionRepo.ListByItemWithRefs(nil, itemID)
}
