package repositories

import (
	"strings"

	"gorm.io/gorm"

	"lendstock/internal/models"
)

type ItemRepository interface {
	Create(db *gorm.DB, item *models.Item) error
	List(db *gorm.DB) ([]models.Item, error)
	GetByID(db *gorm.DB, id uint) (*models.Item, error)
	GetByNameAndCategory(db *gorm.DB, name, category string) (*models.Item, error)
	Save(db *gorm.DB, item *models.Item) error
	Delete(db *gorm.DB, id uint) error
	Search(db *gorm.DB, query string) ([]models.Item, error)
	AdjustAmount(db *gorm.DB, id uint, delta int) (int64, error)
}

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	List(db *gorm.DB) ([]models.User, error)
	GetByID(db *gorm.DB, id uint) (*models.User, error)
	GetByUsernameOrEmail(db *gorm.DB, username, email string) (*models.User, error)
}

type TransactionRepository interface {
	Create(db *gorm.DB, transaction *models.Transaction) error
	List(db *gorm.DB) ([]models.Transaction, error)
	ListByUser(db *gorm.DB, userID uint) ([]models.Transaction, error)
	ListByItemWithRefs(db *gorm.DB, itemID uint) ([]models.Transaction, error)
	CountByAction(db *gorm.DB, userID, itemID uint, action string) (int64, error)
}

// concrete implementations

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(db *gorm.DB, item *models.Item) error {
	if db == nil {
		db = r.db
	}
	return db.Create(item).Error
}

func (r *itemRepository) List(db *gorm.DB) ([]models.Item, error) {
	if db == nil {
		db = r.db
	}
	var items []models.Item
	if err := db.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) GetByID(db *gorm.DB, id uint) (*models.Item, error) {
	if db == nil {
		db = r.db
	}
	var item models.Item
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) GetByNameAndCategory(db *gorm.DB, name, category string) (*models.Item, error) {
	if db == nil {
		db = r.db
	}
	var item models.Item
	if err := db.First(&item, "name = ? AND category = ?", name, category).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) Save(db *gorm.DB, item *models.Item) error {
	if db == nil {
		db = r.db
	}
	return db.Save(item).Error
}

func (r *itemRepository) Delete(db *gorm.DB, id uint) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Item{}, "id = ?", id).Error
}

// Search matches a lowercased %query% pattern against name, category,
// description and status. LOWER(...) LIKE keeps the match case-insensitive on
// both Postgres and SQLite.
func (r *itemRepository) Search(db *gorm.DB, query string) ([]models.Item, error) {
	if db == nil {
		db = r.db
	}
	like := "%" + strings.ToLower(query) + "%"
	var items []models.Item
	err := db.
		Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ? OR LOWER(description) LIKE ? OR LOWER(status) LIKE ?",
			like, like, like, like).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// AdjustAmount applies a single-statement conditional update to an item's
// amount. A negative delta carries an amount >= -delta guard so the counter
// can never be driven below zero; the caller inspects the affected-row count
// to tell "item missing" and "not enough units" apart.
func (r *itemRepository) AdjustAmount(db *gorm.DB, id uint, delta int) (int64, error) {
	if db == nil {
		db = r.db
	}
	tx := db.Model(&models.Item{}).Where("id = ?", id)
	if delta < 0 {
		tx = tx.Where("amount >= ?", -delta)
	}
	res := tx.UpdateColumn("amount", gorm.Expr("amount + ?", delta))
	return res.RowsAffected, res.Error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	if db == nil {
		db = r.db
	}
	return db.Create(user).Error
}

func (r *userRepository) List(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		db = r.db
	}
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) GetByID(db *gorm.DB, id uint) (*models.User, error) {
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsernameOrEmail(db *gorm.DB, username, email string) (*models.User, error) {
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.First(&user, "username = ? OR email = ?", username, email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(db *gorm.DB, transaction *models.Transaction) error {
	if db == nil {
		db = r.db
	}
	return db.Create(transaction).Error
}

func (r *transactionRepository) List(db *gorm.DB) ([]models.Transaction, error) {
	if db == nil {
		db = r.db
	}
	var transactions []models.Transaction
	if err := db.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *transactionRepository) ListByUser(db *gorm.DB, userID uint) ([]models.Transaction, error) {
	if db == nil {
		db = r.db
	}
	var transactions []models.Transaction
	if err := db.Where("user_id = ?", userID).Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// ListByItemWithRefs preloads the User and Item associations so callers can
// build denormalized summaries. Either association may come back nil when the
// parent row has since been deleted.
func (r *transactionRepository) ListByItemWithRefs(db *gorm.DB, itemID uint) ([]models.Transaction, error) {
	if db == nil {
		db = r.db
	}
	var transactions []models.Transaction
	err := db.
		Preload("User").
		Preload("Item").
		Where("item_id = ?", itemID).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *transactionRepository) CountByAction(db *gorm.DB, userID, itemID uint, action string) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Transaction{}).
		Where("user_id = ? AND item_id = ? AND action = ?", userID, itemID, action).
		Count(&n).Error
	return n, err
}
