package models

import (
	"time"

	"gorm.io/gorm"
)

// ItemStatusAvailable is the status assigned to newly created items.
const ItemStatusAvailable = "available"

// Ledger actions. The transaction log is append-only; every entry is one of these.
const (
	ActionBorrow = "borrow"
	ActionReturn = "return"
)

// Item is a catalog entry for a lendable resource. Amount counts the units
// currently available; it is mutated only by the ledger service or a direct
// catalog update and never drops below zero.
type Item struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Category    string `gorm:"size:100;not null" json:"category"`
	Amount      int    `gorm:"not null;default:1" json:"amount"`
	Status      string `gorm:"size:20;default:available" json:"status"`
	Description string `gorm:"size:200" json:"description"`
}

// User is a registered borrower. The password column holds a bcrypt hash and
// is excluded from every serialized representation.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"size:80;uniqueIndex;not null" json:"username"`
	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`
	Email     string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Password  string `gorm:"size:200;not null" json:"-"`
}

// Transaction is one immutable ledger entry recording a borrow or return.
// The User/Item associations are preloaded only where a listing needs the
// denormalized summaries; a nil association means the parent row was deleted
// after the entry was written, which the ledger tolerates.
type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_transactions_pair" json:"user_id"`
	User      *User     `json:"-"`
	ItemID    uint      `gorm:"not null;index:idx_transactions_pair" json:"item_id"`
	Item      *Item     `json:"-"`
	Action    string    `gorm:"size:20;not null;index:idx_transactions_pair" json:"action"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

// Migrate creates or updates the schema for all entities. Foreign key
// constraints are not created (see DisableForeignKeyConstraintWhenMigrating
// at gorm.Open): ledger entries keep their user_id/item_id after the parent
// row is deleted.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Item{}, &Transaction{})
}
