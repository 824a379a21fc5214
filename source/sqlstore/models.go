package sqlstore

import "time"

// AirdropRegistry is one registered airdrop contract. IDs start at 1.
type AirdropRegistry struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ContractAddress string    `gorm:"column:contract_address;not null;type:text;uniqueIndex"`
	ChainID         uint64    `gorm:"column:chain_id;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

func (AirdropRegistry) TableName() string { return "airdrop_registry" }

// AirdropLedgerEntry is one allocation to a user, with the part of it
// already spent. Amounts are token atomic units (up to 78 digits).
type AirdropLedgerEntry struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	AirdropID   uint64    `gorm:"column:airdrop_id;not null;index:idx_ledger_airdrop_user,priority:1"`
	UserAddress string    `gorm:"column:user_address;not null;type:text;index:idx_ledger_airdrop_user,priority:2"`
	Amount      string    `gorm:"column:amount;not null;type:numeric(78,0)"`
	UsedAmount  string    `gorm:"column:used_amount;not null;default:0;type:numeric(78,0)"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

func (AirdropLedgerEntry) TableName() string { return "airdrop_ledger" }
