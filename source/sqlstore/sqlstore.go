// Package sqlstore implements the registry and ledger sources on a
// relational database through gorm (postgres by default).
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/unkn0wn-root/airdropcache"
	"github.com/unkn0wn-root/airdropcache/airdrop"
)

var (
	_ airdropcache.RegistrySource = (*Store)(nil)
	_ airdropcache.LedgerSource   = (*Store)(nil)
)

type Config struct {
	DB *gorm.DB // required

	RegistryTable string // "" => "airdrop_registry"
	LedgerTable   string // "" => "airdrop_ledger"
}

type Store struct {
	db            *gorm.DB
	registryTable string
	ledgerTable   string
}

func New(cfg Config) (*Store, error) {
	if cfg.DB == nil {
		return nil, errors.New("sqlstore: db is required")
	}
	s := &Store{
		db:            cfg.DB,
		registryTable: cfg.RegistryTable,
		ledgerTable:   cfg.LedgerTable,
	}
	if s.registryTable == "" {
		s.registryTable = AirdropRegistry{}.TableName()
	}
	if s.ledgerTable == "" {
		s.ledgerTable = AirdropLedgerEntry{}.TableName()
	}
	return s, nil
}

// Open connects to postgres with gorm's own logging silenced.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}
	return db, nil
}

// Migrate creates or updates both tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&AirdropRegistry{}, &AirdropLedgerEntry{})
}

func (s *Store) FindRegistryByAddress(ctx context.Context, address string) (airdrop.Registration, bool, error) {
	var row AirdropRegistry
	err := s.db.WithContext(ctx).
		Table(s.registryTable).
		Select("id", "contract_address").
		Where("LOWER(contract_address) = ?", strings.ToLower(address)).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return airdrop.Registration{}, false, nil
	}
	if err != nil {
		return airdrop.Registration{}, false, err
	}
	return airdrop.Registration{ContractAddress: row.ContractAddress, ID: row.ID}, true, nil
}

// ledgerSum is one GROUP BY row. Sums are cast to text so no precision is
// lost on the way out of numeric(78,0).
type ledgerSum struct {
	UserAddress    string `gorm:"column:user_address"`
	AirdropID      uint64 `gorm:"column:airdrop_id"`
	TotalAllocated string `gorm:"column:total_allocated"`
	TotalUsed      string `gorm:"column:total_used"`
}

const ledgerSumColumns = `MIN(user_address) AS user_address, airdrop_id,
	COALESCE(SUM(amount), 0)::text AS total_allocated,
	COALESCE(SUM(used_amount), 0)::text AS total_used`

func (s *Store) FindLedgerRowsByAddresses(ctx context.Context, airdropID uint64, addresses []string) ([]airdrop.LedgerRow, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	lower := make([]string, len(addresses))
	for i, a := range addresses {
		lower[i] = strings.ToLower(a)
	}

	var sums []ledgerSum
	err := s.db.WithContext(ctx).
		Table(s.ledgerTable).
		Select(ledgerSumColumns).
		Where("airdrop_id = ? AND LOWER(user_address) IN ?", airdropID, lower).
		Group("LOWER(user_address), airdrop_id").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}

	rows := make([]airdrop.LedgerRow, len(sums))
	for i, r := range sums {
		rows[i] = airdrop.LedgerRow{
			UserAddress:    r.UserAddress,
			AirdropID:      r.AirdropID,
			TotalAllocated: r.TotalAllocated,
			TotalUsed:      r.TotalUsed,
		}
	}
	return rows, nil
}
