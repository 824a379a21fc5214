// Package mongostore implements the registry and ledger sources on MongoDB.
//
// Registry documents: {contract_address: string, airdrop_id: int64}.
// Ledger documents: {airdrop_id: int64, user_address: string,
// amount: Decimal128, used_amount: Decimal128}. Decimal128 holds 34
// significant digits; larger amounts need the sql store.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unkn0wn-root/airdropcache"
	"github.com/unkn0wn-root/airdropcache/airdrop"
)

var (
	_ airdropcache.RegistrySource = (*Store)(nil)
	_ airdropcache.LedgerSource   = (*Store)(nil)
)

// case-insensitive match on addresses
var addressCollation = &options.Collation{Locale: "en", Strength: 2}

type Config struct {
	Database *mongo.Database // required

	RegistryCollection string // "" => "airdrop_registry"
	LedgerCollection   string // "" => "airdrop_ledger"
}

type Store struct {
	registry *mongo.Collection
	ledger   *mongo.Collection
}

func New(cfg Config) (*Store, error) {
	if cfg.Database == nil {
		return nil, errors.New("mongostore: database is required")
	}
	reg := cfg.RegistryCollection
	if reg == "" {
		reg = "airdrop_registry"
	}
	led := cfg.LedgerCollection
	if led == "" {
		led = "airdrop_ledger"
	}
	return &Store{
		registry: cfg.Database.Collection(reg),
		ledger:   cfg.Database.Collection(led),
	}, nil
}

// Connect dials uri and pings it within 10 seconds.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	cli, err := mongo.Connect(ctx2, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx2, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	return cli, nil
}

type registryDoc struct {
	ContractAddress string `bson:"contract_address"`
	AirdropID       int64  `bson:"airdrop_id"`
}

func (s *Store) FindRegistryByAddress(ctx context.Context, address string) (airdrop.Registration, bool, error) {
	var doc registryDoc
	err := s.registry.FindOne(ctx,
		bson.M{"contract_address": address},
		options.FindOne().SetCollation(addressCollation),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return airdrop.Registration{}, false, nil
	}
	if err != nil {
		return airdrop.Registration{}, false, err
	}
	if doc.AirdropID <= 0 {
		return airdrop.Registration{}, false, fmt.Errorf("mongostore: registry %s has invalid airdrop_id %d", doc.ContractAddress, doc.AirdropID)
	}
	return airdrop.Registration{ContractAddress: doc.ContractAddress, ID: uint64(doc.AirdropID)}, true, nil
}

type ledgerSumDoc struct {
	UserAddress    string        `bson:"user_address"`
	TotalAllocated bson.RawValue `bson:"total_allocated"`
	TotalUsed      bson.RawValue `bson:"total_used"`
}

func (s *Store) FindLedgerRowsByAddresses(ctx context.Context, airdropID uint64, addresses []string) ([]airdrop.LedgerRow, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"airdrop_id":   int64(airdropID),
			"user_address": bson.M{"$in": addresses},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":             bson.M{"$toLower": "$user_address"},
			"user_address":    bson.M{"$first": "$user_address"},
			"total_allocated": bson.M{"$sum": "$amount"},
			"total_used":      bson.M{"$sum": "$used_amount"},
		}}},
	}
	cur, err := s.ledger.Aggregate(ctx, pipeline, options.Aggregate().SetCollation(addressCollation))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []airdrop.LedgerRow
	for cur.Next(ctx) {
		var doc ledgerSumDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		row, err := rowFromDoc(airdropID, doc)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func rowFromDoc(airdropID uint64, doc ledgerSumDoc) (airdrop.LedgerRow, error) {
	total, err := amountString(doc.TotalAllocated)
	if err != nil {
		return airdrop.LedgerRow{}, fmt.Errorf("mongostore: total_allocated of %s: %w", doc.UserAddress, err)
	}
	used, err := amountString(doc.TotalUsed)
	if err != nil {
		return airdrop.LedgerRow{}, fmt.Errorf("mongostore: total_used of %s: %w", doc.UserAddress, err)
	}
	return airdrop.LedgerRow{
		UserAddress:    doc.UserAddress,
		AirdropID:      airdropID,
		TotalAllocated: total,
		TotalUsed:      used,
	}, nil
}

// amountString renders a $sum result as a plain decimal string. $sum over
// no numeric values yields int32 0.
func amountString(v bson.RawValue) (string, error) {
	switch v.Type {
	case 0, bson.TypeNull:
		return "0", nil
	case bson.TypeInt32:
		return decimal.NewFromInt32(v.Int32()).String(), nil
	case bson.TypeInt64:
		return decimal.NewFromInt(v.Int64()).String(), nil
	case bson.TypeDecimal128:
		d, err := decimal.NewFromString(v.Decimal128().String())
		if err != nil {
			return "", err
		}
		return d.String(), nil
	default:
		return "", fmt.Errorf("unsupported amount type %s", v.Type)
	}
}
