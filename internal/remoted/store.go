// Package remoted is a reference backend for the remote ledger contract.
// Transactions are deduplicated by their client-generated id, so the device
// side may deliver at-least-once without double posting.
package remoted

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/abbasons/ledger/internal/models"
	"github.com/abbasons/ledger/internal/services"
)

// Store persists the authoritative ledger in Postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Customers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, balance, dr_cr, last_transaction FROM customers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		var lastTx sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Balance, &c.DrCr, &lastTx); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		c.LastTransaction = lastTx.String
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *Store) Transactions(ctx context.Context, customerID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT transaction_id, customer_id, customer_name, date, description, item, weight, rate, amount, dr_cr, recorded_at
		 FROM transactions WHERE customer_id = $1 ORDER BY recorded_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.CustomerID, &tx.CustomerName, &tx.Date, &tx.Description,
			&tx.Item, &tx.Weight, &tx.Rate, &tx.Amount, &tx.DrCr, &tx.Timestamp); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Synced = true
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func (s *Store) BalanceSheet(ctx context.Context) (*models.BalanceSheet, error) {
	customers, err := s.Customers(ctx)
	if err != nil {
		return nil, err
	}

	return &models.BalanceSheet{
		Stats:     services.CalculateStats(customers),
		Customers: customers,
	}, nil
}

// SaveTransaction stores one entry and applies it to the customer balance.
// A transaction id seen before is acknowledged without effect.
func (s *Store) SaveTransaction(ctx context.Context, tx models.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbTx.Rollback()

	if err := s.insertLocked(ctx, dbTx, tx); err != nil {
		return err
	}

	return dbTx.Commit()
}

// SaveBatch stores a batch atomically. Either every entry lands or none do;
// entries already present count as landed.
func (s *Store) SaveBatch(ctx context.Context, txs []models.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbTx.Rollback()

	for _, tx := range txs {
		if err := s.insertLocked(ctx, dbTx, tx); err != nil {
			return err
		}
	}

	return dbTx.Commit()
}

func (s *Store) insertLocked(ctx context.Context, dbTx *sql.Tx, tx models.Transaction) error {
	res, err := dbTx.ExecContext(ctx,
		`INSERT INTO transactions (transaction_id, customer_id, customer_name, date, description, item, weight, rate, amount, dr_cr, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (transaction_id) DO NOTHING`,
		tx.ID, tx.CustomerID, tx.CustomerName, tx.Date, tx.Description,
		tx.Item, tx.Weight, tx.Rate, tx.Amount, tx.DrCr, tx.Timestamp)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if inserted == 0 {
		log.Printf("[REMOTED] Duplicate transaction %s acknowledged", tx.ID)
		return nil
	}

	delta := tx.Amount
	if tx.DrCr == models.DrCrCredit {
		delta = -delta
	}

	_, err = dbTx.ExecContext(ctx,
		`INSERT INTO customers (id, name, balance, dr_cr, last_transaction)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   balance = customers.balance + $3,
		   dr_cr = CASE WHEN customers.balance + $3 > 0 THEN 'DR' WHEN customers.balance + $3 < 0 THEN 'CR' ELSE 'Nill' END,
		   last_transaction = $5`,
		tx.CustomerID, tx.CustomerName, delta, string(services.DrCrStatus(delta)), tx.Date)
	if err != nil {
		return fmt.Errorf("apply balance for %s: %w", tx.CustomerID, err)
	}
	return nil
}
