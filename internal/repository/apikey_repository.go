package repository

import (
	"context"
	"database/sql"
	"errors"
)

// APIKeyRepo persists encrypted provider credentials keyed by name
// (e.g. "tmdb").  It never sees plaintext keys.
type APIKeyRepo struct{ DB *sql.DB }

func NewAPIKeyRepo(db *sql.DB) *APIKeyRepo { return &APIKeyRepo{DB: db} }

// Get returns the stored ciphertext or ErrAPIKeyNotFound.
func (r *APIKeyRepo) Get(ctx context.Context, name string) ([]byte, error) {
	var ct []byte
	err := r.DB.QueryRowContext(ctx,
		"SELECT ciphertext FROM api_keys WHERE name=? LIMIT 1", name).Scan(&ct)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAPIKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return ct, nil
}

// Put inserts or replaces the ciphertext stored under name.
func (r *APIKeyRepo) Put(ctx context.Context, name string, ciphertext []byte) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO api_keys (name, ciphertext) VALUES (?,?) ON DUPLICATE KEY UPDATE ciphertext=VALUES(ciphertext)",
		name, ciphertext)
	return err
}

// Delete removes the key stored under name.
func (r *APIKeyRepo) Delete(ctx context.Context, name string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM api_keys WHERE name=?", name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}
