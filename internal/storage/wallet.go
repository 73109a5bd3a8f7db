package storage

import "fmt"

// Coins returns the wallet balance.
func (s *Store) Coins() (int, error) {
	var coins int
	if err := s.db.QueryRow("SELECT coins FROM wallet WHERE id = 1").Scan(&coins); err != nil {
		return 0, fmt.Errorf("storage: cannot read wallet: %w", err)
	}
	return coins, nil
}

// AddCoins credits the wallet and returns the new balance. Non-positive
// amounts are ignored.
func (s *Store) AddCoins(n int) (int, error) {
	if n <= 0 {
		return s.Coins()
	}
	if _, err := s.db.Exec("UPDATE wallet SET coins = coins + ? WHERE id = 1", n); err != nil {
		return 0, fmt.Errorf("storage: cannot add coins: %w", err)
	}
	return s.Coins()
}

// ResetWallet empties the wallet.
func (s *Store) ResetWallet() error {
	if _, err := s.db.Exec("UPDATE wallet SET coins = 0 WHERE id = 1"); err != nil {
		return fmt.Errorf("storage: cannot reset wallet: %w", err)
	}
	return nil
}
