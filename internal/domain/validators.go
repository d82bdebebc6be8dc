package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	countryRegex  = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateCurrency checks if a currency code is ISO 4217.
func ValidateCurrency(currency string) error {
	if !currencyRegex.MatchString(currency) {
		return fmt.Errorf("invalid currency code: %s", currency)
	}
	return nil
}

// ValidateCountry accepts a two-letter country code in any case.
// Unknown but well-formed codes are fine; they resolve to the default region.
func ValidateCountry(country string) error {
	if !countryRegex.MatchString(strings.TrimSpace(country)) {
		return fmt.Errorf("invalid country code: %q", country)
	}
	return nil
}

// ValidatePositivePoints checks that a point amount is positive.
func ValidatePositivePoints(points int64) error {
	if points <= 0 {
		return fmt.Errorf("points must be positive, got %d", points)
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// ValidatePrizeInput checks an admin prize payload before it reaches the database.
func ValidatePrizeInput(in PrizeInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !in.Category.Valid() {
		return fmt.Errorf("invalid category: %s", in.Category)
	}
	if in.PointValue <= 0 {
		return fmt.Errorf("pointValue must be positive, got %d", in.PointValue)
	}
	if in.Stock < 0 {
		return fmt.Errorf("stock must not be negative, got %d", in.Stock)
	}
	return nil
}

// ValidateTournamentInput checks an admin tournament payload. MaxPlayers 0 means unlimited.
func ValidateTournamentInput(in TournamentInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if in.EntryFee < 0 {
		return fmt.Errorf("entryFee must not be negative, got %d", in.EntryFee)
	}
	if in.MaxPlayers < 0 {
		return fmt.Errorf("maxPlayers must not be negative, got %d", in.MaxPlayers)
	}
	return nil
}
