// Package validation provides input validation for agentrep.
package validation

import (
	"errors"
	"fmt"
)

// ValidateAddress validates an Ethereum address
func ValidateAddress(addr string) error {
	if len(addr) != 42 {
		return errors.New("invalid address length: must be 42 characters (0x + 40 hex)")
	}
	if addr[0] != '0' || (addr[1] != 'x' && addr[1] != 'X') {
		return errors.New("invalid address: must start with 0x")
	}
	// Check hex characters
	for _, c := range addr[2:] {
		isDigit := c >= '0' && c <= '9'
		isLowerHex := c >= 'a' && c <= 'f'
		isUpperHex := c >= 'A' && c <= 'F'
		if !isDigit && !isLowerHex && !isUpperHex {
			return errors.New("invalid address: contains non-hex characters")
		}
	}
	return nil
}

// ValidateTags validates a feedback tag list: at most two tags, none
// empty.
func ValidateTags(tags []string) error {
	if len(tags) > 2 {
		return fmt.Errorf("at most 2 tags allowed, got %d", len(tags))
	}
	for _, t := range tags {
		if t == "" {
			return errors.New("tags must not be empty")
		}
	}
	return nil
}

// ValidateChainID validates a chain ID
func ValidateChainID(chainID uint64) error {
	if chainID == 0 {
		return errors.New("chain ID must be positive")
	}
	return nil
}
