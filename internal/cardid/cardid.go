// Package cardid derives stable identifiers for vocabulary cards so their
// checkpoints survive deck edits that do not change the term itself.
package cardid

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/fluentdeck/internal/domain"
)

const hashLength = 12

// Normalize joins the card's term and translation after cleaning each part.
// Examples are left out so rewording an example keeps the same identity.
func Normalize(card domain.Card) string {
	normalizePart := func(part string) string {
		p := strings.ReplaceAll(part, "\r\n", "\n")
		p = strings.TrimSpace(p)
		return strings.ToLower(strings.Join(strings.Fields(p), " "))
	}
	return normalizePart(card.Portuguese) + "\n" + normalizePart(card.English)
}

// ID returns "<category>-<hash>", where hash is a truncated hex SHA-256 of
// the normalized card.
func ID(card domain.Card) string {
	sum := sha256.Sum256([]byte(Normalize(card)))
	return fmt.Sprintf("%s-%x", card.Category, sum[:hashLength/2])
}
