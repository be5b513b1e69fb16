// Package roomid generates and normalizes room identifiers.
//
// Rooms are identified either by a generated 6-character code drawn
// from a confusable-free alphabet, or by a user-chosen slug. The two
// formats are distinguished purely by shape: any 6-character
// alphanumeric string is treated as a code.
package roomid

import (
	"regexp"
	"strings"

	"github.com/boardscore/boardscore/internal/dependencies/random"
	"github.com/boardscore/boardscore/internal/model"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6
	// CodeAlphabet is the character set for generated codes.
	// 0/O and 1/I are excluded because codes are transcribed by hand.
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var (
	codePattern = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// GenerateCode returns a random 6-character room code.
// It makes no uniqueness guarantee on its own; callers must check
// against existing rooms.
func GenerateCode(rnd random.Random) model.RoomID {
	return model.RoomID(rnd.String(CodeLength, CodeAlphabet))
}

// Normalize converts user input into a canonical room id.
//
// A 6-character alphanumeric input is always treated as a generated
// code and uppercased, regardless of origin. Anything else becomes a
// custom slug: lowercased, runs of invalid characters collapsed to a
// single dash, leading and trailing dashes trimmed.
func Normalize(input string) model.RoomID {
	trimmed := strings.TrimSpace(input)

	if codePattern.MatchString(trimmed) {
		return model.RoomID(strings.ToUpper(trimmed))
	}

	slug := strings.ToLower(trimmed)
	slug = slugInvalid.ReplaceAllString(slug, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	return model.RoomID(slug)
}
