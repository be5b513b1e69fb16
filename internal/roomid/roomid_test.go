package roomid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boardscore/boardscore/internal/dependencies/mocks"
	"github.com/boardscore/boardscore/internal/dependencies/random"
	"github.com/boardscore/boardscore/internal/model"
)

func TestGenerateCodeUsesAlphabet(t *testing.T) {
	rnd := mocks.NewMockRandom()
	rnd.QueueString("ABC234")

	code := GenerateCode(rnd)
	assert.Equal(t, model.RoomID("ABC234"), code)
}

func TestGenerateCodeRealRandom(t *testing.T) {
	rnd := random.New()

	for i := 0; i < 50; i++ {
		code := string(GenerateCode(rnd))
		assert.Len(t, code, CodeLength)
		for _, c := range code {
			assert.Contains(t, CodeAlphabet, string(c))
		}
	}
}

func TestCodeAlphabetExcludesConfusables(t *testing.T) {
	for _, c := range "0O1I" {
		assert.NotContains(t, CodeAlphabet, string(c))
	}
}

func TestNormalizeCodeInput(t *testing.T) {
	tests := []struct {
		input string
		want  model.RoomID
	}{
		{"abc234", "ABC234"},
		{"ABC234", "ABC234"},
		{"  abc234  ", "ABC234"},
		{"aB3xY9", "AB3XY9"},
		// Six alphanumerics are always treated as a code, even with
		// excluded letters; only generation avoids confusables
		{"abc10o", "ABC10O"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.input), "input %q", tt.input)
	}
}

func TestNormalizeSlugInput(t *testing.T) {
	tests := []struct {
		input string
		want  model.RoomID
	}{
		{"Friday Game Night", "friday-game-night"},
		{"hello world!", "hello-world"},
		{"--weird--input--", "weird-input"},
		{"Trivia @ Dave's", "trivia-dave-s"},
		{"already-a-slug", "already-a-slug"},
		{"short", "short"},
		{"a much longer room name", "a-much-longer-room-name"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.input), "input %q", tt.input)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"abc234",
		"Friday Game Night",
		"hello world!",
		"already-a-slug",
		"ABC234",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(string(once))
		assert.Equal(t, once, twice, "input %q", input)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	assert.Equal(t, model.RoomID(""), Normalize(""))
	assert.Equal(t, model.RoomID(""), Normalize("   "))
	assert.Equal(t, model.RoomID(""), Normalize("!!!"))
}

func TestNormalizeLongInput(t *testing.T) {
	input := strings.Repeat("Game Night ", 10)
	got := string(Normalize(input))
	assert.NotContains(t, got, " ")
	assert.Equal(t, strings.ToLower(got), got)
}
