package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		password string
		failed   []string
		strength int
	}{
		{"abc", []string{RuleLength, RuleUpper, RuleSpecial}, 1},
		{"Abcdef1!", nil, 4},
		{"Abcdef12", []string{RuleSpecial}, 3},
		{"abcdef1!", []string{RuleUpper}, 3},
		{"ABCDEF1!", []string{RuleLower}, 3},
		{"Ab1!", []string{RuleLength}, 3},
		{"", []string{RuleLength, RuleUpper, RuleLower, RuleSpecial}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			check := CheckPassword(tt.password)
			assert.Equal(t, tt.failed, check.Failed())
			assert.Equal(t, tt.failed == nil, check.Passed())
			assert.Equal(t, tt.strength, Strength(tt.password))
		})
	}
}

func TestCheckPassword_SingleCharacterFlipsOneRule(t *testing.T) {
	base := CheckPassword("Abcdef1!")
	changed := CheckPassword("Abcdef1x")

	flipped := 0
	for i, r := range base.Rules {
		if r.Passed != changed.Rules[i].Passed {
			flipped++
			assert.Equal(t, RuleSpecial, r.Name)
		}
	}
	assert.Equal(t, 1, flipped)
}

func TestCheckPassword_EverySpecialCharacterCounts(t *testing.T) {
	for _, c := range SpecialCharacters {
		pw := "Abcdefgh" + string(c)
		assert.True(t, CheckPassword(pw).Rule(RuleSpecial), "character %q", c)
	}
	assert.False(t, CheckPassword("Abcdefgh~").Rule(RuleSpecial))
}

func TestCheckPassword_LengthCountsRunes(t *testing.T) {
	pw := "Ąb!" + strings.Repeat("ż", 4)
	assert.False(t, CheckPassword(pw).Rule(RuleLength))
	assert.True(t, CheckPassword(pw+"x").Rule(RuleLength))
}

func TestValidateNewPassword(t *testing.T) {
	assert.ErrorIs(t, ValidateNewPassword("", ""), ErrEmptyPassword)
	assert.ErrorIs(t, ValidateNewPassword("abc", "abc"), ErrWeakPassword)
	assert.ErrorIs(t, ValidateNewPassword("Abcdef1!", "Abcdef1?"), ErrPasswordMismatch)
	assert.NoError(t, ValidateNewPassword("Abcdef1!", "Abcdef1!"))
}
