package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password the backend accepts.
const MinPasswordLength = 8

// SpecialCharacters is the set counted by the special character rule.
const SpecialCharacters = `!@#$%^&*()_+-=[]{}|;:,.<>?`

// Rule names, also the i18n key suffixes of their labels.
const (
	RuleLength  = "length"
	RuleUpper   = "upper"
	RuleLower   = "lower"
	RuleSpecial = "special"
)

// RuleResult is the pass state of one password rule.
type RuleResult struct {
	Name   string
	Passed bool
}

// PasswordCheck is the evaluation of every rule in a fixed order.
type PasswordCheck struct {
	Rules []RuleResult
}

// Passed reports whether every rule passed.
func (c PasswordCheck) Passed() bool {
	for _, r := range c.Rules {
		if !r.Passed {
			return false
		}
	}
	return true
}

// Failed returns the names of the rules that did not pass.
func (c PasswordCheck) Failed() []string {
	var failed []string
	for _, r := range c.Rules {
		if !r.Passed {
			failed = append(failed, r.Name)
		}
	}
	return failed
}

// Rule returns the pass state of the named rule.
func (c PasswordCheck) Rule(name string) bool {
	for _, r := range c.Rules {
		if r.Name == name {
			return r.Passed
		}
	}
	return false
}

// CheckPassword evaluates the length, uppercase, lowercase and special
// character rules.
func CheckPassword(pw string) PasswordCheck {
	return PasswordCheck{Rules: []RuleResult{
		{Name: RuleLength, Passed: utf8.RuneCountInString(pw) >= MinPasswordLength},
		{Name: RuleUpper, Passed: strings.IndexFunc(pw, unicode.IsUpper) >= 0},
		{Name: RuleLower, Passed: strings.IndexFunc(pw, unicode.IsLower) >= 0},
		{Name: RuleSpecial, Passed: strings.ContainsAny(pw, SpecialCharacters)},
	}}
}

// Strength is the number of rules pw passes, from 0 to 4.
func Strength(pw string) int {
	n := 0
	for _, r := range CheckPassword(pw).Rules {
		if r.Passed {
			n++
		}
	}
	return n
}

// ValidatePassword returns ErrWeakPassword unless every rule passes.
func ValidatePassword(pw string) error {
	if pw == "" {
		return ErrEmptyPassword
	}
	if !CheckPassword(pw).Passed() {
		return ErrWeakPassword
	}
	return nil
}

// ValidateNewPassword checks the rules and the confirmation field.
func ValidateNewPassword(pw, confirm string) error {
	if err := ValidatePassword(pw); err != nil {
		return err
	}
	if pw != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
