// Package validator decides whether a candidate record may be persisted.
//
// The per-field checks are pure and take the raw decoded JSON value, so a
// missing field, a string where a number belongs and an out-of-range number
// are all just "invalid". ValidateCreate and ValidateUpdate run the checks in
// a fixed order and stop at the first failure; the order determines which
// message a client sees and must not change.
package validator

import (
	"strings"
	"unicode/utf8"

	"roster/internal/record/models"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/email"
)

const (
	MaxNameLength    = 50
	MaxAddressLength = 100
	MobileNoLength   = 10
	MinAge           = 18
	MaxAge           = 100
)

// Messages returned to clients.
const (
	MsgRequired = "All fields are required"
	MsgName     = "Name must be a string and no longer than 50 characters"
	MsgEmail    = "Invalid email"
	MsgAge      = "Age must be between 18 and 100"
	MsgGender   = "Gender must be male, female, or other"
	MsgAddress  = "Address must be no more than 100 characters long"
	MsgMobileNo = "Mobile number must be 10 digits"
)

var genders = map[string]struct{}{
	"male":   {},
	"female": {},
	"other":  {},
}

// ValidName accepts any string of at most 50 characters, including "".
// Emptiness is the required pass's job. Length is counted in runes, not UTF-16
// code units, so a character outside the BMP counts once.
func ValidName(v any) bool {
	s, ok := v.(string)
	return ok && utf8.RuneCountInString(s) <= MaxNameLength
}

func ValidEmail(v any) bool {
	s, ok := v.(string)
	return ok && email.HasShape(s)
}

func ValidAge(v any) bool {
	n, ok := models.IntValue(v)
	return ok && n >= MinAge && n <= MaxAge
}

// ValidGender lower-cases v and checks it against male/female/other.
// Non-string input is invalid rather than an error.
func ValidGender(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = genders[strings.ToLower(s)]
	return ok
}

func ValidAddress(v any) bool {
	s, ok := v.(string)
	return ok && utf8.RuneCountInString(s) <= MaxAddressLength
}

// ValidMobileNo only checks length. Digits are not enforced so that the value
// stays text and keeps its leading zeros.
func ValidMobileNo(v any) bool {
	s, ok := v.(string)
	return ok && utf8.RuneCountInString(s) == MobileNoLength
}

type rule struct {
	field   string
	check   func(any) bool
	message string
}

var (
	createRules = []rule{
		{"Name", ValidName, MsgName},
		{"Email", ValidEmail, MsgEmail},
		{"Age", ValidAge, MsgAge},
		{"Gender", ValidGender, MsgGender},
		{"Address", ValidAddress, MsgAddress},
		{"mobileNo", ValidMobileNo, MsgMobileNo},
	}
	updateRules = []rule{
		{"Name", ValidName, MsgName},
		{"Age", ValidAge, MsgAge},
		{"Gender", ValidGender, MsgGender},
		{"Address", ValidAddress, MsgAddress},
		{"mobileNo", ValidMobileNo, MsgMobileNo},
	}
)

// ValidateCreate runs the required pass over all six fields, then the field
// rules in order name, email, age, gender, address, mobileNo.
func ValidateCreate(req *models.CreateRecordRequest) error {
	if req == nil {
		return dErrors.New(dErrors.CodeValidation, MsgRequired)
	}
	values := map[string]any{
		"Name":     req.Name,
		"Email":    req.Email,
		"Age":      req.Age,
		"Gender":   req.Gender,
		"Address":  req.Address,
		"mobileNo": req.MobileNo,
	}
	return run(createRules, values)
}

// ValidateUpdate is ValidateCreate without Email.
func ValidateUpdate(req *models.UpdateRecordRequest) error {
	if req == nil {
		return dErrors.New(dErrors.CodeValidation, MsgRequired)
	}
	values := map[string]any{
		"Name":     req.Name,
		"Age":      req.Age,
		"Gender":   req.Gender,
		"Address":  req.Address,
		"mobileNo": req.MobileNo,
	}
	return run(updateRules, values)
}

func run(rules []rule, values map[string]any) error {
	for _, r := range rules {
		if isEmpty(values[r.field]) {
			return dErrors.NewField(r.field, MsgRequired)
		}
	}
	for _, r := range rules {
		if !r.check(values[r.field]) {
			return dErrors.NewField(r.field, r.message)
		}
	}
	return nil
}

// isEmpty treats an absent/null field and the empty string as missing.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
