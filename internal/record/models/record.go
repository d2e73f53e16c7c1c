package models

import (
	"encoding/json"
	"math"
	"time"
)

// Record is a managed user record.
//
// Invariants:
//   - ID is assigned once by the allocator and never reused
//   - Email is unique across live records and immutable after creation
//   - Gender is stored as submitted; it is only compared case-insensitively
//   - MobileNo is text so leading zeros survive
//   - CreatedAt/UpdatedAt are set by the store
type Record struct {
	ID        int64     `json:"userId"`
	Name      string    `json:"Name"`
	Email     string    `json:"Email"`
	Age       int       `json:"Age"`
	Gender    string    `json:"Gender"`
	Address   string    `json:"Address"`
	MobileNo  string    `json:"mobileNo"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateFields is the mutable subset of a Record.
type UpdateFields struct {
	Name     string
	Age      int
	Gender   string
	Address  string
	MobileNo string
}

// Apply copies the mutable fields onto r.
func (u UpdateFields) Apply(r *Record, now time.Time) {
	r.Name = u.Name
	r.Age = u.Age
	r.Gender = u.Gender
	r.Address = u.Address
	r.MobileNo = u.MobileNo
	r.UpdatedAt = now
}

// Clone returns a copy that can be handed out without sharing store memory.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// IntValue converts a decoded JSON value to an int when it is a number with
// no fractional part. Strings are never numbers, even "30".
func IntValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil || f != math.Trunc(f) {
				return 0, false
			}
			return int(f), true
		}
		return int(i), true
	default:
		return 0, false
	}
}
