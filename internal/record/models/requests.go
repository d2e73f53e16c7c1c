package models

// Request fields are decoded as untyped JSON values so the validator can tell
// a missing field, an empty string and a value of the wrong type apart.

type CreateRecordRequest struct {
	Name     any `json:"Name"`
	Email    any `json:"Email"`
	Age      any `json:"Age"`
	Gender   any `json:"Gender"`
	Address  any `json:"Address"`
	MobileNo any `json:"mobileNo"`
}

// ToRecord converts a validated request. Call only after validation passed.
func (r *CreateRecordRequest) ToRecord() *Record {
	age, _ := IntValue(r.Age)
	return &Record{
		Name:     asString(r.Name),
		Email:    asString(r.Email),
		Age:      age,
		Gender:   asString(r.Gender),
		Address:  asString(r.Address),
		MobileNo: asString(r.MobileNo),
	}
}

// UpdateRecordRequest has no Email: the natural key cannot change.
type UpdateRecordRequest struct {
	Name     any `json:"Name"`
	Age      any `json:"Age"`
	Gender   any `json:"Gender"`
	Address  any `json:"Address"`
	MobileNo any `json:"mobileNo"`
}

// ToUpdateFields converts a validated request. Call only after validation passed.
func (r *UpdateRecordRequest) ToUpdateFields() UpdateFields {
	age, _ := IntValue(r.Age)
	return UpdateFields{
		Name:     asString(r.Name),
		Age:      age,
		Gender:   asString(r.Gender),
		Address:  asString(r.Address),
		MobileNo: asString(r.MobileNo),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
