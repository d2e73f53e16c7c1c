package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntValue(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"json float", float64(30), 30, true},
		{"fractional float", 30.5, 0, false},
		{"nan", math.NaN(), 0, false},
		{"int64", int64(18), 18, true},
		{"json number", json.Number("100"), 100, true},
		{"json number with zero fraction", json.Number("40.0"), 40, true},
		{"numeric string", "30", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := IntValue(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCreateRequestDecodesOriginalWireNames(t *testing.T) {
	body := `{"Name":"Ann","Email":"ann@x.com","Age":30,"Gender":"Female","Address":"1 Rd","mobileNo":"0123456789"}`
	var req CreateRecordRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	rec := req.ToRecord()
	assert.Equal(t, "Ann", rec.Name)
	assert.Equal(t, 30, rec.Age)
	assert.Equal(t, "Female", rec.Gender)
	assert.Equal(t, "0123456789", rec.MobileNo)
	assert.Zero(t, rec.ID)
}

func TestUpdateFieldsApply(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(time.Hour)
	rec := &Record{ID: 1, Email: "ann@x.com", Name: "Ann", Age: 30, CreatedAt: created, UpdatedAt: created}

	UpdateFields{Name: "Ann B", Age: 31, Gender: "female", Address: "2 Rd", MobileNo: "0000000000"}.Apply(rec, now)

	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, "ann@x.com", rec.Email)
	assert.Equal(t, 31, rec.Age)
	assert.Equal(t, created, rec.CreatedAt)
	assert.Equal(t, now, rec.UpdatedAt)
}

func TestRecordJSONKeepsLeadingZeros(t *testing.T) {
	out, err := json.Marshal(&Record{ID: 3, MobileNo: "0012345678"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"mobileNo":"0012345678"`)
	assert.Contains(t, string(out), `"userId":3`)
}
