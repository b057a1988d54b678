package address

import (
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUSAddress() domain.Address {
	return domain.Address{
		FirstName:   "Jane",
		LastName:    "Doe",
		Line1:       "1 Main St",
		City:        "Springfield",
		State:       "IL",
		PostalCode:  "62704",
		CountryCode: "US",
		Phone:       "+1 555 0100",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*domain.Address)
		country      string
		wantErrors   []string
		wantWarnings int
	}{
		{
			name:    "valid US address",
			mutate:  func(*domain.Address) {},
			country: "US",
		},
		{
			name:       "missing line1",
			mutate:     func(a *domain.Address) { a.Line1 = "  " },
			country:    "US",
			wantErrors: []string{"address line1 is required"},
		},
		{
			name:       "missing city",
			mutate:     func(a *domain.Address) { a.City = "" },
			country:    "US",
			wantErrors: []string{"city is required"},
		},
		{
			name:       "missing name entirely",
			mutate:     func(a *domain.Address) { a.FirstName = ""; a.LastName = "" },
			country:    "US",
			wantErrors: []string{"recipient name is required"},
		},
		{
			name:       "bad US zip",
			mutate:     func(a *domain.Address) { a.PostalCode = "ABCDE" },
			country:    "US",
			wantErrors: []string{`postal code "ABCDE" does not match the US format`},
		},
		{
			name:    "US zip+4 accepted",
			mutate:  func(a *domain.Address) { a.PostalCode = "62704-1234" },
			country: "US",
		},
		{
			name:    "canadian postal code with space",
			mutate:  func(a *domain.Address) { a.PostalCode = "K1A 0B1"; a.State = "ON" },
			country: "CA",
		},
		{
			name:       "canadian postal code wrong shape",
			mutate:     func(a *domain.Address) { a.PostalCode = "12345"; a.State = "ON" },
			country:    "CA",
			wantErrors: []string{`postal code "12345" does not match the CA format`},
		},
		{
			name:    "unknown country postal format accepted",
			mutate:  func(a *domain.Address) { a.PostalCode = "whatever-9" },
			country: "ZA",
		},
		{
			name:         "missing state warns but does not block",
			mutate:       func(a *domain.Address) { a.State = "" },
			country:      "US",
			wantWarnings: 1,
		},
		{
			name:       "country from address used when argument empty",
			mutate:     func(a *domain.Address) { a.PostalCode = "nope" },
			country:    "",
			wantErrors: []string{`postal code "nope" does not match the US format`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := validUSAddress()
			tt.mutate(&addr)

			res := Validate(addr, tt.country)

			assert.Equal(t, tt.wantErrors, res.Errors)
			assert.Equal(t, len(tt.wantErrors) == 0, res.Valid())
			if tt.wantWarnings > 0 {
				assert.Len(t, res.Warnings, tt.wantWarnings)
			}
		})
	}
}

// Validation is pure: repeated calls with the same input give the same result
// regardless of what ran before.
func TestValidate_Idempotent(t *testing.T) {
	addr := validUSAddress()
	addr.PostalCode = "bad"

	first := Validate(addr, "US")
	Validate(validUSAddress(), "CA")
	second := Validate(addr, "US")

	require.Equal(t, first, second)
}

// Billing addresses get the exact same structural contract as shipping ones.
func TestValidate_BillingSameContract(t *testing.T) {
	billing := validUSAddress()
	billing.Line1 = ""
	billing.PostalCode = "oops"

	res := Validate(billing, "US")

	assert.False(t, res.Valid())
	assert.Len(t, res.Errors, 2)
}
