package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pharmaclic/internal/model"
)

func validProduct() model.Product {
	return model.Product{
		Code:     "750100",
		Name:     "Ibuprofeno 400mg",
		Price:    decimal.RequireFromString("32.50"),
		Type:     model.ProductGeneral,
		MinStock: 5,
		Batches: []model.Batch{
			{BatchNumber: "I1", ExpiryDate: "2027-03-01", Quantity: 20, Cost: decimal.RequireFromString("12")},
		},
	}
}

func TestValidateProduct(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *model.Product)
		field  string
		tag    string
	}{
		{"valid", func(p *model.Product) {}, "", ""},
		{"missing code", func(p *model.Product) { p.Code = "" }, "Product.Code", "required"},
		{"unknown type", func(p *model.Product) { p.Type = "Cosmetic" }, "Product.Type", "product_type"},
		{"negative price", func(p *model.Product) { p.Price = decimal.RequireFromString("-1") }, "Product.Price", "gte"},
		{"negative min stock", func(p *model.Product) { p.MinStock = -1 }, "Product.MinStock", "gte"},
		{"negative batch quantity", func(p *model.Product) { p.Batches[0].Quantity = -3 }, "Product.Batches[0].Quantity", "gte"},
		{"bad expiry", func(p *model.Product) { p.Batches[0].ExpiryDate = "01/03/2027" }, "Product.Batches[0].ExpiryDate", "iso_date"},
		{"negative cost", func(p *model.Product) { p.Batches[0].Cost = decimal.RequireFromString("-0.01") }, "Product.Batches[0].Cost", "gte"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validProduct()
			tc.mutate(&p)
			errs := ValidateStruct(&p)
			if tc.field == "" {
				require.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			require.Equal(t, tc.field, errs[0].FailedField)
			require.Equal(t, tc.tag, errs[0].Tag)
		})
	}
}

func TestFirstError(t *testing.T) {
	require.NoError(t, FirstError(&model.Doctor{Name: "Dr. Who", LicenseNumber: "1"}))

	err := FirstError(&model.Client{Name: "Ana", Email: "not-an-email"})
	require.EqualError(t, err, "Validation failed: Field 'Client.Email' failed on tag 'email'")
}
