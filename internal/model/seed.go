package model

import "github.com/shopspring/decimal"

// SeedStoreData returns the catalog a fresh store starts with: four products,
// a walk-in client, two doctors, no sales and a 1500.00 cash float.
func SeedStoreData() StoreData {
	return StoreData{
		Products: []Product{
			{
				ID:               "1",
				Code:             "7501000001",
				Name:             "Amoxicilina 500mg",
				Description:      "Caja con 12 cápsulas",
				Price:            decimal.RequireFromString("85.00"),
				Type:             ProductAntibiotic,
				ActiveIngredient: "Amoxicilina",
				MinStock:         10,
				Batches: []Batch{
					{ID: "b1", BatchNumber: "A100", ExpiryDate: "2025-12-01", Quantity: 50, Cost: decimal.RequireFromString("40.00")},
					{ID: "b2", BatchNumber: "A102", ExpiryDate: "2024-06-01", Quantity: 10, Cost: decimal.RequireFromString("42.00")},
				},
			},
			{
				ID:               "2",
				Code:             "7501000002",
				Name:             "Paracetamol 500mg",
				Description:      "Caja con 20 tabletas",
				Price:            decimal.RequireFromString("25.00"),
				Type:             ProductGeneral,
				ActiveIngredient: "Paracetamol",
				MinStock:         20,
				Batches: []Batch{
					{ID: "b3", BatchNumber: "P200", ExpiryDate: "2026-01-15", Quantity: 100, Cost: decimal.RequireFromString("10.00")},
				},
			},
			{
				ID:               "3",
				Code:             "7501000003",
				Name:             "Clonazepam 2mg",
				Description:      "Caja con 30 tabletas",
				Price:            decimal.RequireFromString("350.00"),
				Type:             ProductControlled,
				ActiveIngredient: "Clonazepam",
				MinStock:         5,
				Batches: []Batch{
					{ID: "b4", BatchNumber: "C300", ExpiryDate: "2025-08-20", Quantity: 15, Cost: decimal.RequireFromString("200.00")},
				},
			},
			{
				ID:          "4",
				Code:        "7501000004",
				Name:        "Vendas Elásticas 5cm",
				Description: "Paquete individual",
				Price:       decimal.RequireFromString("15.00"),
				Type:        ProductMaterial,
				MinStock:    10,
				Batches: []Batch{
					{ID: "b5", BatchNumber: "V400", ExpiryDate: "2028-01-01", Quantity: 40, Cost: decimal.RequireFromString("5.00")},
				},
			},
		},
		Clients: []Client{
			{ID: "c1", Name: "Publico General"},
			{ID: "c2", Name: "Juan Perez", Email: "juan@example.com", Phone: "555-0123"},
		},
		Doctors: []Doctor{
			{ID: "d1", Name: "Dr. Simi Smith", LicenseNumber: "12345678", Specialty: "General", Phone: "555-9999"},
			{ID: "d2", Name: "Dra. House", LicenseNumber: "87654321", Specialty: "Neurología", Phone: "555-8888"},
		},
		Sales:        []Sale{},
		CashRegister: decimal.RequireFromString("1500.00"),
	}
}
