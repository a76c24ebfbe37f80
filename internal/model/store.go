package model

import (
	"github.com/shopspring/decimal"
)

// StoreData is the aggregate root persisted as a single document.
type StoreData struct {
	Products     []Product       `json:"products"`
	Clients      []Client        `json:"clients"`
	Doctors      []Doctor        `json:"doctors"`
	Sales        []Sale          `json:"sales"` // most recent first
	CashRegister decimal.Decimal `json:"cash_register"`
}

// Clone deep-copies products and batches. Sales are immutable once committed,
// so only the slice header is copied for them.
func (d StoreData) Clone() StoreData {
	out := StoreData{
		Products:     make([]Product, len(d.Products)),
		Clients:      append([]Client(nil), d.Clients...),
		Doctors:      append([]Doctor(nil), d.Doctors...),
		Sales:        append([]Sale(nil), d.Sales...),
		CashRegister: d.CashRegister,
	}
	for i, p := range d.Products {
		out.Products[i] = p.Clone()
	}
	return out
}

func (d StoreData) ProductIndex(id string) int {
	for i, p := range d.Products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (d StoreData) FindClient(id string) (Client, bool) {
	for _, c := range d.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}

func (d StoreData) FindDoctor(id string) (Doctor, bool) {
	for _, doc := range d.Doctors {
		if doc.ID == id {
			return doc, true
		}
	}
	return Doctor{}, false
}
