package model

type Client struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"required"`
	RFC   string `json:"rfc,omitempty"` // tax id
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// Doctor is the prescriber referenced by sales of regulated products.
type Doctor struct {
	ID            string `json:"id"`
	Name          string `json:"name" validate:"required"`
	LicenseNumber string `json:"license_number" validate:"required"`
	Specialty     string `json:"specialty"`
	Phone         string `json:"phone"`
}
