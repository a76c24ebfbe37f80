package model

// Role groups privileges for pharmacy staff.
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleOwner      = "OWNER"
	RolePharmacist = "PHARMACIST"
	RoleCashier    = "CASHIER"
)

var DefaultRoles = []Role{
	{
		Code:        RoleOwner,
		Name:        "Owner",
		Description: "Full access, including store reset",
	},
	{
		Code:        RolePharmacist,
		Name:        "Pharmacist",
		Description: "Catalog, register, reports and assistant",
	},
	{
		Code:        RoleCashier,
		Name:        "Cashier",
		Description: "Register only",
	},
}

// RolePrivileges lists the privilege codes each non-owner role receives at seed time.
// The owner role always receives every privilege.
var RolePrivileges = map[string][]string{
	RolePharmacist: {
		PrivProductCreate, PrivProductUpdate, PrivClientCreate, PrivDoctorCreate,
		PrivSaleCreate, PrivSaleView, PrivReportView, PrivAssistantUse,
	},
	RoleCashier: {PrivClientCreate, PrivSaleCreate, PrivSaleView},
}
