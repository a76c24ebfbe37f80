package model

// Privilege is a permission code granted to roles and users.
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g. "sale:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivClientCreate  = "client:create"
	PrivDoctorCreate  = "doctor:create"
	PrivSaleCreate    = "sale:create"
	PrivSaleView      = "sale:view"
	PrivReportView    = "report:view"
	PrivAssistantUse  = "assistant:use"
	PrivStoreReset    = "store:reset"
	PrivUserManage    = "user:manage"
)

var DefaultPrivileges = []Privilege{
	// Catalog
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivClientCreate, Name: "Create Client"},
	{Code: PrivDoctorCreate, Name: "Create Doctor"},
	// Register
	{Code: PrivSaleCreate, Name: "Create Sale"},
	{Code: PrivSaleView, Name: "View Sales"},
	// Back office
	{Code: PrivReportView, Name: "View Reports"},
	{Code: PrivAssistantUse, Name: "Use AI Assistant"},
	{Code: PrivStoreReset, Name: "Reset Store Data"},
	{Code: PrivUserManage, Name: "Manage Staff Accounts"},
}
