package model

type Company struct {
	BaseModel
	CompanyName string  `gorm:"type:varchar(255);not null;index" json:"company_name"`
	CompanyLogo *string `gorm:"type:text" json:"company_logo"`
}

func (Company) TableName() string {
	return "companies"
}
