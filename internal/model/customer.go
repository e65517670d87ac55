package model

type Customer struct {
	BaseModel
	CustomerName      string  `gorm:"type:varchar(255);not null" json:"customer_name"`
	BusinessName      string  `gorm:"type:varchar(255);not null" json:"business_name"`
	ContactNumber     string  `gorm:"type:varchar(20);not null" json:"contact_number"`
	StreetAddress     string  `gorm:"type:text;not null" json:"street_address"`
	Latitude          float64 `gorm:"not null" json:"latitude"`
	Longitude         float64 `gorm:"not null" json:"longitude"`
	GSTNumber         string  `gorm:"column:gst_number;type:varchar(15);uniqueIndex;not null" json:"gst_number"`
	FoodLicenceNumber string  `gorm:"type:varchar(50);uniqueIndex;not null" json:"food_licence_number"`
	Email             *string `gorm:"type:varchar(255);uniqueIndex" json:"email"`
}

func (Customer) TableName() string {
	return "customers"
}

// NearbyCustomer adds the great-circle distance from the query point.
type NearbyCustomer struct {
	Customer
	DistanceMeters float64 `json:"distance_meters"`
}
