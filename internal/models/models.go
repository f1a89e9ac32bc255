package models

type Product struct {
	ID    uint    `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name  string  `gorm:"not null;check:name <> ''"   json:"name"`
	Price float64 `gorm:"not null;check:price >= 0"   json:"price"`
}
