package models

import "gorm.io/gorm"

// Permission is an entry in the fixed capability catalog (e.g.
// "custom_book"). Catalog rows are seeded out-of-band and referenced,
// never created, by role management.
type Permission struct {
	gorm.Model
	Name  string `gorm:"unique;not null"`
	Roles []Role `gorm:"many2many:role_permissions;"` // Many-to-Many relationship back to Role
}
