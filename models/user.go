package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Email    string `gorm:"unique"`
	Roles    []Role `gorm:"many2many:user_roles;"` // Many-to-Many relationship with Role
}
