package models

import "gorm.io/gorm"

// Book is a record with an associated image on disk. Picture holds the
// opaque stored filename only; full locators are built per request so
// the storage layout never leaks.
type Book struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Author      string `gorm:"not null"`
	Description string
	Picture     string
}
