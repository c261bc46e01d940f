// Package models holds the gorm models migrated at bring-up.
package models

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Product{}}
}
