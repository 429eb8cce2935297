// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: shared id/timestamp/version columns
//   - identity.go: users
//   - partner.go: customers
//   - catalog.go: services and upsell items
//   - estimate.go: estimates, their lines, upsells and project photos
//   - inventory.go: inventory items and the inventory log
//   - settings.go: key/value settings
package models
