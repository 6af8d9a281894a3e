// Package models holds the gorm rows behind the persistence repositories.
// Domain types carry no gorm tags; each model converts with ToDomain and
// FromDomain (or a ...ModelFromDomain constructor).
//
// Amounts are stored as decimal(18,4). Lot cost ledgers are flattened into
// one column per category, and the lines of an indirect allocation are kept
// in a JSON column.
package models
