// Package models contains the GORM persistence models for the fulfillment tables.
// Domain types stay free of GORM tags; repositories map through the
// ToDomain / *FromDomain helpers defined next to each model.
//
//   - base.go: AggregateModel (id, timestamps, optimistic-lock version)
//   - fulfillment.go: orders and everything the order aggregate owns
//   - variant.go: variant stock rows
package models
