// Package models defines the core domain models for the invoice generator.
//
// # Data flow
//
// The models mirror the one-way pipeline of the application:
//
//	raw sheet text -> Product catalog -> LineItem cart -> Invoice
//
// Products are built once per successful sheet fetch and the catalog is
// immutable for that session; a new fetch replaces it wholesale. LineItems
// are defensive copies taken at add-time, so a catalog refresh never
// retroactively changes an existing cart line. An Invoice is a derived
// projection over customer + cart + static metadata and is recomputed on
// demand, never stored as mutable state of its own.
//
// # Design principles
//
//  1. Every Product in a catalog passed validation; no partial products
//     surface downstream.
//  2. Money fields use decimal.Decimal so totals accumulate exactly;
//     rounding happens only at display time.
//  3. No cross-references by pointer: cart lines carry copied values and
//     reference products by ID string only.
package models
