// Package models holds the GORM persistence models. Domain entities carry no
// ORM tags; each model converts to and from its entity with ToDomain and
// FromDomain. Column types are portable so the same models back the
// postgres tables created by the SQL migrations and the sqlite databases
// used in tests.
package models
