// Package catalog declares which fields of the store's entities callers may
// filter and sort on, under their public names.
package catalog

import (
	"github.com/simp-lee/gamestore/internal/domain"
	"github.com/simp-lee/gamestore/internal/filter"
)

// Entity type names accepted by the whitelist.
const (
	EntityUser          = "User"
	EntityGame          = "Game"
	EntityPurchase      = "Purchase"
	EntityReview        = "Review"
	EntityPurchasedGame = "PurchasedGame"
)

func field(name, column string, t domain.FieldType) filter.Field {
	return filter.Field{Name: name, Column: column, Type: t}
}

// auditFields are shared by every persisted entity.
func auditFields() []filter.Field {
	return []filter.Field{
		field("Id", domain.ColumnID, domain.FieldIdentifier),
		field("DataCreazione", domain.ColumnCreatedAt, domain.FieldDateTime),
		field("DataUltimaModifica", domain.ColumnLastModifiedAt, domain.FieldDateTime),
		field("IsCancellato", domain.ColumnIsDeleted, domain.FieldBoolean),
		field("DataCancellazione", domain.ColumnDeletedAt, domain.FieldDateTime),
	}
}

var (
	Users = filter.NewEntity(EntityUser, append(auditFields(),
		field("Username", "username", domain.FieldString),
		field("Email", "email", domain.FieldString),
		field("NomeCompleto", "full_name", domain.FieldString),
		field("Paese", "country", domain.FieldString),
		field("DataRegistrazione", "registered_at", domain.FieldDateTime),
	)...)

	Games = filter.NewEntity(EntityGame, append(auditFields(),
		field("Titolo", "title", domain.FieldString),
		field("Descrizione", "description", domain.FieldString),
		field("PrezzoListino", "list_price", domain.FieldDecimal),
		field("DataRilascio", "release_date", domain.FieldDateTime),
		field("Genere", "genre", domain.FieldString),
		field("Piattaforma", "platform", domain.FieldString),
		field("Sviluppatore", "developer", domain.FieldString),
	)...)

	Purchases = filter.NewEntity(EntityPurchase, append(auditFields(),
		field("UtenteId", "user_id", domain.FieldIdentifier),
		field("GiocoId", "game_id", domain.FieldIdentifier),
		field("DataAcquisto", "purchased_at", domain.FieldDateTime),
		field("PrezzoPagato", "price_paid", domain.FieldDecimal),
		field("Quantita", "quantity", domain.FieldInteger),
		field("MetodoPagamento", "payment_method", domain.FieldString),
		field("CodiceSconto", "discount_code", domain.FieldString),
	)...)

	Reviews = filter.NewEntity(EntityReview, append(auditFields(),
		field("UtenteId", "user_id", domain.FieldIdentifier),
		field("GiocoId", "game_id", domain.FieldIdentifier),
		field("AcquistoId", "purchase_id", domain.FieldIdentifier),
		field("Punteggio", "score", domain.FieldInteger),
		field("Titolo", "title", domain.FieldString),
		field("Corpo", "body", domain.FieldString),
		field("DataRecensione", "reviewed_at", domain.FieldDateTime),
		field("IsRecensioneVerificata", "is_verified", domain.FieldBoolean),
	)...)

	// PurchasedGames is the library projection. It is only filtered in
	// memory; the columns name the projection's JSON fields.
	PurchasedGames = filter.NewEntity(EntityPurchasedGame,
		field("AcquistoId", "purchase_id", domain.FieldIdentifier),
		field("GiocoId", "game_id", domain.FieldIdentifier),
		field("Titolo", "title", domain.FieldString),
		field("Genere", "genre", domain.FieldString),
		field("Piattaforma", "platform", domain.FieldString),
		field("DataAcquisto", "purchased_at", domain.FieldDateTime),
		field("PrezzoPagato", "price_paid", domain.FieldDecimal),
		field("Quantita", "quantity", domain.FieldInteger),
	)
)

// Whitelist is the process-wide field whitelist of the catalog.
var Whitelist = filter.NewWhitelist(Users, Games, Purchases, Reviews, PurchasedGames)

// PurchasedGameAccessors reads the whitelisted fields of a library row.
var PurchasedGameAccessors = filter.Accessors[domain.PurchasedGame]{
	"AcquistoId":   func(p domain.PurchasedGame) any { return p.PurchaseID },
	"GiocoId":      func(p domain.PurchasedGame) any { return p.GameID },
	"Titolo":       func(p domain.PurchasedGame) any { return p.Title },
	"Genere":       func(p domain.PurchasedGame) any { return deref(p.Genre) },
	"Piattaforma":  func(p domain.PurchasedGame) any { return deref(p.Platform) },
	"DataAcquisto": func(p domain.PurchasedGame) any { return p.PurchasedAt },
	"PrezzoPagato": func(p domain.PurchasedGame) any { return p.PricePaid },
	"Quantita":     func(p domain.PurchasedGame) any { return p.Quantity },
}

// deref keeps a nil pointer from becoming a non-nil interface.
func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
