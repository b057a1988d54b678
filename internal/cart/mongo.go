package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/text/currency"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(collection *mongo.Collection) Repository {
	return &mongoRepository{collection: collection}
}

type cartDoc struct {
	ID        string    `bson:"_id,omitempty"`
	OwnerID   string    `bson:"owner_id"`
	Lines     []lineDoc `bson:"lines"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type lineDoc struct {
	ProductID     int64     `bson:"product_id"`
	VariantID     *string   `bson:"variant_id,omitempty"`
	Quantity      int       `bson:"quantity"`
	PriceAmount   string    `bson:"price_amount"`
	PriceCurrency string    `bson:"price_currency"`
	AddedAt       time.Time `bson:"added_at"`
}

func (m *mongoRepository) GetCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	var doc cartDoc
	filter := bson.M{"owner_id": ownerID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	cart, err := mapDocToDomain(doc)
	if err != nil {
		return nil, fmt.Errorf("mapDocToDomain: %w", err)
	}
	return cart, nil
}

func (m *mongoRepository) UpsertLine(ctx context.Context, ownerID string, line domain.CartLine) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	now := time.Now()
	line.AddedAt = now

	cart, err := m.GetCart(ctx, ownerID)
	if errors.Is(err, ErrCartNotFound) {
		cart = &domain.Cart{OwnerID: ownerID, CreatedAt: now}
	} else if err != nil {
		return err
	}

	replaced := false
	for i, existing := range cart.Lines {
		if sameLine(existing, line.ProductID, line.VariantID) {
			cart.Lines[i] = line
			replaced = true
			break
		}
	}
	if !replaced {
		cart.Lines = append(cart.Lines, line)
	}
	cart.UpdatedAt = now

	return m.upsert(ctx, cart)
}

func (m *mongoRepository) RemoveLine(ctx context.Context, ownerID string, productID int64, variantID *string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	cart, err := m.GetCart(ctx, ownerID)
	if err != nil {
		return err
	}

	kept := cart.Lines[:0]
	removed := false
	for _, line := range cart.Lines {
		if sameLine(line, productID, variantID) {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return ErrLineNotFound
	}

	cart.Lines = kept
	cart.UpdatedAt = time.Now()
	return m.upsert(ctx, cart)
}

func (m *mongoRepository) DeleteCart(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	res, err := m.collection.DeleteOne(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (m *mongoRepository) upsert(ctx context.Context, cart *domain.Cart) error {
	doc := mapDomainToDoc(cart)
	filter := bson.M{"owner_id": cart.OwnerID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

func sameLine(line domain.CartLine, productID int64, variantID *string) bool {
	if line.ProductID != productID {
		return false
	}
	if line.VariantID == nil || variantID == nil {
		return line.VariantID == nil && variantID == nil
	}
	return *line.VariantID == *variantID
}

func mapDomainToDoc(cart *domain.Cart) cartDoc {
	lines := make([]lineDoc, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, lineDoc{
			ProductID:     l.ProductID,
			VariantID:     l.VariantID,
			Quantity:      l.Quantity,
			PriceAmount:   l.UnitPrice.Amount.String(),
			PriceCurrency: l.UnitPrice.Currency.String(),
			AddedAt:       l.AddedAt,
		})
	}
	return cartDoc{
		OwnerID:   cart.OwnerID,
		Lines:     lines,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
}

func mapDocToDomain(doc cartDoc) (*domain.Cart, error) {
	lines := make([]domain.CartLine, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		amount, err := decimal.NewFromString(l.PriceAmount)
		if err != nil {
			return nil, fmt.Errorf("amount[%s] is not valid: %w", l.PriceAmount, err)
		}
		parsedCurrency, err := currency.ParseISO(l.PriceCurrency)
		if err != nil {
			return nil, fmt.Errorf("currency[%s] is not valid: %w", l.PriceCurrency, err)
		}
		lines = append(lines, domain.CartLine{
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: domain.Money{Amount: amount, Currency: parsedCurrency},
			AddedAt:   l.AddedAt,
		})
	}
	return &domain.Cart{
		OwnerID:   doc.OwnerID,
		Lines:     lines,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
