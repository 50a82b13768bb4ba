package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

type ProductImage struct {
	URL string `bson:"url" json:"url"`
}

// Product is read-only from the account/cart side; it is owned by the
// catalog and only referenced by cart lines.
type Product struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name   string             `bson:"name" json:"name"`
	Price  string             `bson:"price" json:"price"`
	Images []ProductImage     `bson:"images" json:"images"`
	Stock  int                `bson:"stock" json:"stock"`
}
