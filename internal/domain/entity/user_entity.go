package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Avatar is the asset-store handle for a user's profile image.
// PublicID is the identifier the asset store needs to delete or replace
// the image later.
type Avatar struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

// CartLine is one product entry embedded in a user's cart array.
// Product is a weak reference to a product document id; nothing guarantees
// the product still exists when the line is read back.
type CartLine struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Product  string             `bson:"product" json:"product"`
	Name     string             `bson:"name" json:"name"`
	Price    string             `bson:"price" json:"price"`
	Image    string             `bson:"image" json:"image"`
	Stock    int                `bson:"stock" json:"stock"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash and is excluded from reads unless a query
// explicitly asks for it (login, password update).
type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name"`
	Email               string             `bson:"email" json:"email"`
	Password            string             `bson:"password,omitempty" json:"-"`
	Role                string             `bson:"role" json:"role"`
	Avatar              Avatar             `bson:"avatar" json:"avatar"`
	ResetPasswordToken  string             `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpire time.Time          `bson:"reset_password_expire,omitempty" json:"-"`
	Cart                []CartLine         `bson:"cart" json:"cart"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
}
