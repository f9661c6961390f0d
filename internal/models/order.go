package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderLine fige le prix au moment de la commande. ListPrice et Discount
// conservent les valeurs du catalogue qui ont servi au calcul de UnitPrice.
type OrderLine struct {
	Product   primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	UnitPrice float64            `bson:"unit_price" json:"unit_price"`
	ListPrice float64            `bson:"list_price" json:"list_price"`
	Discount  float64            `bson:"discount" json:"discount"`
}

type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Items          []OrderLine        `bson:"items" json:"items"`
	FirstName      string             `bson:"first_name" json:"first_name"`
	LastName       string             `bson:"last_name" json:"last_name"`
	CompanyName    string             `bson:"company_name,omitempty" json:"company_name,omitempty"`
	Country        string             `bson:"country" json:"country"`
	City           string             `bson:"city" json:"city"`
	Address        string             `bson:"address" json:"address"`
	PostalCode     string             `bson:"postal_code" json:"postal_code"`
	PhoneNumber    string             `bson:"phone_number" json:"phone_number"`
	Email          string             `bson:"email" json:"email"`
	AdditionalInfo string             `bson:"additional_info,omitempty" json:"additional_info,omitempty"`
	Paid           bool               `bson:"paid" json:"paid"`
	ReminderSent   bool               `bson:"reminder_sent" json:"reminder_sent"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

type OrderItemInput struct {
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type OrderInput struct {
	Items          []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	FirstName      string           `json:"first_name" binding:"required,min=2,max=256"`
	LastName       string           `json:"last_name" binding:"required,min=2,max=256"`
	CompanyName    string           `json:"company_name" binding:"max=256"`
	Country        string           `json:"country" binding:"required,min=2,max=256"`
	City           string           `json:"city" binding:"required,min=2,max=256"`
	Address        string           `json:"address" binding:"required,min=2,max=512"`
	PostalCode     string           `json:"postal_code" binding:"required"`
	PhoneNumber    string           `json:"phone_number" binding:"required"`
	Email          string           `json:"email" binding:"required,email"`
	AdditionalInfo string           `json:"additional_info" binding:"max=1024"`
}
