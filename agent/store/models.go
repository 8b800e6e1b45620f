package store

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/geo"
)

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusNoShow    = "no_show"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Phone     string    `bun:"phone,notnull,unique" json:"phone"`
	Email     *string   `bun:"email" json:"email"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

type Venue struct {
	bun.BaseModel `bun:"table:restaurants,alias:r"`

	ID                int64     `bun:"id,pk,autoincrement" json:"id"`
	Name              string    `bun:"name,notnull" json:"name"`
	Cuisine           string    `bun:"cuisine,notnull" json:"cuisine"`
	Latitude          float64   `bun:"latitude,notnull" json:"latitude"`
	Longitude         float64   `bun:"longitude,notnull" json:"longitude"`
	Address           string    `bun:"address,notnull" json:"address"`
	City              string    `bun:"city,notnull" json:"city"`
	TotalCapacity     int       `bun:"total_capacity,notnull" json:"total_capacity"`
	AvailableTables   int       `bun:"available_tables,notnull" json:"available_tables"`
	PriceRange        string    `bun:"price_range,notnull" json:"price_range"`
	Rating            float64   `bun:"rating,notnull" json:"rating"`
	OpeningTime       string    `bun:"opening_time,notnull" json:"opening_time"`
	ClosingTime       string    `bun:"closing_time,notnull" json:"closing_time"`
	HasParking        bool      `bun:"has_parking,notnull" json:"has_parking"`
	HasOutdoorSeating bool      `bun:"has_outdoor_seating,notnull" json:"has_outdoor_seating"`
	CreatedAt         time.Time `bun:"created_at,notnull" json:"created_at"`
}

func (v Venue) Coordinates() geo.Point {
	return geo.Point{Lat: v.Latitude, Lon: v.Longitude}
}

type Reservation struct {
	bun.BaseModel `bun:"table:reservations,alias:res"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	CustomerID      int64     `bun:"customer_id,notnull" json:"customer_id"`
	RestaurantID    int64     `bun:"restaurant_id,notnull" json:"restaurant_id"`
	Date            string    `bun:"reservation_date,notnull" json:"reservation_date"`
	Time            string    `bun:"reservation_time,notnull" json:"reservation_time"`
	PartySize       int       `bun:"party_size,notnull" json:"party_size"`
	Status          string    `bun:"status,notnull" json:"status"`
	SpecialRequests *string   `bun:"special_requests" json:"special_requests"`
	CreatedAt       time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// Booking is a reservation joined with the venue details shown to guests.
type Booking struct {
	Reservation `bun:",extend"`

	RestaurantName string `bun:"restaurant_name" json:"restaurant_name"`
	Cuisine        string `bun:"cuisine" json:"cuisine"`
	Address        string `bun:"address" json:"address"`
}

type Offer struct {
	bun.BaseModel `bun:"table:daily_offers,alias:o"`

	ID                 int64     `bun:"id,pk,autoincrement" json:"id"`
	RestaurantID       int64     `bun:"restaurant_id,notnull" json:"restaurant_id"`
	Title              string    `bun:"offer_title,notnull" json:"offer_title"`
	Description        string    `bun:"offer_description,notnull" json:"offer_description"`
	DiscountPercentage *float64  `bun:"discount_percentage" json:"discount_percentage"`
	IsActive           bool      `bun:"is_active,notnull" json:"is_active"`
	ValidFrom          string    `bun:"valid_from,notnull" json:"valid_from"`
	ValidUntil         string    `bun:"valid_until,notnull" json:"valid_until"`
	CreatedAt          time.Time `bun:"created_at,notnull" json:"created_at"`
}

type Feedback struct {
	bun.BaseModel `bun:"table:feedback,alias:f"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	CustomerID    int64     `bun:"customer_id,notnull" json:"customer_id"`
	RestaurantID  int64     `bun:"restaurant_id,notnull" json:"restaurant_id"`
	ReservationID *int64    `bun:"reservation_id" json:"reservation_id"`
	Rating        int       `bun:"rating,notnull" json:"rating"`
	Comment       *string   `bun:"comment" json:"comment"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}

// FeedbackEntry is feedback joined with the author's name.
type FeedbackEntry struct {
	Feedback `bun:",extend"`

	CustomerName string `bun:"customer_name" json:"customer_name"`
}

type LogEntry struct {
	bun.BaseModel `bun:"table:conversation_logs,alias:cl"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	CustomerID int64     `bun:"customer_id,notnull" json:"customer_id"`
	Role       string    `bun:"role,notnull" json:"role"`
	Message    string    `bun:"message,notnull" json:"message"`
	ToolUsed   *string   `bun:"tool_used" json:"tool_used"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
}

type ConversationSummary struct {
	CustomerID      int64     `bun:"customer_id" json:"customer_id"`
	Name            string    `bun:"name" json:"name"`
	Phone           string    `bun:"phone" json:"phone"`
	Email           *string   `bun:"email" json:"email"`
	MessageCount    int       `bun:"message_count" json:"message_count"`
	LastLogID       int64     `bun:"last_log_id" json:"-"`
	LastMessage     string    `bun:"-" json:"last_message"`
	LastMessageTime time.Time `bun:"-" json:"last_message_time"`
}
