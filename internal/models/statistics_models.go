package models

import "github.com/shopspring/decimal"

// DashboardStatistics backs the admin statistics page.
type DashboardStatistics struct {
	Members               MemberStatistics      `json:"members"`
	TestimonialsThisMonth int                   `json:"testimonials_this_month"`
	RatingCounts          map[int]int           `json:"rating_counts"`
	MonthlyRegistrations  []MonthlyRegistration `json:"monthly_registrations"`
	PendingBookings       int                   `json:"pending_bookings"`
	Inventory             InventoryStatistics   `json:"inventory"`
}

// MemberStatistics counts members by window. Active includes ExpiringSoon.
type MemberStatistics struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	ExpiringSoon int `json:"expiring_soon"`
	Expired      int `json:"expired"`
}

// MonthlyRegistration counts members whose registration date falls in Month (YYYY-MM).
type MonthlyRegistration struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type InventoryStatistics struct {
	Items       int             `json:"items"`
	UnitsOnHand int             `json:"units_on_hand"`
	StockValue  decimal.Decimal `json:"stock_value"`
	OutOfStock  int             `json:"out_of_stock"`
}
