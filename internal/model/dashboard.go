package model

type DashboardStats struct {
	TotalBookings     int     `json:"total_bookings"`
	ThisMonthBookings int     `json:"this_month_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
	ThisMonthRevenue  float64 `json:"this_month_revenue"`
	UpcomingBookings  int     `json:"upcoming_bookings"`
	CompletionRate    float64 `json:"completion_rate"`
	NoShowRate        float64 `json:"no_show_rate"`
}
