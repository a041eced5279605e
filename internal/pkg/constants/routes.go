package constants

// Route constants used for redirects
const (
	PublicRoute        = "/"
	LoginRoute         = "/login"
	RegisterRoute      = "/register"
	AdvertiseRoute     = "/advertise"
	AdminPaymentsRoute = "/admin/payments"
)
