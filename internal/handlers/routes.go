package handlers

import "net/http"

// Routes registers the public surface under /api/v1.
func Routes(mux *http.ServeMux, guard *Guard, auth *AuthHandler, catalog *CatalogHandler,
	booking *BookingHandler, staff *StaffHandler, reports *ReportsHandler, billing *BillingHandler) {

	// Auth.
	mux.HandleFunc("POST /api/v1/login", auth.Login)
	mux.HandleFunc("POST /api/v1/staff-login", auth.StaffLogin)
	mux.HandleFunc("POST /api/v1/register", auth.Register)
	mux.HandleFunc("GET /api/v1/logout", guard.Any(auth.Logout))
	mux.HandleFunc("GET /api/v1/session-data", guard.Patient(auth.SessionData))
	mux.HandleFunc("GET /api/v1/staff-session-data", guard.Staff(auth.StaffSessionData))

	// Public catalog.
	mux.HandleFunc("GET /api/v1/branches", catalog.Branches)
	mux.HandleFunc("GET /api/v1/doctors", catalog.Doctors)
	mux.HandleFunc("GET /api/v1/available-slots", catalog.AvailableSlots)

	// Patient.
	mux.HandleFunc("POST /api/v1/book-appointment", guard.Patient(booking.BookAppointment))
	mux.HandleFunc("GET /api/v1/my-appointments", guard.Patient(booking.MyAppointments))
	mux.HandleFunc("POST /api/v1/billing/checkout", guard.Patient(billing.Checkout))
	mux.HandleFunc("GET /api/v1/billing/my-charges", guard.Patient(billing.MyCharges))

	// Staff.
	mux.HandleFunc("GET /api/v1/doctor-appointments", guard.Doctor(staff.DoctorAppointments))
	mux.HandleFunc("PUT /api/v1/appointments/{id}/status", guard.Doctor(staff.UpdateAppointmentStatus))
	mux.HandleFunc("GET /api/v1/reports/branch-summary", guard.Staff(reports.BranchSummary))
	mux.HandleFunc("GET /api/v1/reports/doctor-revenue", guard.Staff(reports.DoctorRevenue))
	mux.HandleFunc("GET /api/v1/reports/outstanding-balance", guard.Staff(reports.OutstandingBalance))

	// Stripe authenticates with its signature, not a session.
	mux.HandleFunc("POST /api/v1/billing/webhooks/stripe", billing.StripeWebhook)
}
