package entities

// BookingEmailData is the flattened view a booking notification is rendered
// from.
type BookingEmailData struct {
	CustomerName  string
	BookingCode   string
	Service       string
	DateFormatted string
	TimeFormatted string
	Status        string
}
