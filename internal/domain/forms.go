package domain

// Form payloads keep the field names the storefront backend expects, since
// they are forwarded to it unchanged after validation.

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type RegistrationForm struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type ForgotPasswordForm struct {
	Email string `json:"email" validate:"required,email"`
}

// ChangePasswordForm completes a reset. Only token and password reach the backend.
type ChangePasswordForm struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type ContactForm struct {
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required,min=10"`
}

type NewsletterForm struct {
	Email string `json:"email" validate:"required,email"`
}

type PrayerRequestForm struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Request string `json:"request" validate:"required"`
}

// TestimonyForm is posted to the backend as multipart form data.
type TestimonyForm struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Birthdate string `json:"birthdate" validate:"required"`
	Phone     string `json:"phone" validate:"required,numeric,min=7"`
	Address   string `json:"address" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Testimony string `json:"testimony" validate:"required"`
}

// Fields lists the multipart fields in submission order.
func (f TestimonyForm) Fields() [][2]string {
	return [][2]string{
		{"firstName", f.FirstName},
		{"lastName", f.LastName},
		{"birthdate", f.Birthdate},
		{"phone", f.Phone},
		{"address", f.Address},
		{"email", f.Email},
		{"testimony", f.Testimony},
	}
}

type EvangelismForm struct {
	EvangelismDate string        `json:"evangelismDate" validate:"required"`
	Location       string        `json:"location" validate:"required"`
	Organizer      string        `json:"organizer" validate:"required"`
	Participants   int           `json:"participants" validate:"required,gte=1"`
	SoulsWon       *int          `json:"soulsWon" validate:"required,gte=0"`
	Testimony      string        `json:"testimony" validate:"required"`
	SoulsDetails   []SoulDetails `json:"soulsDetails" validate:"dive"`
}

// SoulDetails records one person reached during an outreach.
type SoulDetails struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required,numeric"`
	Address string `json:"address" validate:"required"`
	Country string `json:"country" validate:"required"`
}

type SalvationForm struct {
	Decision string `json:"decision" validate:"required,oneof=yes no"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required,numeric"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Country  string `json:"country" validate:"required"`
}

// CheckoutForm is the shipping and payment step. It is validated here and
// never forwarded; payment is handled elsewhere.
type CheckoutForm struct {
	FirstName             string `json:"firstName" validate:"required"`
	LastName              string `json:"lastName" validate:"required"`
	Email                 string `json:"email" validate:"required,email"`
	Phone                 string `json:"phone" validate:"required"`
	AddressLine1          string `json:"addressLine1" validate:"required"`
	AddressLine2          string `json:"addressLine2,omitempty"`
	City                  string `json:"city" validate:"required"`
	State                 string `json:"state" validate:"required"`
	PostalCode            string `json:"postalCode" validate:"required"`
	Country               string `json:"country" validate:"required"`
	OrderNote             string `json:"orderNote,omitempty"`
	BillingSameAsShipping *bool  `json:"billingSameAsShipping" validate:"required"`
	PaymentMethod         string `json:"paymentMethod" validate:"required,oneof=googlepay swipe card"`
}

// SubmitResult is what the backend answered to an accepted form.
type SubmitResult struct {
	Message    string `json:"message"`
	SubMessage string `json:"sub_message,omitempty"`
}
