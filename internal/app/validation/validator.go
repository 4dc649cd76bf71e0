package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/homemeal/homemeal-backend/config"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/shopspring/decimal"
)

var personNamePattern = regexp.MustCompile(`^[\p{L} .'\-]+$`)

// Validator applies the configured input rules. Every add/update path for users,
// items and quantities goes through it so the bounds stay identical everywhere.
type Validator struct {
	rules      config.ValidationConfig
	categories []string
	validate   *validator.Validate
}

func New(rules config.ValidationConfig, categories []string) *Validator {
	v := validator.New()
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	})

	return &Validator{
		rules:      rules,
		categories: append([]string(nil), categories...),
		validate:   v,
	}
}

func (v *Validator) Categories() []string {
	return append([]string(nil), v.categories...)
}

// IsCategory reports whether category belongs to the configured set.
func (v *Validator) IsCategory(category string) bool {
	for _, c := range v.categories {
		if c == category {
			return true
		}
	}
	return false
}

func (v *Validator) check(value interface{}, tag string) bool {
	return v.validate.Var(value, tag) == nil
}

// Registration collects every violated rule for a new account.
func (v *Validator) Registration(name, apartment, phone, password string, email *string) error {
	var msgs []string
	msgs = append(msgs, v.nameMessages(name)...)
	msgs = append(msgs, v.apartmentMessages(apartment)...)
	msgs = append(msgs, v.phoneMessages(phone)...)
	msgs = append(msgs, v.passwordMessages(password)...)
	msgs = append(msgs, v.emailMessages(email)...)
	return failure(msgs)
}

func (v *Validator) Profile(name, apartment string, email *string) error {
	var msgs []string
	msgs = append(msgs, v.nameMessages(name)...)
	msgs = append(msgs, v.apartmentMessages(apartment)...)
	msgs = append(msgs, v.emailMessages(email)...)
	return failure(msgs)
}

func (v *Validator) Password(password string) error {
	return failure(v.passwordMessages(password))
}

func (v *Validator) Phone(phone string) error {
	return failure(v.phoneMessages(phone))
}

// Quantity validates a cart quantity: a positive whole number no larger than MaxQuantity.
func (v *Validator) Quantity(quantity int) error {
	if quantity <= 0 {
		return apperrors.Validation("Quantity must be a positive whole number")
	}
	if quantity > v.rules.MaxQuantity {
		return apperrors.Validation(fmt.Sprintf("Quantity cannot exceed %d", v.rules.MaxQuantity))
	}
	return nil
}

// Price checks the configured bounds and a maximum of two decimal places.
func (v *Validator) Price(price decimal.Decimal) error {
	return failure(v.priceMessages(price))
}

func (v *Validator) Stock(stock int) error {
	return failure(v.stockMessages(stock))
}

// Item validates a full catalog item for both create and update.
func (v *Validator) Item(name, description, category string, price decimal.Decimal, stock int) error {
	var msgs []string
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		msgs = append(msgs, "Item name is required")
	case !v.check(name, fmt.Sprintf("max=%d", v.rules.MaxNameLength)):
		msgs = append(msgs, fmt.Sprintf("Item name cannot exceed %d characters", v.rules.MaxNameLength))
	}
	if !v.check(description, fmt.Sprintf("max=%d", v.rules.MaxDescriptionLength)) {
		msgs = append(msgs, fmt.Sprintf("Description cannot exceed %d characters", v.rules.MaxDescriptionLength))
	}
	if !v.IsCategory(category) {
		msgs = append(msgs, "Invalid category")
	}
	msgs = append(msgs, v.priceMessages(price)...)
	msgs = append(msgs, v.stockMessages(stock)...)
	return failure(msgs)
}

// ParsePrice reads a user-entered price such as "12.50".
func (v *Validator) ParsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, apperrors.Validation("Price must be a valid number")
	}
	if err := v.Price(price); err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

// ParseQuantity reads a user-entered whole number; fractional input is rejected, not truncated.
func (v *Validator) ParseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, apperrors.Validation("Quantity must be a positive whole number")
	}
	return n, v.Quantity(n)
}

func (v *Validator) ParseStock(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, apperrors.Validation("Stock quantity must be a whole number")
	}
	return n, v.Stock(n)
}

func (v *Validator) nameMessages(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return []string{"Name is required"}
	}
	var msgs []string
	if !v.check(name, fmt.Sprintf("min=%d,max=%d", v.rules.MinNameLength, v.rules.MaxNameLength)) {
		msgs = append(msgs, fmt.Sprintf("Name must be between %d and %d characters", v.rules.MinNameLength, v.rules.MaxNameLength))
	}
	if !v.check(name, "personname") {
		msgs = append(msgs, "Name can only contain letters, spaces, periods, apostrophes and hyphens")
	}
	return msgs
}

func (v *Validator) apartmentMessages(apartment string) []string {
	if !v.check(strings.TrimSpace(apartment), "required") {
		return []string{"Apartment is required"}
	}
	return nil
}

func (v *Validator) phoneMessages(phone string) []string {
	if !v.check(phone, "len=10,number") {
		return []string{"Phone number must be exactly 10 digits"}
	}
	return nil
}

func (v *Validator) passwordMessages(password string) []string {
	var msgs []string
	if len(password) < v.rules.MinPasswordLength {
		msgs = append(msgs, fmt.Sprintf("Password must be at least %d characters long", v.rules.MinPasswordLength))
	}
	if !v.check(password, "containsany=ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		msgs = append(msgs, "Password must contain at least one uppercase letter")
	}
	if !v.check(password, "containsany=abcdefghijklmnopqrstuvwxyz") {
		msgs = append(msgs, "Password must contain at least one lowercase letter")
	}
	if !v.check(password, "containsany=0123456789") {
		msgs = append(msgs, "Password must contain at least one number")
	}
	return msgs
}

func (v *Validator) emailMessages(email *string) []string {
	if email == nil {
		return nil
	}
	if !v.check(strings.TrimSpace(*email), "omitempty,email") {
		return []string{"Invalid email format"}
	}
	return nil
}

func (v *Validator) priceMessages(price decimal.Decimal) []string {
	var msgs []string
	if price.LessThan(v.rules.MinPrice) || price.GreaterThan(v.rules.MaxPrice) {
		msgs = append(msgs, fmt.Sprintf("Price must be between %s and %s", v.rules.MinPrice.StringFixed(2), v.rules.MaxPrice.StringFixed(2)))
	}
	if !price.Equal(price.Truncate(2)) {
		msgs = append(msgs, "Price can have at most 2 decimal places")
	}
	return msgs
}

func (v *Validator) stockMessages(stock int) []string {
	if stock < 0 {
		return []string{"Stock quantity cannot be negative"}
	}
	return nil
}

func failure(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return apperrors.Validation(msgs...)
}
