package middlewares

import (
	"reflect"
	"strings"

	"restaurant-pos/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	enums := map[string]func(string) bool{
		"role":         func(s string) bool { return models.Role(s).Valid() },
		"item_type":    func(s string) bool { return models.ItemType(s).Valid() },
		"table_status": func(s string) bool { return models.TableStatus(s).Valid() },
		"order_type":   func(s string) bool { return models.OrderType(s).Valid() },
		"order_status": func(s string) bool { return models.OrderStatus(s).Valid() },
		"item_status":  func(s string) bool { return models.ItemStatus(s).Valid() },
		"payment_mode": func(s string) bool { return models.PaymentMode(s).Valid() },
	}
	for tag, ok := range enums {
		ok := ok
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return ok(fl.Field().String())
		})
	}
	// decimals validate as their string form
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	// money: non-negative with at most two decimal places
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative() && d.Equal(d.Round(2))
	})
	return v
}

// BindAndValidate parses the request body into dst and validates it.
// Returns fiber.ErrBadRequest for parse errors and a validator.ValidationErrors for validation issues.
func BindAndValidate(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return validate.Struct(dst)
}

// ValidateStruct validates any struct value using the shared validator instance.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}
