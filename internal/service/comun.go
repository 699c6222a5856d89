package service

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/nycamas/club/internal/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// validar runs the go-playground/validator tags of req and converts the
// result into an *apierror.ValidationError.
func validar(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		fields[fe.Field()] = fe.Tag()
	}
	return apierror.NewValidation(fields)
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Encolador queues background jobs. *worker.Dispatcher satisfies it; a nil
// Encolador disables async emails.
type Encolador interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

// Reloj returns the current time in the club's zone.
type Reloj func() time.Time

func (r Reloj) ahora() time.Time {
	if r == nil {
		return time.Now()
	}
	return r()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

var noSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns "Vela Ligera Ñ" into "vela-ligera-n": accents stripped,
// [a-z0-9-] only, at most 120 characters.
func slugify(s string) string {
	var buf []rune
	for _, r := range norm.NFD.String(strings.ToLower(strings.TrimSpace(s))) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		buf = append(buf, r)
	}
	out := strings.Trim(noSlug.ReplaceAllString(string(buf), "-"), "-")
	if len(out) > 120 {
		out = strings.Trim(out[:120], "-")
	}
	if out == "" {
		out = "item"
	}
	return out
}

// conDescuento applies pct% off to base, rounded to cents.
func conDescuento(base, pct decimal.Decimal) decimal.Decimal {
	if !pct.IsPositive() {
		return base
	}
	if pct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return decimal.Zero
	}
	factor := decimal.NewFromInt(100).Sub(pct).Div(decimal.NewFromInt(100))
	return base.Mul(factor).Round(2)
}

func fecha(t time.Time) string { return t.Format("2006-01-02") }

func fechaPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fecha(*t)
	return &s
}
