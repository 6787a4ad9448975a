package settings

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"signal-desk/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Gate holds the operator-tunable thresholds. Writes replace the whole record atomically;
// readers observe either the previous or the new value.
type Gate struct {
	current  atomic.Pointer[domain.Settings]
	validate *validator.Validate
}

func NewGate(initial domain.Settings) (*Gate, error) {
	g := &Gate{validate: newValidator()}
	if err := g.check(initial); err != nil {
		return nil, err
	}
	g.current.Store(&initial)
	return g, nil
}

func (g *Gate) Read() domain.Settings {
	return *g.current.Load()
}

// Write validates candidate and, if the caller is an admin, makes it the active settings.
func (g *Gate) Write(role domain.Role, candidate domain.Settings) (domain.Settings, error) {
	if role != domain.RoleAdmin {
		return domain.Settings{}, domain.ErrForbidden
	}
	if err := g.check(candidate); err != nil {
		return domain.Settings{}, err
	}
	next := candidate
	g.current.Store(&next)
	return next, nil
}

func (g *Gate) MinimumQuality() int {
	return g.current.Load().MinimumSignalQuality
}

func (g *Gate) Sensitivity() float64 {
	return g.current.Load().IndicatorSensitivity
}

func (g *Gate) check(s domain.Settings) error {
	err := g.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &domain.ValidationError{
			Field:  fe.Field(),
			Reason: fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param()),
		}
	}
	return &domain.ValidationError{Field: "settings", Reason: err.Error()}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}
