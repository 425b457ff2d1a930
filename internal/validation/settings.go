package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dropDatabas3/multilogin/internal/catalog"
	"github.com/dropDatabas3/multilogin/internal/domain/types"
)

// ErrInvalidSettings se retorna cuando los settings de un bloque no pasan validación.
var ErrInvalidSettings = errors.New("invalid block settings")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func settingsValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("network", func(fl validator.FieldLevel) bool {
			return ValidNetworkKey(fl.Field().String())
		})
		_ = v.RegisterValidation("provider_id", func(fl validator.FieldLevel) bool {
			_, ok := catalog.Lookup(fl.Field().String())
			return ok
		})
		validate = v
	})
	return validate
}

// NormalizeBlockSettings limpia espacios en los campos de texto y descarta
// entradas de providers que ya no existen en el catálogo.
// Nunca falla: lo que no se puede normalizar lo detecta ValidateBlockSettings.
func NormalizeBlockSettings(s types.BlockSettings) types.BlockSettings {
	out := s.Clone()
	out.StandardLabel = strings.TrimSpace(out.StandardLabel)
	for id, ps := range out.ProviderSettings {
		if _, ok := catalog.Lookup(id); !ok {
			delete(out.ProviderSettings, id)
			continue
		}
		ps.Label = strings.TrimSpace(ps.Label)
		ps.Network = strings.ToLower(strings.TrimSpace(ps.Network))
		ps.CustomURL = strings.TrimSpace(ps.CustomURL)
		ps.ButtonText = strings.TrimSpace(ps.ButtonText)
		out.ProviderSettings[id] = ps
	}
	return out
}

// ValidateBlockSettings valida los settings ya normalizados.
// El custom_url se trata como URI opaca: solo se limita su longitud.
func ValidateBlockSettings(s types.BlockSettings) error {
	if err := settingsValidator().Struct(s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, formatValidationErrors(err))
	}
	return nil
}

// formatValidationErrors formatea los errores del validator en una sola línea.
func formatValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	var sb strings.Builder
	for i, fe := range verrs {
		if i > 0 {
			sb.WriteString("; ")
		}
		field := fe.Namespace()
		switch fe.Tag() {
		case "max":
			fmt.Fprintf(&sb, "field '%s' must be at most %s characters", field, fe.Param())
		case "network":
			fmt.Fprintf(&sb, "field '%s' is not a valid network key", field)
		case "provider_id":
			fmt.Fprintf(&sb, "field '%s' references an unknown provider", field)
		default:
			fmt.Fprintf(&sb, "field '%s' failed '%s'", field, fe.Tag())
		}
	}
	return sb.String()
}
