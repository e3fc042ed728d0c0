package engineconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/wonny/quantengine/internal/contracts"
)

// ValidationError reports one invalid field by its YAML path.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	validate   = newValidator()
	cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs the struct-tag rules, then the cross-field rules.
// It returns the first failure as a ValidationError.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return toValidationError(fieldErrs[0])
		}
		return ValidationError{"config", err.Error()}
	}

	if cfg.Scoring.Equity.MinLiquidity < cfg.Scoring.MinLiquidity {
		return ValidationError{"scoring.equity.min_liquidity", "must be >= scoring.min_liquidity"}
	}
	if cfg.Scoring.Fund.MinLiquidity < cfg.Scoring.MinLiquidity {
		return ValidationError{"scoring.fund.min_liquidity", "must be >= scoring.min_liquidity"}
	}
	if cfg.Draft.PenaltyFloor >= cfg.Draft.MinScore {
		return ValidationError{"draft.penalty_floor", "must be < draft.min_score"}
	}
	if cfg.Auditor.MissThreshold >= cfg.Auditor.HitThreshold {
		return ValidationError{"auditor.miss_threshold", "must be < auditor.hit_threshold"}
	}
	if cfg.Scanner.SupportWindow <= cfg.Scanner.RSIPeriod {
		return ValidationError{"scanner.support_window", "must exceed scanner.rsi_period"}
	}

	if _, err := time.LoadLocation(cfg.Schedule.Timezone); err != nil {
		return ValidationError{"schedule.timezone", err.Error()}
	}
	for _, c := range []struct{ field, spec string }{
		{"schedule.rank", cfg.Schedule.Rank},
		{"schedule.scan", cfg.Schedule.Scan},
		{"schedule.audit", cfg.Schedule.Audit},
	} {
		if _, err := cronParser.Parse(c.spec); err != nil {
			return ValidationError{c.field, fmt.Sprintf("invalid cron expression %q: %v", c.spec, err)}
		}
	}

	return nil
}

func toValidationError(fe validator.FieldError) ValidationError {
	// Namespace is "Config.draft.target_per_profile"; drop the root type.
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "required"
	case "min":
		msg = fmt.Sprintf("must have at least %s entries", fe.Param())
	case "gt":
		msg = fmt.Sprintf("must be > %s", fe.Param())
	case "gte":
		msg = fmt.Sprintf("must be >= %s", fe.Param())
	case "lt":
		msg = fmt.Sprintf("must be < %s", fe.Param())
	case "lte":
		msg = fmt.Sprintf("must be <= %s", fe.Param())
	case "gtfield":
		msg = fmt.Sprintf("must be greater than %s", fe.Param())
	case "ltfield":
		msg = fmt.Sprintf("must be less than %s", fe.Param())
	default:
		msg = fmt.Sprintf("failed %s validation", fe.Tag())
	}

	return ValidationError{Field: field, Message: msg}
}

// Warning flags a legal but probably unintended setting.
type Warning struct {
	Code    string
	Message string
}

// Warn checks recommended constraints. It never fails.
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Draft.SectorCap() <= cfg.Draft.PenaltyFreeSlots {
		warnings = append(warnings, Warning{
			Code:    "PENALTY_INACTIVE",
			Message: "sector cap leaves no room above the free slots; the concentration penalty never applies",
		})
	}

	if cfg.Scanner.MinLiquidity < cfg.Scoring.MinLiquidity {
		warnings = append(warnings, Warning{
			Code:    "LOW_SCAN_LIQUIDITY",
			Message: "scanner admits instruments the ranking pre-filter would drop",
		})
	}

	if cfg.Auditor.SafetyWindow < 2*cfg.Auditor.Horizon {
		warnings = append(warnings, Warning{
			Code:    "NARROW_SAFETY_WINDOW",
			Message: "safety window under twice the horizon; a missed audit run may strand signals",
		})
	}

	if cfg.Macro == (contracts.MacroContext{}) {
		warnings = append(warnings, Warning{
			Code:    "EMPTY_MACRO",
			Message: "macro context is all zero; yield spreads use fallbacks",
		})
	}

	return warnings
}
