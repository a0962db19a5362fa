package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// message turns a failed constraint into a human-readable sentence.
func message(fe validator.FieldError) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required", "required_if", "required_unless", "required_with", "required_without":
		return "must not be empty"
	case "min", "gte":
		if sized(fe.Kind()) {
			return fmt.Sprintf("length must be at least %s", param)
		}

		return fmt.Sprintf("must be greater than or equal to %s", param)
	case "max", "lte":
		if sized(fe.Kind()) {
			return fmt.Sprintf("length must be at most %s", param)
		}

		return fmt.Sprintf("must be less than or equal to %s", param)
	case "gt":
		if sized(fe.Kind()) {
			return fmt.Sprintf("length must be greater than %s", param)
		}

		return fmt.Sprintf("must be greater than %s", param)
	case "lt":
		if sized(fe.Kind()) {
			return fmt.Sprintf("length must be less than %s", param)
		}

		return fmt.Sprintf("must be less than %s", param)
	case "len":
		if sized(fe.Kind()) {
			return fmt.Sprintf("length must be %s", param)
		}

		return fmt.Sprintf("must be %s", param)
	case "eq":
		return fmt.Sprintf("must be %s", param)
	case "ne":
		return fmt.Sprintf("must not be %s", param)
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", strings.Join(strings.Fields(param), ", "))
	case "pattern":
		return fmt.Sprintf("must match %q", param)
	case "email":
		return "must be a well-formed email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "hostname", "hostname_rfc1123", "fqdn":
		return "must be a valid hostname"
	case "hostname_port":
		return "must be a host:port pair"
	case "ip", "ipv4", "ipv6":
		return "must be a valid IP address"
	case "cidr":
		return "must be a valid CIDR notation"
	case "eqfield":
		return fmt.Sprintf("must equal %s", param)
	case "nefield":
		return fmt.Sprintf("must differ from %s", param)
	case "gtfield":
		return fmt.Sprintf("must be greater than %s", param)
	case "gtefield":
		return fmt.Sprintf("must be greater than or equal to %s", param)
	case "ltfield":
		return fmt.Sprintf("must be less than %s", param)
	case "ltefield":
		return fmt.Sprintf("must be less than or equal to %s", param)
	case "unique":
		return "must contain unique values"
	default:
		if param != "" {
			return fmt.Sprintf("failed the %q constraint (%s)", fe.Tag(), param)
		}

		return fmt.Sprintf("failed the %q constraint", fe.Tag())
	}
}

func sized(kind reflect.Kind) bool {
	switch kind {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return true
	default:
		return false
	}
}
