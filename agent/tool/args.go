package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
)

// arguments is a decoded tool-call payload. JSON null counts as absent.
type arguments map[string]any

func parseArguments(raw string) (arguments, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return arguments{}, nil
	}

	var args arguments
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = arguments{}
	}
	return args, nil
}

func (a arguments) lookup(key string) (any, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (a arguments) String(key string) (string, bool, error) {
	v, ok := a.lookup(key)
	if !ok {
		return "", false, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", true, fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(s), true, nil
}

func (a arguments) Float(key string) (float64, bool, error) {
	v, ok := a.lookup(key)
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return n, true, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, true, fmt.Errorf("%s must be a number", key)
		}
		return f, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a number", key)
	}
}

// Int accepts whole JSON numbers and numeric strings.
func (a arguments) Int(key string) (int64, bool, error) {
	f, ok, err := a.Float(key)
	if !ok || err != nil {
		if err != nil {
			err = fmt.Errorf("%s must be an integer", key)
		}
		return 0, ok, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > 1<<53 {
		return 0, true, fmt.Errorf("%s must be an integer", key)
	}
	return int64(f), true, nil
}

func (a arguments) Bool(key string) (bool, bool, error) {
	v, ok := a.lookup(key)
	if !ok {
		return false, false, nil
	}
	switch b := v.(type) {
	case bool:
		return b, true, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, true, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, true, nil
	default:
		return false, true, fmt.Errorf("%s must be true or false", key)
	}
}

// The require* helpers return a failure envelope when the argument is absent
// or malformed.

func (a arguments) requireString(key string) (string, contractx.Envelope) {
	s, ok, err := a.String(key)
	if err != nil {
		return "", invalidArgument(err)
	}
	if !ok || s == "" {
		return "", missingArgument(key)
	}
	return s, nil
}

func (a arguments) requireInt(key string) (int64, contractx.Envelope) {
	n, ok, err := a.Int(key)
	if err != nil {
		return 0, invalidArgument(err)
	}
	if !ok {
		return 0, missingArgument(key)
	}
	return n, nil
}

func missingArgument(key string) contractx.Envelope {
	return contractx.Failure(fmt.Sprintf("Missing required argument: %s.", key))
}

func invalidArgument(err error) contractx.Envelope {
	return contractx.Failure(fmt.Sprintf("Invalid argument: %v.", err))
}
