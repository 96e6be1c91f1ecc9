package record

import "strconv"

// Sentinel is the literal serialized for a field that was not captured.
// It is distinct from an empty string, which would mean "captured as empty".
const Sentinel = "N/A"

// Value is an optional field value. The zero Value is "not available".
type Value struct {
	raw string
	ok  bool
}

// NA returns the "not available" value.
func NA() Value { return Value{} }

// Some wraps a captured string. The sentinel string itself maps back to NA
// so that values round-trip through the CSV table.
func Some(s string) Value {
	if s == "" || s == Sentinel {
		return Value{}
	}
	return Value{raw: s, ok: true}
}

// IsNA reports whether the value was not captured.
func (v Value) IsNA() bool { return !v.ok }

// String returns the captured text, or the sentinel when not available.
func (v Value) String() string {
	if !v.ok {
		return Sentinel
	}
	return v.raw
}

// Int coerces the value to a positive-or-zero integer.
func (v Value) Int() (int, bool) {
	if !v.ok {
		return 0, false
	}
	n, err := strconv.Atoi(v.raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float coerces the value to a float64.
func (v Value) Float() (float64, bool) {
	if !v.ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatFloat returns a Value holding f rendered with four decimal places,
// the precision the dataset table uses for derived metrics.
func FormatFloat(f float64) Value {
	return Some(strconv.FormatFloat(f, 'f', 4, 64))
}

// MarshalJSON serializes the sentinel as a JSON string, matching the CSV.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(v.String())), nil
}

// UnmarshalJSON accepts any JSON string; the sentinel maps to NA.
func (v *Value) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	*v = Some(s)
	return nil
}
