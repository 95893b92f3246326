package puzzles

import "reflect"

// Verify compares a submitted solution against the stored one. Both values
// must be sequences (a grid of rows); anything else fails closed. Numeric
// cells compare by value so a stored int matches a decoded JSON float.
func Verify(expected, submitted interface{}) bool {
	e, ok := asSlice(expected)
	if !ok {
		return false
	}
	s, ok := asSlice(submitted)
	if !ok {
		return false
	}
	return equalSlices(e, s)
}

func equalSlices(a, b []interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		as, aOK := asSlice(a[i])
		bs, bOK := asSlice(b[i])
		if aOK != bOK {
			return false
		}
		if aOK {
			if !equalSlices(as, bs) {
				return false
			}
			continue
		}
		if !equalScalar(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalScalar(a, b interface{}) bool {
	af, aOK := toFloat(a)
	bf, bOK := toFloat(b)
	if aOK && bOK {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func asSlice(v interface{}) ([]interface{}, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func toFloat(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
