package flux

import "reflect"

// sameRef reports whether two slice values are the same by identity: pointer
// equality for reference kinds, == for comparable values. Reducers signal
// "unrecognized action" by returning the identical input, and this is the
// comparison that detects it.
func sameRef(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		if ra.Len() != rb.Len() {
			return false
		}
		return ra.Len() == 0 || ra.Pointer() == rb.Pointer()
	default:
		if ra.Comparable() {
			return a == b
		}
		return false
	}
}
