package selector

import "reflect"

// sameRef reports identity equality between two values of the same type:
// pointer equality for reference kinds, == for comparable values, false
// otherwise (forcing recomputation).
func sameRef[T any](a, b T) bool {
	av := any(a)
	bv := any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	ra := reflect.ValueOf(av)
	rb := reflect.ValueOf(bv)
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
			return av == bv
		}
		return false
	}
}
