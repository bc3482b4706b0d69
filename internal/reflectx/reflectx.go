// Package reflectx provides the reflection helpers used for struct-tag
// configuration injection and component naming in diagnostics.
package reflectx

import (
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strings"
)

// EmptyValue returns the zero value for type T. For nullable kinds
// (pointers, slices, maps, channels, functions, interfaces) the zero value
// is nil.
func EmptyValue[T any]() T {
	var zero T
	if !isTypeNullable(reflect.TypeOf((*T)(nil)).Elem()) {
		zero = *new(T)
	}
	return zero
}

// TypeName returns a human-readable name for a reflect.Type, formatted as
// "package.TypeName" or just the type string for built-ins. Pointer types
// are named after their element type.
func TypeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		if t.Name() == "" {
			return t.String()
		}
		return t.Name()
	}
	return fmt.Sprintf("%s.%s", path.Base(t.PkgPath()), t.Name())
}

// TypeNameOf returns the type name of a value using fmt formatting.
func TypeNameOf(v any) string {
	return fmt.Sprintf("%T", v)
}

// FunctionNameAndFileLine returns a function value's name (trimmed to
// package.Func) and its source location as "file:line".
func FunctionNameAndFileLine(fn any) (string, string) {
	funcRef := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	name := funcRef.Name()
	file, line := funcRef.FileLine(funcRef.Entry())
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	return name, fmt.Sprintf("%s:%d", file, line)
}

// StructFieldIteratorFunc is called once per struct field during iteration.
type StructFieldIteratorFunc func(fieldValue reflect.Value, structField reflect.StructField, targetType reflect.Type) error

// IterateStructFields calls the provided functions, in order, for each
// field of a struct pointer. Returns an error if target is not a struct
// pointer or any callback fails.
func IterateStructFields(target any, fns ...StructFieldIteratorFunc) error {
	v := reflect.ValueOf(target)
	if !IsPointerStruct(v) {
		return fmt.Errorf("target must be a struct pointer, got '%s'", TypeName(v.Type()))
	}
	vtype := v.Type()
	v = v.Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		for _, fn := range fns {
			if err := fn(v.Field(i), t.Field(i), vtype); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetFieldValue sets a struct field to the provided value. Unexported
// fields are not settable and produce an error.
func SetFieldValue(field reflect.Value, structField reflect.StructField, value any) error {
	if !field.CanSet() {
		return fmt.Errorf("field '%s' is not settable", structField.Name)
	}
	field.Set(reflect.ValueOf(value))
	return nil
}

// IsPointerStruct reports whether a reflect.Value is a pointer to a struct.
func IsPointerStruct(v reflect.Value) bool {
	return v.Kind() == reflect.Pointer && v.Elem().Kind() == reflect.Struct
}

func isTypeNullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	default:
		return false
	}
}
