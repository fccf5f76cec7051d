package utils

import (
	"reflect"
	"strconv"
	"strings"
)

// PatchColumns maps the set (non-nil pointer) fields of a patch DTO to
// column/value pairs for gorm's Updates. The column is the `column` tag when
// present, else the json name. Fields tagged patch:"-" are left to the caller.
func PatchColumns(dto any) map[string]any {
	cols := make(map[string]any)
	s, ok := structOf(dto)
	if !ok {
		return cols
	}
	t := s.Type()
	for i := 0; i < t.NumField(); i++ {
		sf, fv := t.Field(i), s.Field(i)
		if fv.Kind() != reflect.Ptr || fv.IsNil() || callerOwned(sf) {
			continue
		}
		if col := column(sf); col != "" {
			cols[col] = fv.Elem().Interface()
		}
	}
	return cols
}

func callerOwned(sf reflect.StructField) bool {
	return sf.Tag.Get("patch") == "-"
}

func column(sf reflect.StructField) string {
	if col := sf.Tag.Get("column"); col != "" {
		return col
	}
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// ParseIntDefault reads a non-negative query integer; anything else is def.
func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}
