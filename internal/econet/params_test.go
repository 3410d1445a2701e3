package econet

import (
	"reflect"
	"testing"
)

func TestDefaultParamMap(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"tempCOSet", "1280"},
		{"tempCWUSet", "1281"},
		{"mixerSetTemp1", "1287"},
		{"mixerSetTemp6", "1292"},
	}

	for _, tt := range tests {
		idx, ok := DefaultParamMap.Index(tt.name)
		if !ok || idx != tt.want {
			t.Errorf("Index(%s) = %s, %v, want %s, true", tt.name, idx, ok, tt.want)
		}
	}

	if _, ok := DefaultParamMap.Index("tempCO"); ok {
		t.Error("Index(tempCO) ok = true, want false")
	}
}

func TestParamMapNames(t *testing.T) {
	m := ParamMap{"b": "2", "a": "1"}
	if got := m.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v, want [a b]", got)
	}
}
