package econet

import (
	"context"
	"net/http"
	"reflect"
	"testing"
)

func TestFetchRegistryKey(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/regParams", regParamsBody)
	api, _ := f.startAPI(t)

	value, err := api.fetchRegistryKey(context.Background(), RegistryRegular, "curr")
	if err != nil {
		t.Fatalf("fetchRegistryKey() error = %v", err)
	}
	curr, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("value type = %T, want map[string]any", value)
	}
	if curr["tempCO"] != 45.5 {
		t.Errorf("tempCO = %v, want 45.5", curr["tempCO"])
	}
}

func TestFetchRegistryKeyWholePayload(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/sysParams", sysParamsBody)
	api, _ := f.startAPI(t)

	value, err := api.fetchRegistryKey(context.Background(), RegistrySystem, "")
	if err != nil {
		t.Fatalf("fetchRegistryKey() error = %v", err)
	}
	whole, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("value type = %T, want map[string]any", value)
	}
	if whole["softVer"] != "1.1.80.22" {
		t.Errorf("softVer = %v, want 1.1.80.22", whole["softVer"])
	}
}

func TestFetchRegistryKeyMissingKey(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/editParams", `{"schema":{}}`)
	api, _ := f.startAPI(t)

	_, err := api.fetchRegistryKey(context.Background(), RegistryEditable, "data")
	if !IsDataError(err) {
		t.Errorf("IsDataError(%v) = false, want true", err)
	}
}

func TestFetchRegistryKeyMarkerRefetchOnce(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/regParams", `{"error":"busy"}`, regParamsBody)
	api, _ := f.startAPI(t)

	value, err := api.fetchRegistryKey(context.Background(), RegistryRegular, "curr")
	if err != nil {
		t.Fatalf("fetchRegistryKey() error = %v", err)
	}
	if value == nil {
		t.Error("value = nil, want curr map")
	}
	if f.count("/econet/regParams") != 2 {
		t.Errorf("requests = %d, want 2", f.count("/econet/regParams"))
	}
}

func TestFetchRegistryKeyMarkerNotRechecked(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/sysParams", `{"error":"busy"}`, `{"error":"still busy","uid":"X"}`, sysParamsBody)
	api, _ := f.startAPI(t)

	value, err := api.fetchRegistryKey(context.Background(), RegistrySystem, "")
	if err != nil {
		t.Fatalf("fetchRegistryKey() error = %v", err)
	}
	whole := value.(map[string]any)
	if whole["uid"] != "X" {
		t.Errorf("uid = %v, want X from the second payload", whole["uid"])
	}
	if f.count("/econet/sysParams") != 2 {
		t.Errorf("requests = %d, want 2", f.count("/econet/sysParams"))
	}
}

func TestFetchRegistryKeyNilAfterMarker(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/regParams", `{"error":"busy"}`, `not json`)
	api, _ := f.startAPI(t)

	_, err := api.fetchRegistryKey(context.Background(), RegistryRegular, "curr")
	if !IsDataError(err) {
		t.Errorf("IsDataError(%v) = false, want true", err)
	}
	if f.count("/econet/regParams") != 2 {
		t.Errorf("requests = %d, want 2", f.count("/econet/regParams"))
	}
}

func TestFetchRegistryKeyNilPayload(t *testing.T) {
	f := newFakeController()
	f.respondStatus("/econet/regParams", http.StatusServiceUnavailable, "busy")
	api, _ := f.startAPI(t)

	_, err := api.fetchRegistryKey(context.Background(), RegistryRegular, "curr")
	if !IsDataError(err) {
		t.Errorf("IsDataError(%v) = false, want true", err)
	}
	if f.count("/econet/regParams") != 1 {
		t.Errorf("requests = %d, want 1", f.count("/econet/regParams"))
	}
}

func TestFetchRegistryKeyAuthError(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/regParams", regParamsBody)
	api, _ := f.startAPI(t)
	api.client.SetAuth("admin", "wrong")

	_, err := api.fetchRegistryKey(context.Background(), RegistryRegular, "curr")
	if !IsAuthError(err) {
		t.Errorf("IsAuthError(%v) = false, want true", err)
	}
}

func TestFetchDataMergeOrder(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/regParams", `{"curr":{"a":1}}`)
	f.respond("/econet/sysParams", `{"a":2,"b":3}`)
	f.respond("/econet/editParams", `{"data":{"a":{"value":4,"minv":0,"maxv":10}}}`)
	api, _ := f.startAPI(t)

	params, err := api.FetchData(context.Background())
	if err != nil {
		t.Fatalf("FetchData() error = %v", err)
	}

	want := Params{"a": 4.0, "b": 3.0}
	if !reflect.DeepEqual(params, want) {
		t.Errorf("FetchData() = %v, want %v", params, want)
	}
}

func TestFetchDataUnwrapsEditable(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/regParams", regParamsBody)
	f.respond("/econet/sysParams", sysParamsBody)
	f.respond("/econet/editParams", editParamsBody)
	api, _ := f.startAPI(t)

	params, err := api.FetchData(context.Background())
	if err != nil {
		t.Fatalf("FetchData() error = %v", err)
	}

	tests := []struct {
		key  string
		want any
	}{
		{"tempCO", 45.5},
		{"mode", "heating"},
		{"uid", "2L7SDPN6KQ38CIH2401K01U"},
		{"1280", 50.0},
		{"1281", 45.0},
		{"a", 4.0},
	}
	for _, tt := range tests {
		if got := params[tt.key]; got != tt.want {
			t.Errorf("params[%s] = %v, want %v", tt.key, got, tt.want)
		}
	}
	if _, ok := params["curr"]; ok {
		t.Error("params should not carry the regular registry wrapper")
	}
}

func TestFetchDataFreshRecord(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/regParams", `{"curr":{"a":1}}`)
	f.respond("/econet/sysParams", `{"b":2}`)
	f.respond("/econet/editParams", `{"data":{}}`)
	api, _ := f.startAPI(t)

	first, err := api.FetchData(context.Background())
	if err != nil {
		t.Fatalf("FetchData() error = %v", err)
	}
	first["a"] = "mutated"

	second, err := api.FetchData(context.Background())
	if err != nil {
		t.Fatalf("FetchData() error = %v", err)
	}
	if second["a"] != 1.0 {
		t.Errorf("second[a] = %v, want 1", second["a"])
	}
}

func TestFetchDataMissingRegistry(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/regParams", regParamsBody)
	f.respond("/econet/sysParams", sysParamsBody)
	f.respond("/econet/editParams", `{"unexpected":true}`)
	api, _ := f.startAPI(t)

	_, err := api.FetchData(context.Background())
	if !IsDataError(err) {
		t.Errorf("IsDataError(%v) = false, want true", err)
	}
}

func TestUnwrapEditableKeepsScalars(t *testing.T) {
	got := unwrapEditable(map[string]any{
		"1280": map[string]any{"value": 50.0, "minv": 27.0, "maxv": 68.0},
		"raw":  7.0,
	})

	if got["1280"] != 50.0 {
		t.Errorf("got[1280] = %v, want 50", got["1280"])
	}
	if got["raw"] != 7.0 {
		t.Errorf("got[raw] = %v, want 7", got["raw"])
	}
}
