package econet

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muurk/econet/internal/logging"
	"github.com/muurk/econet/internal/memcache"
)

func TestCreatePopulatesIdentity(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/sysParams", sysParamsBody)
	client := f.start(t)

	api, err := Create(context.Background(), client, memcache.New())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	want := Identity{
		UID:              "2L7SDPN6KQ38CIH2401K01U",
		SoftwareRevision: "1.1.80.22",
		HardwareVersion:  "ecoNET300 v2",
		ModelID:          "ecoMAX 810P-L",
	}
	if api.Identity() != want {
		t.Errorf("Identity() = %+v, want %+v", api.Identity(), want)
	}
	if api.Host() != client.Host {
		t.Errorf("Host() = %s, want %s", api.Host(), client.Host)
	}
}

func TestInitMissingKeysKeepPlaceholders(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(zap.NewNop()) })

	f := newFakeController()
	f.respond("/econet/sysParams", `{"uid":"ABC"}`)
	api, _ := f.startAPI(t)

	if err := api.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if api.UID() != "ABC" {
		t.Errorf("UID() = %s, want ABC", api.UID())
	}
	if api.SoftwareRevision() != DefaultSoftwareRevision {
		t.Errorf("SoftwareRevision() = %s, want %s", api.SoftwareRevision(), DefaultSoftwareRevision)
	}
	if api.HardwareVersion() != DefaultHardwareVersion {
		t.Errorf("HardwareVersion() = %s, want %s", api.HardwareVersion(), DefaultHardwareVersion)
	}
	if api.ModelID() != DefaultModelID {
		t.Errorf("ModelID() = %s, want %s", api.ModelID(), DefaultModelID)
	}

	if n := logs.FilterMessage("Identity key missing from system params").Len(); n != 3 {
		t.Errorf("missing key warnings = %d, want 3", n)
	}
}

func TestInitUnavailableKeepsPlaceholders(t *testing.T) {
	f := newFakeController()
	f.respondStatus("/econet/sysParams", http.StatusInternalServerError, "oops")
	api, _ := f.startAPI(t)

	if err := api.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if api.UID() != DefaultUID {
		t.Errorf("UID() = %s, want %s", api.UID(), DefaultUID)
	}
}

func TestInitAuthError(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/sysParams", sysParamsBody)
	client := f.start(t)
	client.SetAuth("admin", "wrong")

	_, err := Create(context.Background(), client, memcache.New())
	if !IsAuthError(err) {
		t.Errorf("IsAuthError(%v) = false, want true", err)
	}
}

func TestWireValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"whole float", 21.0, "21"},
		{"fractional float", 21.5, "21.5"},
		{"int", 45, "45"},
		{"string with .0", "21.0", "21"},
		{"string", "55", "55"},
		{"inner .0 kept", "20.05", "20.05"},
		{"float32", float32(30), "30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WireValue(tt.value); got != tt.want {
				t.Errorf("WireValue(%v) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestSetParamUnmappedNoRequest(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/newParam", `{"result":"OK"}`)
	api, cache := f.startAPI(t)

	ok, err := api.SetParam(context.Background(), "unknownParam", 10)
	if err != nil {
		t.Fatalf("SetParam() error = %v", err)
	}
	if ok {
		t.Error("SetParam() = true, want false")
	}
	if f.total() != 0 {
		t.Errorf("requests = %d, want 0", f.total())
	}
	if cache.Exists("unknownParam") {
		t.Error("cache should not hold unmapped parameter")
	}
}

func TestSetParamSuccess(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/newParam", `{"result":"OK"}`)
	api, cache := f.startAPI(t)

	ok, err := api.SetParam(context.Background(), "tempCOSet", 21.0)
	if err != nil {
		t.Fatalf("SetParam() error = %v", err)
	}
	if !ok {
		t.Fatal("SetParam() = false, want true")
	}

	q := f.recordedQueries()[0]
	if q.Get("newParamName") != "1280" {
		t.Errorf("newParamName = %s, want 1280", q.Get("newParamName"))
	}
	if q.Get("newParamValue") != "21" {
		t.Errorf("newParamValue = %s, want 21", q.Get("newParamValue"))
	}

	if v, _ := cache.Get("tempCOSet"); v != "21" {
		t.Errorf("cache[tempCOSet] = %v, want 21", v)
	}
	if v, ok := api.LastWritten("tempCOSet"); !ok || v != "21" {
		t.Errorf("LastWritten() = %s, %v, want 21, true", v, ok)
	}
}

func TestSetParamFractional(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/newParam", `{"result":"OK"}`)
	api, cache := f.startAPI(t)

	if ok, _ := api.SetParam(context.Background(), "mixerSetTemp1", 21.5); !ok {
		t.Fatal("SetParam() = false, want true")
	}
	if v, _ := cache.Get("mixerSetTemp1"); v != "21.5" {
		t.Errorf("cache[mixerSetTemp1] = %v, want 21.5", v)
	}
	if q := f.recordedQueries()[0]; q.Get("newParamName") != "1287" {
		t.Errorf("newParamName = %s, want 1287", q.Get("newParamName"))
	}
}

func TestSetParamNotConfirmed(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"result not OK", http.StatusOK, `{"result":"ERROR"}`},
		{"result missing", http.StatusOK, `{"status":"done"}`},
		{"result not a string", http.StatusOK, `{"result":1}`},
		{"server error", http.StatusInternalServerError, `oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeController()
			f.respondStatus("/econet/newParam", tt.status, tt.body)
			api, cache := f.startAPI(t)

			ok, err := api.SetParam(context.Background(), "tempCWUSet", 50)
			if err != nil {
				t.Fatalf("SetParam() error = %v", err)
			}
			if ok {
				t.Error("SetParam() = true, want false")
			}
			if cache.Exists("tempCWUSet") {
				t.Error("cache should not be updated on an unconfirmed write")
			}
		})
	}
}

func TestSetParamAuthError(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/newParam", `{"result":"OK"}`)
	api, _ := f.startAPI(t)
	api.client.SetAuth("admin", "wrong")

	ok, err := api.SetParam(context.Background(), "tempCOSet", 50)
	if ok {
		t.Error("SetParam() = true, want false")
	}
	if !IsAuthError(err) {
		t.Errorf("IsAuthError(%v) = false, want true", err)
	}
}

func TestSetParamCustomMap(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/newParam", `{"result":"OK"}`)
	api, _ := f.startAPI(t, WithParamMap(ParamMap{"boilerSet": "42"}))

	if ok, _ := api.SetParam(context.Background(), "boilerSet", "60"); !ok {
		t.Fatal("SetParam() = false, want true")
	}
	if q := f.recordedQueries()[0]; q.Get("newParamName") != "42" {
		t.Errorf("newParamName = %s, want 42", q.Get("newParamName"))
	}
	if ok, _ := api.SetParam(context.Background(), "tempCOSet", "60"); ok {
		t.Error("SetParam(tempCOSet) = true with custom map, want false")
	}
}

func TestGetParamLimits(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/editParams", editParamsBody)
	api, _ := f.startAPI(t)

	limits, err := api.GetParamLimits(context.Background(), "tempCOSet")
	if err != nil {
		t.Fatalf("GetParamLimits() error = %v", err)
	}
	if limits == nil {
		t.Fatal("GetParamLimits() = nil, want limits")
	}
	if limits.Min == nil || *limits.Min != 27 {
		t.Errorf("Min = %v, want 27", limits.Min)
	}
	if limits.Max == nil || *limits.Max != 68 {
		t.Errorf("Max = %v, want 68", limits.Max)
	}
}

func TestGetParamLimitsFetchedOnce(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/editParams", editParamsBody)
	api, _ := f.startAPI(t)

	for _, name := range []string{"tempCOSet", "tempCWUSet", "tempCOSet", "unknownParam"} {
		if _, err := api.GetParamLimits(context.Background(), name); err != nil {
			t.Fatalf("GetParamLimits(%s) error = %v", name, err)
		}
	}

	if f.count("/econet/editParams") != 1 {
		t.Errorf("editParams requests = %d, want 1", f.count("/econet/editParams"))
	}
}

func TestGetParamLimitsAbsent(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/editParams", editParamsBody)
	api, _ := f.startAPI(t)

	limits, err := api.GetParamLimits(context.Background(), "unknownParam")
	if err != nil || limits != nil {
		t.Errorf("GetParamLimits(unknownParam) = %v, %v, want nil, nil", limits, err)
	}

	limits, err = api.GetParamLimits(context.Background(), "mixerSetTemp3")
	if err != nil || limits != nil {
		t.Errorf("GetParamLimits(mixerSetTemp3) = %v, %v, want nil, nil", limits, err)
	}
}

func TestGetParamLimitsDataError(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/editParams", `{"schema":{}}`)
	api, cache := f.startAPI(t)

	_, err := api.GetParamLimits(context.Background(), "tempCOSet")
	if !IsDataError(err) {
		t.Errorf("IsDataError(%v) = false, want true", err)
	}
	if cache.Exists(limitsCacheKey) {
		t.Error("limits should not be cached after a failed fetch")
	}
}

func TestSetParamContextCanceled(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/newParam", `{"result":"OK"}`)
	api, _ := f.startAPI(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := api.SetParam(ctx, "tempCOSet", 50)
	if ok {
		t.Error("SetParam() = true, want false")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("SetParam() error = %v, want context.Canceled", err)
	}
}

func TestUniqueIDAndDeviceInfo(t *testing.T) {
	f := newFakeController()
	f.respond("/econet/sysParams", sysParamsBody)
	api, _ := f.startAPI(t)
	if err := api.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if got := api.UniqueID("tempCO"); got != "2L7SDPN6KQ38CIH2401K01U-tempCO" {
		t.Errorf("UniqueID() = %s, want 2L7SDPN6KQ38CIH2401K01U-tempCO", got)
	}

	info := api.DeviceInfo()
	if info.Manufacturer != Manufacturer || info.Model != Model {
		t.Errorf("DeviceInfo() = %+v, want manufacturer %s model %s", info, Manufacturer, Model)
	}
	if info.ConfigurationURL != api.Host() {
		t.Errorf("ConfigurationURL = %s, want %s", info.ConfigurationURL, api.Host())
	}
	if info.SWVersion != "1.1.80.22" {
		t.Errorf("SWVersion = %s, want 1.1.80.22", info.SWVersion)
	}
}
